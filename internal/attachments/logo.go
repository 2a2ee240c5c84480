package attachments

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

const logoSize = 64

var (
	logoBackground = color.RGBA{R: 0x00, G: 0x70, B: 0xD2, A: 0xFF}
	logoPin        = color.RGBA{R: 0xFF, G: 0x33, B: 0x00, A: 0xFF}
)

// Logo renders a small map-pin badge as PNG.
func Logo() (Attachment, error) {
	img := image.NewRGBA(image.Rect(0, 0, logoSize, logoSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: logoBackground}, image.Point{}, draw.Src)

	cx, cy, r := logoSize/2, logoSize*2/5, logoSize/5
	for y := 0; y < logoSize; y++ {
		for x := 0; x < logoSize; x++ {
			dx, dy := x-cx, y-cy
			inHead := dx*dx+dy*dy <= r*r
			// tail narrows from the head down to a point
			inTail := y > cy && y < cy+2*r && abs(dx) <= (cy+2*r-y)/2
			if inHead || inTail {
				img.Set(x, y, logoPin)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Attachment{}, err
	}
	return Attachment{
		Title:        "My Logo",
		PathOnClient: "logo.png",
		ContentType:  ContentTypePNG,
		Data:         buf.Bytes(),
	}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
