package attachments

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const lorem = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. Etiam in suscipit purus. " +
	"Vestibulum ante ipsum primis in faucibus orci luctus et ultrices posuere cubilia Curae; " +
	"Vivamus nec hendrerit felis. Morbi aliquam facilisis risus eu lacinia. Sed eu leo in turpis " +
	"fringilla hendrerit. Ut nec accumsan nisl."

// PDF renders the run report: a success line naming the run, a heading and a
// filled triangle on the first page, and a page of left-aligned text.
func PDF(runName string, at time.Time) (Attachment, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetTitle(runName, true)
	doc.SetCreationDate(at)
	doc.AddPage()

	doc.SetFont("Helvetica", "", 14)
	doc.SetXY(50, 50)
	doc.MultiCell(500, 16, fmt.Sprintf(
		"You successfully executed the nearest-schools function at %s. Your randomly generated run name is %s.",
		at.Format(time.RFC1123), runName), "", "L", false)

	doc.SetFont("Helvetica", "", 20)
	doc.Text(100, 120, "Some vector graphics from the nearest-schools function...")

	doc.SetFillColor(0xFF, 0x33, 0x00)
	doc.Polygon([]fpdf.PointType{
		{X: 100, Y: 150},
		{X: 100, Y: 250},
		{X: 200, Y: 250},
	}, "F")

	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.SetXY(100, 72)
	doc.MultiCell(410, 14, "This text is left aligned. "+strings.Join([]string{lorem, lorem, lorem}, " "), "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return Attachment{}, err
	}
	return Attachment{
		Title:        runName,
		PathOnClient: "Function_Generated.pdf",
		ContentType:  ContentTypePDF,
		Data:         buf.Bytes(),
	}, nil
}
