package attachments

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/ukydev/school-locator/internal/models"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding ranked results in the XLSX attachment.
const SheetName = "Nearest"

var header = []string{"rank", "name", "latitude", "longitude", "distance_km"}

func rows(results []models.RankedSchool) [][]string {
	out := make([][]string, 0, len(results))
	for i, r := range results {
		out = append(out, []string{
			strconv.Itoa(i + 1),
			r.Name(),
			strconv.FormatFloat(r.Latitude, 'f', -1, 64),
			strconv.FormatFloat(r.Longitude, 'f', -1, 64),
			strconv.FormatFloat(r.Distance, 'f', 3, 64),
		})
	}
	return out
}

// CSV writes the ranked results with a header row.
func CSV(results []models.RankedSchool) (Attachment, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return Attachment{}, err
	}
	if err := w.WriteAll(rows(results)); err != nil {
		return Attachment{}, err
	}
	return Attachment{
		Title:        "Nearest schools",
		PathOnClient: "nearest_schools.csv",
		ContentType:  ContentTypeCSV,
		Data:         buf.Bytes(),
	}, nil
}

// XLSX writes the ranked results to a single worksheet.
func XLSX(results []models.RankedSchool) (Attachment, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return Attachment{}, err
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &headerRow); err != nil {
		return Attachment{}, err
	}

	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Attachment{}, err
		}
		row := []interface{}{i + 1, r.Name(), r.Latitude, r.Longitude, r.Distance}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return Attachment{}, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Attachment{}, err
	}
	return Attachment{
		Title:        "Nearest schools",
		PathOnClient: "nearest_schools.xlsx",
		ContentType:  ContentTypeXLSX,
		Data:         buf.Bytes(),
	}, nil
}
