// Package attachments builds the files stored alongside each recorded run.
// Every builder creates its document fresh per call; nothing is shared
// between invocations.
package attachments

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ukydev/school-locator/internal/models"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePNG  = "image/png"
)

// Attachment is a generated file ready to be stored.
type Attachment struct {
	Title        string
	PathOnClient string
	ContentType  string
	Data         []byte
}

// Base64 returns the attachment payload encoded for the record store.
func (a Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// Build creates every attachment for a run: logo, PDF report, CSV and XLSX of the results.
func Build(runName string, at time.Time, results []models.RankedSchool) ([]Attachment, error) {
	logo, err := Logo()
	if err != nil {
		return nil, fmt.Errorf("building logo: %w", err)
	}
	pdf, err := PDF(runName, at)
	if err != nil {
		return nil, fmt.Errorf("building pdf: %w", err)
	}
	csv, err := CSV(results)
	if err != nil {
		return nil, fmt.Errorf("building csv: %w", err)
	}
	xlsx, err := XLSX(results)
	if err != nil {
		return nil, fmt.Errorf("building xlsx: %w", err)
	}
	return []Attachment{logo, pdf, csv, xlsx}, nil
}
