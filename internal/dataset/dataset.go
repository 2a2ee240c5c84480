// Package dataset holds the immutable set of schools the locator ranks.
//
// A Dataset is loaded once at startup and shared read-only by every request.
package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/school-locator/internal/geo"
	"github.com/ukydev/school-locator/internal/models"
)

//go:embed data/sample-data.json
var sampleFS embed.FS

const samplePath = "data/sample-data.json"

// Dataset is an ordered, immutable collection of schools.
type Dataset struct {
	schools  []models.School
	version  string
	source   string
	loadedAt time.Time
}

// file is the on-disk layout of a dataset.
type file struct {
	Schools []models.School `json:"schools"`
}

// New builds a dataset from already decoded schools. Schools are deep-copied,
// so later changes to the caller's records never reach the dataset.
func New(schools []models.School, source string) *Dataset {
	owned := make([]models.School, len(schools))
	for i, s := range schools {
		owned[i] = s.Clone()
	}
	return &Dataset{
		schools:  owned,
		version:  fingerprint(owned),
		source:   source,
		loadedAt: time.Now(),
	}
}

// Load decodes a dataset from JSON of the form {"schools": [...]}.
func Load(r io.Reader, source string) (*Dataset, error) {
	var f file
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding dataset %s: %w", source, err)
	}
	ds := New(f.Schools, source)
	log.WithFields(log.Fields{
		"source":  source,
		"schools": ds.Len(),
		"version": ds.Version(),
	}).Info("Loaded school dataset")
	return ds, nil
}

// LoadFile loads a dataset from a JSON file.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	return Load(f, path)
}

// LoadSample loads the sample dataset compiled into the binary.
func LoadSample() (*Dataset, error) {
	b, err := sampleFS.ReadFile(samplePath)
	if err != nil {
		return nil, fmt.Errorf("reading embedded dataset: %w", err)
	}
	return Load(bytes.NewReader(b), "embedded:"+samplePath)
}

// DocumentSource yields raw school documents, e.g. from a database collection.
type DocumentSource interface {
	FindSchools(ctx context.Context) ([]map[string]interface{}, error)
}

// LoadFromSource loads a dataset from a document source. Documents without
// usable coordinates are skipped.
func LoadFromSource(ctx context.Context, src DocumentSource, source string) (*Dataset, error) {
	docs, err := src.FindSchools(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading schools from %s: %w", source, err)
	}
	schools := make([]models.School, 0, len(docs))
	for i, doc := range docs {
		s, err := models.NewSchool(doc)
		if err != nil {
			log.WithError(err).WithField("index", i).Warn("Skipping school without coordinates")
			continue
		}
		schools = append(schools, s)
	}
	ds := New(schools, source)
	log.WithFields(log.Fields{
		"source":  source,
		"schools": ds.Len(),
		"skipped": len(docs) - len(schools),
	}).Info("Loaded school dataset")
	return ds, nil
}

// Nearest ranks every school by distance from origin and returns the closest limit.
func (d *Dataset) Nearest(origin models.Location, limit int) []models.RankedSchool {
	ranked := geo.Rank(origin, d.schools, limit)
	out := make([]models.RankedSchool, len(ranked))
	for i, r := range ranked {
		out[i] = models.RankedSchool{School: r.Record, Distance: r.Distance}
	}
	return out
}

// Len returns the number of schools.
func (d *Dataset) Len() int { return len(d.schools) }

// Version identifies the dataset contents.
func (d *Dataset) Version() string { return d.version }

// Source names where the dataset was loaded from.
func (d *Dataset) Source() string { return d.source }

// LoadedAt returns when the dataset was loaded.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

func fingerprint(schools []models.School) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, s := range schools {
		// encoding a decoded record cannot fail
		_ = enc.Encode(s)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
