// Package query decodes and validates nearest-school requests.
package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/ukydev/school-locator/internal/models"
)

// DefaultLength is the number of results returned when a request omits length.
const DefaultLength = 5

var (
	ErrMissingCoordinates = errors.New("Please provide latitude and longitude")
	ErrInvalidCoordinate  = errors.New("latitude and longitude must be numeric")
	ErrInvalidLength      = errors.New("length must be a non-negative integer")
	ErrInvalidBody        = errors.New("invalid JSON")
)

// Raw is the wire form of a request. Coordinates may be numbers or strings.
type Raw struct {
	Latitude  interface{} `json:"latitude"`
	Longitude interface{} `json:"longitude"`
	Length    interface{} `json:"length"`
}

// Query is a validated request: an origin and the number of results wanted.
type Query struct {
	Origin models.Location
	Length int
}

// FromJSON decodes and validates a JSON request body.
func FromJSON(r io.Reader) (Query, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Query{}, fmt.Errorf("reading request: %w", err)
	}
	var raw Raw
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return Query{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
	}
	return Parse(raw)
}

// FromValues validates a request given as URL query parameters. Empty
// parameters count as absent.
func FromValues(v url.Values) (Query, error) {
	var raw Raw
	if s := v.Get("latitude"); s != "" {
		raw.Latitude = s
	}
	if s := v.Get("longitude"); s != "" {
		raw.Longitude = s
	}
	if s := v.Get("length"); s != "" {
		raw.Length = s
	}
	return Parse(raw)
}

// Parse validates a raw request. Latitude and longitude are required and
// treated as missing when absent, null, false, zero or an empty string. Length
// defaults to DefaultLength only when absent or null; an explicit 0 is kept.
func Parse(raw Raw) (Query, error) {
	if !present(raw.Latitude) || !present(raw.Longitude) {
		return Query{}, ErrMissingCoordinates
	}

	lat, err := coordinate(raw.Latitude)
	if err != nil {
		return Query{}, err
	}
	lon, err := coordinate(raw.Longitude)
	if err != nil {
		return Query{}, err
	}

	length, err := parseLength(raw.Length)
	if err != nil {
		return Query{}, err
	}

	return Query{Origin: models.Location{Lat: lat, Lon: lon}, Length: length}, nil
}

func present(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	}
	return true
}

func coordinate(v interface{}) (float64, error) {
	if _, ok := v.(bool); ok {
		return 0, ErrInvalidCoordinate
	}
	f, err := models.ToFloat(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCoordinate, err)
	}
	return f, nil
}

func parseLength(v interface{}) (int, error) {
	if v == nil {
		return DefaultLength, nil
	}
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, ErrInvalidLength
		}
		f = parsed
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, ErrInvalidLength
		}
		f = parsed
	default:
		return 0, ErrInvalidLength
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) {
		return 0, ErrInvalidLength
	}
	// Anything past the dataset size returns the whole ranking.
	if f >= float64(math.MaxInt) {
		return math.MaxInt, nil
	}
	return int(f), nil
}
