package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldDistance  = "distance"
	FieldName      = "name"
)

// School is a located record from the dataset. Fields holds every attribute of
// the source record, latitude and longitude included, and is passed through
// to responses untouched.
type School struct {
	Latitude  float64
	Longitude float64
	Fields    map[string]interface{}
}

// Coordinates returns the school's position.
func (s School) Coordinates() Location {
	return Location{Lat: s.Latitude, Lon: s.Longitude}
}

// Name returns the school's display name, or an empty string when the record has none.
func (s School) Name() string {
	if v, ok := s.Fields[FieldName]; ok {
		if name, ok := v.(string); ok {
			return name
		}
		return fmt.Sprint(v)
	}
	return ""
}

// NewSchool builds a school from a generic record. The record must carry numeric
// (or numeric string) latitude and longitude fields.
func NewSchool(fields map[string]interface{}) (School, error) {
	lat, err := coordinateField(fields, FieldLatitude)
	if err != nil {
		return School{}, err
	}
	lon, err := coordinateField(fields, FieldLongitude)
	if err != nil {
		return School{}, err
	}
	return School{Latitude: lat, Longitude: lon, Fields: fields}, nil
}

func coordinateField(fields map[string]interface{}, key string) (float64, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("school record has no %s", key)
	}
	f, err := ToFloat(v)
	if err != nil {
		return 0, fmt.Errorf("school record %s: %w", key, err)
	}
	return f, nil
}

// ToFloat converts the numeric representations produced by the JSON and BSON
// decoders (and numeric strings) to float64.
func ToFloat(v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	return f, nil
}

// UnmarshalJSON decodes any JSON object carrying latitude and longitude.
func (s *School) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	school, err := NewSchool(fields)
	if err != nil {
		return err
	}
	*s = school
	return nil
}

// Clone returns a copy of s whose Fields share no maps or slices with s.
func (s School) Clone() School {
	s.Fields = cloneValue(s.Fields).(map[string]interface{})
	return s
}

func cloneValue(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		if x == nil {
			return x
		}
		out := make(map[string]interface{}, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	case []interface{}:
		if x == nil {
			return x
		}
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}

// MarshalJSON writes the school's original fields.
func (s School) MarshalJSON() ([]byte, error) {
	if s.Fields == nil {
		return json.Marshal(map[string]interface{}{
			FieldLatitude:  s.Latitude,
			FieldLongitude: s.Longitude,
		})
	}
	return json.Marshal(s.Fields)
}

// RankedSchool is a school annotated with its distance, in kilometres, from a query origin.
type RankedSchool struct {
	School
	Distance float64
}

// MarshalJSON writes the school's original fields plus "distance".
func (r RankedSchool) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	if r.Fields == nil {
		out[FieldLatitude] = r.Latitude
		out[FieldLongitude] = r.Longitude
	}
	out[FieldDistance] = r.Distance
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON, splitting "distance" off the school's fields.
func (r *RankedSchool) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	raw, ok := fields[FieldDistance]
	if !ok {
		return fmt.Errorf("ranked school has no %s", FieldDistance)
	}
	distance, err := ToFloat(raw)
	if err != nil {
		return fmt.Errorf("ranked school %s: %w", FieldDistance, err)
	}
	delete(fields, FieldDistance)
	school, err := NewSchool(fields)
	if err != nil {
		return err
	}
	*r = RankedSchool{School: school, Distance: distance}
	return nil
}
