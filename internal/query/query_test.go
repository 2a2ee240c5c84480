package query

import (
	"math"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/school-locator/internal/models"
)

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Query
		wantErr error
	}{
		{"numbers", `{"latitude":37.77,"longitude":-122.41,"length":2}`, Query{models.Location{Lat: 37.77, Lon: -122.41}, 2}, nil},
		{"strings", `{"latitude":"37.77","longitude":"-122.41"}`, Query{models.Location{Lat: 37.77, Lon: -122.41}, DefaultLength}, nil},
		{"default length", `{"latitude":1,"longitude":2}`, Query{models.Location{Lat: 1, Lon: 2}, 5}, nil},
		{"null length", `{"latitude":1,"longitude":2,"length":null}`, Query{models.Location{Lat: 1, Lon: 2}, 5}, nil},
		{"zero length", `{"latitude":1,"longitude":2,"length":0}`, Query{models.Location{Lat: 1, Lon: 2}, 0}, nil},
		{"string length", `{"latitude":1,"longitude":2,"length":"3"}`, Query{models.Location{Lat: 1, Lon: 2}, 3}, nil},
		{"huge length", `{"latitude":37.7,"longitude":-122.4,"length":3000000000}`, Query{models.Location{Lat: 37.7, Lon: -122.4}, 3000000000}, nil},
		{"length past int range", `{"latitude":1,"longitude":2,"length":1e30}`, Query{models.Location{Lat: 1, Lon: 2}, math.MaxInt}, nil},
		{"zero string is present", `{"latitude":"0","longitude":2}`, Query{models.Location{Lat: 0, Lon: 2}, 5}, nil},
		{"missing latitude", `{"longitude":2}`, Query{}, ErrMissingCoordinates},
		{"missing longitude", `{"latitude":2}`, Query{}, ErrMissingCoordinates},
		{"zero latitude", `{"latitude":0,"longitude":2}`, Query{}, ErrMissingCoordinates},
		{"null longitude", `{"latitude":1,"longitude":null}`, Query{}, ErrMissingCoordinates},
		{"empty string", `{"latitude":"","longitude":2}`, Query{}, ErrMissingCoordinates},
		{"false", `{"latitude":false,"longitude":2}`, Query{}, ErrMissingCoordinates},
		{"empty body", ``, Query{}, ErrMissingCoordinates},
		{"empty object", `{}`, Query{}, ErrMissingCoordinates},
		{"non-numeric", `{"latitude":"north","longitude":2}`, Query{}, ErrInvalidCoordinate},
		{"true", `{"latitude":true,"longitude":2}`, Query{}, ErrInvalidCoordinate},
		{"object", `{"latitude":{"a":1},"longitude":2}`, Query{}, ErrInvalidCoordinate},
		{"negative length", `{"latitude":1,"longitude":2,"length":-1}`, Query{}, ErrInvalidLength},
		{"fractional length", `{"latitude":1,"longitude":2,"length":2.5}`, Query{}, ErrInvalidLength},
		{"bad length", `{"latitude":1,"longitude":2,"length":"many"}`, Query{}, ErrInvalidLength},
		{"bad json", `{"latitude":`, Query{}, ErrInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromJSON(strings.NewReader(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMissingCoordinatesMessage(t *testing.T) {
	_, err := FromJSON(strings.NewReader(`{"longitude":2}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
	assert.Contains(t, err.Error(), "longitude")

	_, err = FromJSON(strings.NewReader(`{"latitude":2}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
	assert.Contains(t, err.Error(), "longitude")
}

func TestFromValues(t *testing.T) {
	q, err := FromValues(url.Values{"latitude": {"37.5"}, "longitude": {"-122"}, "length": {"0"}})
	require.NoError(t, err)
	assert.Equal(t, Query{Origin: models.Location{Lat: 37.5, Lon: -122}, Length: 0}, q)

	q, err = FromValues(url.Values{"latitude": {"37.5"}, "longitude": {"-122"}, "length": {""}})
	require.NoError(t, err)
	assert.Equal(t, DefaultLength, q.Length)

	_, err = FromValues(url.Values{"latitude": {""}, "longitude": {"-122"}})
	assert.ErrorIs(t, err, ErrMissingCoordinates)

	_, err = FromValues(url.Values{})
	assert.ErrorIs(t, err, ErrMissingCoordinates)
}
