package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/school-locator/internal/models"
)

var sanFrancisco = models.Location{Lat: 37.7749, Lon: -122.4194}

func TestLoadSample(t *testing.T) {
	ds, err := LoadSample()
	require.NoError(t, err)
	assert.Equal(t, 12, ds.Len())
	assert.NotEmpty(t, ds.Version())
	assert.Contains(t, ds.Source(), "embedded")
	assert.False(t, ds.LoadedAt().IsZero())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader(`{"schools":[{"name":"x"}]}`), "test")
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`not json`), "test")
	assert.Error(t, err)

	_, err = LoadFile("does-not-exist.json")
	assert.Error(t, err)
}

func TestDataset_Nearest(t *testing.T) {
	ds, err := LoadSample()
	require.NoError(t, err)

	results := ds.Nearest(sanFrancisco, 5)
	require.Len(t, results, 5)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
	assert.Equal(t, "Mission High School", results[0].Name())

	assert.Empty(t, ds.Nearest(sanFrancisco, 0))
	assert.Len(t, ds.Nearest(sanFrancisco, 100), ds.Len())
}

func TestDataset_NearestIsRepeatable(t *testing.T) {
	ds, err := LoadSample()
	require.NoError(t, err)

	first := ds.Nearest(models.Location{Lat: 40.7, Lon: -74}, 12)
	second := ds.Nearest(models.Location{Lat: 40.7, Lon: -74}, 12)
	assert.Equal(t, first, second)
	assert.Equal(t, "Stuyvesant High School", first[0].Name())
}

func TestDataset_VersionTracksContent(t *testing.T) {
	a, err := Load(strings.NewReader(`{"schools":[{"name":"a","latitude":1,"longitude":1}]}`), "a")
	require.NoError(t, err)
	b, err := Load(strings.NewReader(`{"schools":[{"name":"a","latitude":1,"longitude":1}]}`), "b")
	require.NoError(t, err)
	c, err := Load(strings.NewReader(`{"schools":[{"name":"c","latitude":1,"longitude":1}]}`), "c")
	require.NoError(t, err)

	assert.Equal(t, a.Version(), b.Version())
	assert.NotEqual(t, a.Version(), c.Version())
}

type stubSource struct {
	docs []map[string]interface{}
	err  error
}

func (s stubSource) FindSchools(ctx context.Context) ([]map[string]interface{}, error) {
	return s.docs, s.err
}

func TestLoadFromSource(t *testing.T) {
	src := stubSource{docs: []map[string]interface{}{
		{"name": "Near", "latitude": 37.77, "longitude": -122.41},
		{"name": "No coordinates"},
		{"name": "Far", "latitude": "40.71", "longitude": "-74.00"},
	}}
	ds, err := LoadFromSource(context.Background(), src, "stub")
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "Near", ds.Nearest(sanFrancisco, 1)[0].Name())

	_, err = LoadFromSource(context.Background(), stubSource{err: errors.New("boom")}, "stub")
	assert.Error(t, err)
}

func TestNew_IsolatedFromCallerRecords(t *testing.T) {
	school, err := models.NewSchool(map[string]interface{}{"name": "Lowell High School", "latitude": 37.7309, "longitude": -122.4836})
	require.NoError(t, err)
	schools := []models.School{school}

	ds := New(schools, "test")
	version := ds.Version()

	school.Fields["name"] = "Renamed"
	schools[0].Latitude = 0

	got := ds.Nearest(sanFrancisco, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "Lowell High School", got[0].Name())
	assert.Equal(t, 37.7309, got[0].Latitude)
	assert.Equal(t, version, ds.Version())
}
