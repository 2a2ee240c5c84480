package geo

import (
	"cmp"
	"slices"

	"github.com/ukydev/school-locator/internal/models"
)

// Locatable is any record with a position.
type Locatable interface {
	Coordinates() models.Location
}

// Ranked pairs a record with its distance, in kilometres, from a query origin.
type Ranked[T any] struct {
	Record   T
	Distance float64
}

// Rank computes the distance from origin to every record, sorts ascending by
// distance and returns the first limit results. Ties keep the order of records.
// The input slice is never modified. A negative limit yields no results.
func Rank[T Locatable](origin models.Location, records []T, limit int) []Ranked[T] {
	if limit <= 0 {
		return []Ranked[T]{}
	}

	ranked := make([]Ranked[T], len(records))
	for i, r := range records {
		loc := r.Coordinates()
		ranked[i] = Ranked[T]{
			Record:   r,
			Distance: Distance(origin.Lat, origin.Lon, loc.Lat, loc.Lon),
		}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked[T]) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}
