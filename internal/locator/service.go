// Package locator serves nearest-school requests: it ranks the dataset for a
// validated query and records the run.
package locator

import (
	"context"
	"encoding/json"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/school-locator/internal/cache"
	"github.com/ukydev/school-locator/internal/dataset"
	"github.com/ukydev/school-locator/internal/metrics"
	"github.com/ukydev/school-locator/internal/models"
	"github.com/ukydev/school-locator/internal/query"
	"github.com/ukydev/school-locator/internal/runlog"
)

// ErrRecording marks failures of the run recording step.
var ErrRecording = errors.New("recording run")

// Result is the response of an invocation.
type Result struct {
	Schools []models.RankedSchool `json:"schools"`
}

// Cache stores encoded results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Recorder persists a completed run.
type Recorder interface {
	Record(ctx context.Context, s runlog.Summary) (*runlog.Receipt, error)
}

// Service answers nearest-school queries against a dataset.
type Service struct {
	dataset  *dataset.Dataset
	cache    Cache
	recorder Recorder
}

// NewService creates a service. cache and recorder are optional and may be nil.
func NewService(ds *dataset.Dataset, c Cache, r Recorder) *Service {
	return &Service{dataset: ds, cache: c, recorder: r}
}

// Dataset returns the dataset the service ranks.
func (s *Service) Dataset() *dataset.Dataset { return s.dataset }

// Nearest ranks the dataset for q.
func (s *Service) Nearest(ctx context.Context, q query.Query) *Result {
	if !q.Origin.Valid() {
		log.WithFields(log.Fields{"lat": q.Origin.Lat, "lon": q.Origin.Lon}).Warn("Origin outside coordinate range")
	}

	var key string
	if s.cache != nil {
		key = cache.Key(s.dataset.Version(), q.Origin, q.Length)
		if res, ok := s.cached(ctx, key); ok {
			return res
		}
	}

	res := &Result{Schools: s.dataset.Nearest(q.Origin, q.Length)}
	metrics.RankingsTotal.Inc()

	if s.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := s.cache.Set(ctx, key, b); err != nil {
				log.WithError(err).Warn("Failed to cache ranking")
			}
		}
	}
	return res
}

func (s *Service) cached(ctx context.Context, key string) (*Result, bool) {
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.WithError(err).Warn("Ranking cache unavailable")
		return nil, false
	}
	if !ok {
		metrics.CacheMissesTotal.Inc()
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(b, &res); err != nil {
		log.WithError(err).Warn("Discarding undecodable cached ranking")
		return nil, false
	}
	metrics.CacheHitsTotal.Inc()
	return &res, true
}

// Invoke ranks the dataset for q and records the run when a recorder is set.
// A recording failure fails the whole invocation.
func (s *Service) Invoke(ctx context.Context, q query.Query) (*Result, error) {
	log.WithFields(log.Fields{
		"latitude":  q.Origin.Lat,
		"longitude": q.Origin.Lon,
		"length":    q.Length,
	}).Info("Invoking nearest-schools function")

	res := s.Nearest(ctx, q)

	if s.recorder != nil {
		if _, err := s.recorder.Record(ctx, runlog.Summary{Results: res.Schools, DatasetSize: s.dataset.Len()}); err != nil {
			metrics.RunLogFailuresTotal.Inc()
			return nil, errors.Join(ErrRecording, err)
		}
	}
	return res, nil
}
