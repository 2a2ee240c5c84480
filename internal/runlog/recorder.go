// Package runlog records each nearest-schools invocation: a run log record
// committed through a unit of work, attachment records bound to it, and a
// run-completed event.
package runlog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/school-locator/internal/attachments"
	"github.com/ukydev/school-locator/internal/db"
	"github.com/ukydev/school-locator/internal/events"
	"github.com/ukydev/school-locator/internal/models"
)

// NameGenerator produces run display names.
type NameGenerator interface {
	Generate() string
}

// Summary is what the recorder needs to know about a completed ranking.
type Summary struct {
	Results     []models.RankedSchool
	DatasetSize int
}

// Receipt identifies what was stored for a run.
type Receipt struct {
	RunName       string
	RunLogID      string
	AttachmentIDs []string
}

// Recorder persists runs to a record store.
type Recorder struct {
	store     db.RecordStore
	names     NameGenerator
	publisher events.Publisher
	now       func() time.Time
}

// NewRecorder creates a recorder. publisher may be nil.
func NewRecorder(store db.RecordStore, names NameGenerator, publisher events.Publisher) *Recorder {
	return &Recorder{store: store, names: names, publisher: publisher, now: time.Now}
}

// LogText describes a run in the run log record.
func LogText(runName string, returned, datasetSize int) string {
	return fmt.Sprintf("My Go function returned random string: [%s]. Plotted %d closest schools from the sample dataset of %d records",
		runName, returned, datasetSize)
}

// Record stores the run log and its attachments. A failure of either aborts
// the run; event publication is best effort.
func (r *Recorder) Record(ctx context.Context, s Summary) (*Receipt, error) {
	now := r.now()
	runName := r.names.Generate()
	logger := log.WithField("run_name", runName)

	files, err := attachments.Build(runName, now, s.Results)
	if err != nil {
		return nil, fmt.Errorf("building attachments: %w", err)
	}

	logger.Info("Storing run details and attachments using a unit of work")

	uow := db.NewUnitOfWork()
	runLogRef := uow.Register(db.CreateRequest{
		Type: models.TypeFunctionRunLog,
		Fields: models.FunctionRunLog{
			LogText:     LogText(runName, len(s.Results), s.DatasetSize),
			LogDateTime: strconv.FormatInt(now.UnixMilli(), 10),
		},
	})

	res, err := r.store.Commit(ctx, uow)
	if err != nil {
		logger.WithError(err).Error("Failed to insert run log record")
		return nil, fmt.Errorf("failed to insert record: root cause: %w", err)
	}
	runLogID, ok := res.ID(runLogRef)
	if !ok {
		return nil, fmt.Errorf("failed to insert record: root cause: no id returned for run log")
	}
	logger.WithField("run_log_id", runLogID).Info("Unit of work committed")

	receipt := &Receipt{RunName: runName, RunLogID: runLogID}
	for _, f := range files {
		id, err := r.store.Create(ctx, db.CreateRequest{
			Type: models.TypeContentVersion,
			Fields: models.ContentVersion{
				VersionData:            f.Base64(),
				Title:                  f.Title,
				PathOnClient:           f.PathOnClient,
				ContentType:            f.ContentType,
				ContentLocation:        models.ContentLocationStored,
				FirstPublishLocationID: runLogID,
			},
		})
		if err != nil {
			logger.WithError(err).WithField("path", f.PathOnClient).Error("Failed to insert attachment record")
			return nil, fmt.Errorf("failed to insert attachment record: root cause: %w", err)
		}
		logger.WithFields(log.Fields{"path": f.PathOnClient, "id": id}).Info("Stored attachment")
		receipt.AttachmentIDs = append(receipt.AttachmentIDs, id)
	}

	if r.publisher != nil {
		event := models.RunEvent{
			RunName:     runName,
			RunLogID:    runLogID,
			Returned:    len(s.Results),
			DatasetSize: s.DatasetSize,
			Timestamp:   now.UnixMilli(),
		}
		if err := r.publisher.PublishRun(ctx, event); err != nil {
			logger.WithError(err).Warn("Failed to publish run event")
		}
	}

	return receipt, nil
}
