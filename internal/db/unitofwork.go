package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/school-locator/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrEmptyUnitOfWork is returned when committing a unit of work with no requests.
	ErrEmptyUnitOfWork = errors.New("unit of work has no registered requests")
	// ErrPartialCommit marks a non-transactional commit that failed after
	// some collections were already written.
	ErrPartialCommit = errors.New("unit of work partially committed")
)

// CreateRequest asks the store to create one record of the given type.
type CreateRequest struct {
	Type   string
	Fields interface{}
}

// Ref identifies a request registered on a UnitOfWork.
type Ref int

// UnitOfWork batches record creation requests for a single commit.
type UnitOfWork struct {
	requests []CreateRequest
}

// NewUnitOfWork creates an empty unit of work.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

// Register adds a creation request and returns a reference to its result.
func (u *UnitOfWork) Register(req CreateRequest) Ref {
	u.requests = append(u.requests, req)
	return Ref(len(u.requests) - 1)
}

// Requests returns the registered requests in registration order.
func (u *UnitOfWork) Requests() []CreateRequest {
	return u.requests
}

// Len returns the number of registered requests.
func (u *UnitOfWork) Len() int {
	return len(u.requests)
}

// CommitResult holds the identifiers created by a commit.
type CommitResult struct {
	ids []string
}

// NewCommitResult builds a result from identifiers in registration order.
func NewCommitResult(ids []string) *CommitResult {
	return &CommitResult{ids: ids}
}

// ID returns the identifier created for ref.
func (r *CommitResult) ID(ref Ref) (string, bool) {
	if r == nil || int(ref) < 0 || int(ref) >= len(r.ids) {
		return "", false
	}
	return r.ids[ref], true
}

var collectionNames = map[string]string{
	models.TypeFunctionRunLog: "function_run_logs",
	models.TypeContentVersion: "content_versions",
}

// CollectionFor returns the collection holding records of the given type.
func CollectionFor(recordType string) string {
	if name, ok := collectionNames[recordType]; ok {
		return name
	}
	return strings.ToLower(recordType)
}

// MongoRecordStore implements RecordStore for MongoDB, one collection per record type.
type MongoRecordStore struct {
	Database *mongo.Database
	// Transactional wraps each commit in a multi-document transaction.
	// Requires a replica set or sharded cluster. Without it a commit is not
	// atomic: collections are written one after another, and a failure leaves
	// the earlier ones in place. Such failures wrap ErrPartialCommit.
	Transactional bool
}

// Create inserts a single record.
func (s *MongoRecordStore) Create(ctx context.Context, req CreateRequest) (string, error) {
	if s.Database == nil {
		return "", ErrNilCollection
	}
	id := primitive.NewObjectID()
	doc, err := toDocument(id, req.Fields)
	if err != nil {
		return "", err
	}
	if _, err := s.Database.Collection(CollectionFor(req.Type)).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id.Hex(), nil
}

// Commit inserts every registered record, grouped by collection in registration order.
func (s *MongoRecordStore) Commit(ctx context.Context, uow *UnitOfWork) (*CommitResult, error) {
	if s.Database == nil {
		return nil, ErrNilCollection
	}
	if uow == nil || uow.Len() == 0 {
		return nil, ErrEmptyUnitOfWork
	}

	ids := make([]string, uow.Len())
	batches := make(map[string][]interface{})
	var order []string
	for i, req := range uow.Requests() {
		id := primitive.NewObjectID()
		doc, err := toDocument(id, req.Fields)
		if err != nil {
			return nil, fmt.Errorf("request %d (%s): %w", i, req.Type, err)
		}
		name := CollectionFor(req.Type)
		if _, ok := batches[name]; !ok {
			order = append(order, name)
		}
		batches[name] = append(batches[name], doc)
		ids[i] = id.Hex()
	}

	insertMany := func(ctx context.Context, name string, docs []interface{}) error {
		_, err := s.Database.Collection(name).InsertMany(ctx, docs)
		return err
	}

	if !s.Transactional {
		if err := insertBatches(ctx, order, batches, insertMany); err != nil {
			return nil, err
		}
		return NewCommitResult(ids), nil
	}

	session, err := s.Database.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		_, err := insertInOrder(sc, order, batches, insertMany)
		return nil, err
	})
	if err != nil {
		return nil, err
	}
	return NewCommitResult(ids), nil
}

type insertFunc func(ctx context.Context, collection string, docs []interface{}) error

// insertInOrder writes each batch in order, stopping at the first failure. It
// returns the collections written before that failure.
func insertInOrder(ctx context.Context, order []string, batches map[string][]interface{}, insert insertFunc) ([]string, error) {
	written := make([]string, 0, len(order))
	for _, name := range order {
		if err := insert(ctx, name, batches[name]); err != nil {
			return written, fmt.Errorf("inserting into %s: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}

// insertBatches is insertInOrder outside a transaction: a failure after the
// first collection is reported as a partial commit.
func insertBatches(ctx context.Context, order []string, batches map[string][]interface{}, insert insertFunc) error {
	written, err := insertInOrder(ctx, order, batches, insert)
	if err == nil || len(written) == 0 {
		return err
	}
	log.WithError(err).WithField("written", written).Warn("Unit of work partially committed")
	return fmt.Errorf("%w (already written: %s): %w", ErrPartialCommit, strings.Join(written, ", "), err)
}

// toDocument encodes fields as a BSON document carrying the given _id.
func toDocument(id primitive.ObjectID, fields interface{}) (bson.M, error) {
	raw, err := bson.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	doc["_id"] = id
	return doc, nil
}
