package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"
)

// SchoolCollection defines the interface for reading school documents.
type SchoolCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (DocumentCursor, error)
}

// DocumentCursor defines the interface for cursor operations.
type DocumentCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}

// RecordStore creates records, either one at a time or as a unit of work.
type RecordStore interface {
	// Commit creates every request registered on uow. It returns the created
	// identifiers or a single error for the whole batch.
	Commit(ctx context.Context, uow *UnitOfWork) (*CommitResult, error)
	// Create creates a single record and returns its identifier.
	Create(ctx context.Context, req CreateRequest) (string, error)
}
