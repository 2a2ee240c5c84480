package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record types accepted by the record store.
const (
	TypeFunctionRunLog = "FunctionRunLog"
	TypeContentVersion = "ContentVersion"
)

// ContentLocationStored marks a content version whose payload is kept by the store itself.
const ContentLocationStored = "S"

// FunctionRunLog records a single invocation of the nearest-schools function.
type FunctionRunLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LogText     string             `bson:"log_text" json:"log_text"`
	LogDateTime string             `bson:"log_date_time" json:"log_date_time"` // unix milliseconds
}

// ContentVersion is a binary attachment bound to a parent record.
type ContentVersion struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VersionData            string             `bson:"version_data" json:"version_data"` // base64
	Title                  string             `bson:"title" json:"title"`
	PathOnClient           string             `bson:"path_on_client" json:"path_on_client"`
	ContentType            string             `bson:"content_type" json:"content_type"`
	ContentLocation        string             `bson:"content_location" json:"content_location"`
	FirstPublishLocationID string             `bson:"first_publish_location_id" json:"first_publish_location_id"`
}

// RunEvent is published once a run has been recorded.
type RunEvent struct {
	RunName     string `json:"run_name"`
	RunLogID    string `json:"run_log_id"`
	Returned    int    `json:"returned"`
	DatasetSize int    `json:"dataset_size"`
	Timestamp   int64  `json:"timestamp"`
}
