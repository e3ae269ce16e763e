package httpapi

import (
	"github.com/arcdb/datamerge/pkg/dataset"
	"github.com/arcdb/datamerge/pkg/merge"
	"github.com/arcdb/datamerge/pkg/types"
)

// DatasetPayload references a dataset either by registry ID or inline rows.
type DatasetPayload struct {
	ID           string       `json:"id,omitempty"`
	Rows         []*types.Row `json:"rows,omitempty"`
	Label        string       `json:"label,omitempty"`
	ConnectionID string       `json:"connectionId,omitempty"`
}

// MergeRequest is the body of POST /api/v1/merge.
type MergeRequest struct {
	Left        *DatasetPayload `json:"left"`
	Right       *DatasetPayload `json:"right"`
	LeftKey     string          `json:"leftKey"`
	RightKey    string          `json:"rightKey"`
	MergeType   string          `json:"mergeType,omitempty"`
	LeftPrefix  string          `json:"leftPrefix,omitempty"`
	RightPrefix string          `json:"rightPrefix,omitempty"`
	MaxRows     int             `json:"maxRows,omitempty"`
	Title       string          `json:"title,omitempty"`
}

// MergeResponse is the merge result; it carries the engine's structured
// output, including the error field on input failures.
type MergeResponse struct {
	*merge.Result
}

// DatasetUploadRequest is the body of POST /api/v1/datasets.
type DatasetUploadRequest struct {
	Label        string       `json:"label,omitempty"`
	ConnectionID string       `json:"connectionId,omitempty"`
	Rows         []*types.Row `json:"rows"`
}

// DatasetUploadResponse returns the generated registry ID.
type DatasetUploadResponse struct {
	ID       string `json:"id"`
	RowCount int    `json:"rowCount"`
}

// DatasetListResponse lists the registry contents.
type DatasetListResponse struct {
	Datasets []dataset.Info `json:"datasets"`
}

// ErrorResponse represents a transport-level error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
