package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arcdb/datamerge/pkg/dataset"
	"github.com/arcdb/datamerge/pkg/merge"
	"github.com/arcdb/datamerge/pkg/security"
	"github.com/arcdb/datamerge/pkg/types"
)

// MergeHandler executes dataset merges via HTTP.
type MergeHandler struct {
	registry    *dataset.Registry
	auditLogger *security.AuditLogger
}

// NewMergeHandler creates a new MergeHandler.
func NewMergeHandler(registry *dataset.Registry, auditLogger *security.AuditLogger) *MergeHandler {
	return &MergeHandler{
		registry:    registry,
		auditLogger: auditLogger,
	}
}

// ServeHTTP handles POST /api/v1/merge.
func (h *MergeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error: "method not allowed",
			Code:  http.StatusMethodNotAllowed,
		})
		return
	}

	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  http.StatusBadRequest,
		})
		return
	}

	left, err := h.resolveDataset(req.Left, "left")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: http.StatusBadRequest})
		return
	}
	right, err := h.resolveDataset(req.Right, "right")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: http.StatusBadRequest})
		return
	}

	joinType, err := merge.ParseJoinType(req.MergeType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: http.StatusBadRequest})
		return
	}

	start := time.Now()
	result := merge.Merge(merge.Request{
		Left:        left,
		Right:       right,
		LeftKey:     req.LeftKey,
		RightKey:    req.RightKey,
		Type:        joinType,
		LeftPrefix:  req.LeftPrefix,
		RightPrefix: req.RightPrefix,
		MaxRows:     req.MaxRows,
		Title:       req.Title,
	})
	h.logRequest(r, time.Since(start).Milliseconds(), result.Error == "")

	writeJSON(w, http.StatusOK, MergeResponse{Result: result})
}

// resolveDataset turns a payload into a dataset, either from the registry or
// from inline rows.
func (h *MergeHandler) resolveDataset(payload *DatasetPayload, side string) (*types.Dataset, error) {
	if payload == nil {
		return nil, fmt.Errorf("%s dataset is required", side)
	}
	if payload.ID != "" {
		ds, ok := h.registry.Get(payload.ID)
		if !ok {
			return nil, fmt.Errorf("%s dataset %q not found in registry", side, payload.ID)
		}
		return ds, nil
	}
	if payload.Rows == nil {
		return nil, fmt.Errorf("%s dataset needs either an id or inline rows", side)
	}
	return &types.Dataset{
		Rows:         payload.Rows,
		Label:        payload.Label,
		ConnectionID: payload.ConnectionID,
	}, nil
}

func (h *MergeHandler) logRequest(r *http.Request, duration int64, success bool) {
	if h.auditLogger == nil {
		return
	}
	client := GetClientFromContext(r.Context())
	clientName := ""
	if client != nil {
		clientName = client.Name
	}
	h.auditLogger.LogAPIRequest(clientName, getClientIP(r), r.Method, r.URL.Path, duration, success)
}

// DatasetsHandler manages the dataset registry via HTTP.
type DatasetsHandler struct {
	registry    *dataset.Registry
	auditLogger *security.AuditLogger
}

// NewDatasetsHandler creates a new DatasetsHandler.
func NewDatasetsHandler(registry *dataset.Registry, auditLogger *security.AuditLogger) *DatasetsHandler {
	return &DatasetsHandler{
		registry:    registry,
		auditLogger: auditLogger,
	}
}

// ServeHTTP handles GET (list) and POST (upload) on /api/v1/datasets.
func (h *DatasetsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: h.registry.List()})
	case http.MethodPost:
		h.upload(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error: "method not allowed",
			Code:  http.StatusMethodNotAllowed,
		})
	}
}

func (h *DatasetsHandler) upload(w http.ResponseWriter, r *http.Request) {
	var req DatasetUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid request body: " + err.Error(),
			Code:  http.StatusBadRequest,
		})
		return
	}
	if req.Rows == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "rows field is required",
			Code:  http.StatusBadRequest,
		})
		return
	}

	id, err := h.registry.Put(&types.Dataset{
		Rows:         req.Rows,
		Label:        req.Label,
		ConnectionID: req.ConnectionID,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  http.StatusBadRequest,
		})
		return
	}

	writeJSON(w, http.StatusOK, DatasetUploadResponse{ID: id, RowCount: len(req.Rows)})
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
