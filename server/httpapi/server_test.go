package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcdb/datamerge/pkg/config"
	"github.com/arcdb/datamerge/pkg/dataset"
	"github.com/arcdb/datamerge/pkg/security"
	"github.com/arcdb/datamerge/pkg/types"
)

func testServer(t *testing.T, clients []config.APIClient) (*Server, *dataset.Registry) {
	t.Helper()
	registry := dataset.NewRegistry(16, 1000)
	cfg := &config.HTTPAPIConfig{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    0,
		Clients: clients,
	}
	return NewServer(registry, cfg, security.NewAuditLogger(100), nil), registry
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/health", nil, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestMergeEndpoint_InlineDatasets(t *testing.T) {
	srv, _ := testServer(t, nil)
	handler := srv.Handler()

	body := MergeRequest{
		Left: &DatasetPayload{Rows: []*types.Row{
			types.NewRow().Set("id", 1).Set("name", "alice"),
			types.NewRow().Set("id", 2).Set("name", "bob"),
		}},
		Right: &DatasetPayload{Rows: []*types.Row{
			types.NewRow().Set("uid", "1").Set("score", 95),
		}},
		LeftKey:  "id",
		RightKey: "uid",
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/merge", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Columns       []string        `json:"columns"`
		Rows          [][]interface{} `json:"rows"`
		RowCount      int             `json:"rowCount"`
		TotalRowCount int             `json:"totalRowCount"`
		Truncated     bool            `json:"truncated"`
		Error         string          `json:"error"`
		Stats         struct {
			MatchedPairs   int `json:"matchedPairs"`
			UnmatchedLeft  int `json:"unmatchedLeft"`
			UnmatchedRight int `json:"unmatchedRight"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Empty(t, resp.Error)
	assert.Equal(t, []string{"left.id", "left.name", "right.uid", "right.score"}, resp.Columns)
	assert.Equal(t, 1, resp.RowCount)
	assert.Equal(t, 1, resp.Stats.MatchedPairs)
	assert.Equal(t, 1, resp.Stats.UnmatchedLeft)
	assert.False(t, resp.Truncated)
}

func TestMergeEndpoint_RegistryDatasets(t *testing.T) {
	srv, registry := testServer(t, nil)
	handler := srv.Handler()

	leftID, err := registry.Put(&types.Dataset{Rows: []*types.Row{
		types.NewRow().Set("k", "a"),
	}})
	require.NoError(t, err)
	rightID, err := registry.Put(&types.Dataset{Rows: []*types.Row{
		types.NewRow().Set("k", "a").Set("v", 1),
	}})
	require.NoError(t, err)

	body := MergeRequest{
		Left:     &DatasetPayload{ID: leftID},
		Right:    &DatasetPayload{ID: rightID},
		LeftKey:  "k",
		RightKey: "k",
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/v1/merge", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RowCount int    `json:"rowCount"`
		Error    string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, 1, resp.RowCount)
}

func TestMergeEndpoint_UnknownRegistryID(t *testing.T) {
	srv, _ := testServer(t, nil)

	body := MergeRequest{
		Left:     &DatasetPayload{ID: "missing"},
		Right:    &DatasetPayload{Rows: []*types.Row{types.NewRow().Set("k", 1)}},
		LeftKey:  "k",
		RightKey: "k",
	}

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/merge", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMergeEndpoint_EngineErrorStaysHTTP200(t *testing.T) {
	srv, _ := testServer(t, nil)

	// A missing join key is an engine-level failure, reported in the result
	// body rather than as a transport error.
	body := MergeRequest{
		Left:     &DatasetPayload{Rows: []*types.Row{types.NewRow().Set("id", 1)}},
		Right:    &DatasetPayload{Rows: []*types.Row{types.NewRow().Set("id", 2)}},
		LeftKey:  "nope",
		RightKey: "id",
	}

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/merge", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "nope")
}

func TestMergeEndpoint_InvalidJoinType(t *testing.T) {
	srv, _ := testServer(t, nil)

	body := MergeRequest{
		Left:      &DatasetPayload{Rows: []*types.Row{types.NewRow().Set("k", 1)}},
		Right:     &DatasetPayload{Rows: []*types.Row{types.NewRow().Set("k", 1)}},
		LeftKey:   "k",
		RightKey:  "k",
		MergeType: "sideways",
	}

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/merge", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMergeEndpoint_MethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/merge", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDatasetsEndpoint_UploadAndList(t *testing.T) {
	srv, _ := testServer(t, nil)
	handler := srv.Handler()

	upload := DatasetUploadRequest{
		Label: "people",
		Rows: []*types.Row{
			types.NewRow().Set("id", 1),
			types.NewRow().Set("id", 2),
		},
	}
	rec := doJSON(t, handler, http.MethodPost, "/api/v1/datasets", upload, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var uploaded DatasetUploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.NotEmpty(t, uploaded.ID)
	assert.Equal(t, 2, uploaded.RowCount)

	rec = doJSON(t, handler, http.MethodGet, "/api/v1/datasets", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list DatasetListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Datasets, 1)
	assert.Equal(t, uploaded.ID, list.Datasets[0].ID)
	assert.Equal(t, "people", list.Datasets[0].Label)
}

func TestDatasetsEndpoint_UploadWithoutRows(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/datasets",
		DatasetUploadRequest{Label: "empty"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuth_RequiredWhenClientsConfigured(t *testing.T) {
	clients := []config.APIClient{
		{Name: "ci", APIKey: "valid-key", Enabled: true},
		{Name: "old", APIKey: "disabled-key", Enabled: false},
	}
	srv, _ := testServer(t, clients)
	handler := srv.Handler()

	// No key.
	rec := doJSON(t, handler, http.MethodGet, "/api/v1/datasets", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong key.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/datasets", nil,
		map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Disabled client.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/datasets", nil,
		map[string]string{"X-API-Key": "disabled-key"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid key.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/datasets", nil,
		map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open.
	rec = doJSON(t, handler, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_OpenWhenNoClientsConfigured(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/datasets", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := testServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/merge", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:4242"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(req))
}
