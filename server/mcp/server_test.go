package mcp

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arcdb/datamerge/pkg/config"
	"github.com/arcdb/datamerge/pkg/dataset"
)

func TestAuthContextFunc(t *testing.T) {
	cfg := &config.MCPConfig{
		Clients: []config.APIClient{
			{Name: "ci", APIKey: "valid-key", Enabled: true},
			{Name: "old", APIKey: "disabled-key", Enabled: false},
		},
	}
	srv := NewServer(dataset.NewRegistry(1, 0), cfg, nil, nil, nil)
	fn := srv.authContextFunc()

	makeReq := func(header string) context.Context {
		r := httptest.NewRequest("POST", "/mcp", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		return fn(context.Background(), r)
	}

	assert.Equal(t, "ci", getClientName(makeReq("Bearer valid-key")))
	assert.Equal(t, "ci", getClientName(makeReq("bearer valid-key")))

	assert.Empty(t, getClientName(makeReq("")))
	assert.Empty(t, getClientName(makeReq("Bearer wrong")))
	assert.Empty(t, getClientName(makeReq("Bearer disabled-key")))
	assert.Empty(t, getClientName(makeReq("Basic dXNlcjpwYXNz")))
}
