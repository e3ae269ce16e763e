package httpapi

import (
	"fmt"

	"github.com/arcdb/datamerge/pkg/config"
)

// ClientStore resolves API keys to configured clients.
type ClientStore struct {
	byKey map[string]*config.APIClient
}

// NewClientStore builds a store from the configured client list.
func NewClientStore(clients []config.APIClient) *ClientStore {
	byKey := make(map[string]*config.APIClient, len(clients))
	for i := range clients {
		byKey[clients[i].APIKey] = &clients[i]
	}
	return &ClientStore{byKey: byKey}
}

// Empty reports whether no clients are configured.
func (s *ClientStore) Empty() bool {
	return len(s.byKey) == 0
}

// GetClient returns the client for an API key.
func (s *ClientStore) GetClient(apiKey string) (*config.APIClient, error) {
	client, ok := s.byKey[apiKey]
	if !ok {
		return nil, fmt.Errorf("invalid api key")
	}
	if !client.Enabled {
		return nil, fmt.Errorf("api client %q is disabled", client.Name)
	}
	return client, nil
}
