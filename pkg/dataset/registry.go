package dataset

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arcdb/datamerge/pkg/types"
)

// Info is the registry's summary of one stored dataset.
type Info struct {
	ID           string    `json:"id"`
	Label        string    `json:"label,omitempty"`
	ConnectionID string    `json:"connectionId,omitempty"`
	RowCount     int       `json:"rowCount"`
	ColumnCount  int       `json:"columnCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Registry holds previously fetched datasets in memory, keyed by generated ID.
// It owns no persistence; restarting the service empties it.
type Registry struct {
	mu          sync.RWMutex
	datasets    map[string]*entry
	order       []string
	maxDatasets int
	maxRows     int
}

type entry struct {
	dataset   *types.Dataset
	createdAt time.Time
}

// NewRegistry creates a registry bounded to maxDatasets entries of at most
// maxRows rows each. Non-positive bounds disable the respective limit.
func NewRegistry(maxDatasets, maxRows int) *Registry {
	return &Registry{
		datasets:    make(map[string]*entry),
		maxDatasets: maxDatasets,
		maxRows:     maxRows,
	}
}

// Put stores a dataset and returns its generated ID.
func (r *Registry) Put(ds *types.Dataset) (string, error) {
	if ds == nil {
		return "", fmt.Errorf("dataset is nil")
	}
	if r.maxRows > 0 && len(ds.Rows) > r.maxRows {
		return "", fmt.Errorf("dataset has %d rows, limit is %d", len(ds.Rows), r.maxRows)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxDatasets > 0 && len(r.datasets) >= r.maxDatasets {
		return "", fmt.Errorf("registry is full (%d datasets); remove one first", r.maxDatasets)
	}

	id := uuid.New().String()
	r.datasets[id] = &entry{dataset: ds, createdAt: time.Now()}
	r.order = append(r.order, id)
	return id, nil
}

// Get returns the dataset for an ID.
func (r *Registry) Get(id string) (*types.Dataset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.datasets[id]
	if !ok {
		return nil, false
	}
	return e.dataset, true
}

// Remove deletes a dataset. It reports whether the ID existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.datasets[id]; !ok {
		return false
	}
	delete(r.datasets, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns summaries of all stored datasets in insertion order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		e := r.datasets[id]
		ds := e.dataset
		out = append(out, Info{
			ID:           id,
			Label:        ds.Label,
			ConnectionID: ds.ConnectionID,
			RowCount:     len(ds.Rows),
			ColumnCount:  len(ds.ColumnUnion()),
			CreatedAt:    e.createdAt,
		})
	}
	return out
}

// Len returns the number of stored datasets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.datasets)
}
