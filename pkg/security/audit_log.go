package security

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEventType classifies an audit event.
type AuditEventType string

const (
	EventTypeAPIRequest  AuditEventType = "api_request"
	EventTypeMCPToolCall AuditEventType = "mcp_tool_call"
)

// AuditEvent is one recorded tool call or API request.
type AuditEvent struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	EventType AuditEventType         `json:"event_type"`
	Client    string                 `json:"client"`
	ClientIP  string                 `json:"client_ip,omitempty"`
	Tool      string                 `json:"tool,omitempty"`
	Method    string                 `json:"method,omitempty"`
	Path      string                 `json:"path,omitempty"`
	Args      map[string]interface{} `json:"args,omitempty"`
	Success   bool                   `json:"success"`
	Duration  int64                  `json:"duration"` // milliseconds
}

// AuditLogger keeps the most recent events in a fixed-size ring buffer.
type AuditLogger struct {
	mu     sync.RWMutex
	buffer []*AuditEvent
	size   int
	index  int
	count  int
}

// NewAuditLogger creates an audit logger retaining up to size events.
func NewAuditLogger(size int) *AuditLogger {
	if size < 1 {
		size = 1
	}
	return &AuditLogger{
		buffer: make([]*AuditEvent, size),
		size:   size,
	}
}

// Log records an event, evicting the oldest when the buffer is full.
func (al *AuditLogger) Log(event *AuditEvent) {
	al.mu.Lock()
	defer al.mu.Unlock()
	al.buffer[al.index] = event
	al.index = (al.index + 1) % al.size
	if al.count < al.size {
		al.count++
	}
}

// LogMCPToolCall records an MCP tool invocation.
func (al *AuditLogger) LogMCPToolCall(client, ip, tool string, args map[string]interface{}, duration int64, success bool) {
	al.Log(&AuditEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		EventType: EventTypeMCPToolCall,
		Client:    client,
		ClientIP:  ip,
		Tool:      tool,
		Args:      args,
		Success:   success,
		Duration:  duration,
	})
}

// LogAPIRequest records an HTTP API request.
func (al *AuditLogger) LogAPIRequest(client, ip, method, path string, duration int64, success bool) {
	al.Log(&AuditEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		EventType: EventTypeAPIRequest,
		Client:    client,
		ClientIP:  ip,
		Method:    method,
		Path:      path,
		Success:   success,
		Duration:  duration,
	})
}

// Recent returns up to n events, newest first.
func (al *AuditLogger) Recent(n int) []*AuditEvent {
	al.mu.RLock()
	defer al.mu.RUnlock()

	if n > al.count {
		n = al.count
	}
	out := make([]*AuditEvent, 0, n)
	for i := 0; i < n; i++ {
		idx := (al.index - 1 - i + al.size*2) % al.size
		out = append(out, al.buffer[idx])
	}
	return out
}
