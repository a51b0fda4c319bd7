package backend

import (
	"context"

	"mywallet/internal/notify"
	"mywallet/internal/ports"
)

// Store is everything the services need from one storage backend.
type Store interface {
	ports.TransactionStore
	ports.UserLookup
	ports.BudgetLookup
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Store      Store
	Categories ports.CategoryLookup
	Cleanup    CleanupFunc
}

// PublisherResult is the alert fan-out built from the configured sinks.
type PublisherResult struct {
	Publisher *notify.Fanout
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreatePublisher wires the alert sinks. hub may be nil when the
	// websocket sink is disabled.
	CreatePublisher(ctx context.Context, config Config, hub *notify.Hub) (*PublisherResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Users registered at startup
	SeedUsers []string

	// Alert sinks
	Sinks        []string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
