package http

import (
	"github.com/mkowalik/libris/internal/database"
)

// RouterConfig contains all dependencies and configuration needed to create
// the HTTP router. A single struct keeps NewRouter's signature stable as
// endpoints grow.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Repositories, narrowed to the interfaces the controllers use
	BookStore     BookStore
	AuthorStore   AuthorStore
	CategoryStore CategoryStore
	AuditStore    AuditStore

	// Rate limiting (per client IP); non-positive disables
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Application info
	Version string
}
