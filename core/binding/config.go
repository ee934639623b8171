package binding

// Config holds configuration for binding sessions.
type Config struct {
	// Backend selects where import configurations live (database, storage).
	Backend string `mapstructure:"backend" default:"database"`
	// Prefix is the object prefix of import documents when Backend is storage.
	Prefix string `mapstructure:"prefix" default:"imports"`
	// PreviewTTLSeconds is how long binding previews are cached. Zero disables caching.
	PreviewTTLSeconds int `mapstructure:"preview_ttl_seconds" default:"300"`
	// UndoDepth is the number of binding writes kept for undo.
	UndoDepth int `mapstructure:"undo_depth" default:"100"`
}

const (
	BackendDatabase = "database"
	BackendStorage  = "storage"
)

// IsValidBackend checks if the configured backend is supported.
func (c Config) IsValidBackend() bool {
	switch c.Backend {
	case BackendDatabase, BackendStorage:
		return true
	default:
		return false
	}
}
