package storage

// Config holds storage backend selection
type Config struct {
	Type       string // "memory", "file", "postgres" or "sqlite"
	Dir        string // Directory for the file store
	DSN        string // PostgreSQL connection string
	SQLitePath string // SQLite database file
}
