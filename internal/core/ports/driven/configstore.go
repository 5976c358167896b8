package driven

// ConfigStore provides persistent key-value configuration.
type ConfigStore interface {
	// Get retrieves a value by key, returning false if absent.
	Get(key string) (any, bool)

	// GetString retrieves a string value, or "" if absent.
	GetString(key string) string

	// GetInt retrieves an integer value, or 0 if absent.
	GetInt(key string) int

	// GetFloat retrieves a float value, or 0 if absent.
	GetFloat(key string) float64

	// Set stores a value under key.
	Set(key string, value any)

	// Save persists the configuration.
	Save() error
}
