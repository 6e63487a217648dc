package bot

// Config represents the configuration for the bot
type Config struct {
	Token string
	Debug bool
	// Number of due cards sent for one /due request
	DueBatchSize int
	// Long-polling timeout in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() Config {
	return Config{
		DueBatchSize:  5,
		UpdateTimeout: 60,
	}
}
