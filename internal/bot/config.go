package bot

// Config represents the configuration for the bot
type Config struct {
	// Maximum items curated into one review session
	DefaultSessionSize int
	// Number of users shown by the leaderboard command
	LeaderboardSize int
	// Points spent to bank one streak freeze
	FreezeCost int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultSessionSize: 20,
		LeaderboardSize:    10,
		FreezeCost:         50,
	}
}
