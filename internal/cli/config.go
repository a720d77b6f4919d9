package cli

import (
	"fmt"
	"os"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Output    string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("LADDER_SERVER", "http://localhost:8080"),
		Output:    FormatText,
	}
}

// Validate checks the flag values
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("--server must not be empty")
	}
	switch c.Output {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: must be text or json", c.Output)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
