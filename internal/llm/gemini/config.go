package gemini

import "time"

const defaultModel = "gemini-2.5-flash"

// Config for the Gemini client.
type Config struct {
	APIKey            string
	Model             string        // default gemini-2.5-flash
	Temperature       float32       // 0 keeps extraction deterministic
	Timeout           time.Duration // per request
	RequestsPerMinute int           // 0 = unlimited
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
