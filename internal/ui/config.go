package ui

// Config holds presenter settings from the CLI.
type Config struct {
	Title string
	Scale int
}

func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "dmge"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
