package config

// APIConfig controls the HTTP API exposing plans and run history.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
	// Token protects the run history endpoint when non-empty.
	Token string `json:"token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
}
