package metrics

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled" yaml:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port" yaml:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled" yaml:"influx_enabled"`
	InfluxURL         string `json:"influx_url" yaml:"influx_url"`
	InfluxToken       string `json:"influx_token" yaml:"influx_token"`
	InfluxOrg         string `json:"influx_org" yaml:"influx_org"`
	InfluxBucket      string `json:"influx_bucket" yaml:"influx_bucket"`
	// EmissionFactor converts exported kWh into grams of CO2 avoided.
	EmissionFactor float64 `json:"emission_factor" yaml:"emission_factor"`
	// KPIBackend selects where daily energy KPIs live: "memory" or "sqlite".
	KPIBackend string `json:"kpi_backend" yaml:"kpi_backend"`
	// KPIPath is the SQLite database file for the sqlite backend.
	KPIPath string `json:"kpi_path" yaml:"kpi_path"`
}

// SetDefaults fills unset fields with sensible defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusPort == "" {
		c.PrometheusPort = ":2112"
	}
	if c.EmissionFactor == 0 {
		c.EmissionFactor = 466 // grid average g/kWh
	}
	if c.KPIBackend == "" {
		c.KPIBackend = "memory"
	}
	if c.KPIPath == "" {
		c.KPIPath = "eco_kpi.db"
	}
}
