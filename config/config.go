package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/FilipeDoria/genetic-load-manager/core/genetic"
	"github.com/FilipeDoria/genetic-load-manager/core/metrics"
	"github.com/FilipeDoria/genetic-load-manager/core/model"
	"github.com/FilipeDoria/genetic-load-manager/core/scheduler"
	"github.com/FilipeDoria/genetic-load-manager/infra/homeassistant"
	"github.com/FilipeDoria/genetic-load-manager/infra/monitoring"
	"github.com/FilipeDoria/genetic-load-manager/infra/mqtt"
	"github.com/FilipeDoria/genetic-load-manager/pricing"
)

type Config struct {
	Battery       model.BatterySpec    `json:"battery"`
	Genetic       genetic.Config       `json:"genetic"`
	Scheduler     scheduler.Config     `json:"scheduler"`
	Provider      ProviderConfig       `json:"provider"`
	MQTT          mqtt.Config          `json:"mqtt"`
	Sensors       mqtt.SourceConfig    `json:"sensors"`
	HomeAssistant homeassistant.Config `json:"homeassistant"`
	Metrics       metrics.Config       `json:"metrics"`
	Pricing       pricing.Config       `json:"pricing"`
	Market        MarketConfig         `json:"market"`
	RunLog        RunLogConfig         `json:"runlog"`
	Logging       LoggingConfig        `json:"logging"`
	Sentry        monitoring.Config    `json:"sentry"`
	API           APIConfig            `json:"api"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("GLM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "glm_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Genetic.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.Provider.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Pricing.SetDefaults()
	cfg.Market.SetDefaults()
	cfg.RunLog.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.API.SetDefaults()
	cfg.HomeAssistant.SetDefaults()
	if err := cfg.Genetic.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Provider.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Market.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.RunLog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider.Source != SourceSynthetic {
		if err := cfg.Battery.Validate(); err != nil {
			return nil, err
		}
	}
	if cfg.Provider.Source == SourceHomeAssistant {
		if err := cfg.HomeAssistant.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
