package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type MainConfig struct {
	Port                string   `yaml:"port"`
	StorePath           string   `yaml:"store_path"`
	LogPath             string   `yaml:"log_path"`
	NodeName            string   `yaml:"node_name"`
	PollIntervalSeconds int      `yaml:"poll_interval_seconds"`
	ConnectingIPHeaders []string `yaml:"connecting_ip_headers"`
	APIRateLimit        string   `yaml:"api_rate_limit"`
	SelfIPEndpoint      string   `yaml:"self_ip_endpoint"`
	GeoIPEndpoint       string   `yaml:"geoip_endpoint"`
	GeoIPDatabase       string   `yaml:"geoip_database"`
	BotDetectEndpoint   string   `yaml:"bot_detect_endpoint"`
}

// LoadMainConfig Read the configuration file and return the configuration object
func LoadMainConfig(basePath string) (*MainConfig, error) {

	defaultCfg := MainConfig{
		Port:                "25590",
		StorePath:           "/www/server_kagero/config/config.json",
		LogPath:             "/www/server_kagero/log/",
		NodeName:            "Server Kagero",
		PollIntervalSeconds: 30,
		ConnectingIPHeaders: []string{"X-Forwarded-For", "X-Real-IP"},
		APIRateLimit:        "100/15m",
		SelfIPEndpoint:      "https://api.ipify.org?format=json",
		GeoIPEndpoint:       "http://ip-api.com/json",
		BotDetectEndpoint:   "",
	}

	if basePath == "" {
		exePath, err := os.Executable()
		if err != nil {
			return nil, err
		}
		basePath = filepath.Dir(exePath)
	}
	configPath := filepath.Join(basePath, "config", "kagero.yml")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &defaultCfg, nil
		}
		return &defaultCfg, err
	}

	cfg := defaultCfg
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &defaultCfg, err
	}

	return &cfg, nil
}
