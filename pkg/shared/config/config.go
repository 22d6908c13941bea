package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Logger   Logger   `yaml:"logger"`
	Engine   Engine   `yaml:"engine"`
	Catalogs Catalogs `yaml:"catalogs"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type Engine struct {
	Workers     int      `yaml:"workers"`
	UnitTimeout Duration `yaml:"unit_timeout"`
	CacheSize   int      `yaml:"cache_size"`
}

// Duration accepts Go duration strings such as "10s" or "1m30s" in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type Catalogs struct {
	Home string `yaml:"home"`
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the config file when it exists and falls back to defaults
// otherwise. A missing file is not an error so the tool works out of the box;
// an unreadable or malformed file is.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(configPath); err == nil {
		if err := LoadYAML(configPath, config); err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
		}
	}

	applyDefaults(config)
	return config, nil
}

func applyDefaults(c *Config) {
	if c.Engine.Workers <= 0 {
		c.Engine.Workers = 4
	}
	if c.Engine.UnitTimeout <= 0 {
		c.Engine.UnitTimeout = Duration(10 * time.Second)
	}
	if c.Engine.CacheSize <= 0 {
		c.Engine.CacheSize = 256
	}
	if c.Catalogs.Home == "" {
		c.Catalogs.Home = "catalogs"
	}
}
