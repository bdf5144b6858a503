// Package config loads the service configuration from defaults, an optional YAML file and
// BAKUWAKI_* environment variables.
package config

import (
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tokyo must resolve in minimal images

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of all the environment variables read by the service.
const EnvPrefix = "BAKUWAKI"

type (
	// Config holds the whole service configuration.
	Config struct {
		Server    Server    `mapstructure:"server"`
		Log       Log       `mapstructure:"log"`
		Database  Database  `mapstructure:"database"`
		Storage   Storage   `mapstructure:"storage"`
		Location  Location  `mapstructure:"location"`
		Fetch     Fetch     `mapstructure:"fetch"`
		Forecast  Forecast  `mapstructure:"forecast"`
		Scheduler Scheduler `mapstructure:"scheduler"`
		CORS      CORS      `mapstructure:"cors"`
	}

	// Server is the HTTP listener configuration.
	Server struct {
		Binding string `mapstructure:"binding"`
		Port    string `mapstructure:"port"`
	}

	// Log is the logger configuration.
	Log struct {
		Level string `mapstructure:"level"`
	}

	// Database is the Storm database configuration.
	Database struct {
		Path string `mapstructure:"path"`
	}

	// Storage tells where the model artifacts are read from.
	Storage struct {
		// Backend is either file_system or swift.
		Backend   string `mapstructure:"backend"`
		Path      string `mapstructure:"path"`
		Container string `mapstructure:"container"`
		Swift     Swift  `mapstructure:"swift"`
	}

	// Swift holds the OpenStack credentials of the swift storage backend.
	Swift struct {
		AuthURL  string `mapstructure:"auth_url"`
		Username string `mapstructure:"username"`
		APIKey   string `mapstructure:"api_key"`
		Tenant   string `mapstructure:"tenant"`
		Domain   string `mapstructure:"domain"`
		Region   string `mapstructure:"region"`
	}

	// Location is the fishing spot the forecast is computed for.
	Location struct {
		Latitude       float64 `mapstructure:"latitude"`
		Longitude      float64 `mapstructure:"longitude"`
		Timezone       string  `mapstructure:"timezone"`
		PrefectureCode int     `mapstructure:"prefecture_code"`
		HarborCode     int     `mapstructure:"harbor_code"`
	}

	// Fetch configures the upstream API clients.
	Fetch struct {
		WeatherURL string        `mapstructure:"weather_url"`
		TideURL    string        `mapstructure:"tide_url"`
		Timeout    time.Duration `mapstructure:"timeout"`
		Attempts   uint          `mapstructure:"attempts"`
		Delay      time.Duration `mapstructure:"delay"`
	}

	// Forecast configures the prediction service.
	Forecast struct {
		MaxAge         time.Duration `mapstructure:"max_age"`
		DefaultMoonAge float64       `mapstructure:"default_moon_age"`
	}

	// Scheduler configures the background refresh.
	Scheduler struct {
		Specification string `mapstructure:"specification"`
		RetentionDays int    `mapstructure:"retention_days"`
	}

	// CORS lists the origins allowed to call the API from a browser.
	CORS struct {
		Origins []string `mapstructure:"origins"`
	}
)

// Defaults registers the default value of every key.
func Defaults(v *viper.Viper) {
	v.SetDefault("server.binding", "0.0.0.0")
	v.SetDefault("server.port", "8000")

	v.SetDefault("log.level", "info")

	v.SetDefault("database.path", "bakuwaki.db")

	v.SetDefault("storage.backend", "file_system")
	v.SetDefault("storage.path", ".")
	v.SetDefault("storage.container", "models")
	v.SetDefault("storage.swift.auth_url", "")
	v.SetDefault("storage.swift.username", "")
	v.SetDefault("storage.swift.api_key", "")
	v.SetDefault("storage.swift.tenant", "")
	v.SetDefault("storage.swift.domain", "Default")
	v.SetDefault("storage.swift.region", "")

	v.SetDefault("location.latitude", 36.6959)
	v.SetDefault("location.longitude", 137.2136)
	v.SetDefault("location.timezone", "Asia/Tokyo")
	v.SetDefault("location.prefecture_code", 16) // Toyama
	v.SetDefault("location.harbor_code", 3)      // Fushiki-Toyama

	v.SetDefault("fetch.weather_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("fetch.tide_url", "https://tide736.net/api/get_tide.php")
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.attempts", 3)
	v.SetDefault("fetch.delay", 500*time.Millisecond)

	v.SetDefault("forecast.max_age", time.Hour)
	v.SetDefault("forecast.default_moon_age", 15.0)

	v.SetDefault("scheduler.specification", "@every 1h")
	v.SetDefault("scheduler.retention_days", 30)

	v.SetDefault("cors.origins", []string{
		"http://localhost:3001",
		"https://bakuwaki-yoho.com",
	})
}

// Load reads the configuration. When filename is empty, bakuwaki.yml is looked up
// in the working directory and /etc/bakuwaki; a missing file is not an error.
func Load(filename string) (*Config, error) {
	v := viper.New()
	Defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		v.SetConfigFile(filename)
	} else {
		v.SetConfigName("bakuwaki")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/bakuwaki")
	}

	if err := v.ReadInConfig(); err != nil {
		var notfound viper.ConfigFileNotFoundError
		if filename != "" || !errors.As(err, &notfound) {
			return nil, errors.Wrap(err, "could not read configuration file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "could not decode configuration")
	}

	return &cfg, errors.Wrap(cfg.Validate(), "invalid configuration")
}

// Validate checks the consistency of the configuration.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Location.Timezone); err != nil {
		return errors.Wrapf(err, "location.timezone %q", c.Location.Timezone)
	}

	switch c.Storage.Backend {
	case "file_system":
	case "swift":
		if c.Storage.Swift.AuthURL == "" {
			return errors.New("storage.swift.auth_url is required by the swift backend")
		}
	default:
		return errors.Errorf("unsupported storage.backend %q", c.Storage.Backend)
	}

	if c.Fetch.Attempts == 0 {
		return errors.New("fetch.attempts must be greater than zero")
	}
	if c.Scheduler.RetentionDays < 1 {
		return errors.New("scheduler.retention_days must be greater than zero")
	}
	return nil
}

// Listen returns the address the server binds to.
func (c *Config) Listen() string {
	return c.Server.Binding + ":" + c.Server.Port
}
