package autoscope

import (
	"fmt"
	"strings"
	"time"

	"github.com/benleb/autoscope/internal/models"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var (
	AppVersion = "dev"
	Commit     = "none"
	CommitDate = "unknown"
)

// AppTitle returns the app name with its build information.
func AppTitle() string {
	return fmt.Sprintf("%s %s %s (%s, %s)", models.AppIcon, models.AppName, AppVersion, Commit, CommitDate)
}

// Config is the "autoscope" section of the configuration file.
type Config struct {
	// Admins see and may change every automation.
	Admins []string `mapstructure:"admins"`

	// Tenants maps a user to the area names or area ids granted to them.
	Tenants map[string][]string `mapstructure:"tenants"`

	// Categories maps a category label such as "Blind" to the entities carrying it.
	Categories map[string][]string `mapstructure:"categories"`

	Audit AuditConfig `mapstructure:"audit"`

	Verbose bool `mapstructure:"verbose"`
	Debug   bool `mapstructure:"debug"`
	NoColor bool `mapstructure:"no_color"`
}

// AuditConfig configures the periodic audit job.
type AuditConfig struct {
	Every       time.Duration `mapstructure:"every"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// LoadConfig decodes the "autoscope" key of the loaded viper configuration.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))

	if err := viper.UnmarshalKey("autoscope", cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("decoding autoscope config failed: %w", err)
	}

	// nested defaults and bound flags are not part of the unmarshalled section
	cfg.Audit.Every = viper.GetDuration("autoscope.audit.every")
	cfg.Audit.MetricsAddr = viper.GetString("autoscope.audit.metrics_addr")

	cfg.Verbose = viper.GetBool("autoscope.verbose")
	cfg.Debug = viper.GetBool("autoscope.debug")
	cfg.NoColor = viper.GetBool("autoscope.no_color")

	return cfg, nil
}

// entityCategories inverts the label → entities mapping.
func (c *Config) entityCategories() map[string]string {
	categories := make(map[string]string)

	for label, entityIDs := range c.Categories {
		for _, entityID := range entityIDs {
			categories[strings.ToLower(strings.TrimSpace(entityID))] = label
		}
	}

	return categories
}
