package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/spf13/viper"
)

type Config struct {
	APIURL             string        `mapstructure:"apiURL"`
	IntelligenceAPIURL string        `mapstructure:"intelligenceAPIURL"`
	CacheTTL           time.Duration `mapstructure:"cacheTTL"`
	DemoData           bool          `mapstructure:"demoData"`
	DetailTimeout      time.Duration `mapstructure:"detailTimeout"`
	FeedTimeout        time.Duration `mapstructure:"feedTimeout"`
	HighRiskRule       string        `mapstructure:"highRiskRule"`
	HighRiskThreshold  float64       `mapstructure:"highRiskThreshold"`
	ListenAddr         string        `mapstructure:"listenAddr"`
	MaxPages           int           `mapstructure:"maxPages"`
	MaxRetries         int           `mapstructure:"maxRetries"`
	PageSize           int           `mapstructure:"pageSize"`
	RefreshInterval    time.Duration `mapstructure:"refreshInterval"`
	RefreshTimeout     time.Duration `mapstructure:"refreshTimeout"`
	Workers            int           `mapstructure:"workers"`
}

// LoadConfig reads configuration from file or environment variables.
// The file is optional, VITE_API_URL alone is enough to run.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("cacheTTL", 5*time.Minute)
	viper.SetDefault("demoData", false)
	viper.SetDefault("detailTimeout", 60*time.Second)
	viper.SetDefault("feedTimeout", 180*time.Second)
	viper.SetDefault("highRiskRule", "score")
	viper.SetDefault("highRiskThreshold", domain.DefaultHighRiskThreshold)
	viper.SetDefault("listenAddr", ":8080")
	viper.SetDefault("maxPages", 20)
	viper.SetDefault("maxRetries", 3)
	viper.SetDefault("pageSize", 500)
	viper.SetDefault("refreshInterval", 5*time.Minute)
	viper.SetDefault("refreshTimeout", 2*time.Minute)
	viper.SetDefault("workers", 1)

	_ = viper.BindEnv("apiURL", "VITE_API_URL")
	_ = viper.BindEnv("intelligenceAPIURL", "VITE_INTELLIGENCE_API_URL")
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}
	err = config.Validate()
	return
}

// Validate reports every invalid setting at once
func (c Config) Validate() error {
	var result *multierror.Error
	if err := validateURL(c.APIURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("apiURL: %w", err))
	}
	if c.IntelligenceAPIURL != "" {
		if err := validateURL(c.IntelligenceAPIURL); err != nil {
			result = multierror.Append(result, fmt.Errorf("intelligenceAPIURL: %w", err))
		}
	}
	if c.PageSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("pageSize must be positive, got %d", c.PageSize))
	}
	if c.MaxPages < 0 {
		result = multierror.Append(result, fmt.Errorf("maxPages must not be negative, got %d", c.MaxPages))
	}
	if c.MaxRetries < 1 {
		result = multierror.Append(result, fmt.Errorf("maxRetries must be at least 1, got %d", c.MaxRetries))
	}
	if c.Workers < 1 {
		result = multierror.Append(result, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	for name, d := range map[string]time.Duration{
		"detailTimeout":   c.DetailTimeout,
		"feedTimeout":     c.FeedTimeout,
		"refreshInterval": c.RefreshInterval,
		"refreshTimeout":  c.RefreshTimeout,
	} {
		if d <= 0 {
			result = multierror.Append(result, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.CacheTTL < 0 {
		result = multierror.Append(result, fmt.Errorf("cacheTTL must not be negative, got %s", c.CacheTTL))
	}
	if _, err := c.Rule(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Rule returns the configured high risk rule
func (c Config) Rule() (domain.HighRiskRule, error) {
	return domain.HighRiskRuleByName(c.HighRiskRule, c.HighRiskThreshold)
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("missing, set VITE_API_URL")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}
