package config

import (
	"errors"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/spf13/viper"
	"gotest.tools/v3/assert"
)

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Setenv("VITE_API_URL", "")
	c, err := LoadConfig("testdata")
	assert.Assert(t, err == nil, err)
	assert.Equal(t, "http://cvefeed.vulnintel.svc:8000", c.APIURL)
	assert.Equal(t, "http://intelligence.vulnintel.svc:8001", c.IntelligenceAPIURL)
	assert.Equal(t, 250, c.PageSize)
	assert.Equal(t, 10, c.MaxPages)
	assert.Equal(t, time.Minute, c.CacheTTL)
	assert.Equal(t, true, c.DemoData)
	// defaults
	assert.Equal(t, 3, c.MaxRetries)
	assert.Equal(t, 180*time.Second, c.FeedTimeout)
	assert.Equal(t, 60*time.Second, c.DetailTimeout)
	assert.Equal(t, 5*time.Minute, c.RefreshInterval)
	assert.Equal(t, ":8080", c.ListenAddr)
	assert.Equal(t, 1, c.Workers)

	rule, err := c.Rule()
	assert.Assert(t, err == nil)
	assert.Equal(t, domain.HighRiskRule(domain.ExploitableRule{}), rule)
}

func TestLoadConfigFromEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("VITE_API_URL", "https://feed.example.com")
	t.Setenv("VITE_INTELLIGENCE_API_URL", "https://intel.example.com")
	c, err := LoadConfig("testdataMissing")
	assert.Assert(t, err == nil, err)
	assert.Equal(t, "https://feed.example.com", c.APIURL)
	assert.Equal(t, "https://intel.example.com", c.IntelligenceAPIURL)
	assert.Equal(t, 500, c.PageSize)
	assert.Equal(t, 20, c.MaxPages)
	assert.Equal(t, domain.DefaultHighRiskThreshold, c.HighRiskThreshold)

	rule, err := c.Rule()
	assert.Assert(t, err == nil)
	assert.Equal(t, "score", rule.Name())
}

func TestLoadConfigNotFound(t *testing.T) {
	viper.Reset()
	t.Setenv("VITE_API_URL", "")
	_, err := LoadConfig("testdataMissing")
	assert.ErrorContains(t, err, "apiURL: missing")
}

func TestLoadConfigInvalid(t *testing.T) {
	viper.Reset()
	t.Setenv("VITE_API_URL", "")
	_, err := LoadConfig("testdataInvalid")
	var merr *multierror.Error
	assert.Assert(t, errors.As(err, &merr), err)
	assert.Equal(t, 5, len(merr.Errors), err)
	assert.ErrorContains(t, err, `unsupported scheme "ftp"`)
	assert.ErrorContains(t, err, "pageSize must be positive")
	assert.ErrorContains(t, err, "maxRetries must be at least 1")
	assert.ErrorContains(t, err, "refreshInterval must be positive")
	assert.ErrorContains(t, err, `unknown high risk rule "loud"`)
}
