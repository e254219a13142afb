package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"gotest.tools/v3/assert"
)

func TestOptionalFloat(t *testing.T) {
	var missing OptionalFloat
	assert.Equal(t, missing.Float(), 0.0)
	assert.Assert(t, !missing.Valid)

	zero := Float64(0)
	assert.Assert(t, zero.Valid)
	assert.Assert(t, zero != missing)

	b, err := json.Marshal(struct {
		A OptionalFloat `json:"a"`
		B OptionalFloat `json:"b"`
	}{B: Float64(7.5)})
	assert.NilError(t, err)
	assert.Equal(t, string(b), `{"a":0,"b":7.5}`)

	var got OptionalFloat
	assert.NilError(t, json.Unmarshal([]byte("null"), &got))
	assert.Assert(t, !got.Valid)
	assert.NilError(t, json.Unmarshal([]byte("0"), &got))
	assert.Equal(t, got, Float64(0))
}

func TestVulnerability_VendorOrFamily(t *testing.T) {
	assert.Equal(t, Vulnerability{Vendor: "apache", Family: "web"}.VendorOrFamily(), "apache")
	assert.Equal(t, Vulnerability{Vendor: UnknownValue, Family: "web"}.VendorOrFamily(), "web")
	assert.Equal(t, Vulnerability{Vendor: UnknownValue}.VendorOrFamily(), UnknownValue)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, SeverityColor(SeverityCritical), "#dc2626")
	assert.Equal(t, SeverityColor("bogus"), SeverityColor(SeverityUnknown))
	assert.Equal(t, SeverityLabel(SeverityMedium), "Medium")
	assert.Equal(t, SeverityLabel("bogus"), "Unknown")
	assert.Equal(t, StatusLabel(StatusInProgress), "In Progress")
	assert.Equal(t, StatusColor(StatusClosed), "#16a34a")
	assert.Equal(t, StatusColor("bogus"), StatusColor(StatusOpen))
}

func TestAPIError(t *testing.T) {
	err := fmt.Errorf("fetch: %w", &APIError{Status: 404, Message: "no such CVE"})
	assert.Equal(t, err.Error(), "fetch: API error 404: no such CVE")
	assert.Assert(t, errors.Is(err, ErrNotFound))
	var apiErr *APIError
	assert.Assert(t, errors.As(err, &apiErr))
	assert.Equal(t, apiErr.Status, 404)
	assert.Assert(t, !errors.Is(&APIError{Status: 500}, ErrNotFound))
}

func TestSeveritySummary_Count(t *testing.T) {
	s := SeveritySummary{Critical: 1, High: 2, Medium: 3, Low: 4, Unknown: 5}
	for i, sev := range Severities {
		assert.Equal(t, s.Count(sev), i+1)
	}
	assert.Equal(t, s.Count("bogus"), 5)
	assert.Equal(t, s.Total(), 15)
}
