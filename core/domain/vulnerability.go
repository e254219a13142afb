package domain

import (
	"encoding/json"
	"time"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityUnknown  Severity = "UNKNOWN"
)

// Severities lists every severity in display order
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityUnknown}

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
)

// Statuses lists every status in display order
var Statuses = []Status{StatusOpen, StatusInProgress, StatusClosed}

// OptionalFloat is a numeric field that may be absent from the upstream payload.
// A missing value is distinct from a true zero, but reads as zero through Float.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float64 returns a present OptionalFloat
func Float64(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// Float returns the value, or 0 when missing
func (o OptionalFloat) Float() float64 {
	if !o.Valid {
		return 0
	}
	return o.Value
}

// MarshalJSON always emits a number so consumers never see null
func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Float())
}

func (o *OptionalFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = OptionalFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Float64(v)
	return nil
}

// Vulnerability is the canonical record every upstream payload is normalized into.
// All fields carry a default, nothing downstream has to check for presence.
type Vulnerability struct {
	CVEID                string        `json:"cve_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	Severity             Severity      `json:"severity"`
	CVSSScore            OptionalFloat `json:"cvss_score"`
	EPSSScore            OptionalFloat `json:"epss_score"`
	EPSSPercentile       OptionalFloat `json:"epss_percentile"`
	IsKEV                bool          `json:"is_kev"`
	HasPoC               bool          `json:"has_poc"`
	HasTemplate          bool          `json:"has_template"`
	ReportedOnHackerOne  bool          `json:"reported_on_hackerone"`
	PublishedDate        time.Time     `json:"published_date"`
	LastUpdatedAt        time.Time     `json:"last_updated_at"`
	TaranisCollectedDate time.Time     `json:"taranis_collected_date"`
	Status               Status        `json:"status"`
	Vendor               string        `json:"vendor"`
	Product              string        `json:"product"`
	Family               string        `json:"family"`
	Source               string        `json:"source"`
	Country              string        `json:"country"`
	Region               string        `json:"region"`
	CWEID                string        `json:"cwe_id"`
	Tags                 []string      `json:"tags"`
	RiskScore            float64       `json:"risk_score"`
	AffectedSystems      int           `json:"affected_systems"`
}

// VendorOrFamily is the grouping key used by the vendor distribution
func (v Vulnerability) VendorOrFamily() string {
	if v.Vendor != "" && v.Vendor != UnknownValue {
		return v.Vendor
	}
	if v.Family != "" {
		return v.Family
	}
	return UnknownValue
}

// UnknownValue is the default for free-text attribution fields
const UnknownValue = "Unknown"

// PageKey identifies one cached feed page for a given filter set
type PageKey struct {
	Search   string
	Page     int
	PageSize int
}

// FeedPage is one page returned by the feed provider
type FeedPage struct {
	Items []Vulnerability
	// TotalCount is the upstream total; -1 when the response shape does not carry one
	TotalCount int
}

// LoadCommand starts a fresh load of page 1
type LoadCommand struct {
	Search       string `json:"search"`
	ForceRefresh bool   `json:"forceRefresh"`
}

// VulnerabilityFilter narrows the sorted listing
type VulnerabilityFilter struct {
	HighRiskOnly bool
	Limit        int
}
