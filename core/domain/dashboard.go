package domain

import "time"

type LoaderState string

const (
	StateIdle        LoaderState = "idle"
	StateLoading     LoaderState = "loading"
	StateLoaded      LoaderState = "loaded"
	StateLoadingMore LoaderState = "loadingMore"
	StateAllLoaded   LoaderState = "allLoaded"
	StateFailed      LoaderState = "failed"
)

type SeveritySummary struct {
	Critical int `json:"CRITICAL"`
	High     int `json:"HIGH"`
	Medium   int `json:"MEDIUM"`
	Low      int `json:"LOW"`
	Unknown  int `json:"UNKNOWN"`
}

// Total is the sum of all buckets
func (s SeveritySummary) Total() int {
	return s.Critical + s.High + s.Medium + s.Low + s.Unknown
}

// Count returns the bucket of one severity, unrecognized values read the UNKNOWN bucket
func (s SeveritySummary) Count(severity Severity) int {
	switch severity {
	case SeverityCritical:
		return s.Critical
	case SeverityHigh:
		return s.High
	case SeverityMedium:
		return s.Medium
	case SeverityLow:
		return s.Low
	}
	return s.Unknown
}

type StatusSummary struct {
	Open       int `json:"OPEN"`
	InProgress int `json:"IN_PROGRESS"`
	Closed     int `json:"CLOSED"`
}

// Band is one histogram bucket over a numeric range
type Band struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// KeyCount is one entry of a grouped distribution
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DailyCount is one day of the published-date time series
type DailyCount struct {
	Date        string `json:"date"`
	Total       int    `json:"total"`
	Critical    int    `json:"critical"`
	High        int    `json:"high"`
	Medium      int    `json:"medium"`
	Low         int    `json:"low"`
	WithExploit int    `json:"withExploit"`
	KEV         int    `json:"kev"`

	// Synthetic marks placeholder values added by the demo overlay
	Synthetic bool `json:"synthetic,omitempty"`
}

// Totals holds the headline numbers of the dashboard
type Totals struct {
	Vulnerabilities int     `json:"vulnerabilities"`
	KEV             int     `json:"kev"`
	WithPoC         int     `json:"withPoc"`
	HighRisk        int     `json:"highRisk"`
	AverageCVSS     float64 `json:"averageCvss"`
	AverageRisk     float64 `json:"averageRisk"`
}

// Dashboard is every aggregate derived from the loaded vulnerability set
type Dashboard struct {
	Totals       Totals          `json:"totals"`
	HighRiskRule string          `json:"highRiskRule"`
	Severity     SeveritySummary `json:"severity"`
	Status       StatusSummary   `json:"status"`
	CVSSBands    []Band          `json:"cvssBands"`
	EPSSBands    []Band          `json:"epssBands"`
	TopCWEs      []KeyCount      `json:"topCwes"`
	TopVendors   []KeyCount      `json:"topVendors"`
	Sources      []KeyCount      `json:"sources"`
	Geography    []KeyCount      `json:"geography"`
	TimeSeries   []DailyCount    `json:"timeSeries"`
	GeneratedAt  time.Time       `json:"generatedAt"`
	DemoData     bool            `json:"demoData,omitempty"`
	Loader       LoaderStatus    `json:"loader"`
}

// LoaderStatus describes the incremental loader at the time the dashboard was built
type LoaderStatus struct {
	State      LoaderState `json:"state"`
	Search     string      `json:"search"`
	Page       int         `json:"page"`
	Loaded     int         `json:"loaded"`
	TotalCount int         `json:"totalCount"`
	Error      string      `json:"error,omitempty"`
}
