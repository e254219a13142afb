package v1

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func Test_feedToDomain_defaults(t *testing.T) {
	for _, raw := range []string{`{}`, `{"cve_id":null,"severity":null,"cvss_score":null,"tags":null,"status":null,"vendor":null}`} {
		got := feedToDomain(gjson.Parse(raw), testNow)
		want := domain.Vulnerability{
			Severity:             domain.SeverityUnknown,
			PublishedDate:        testNow,
			LastUpdatedAt:        testNow,
			TaranisCollectedDate: testNow,
			Status:               domain.StatusOpen,
			Vendor:               domain.UnknownValue,
			Product:              domain.UnknownValue,
			Family:               domain.UnknownValue,
			Source:               domain.UnknownValue,
			Tags:                 []string{},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("feedToDomain(%s) mismatch (-want +got):\n%s", raw, diff)
		}
		assert.NotNil(t, got.Tags)
	}
}

func Test_feedToDomain(t *testing.T) {
	raw := `{
		"cve_id": "CVE-2025-1234",
		"title": "RCE in widget",
		"description": "remote code execution",
		"severity": "critical",
		"cvss_score": 9.5,
		"epss_score": "0.3",
		"epss_percentile": 0.97,
		"is_kev": true,
		"has_poc": false,
		"has_template": 1,
		"reported_on_hackerone": "true",
		"published_date": "2025-06-01T10:00:00.000",
		"last_updated_at": "2025-06-02T10:00:00Z",
		"taranis_collected_date": 1748772000,
		"status": "in progress",
		"vendor": "Acme",
		"product": "Widget",
		"family": "web",
		"source": "NVD",
		"country": "US",
		"region": "NA",
		"cwe_id": "CWE-94",
		"tags": ["rce", " ", "widget"],
		"affected_systems": "12"
	}`
	got := feedToDomain(gjson.Parse(raw), testNow)
	want := domain.Vulnerability{
		CVEID:                "CVE-2025-1234",
		Title:                "RCE in widget",
		Description:          "remote code execution",
		Severity:             domain.SeverityCritical,
		CVSSScore:            domain.Float64(9.5),
		EPSSScore:            domain.Float64(0.3),
		EPSSPercentile:       domain.Float64(0.97),
		IsKEV:                true,
		HasTemplate:          true,
		ReportedOnHackerOne:  true,
		PublishedDate:        time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
		LastUpdatedAt:        time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC),
		TaranisCollectedDate: time.Unix(1748772000, 0).UTC(),
		Status:               domain.StatusInProgress,
		Vendor:               "Acme",
		Product:              "Widget",
		Family:               "web",
		Source:               "NVD",
		Country:              "US",
		Region:               "NA",
		CWEID:                "CWE-94",
		Tags:                 []string{"rce", "widget"},
		RiskScore:            17.1,
		AffectedSystems:      12,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("feedToDomain() mismatch (-want +got):\n%s", diff)
	}
}

func Test_feedToDomain_aliases(t *testing.T) {
	got := feedToDomain(gjson.Parse(`{"id":"CVE-2024-1","cvss":"7.2","epss":0.1,"published":"2024-01-02","tags":"a, b,,c"}`), testNow)
	assert.Equal(t, "CVE-2024-1", got.CVEID)
	assert.Equal(t, domain.Float64(7.2), got.CVSSScore)
	assert.Equal(t, domain.Float64(0.1), got.EPSSScore)
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), got.PublishedDate)
	assert.Equal(t, []string{"a", "b", "c"}, got.Tags)
}

func Test_numberField(t *testing.T) {
	tests := []struct {
		raw  string
		want domain.OptionalFloat
	}{
		{raw: `{"n":0}`, want: domain.Float64(0)},
		{raw: `{"n":"0"}`, want: domain.Float64(0)},
		{raw: `{"n":"abc"}`, want: domain.OptionalFloat{}},
		{raw: `{"n":"NaN"}`, want: domain.OptionalFloat{}},
		{raw: `{"n":true}`, want: domain.OptionalFloat{}},
		{raw: `{"n":[1]}`, want: domain.OptionalFloat{}},
		{raw: `{}`, want: domain.OptionalFloat{}},
		{raw: `{"n":" 4.5 "}`, want: domain.Float64(4.5)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, numberField(gjson.Parse(tt.raw), "n"))
		})
	}
}

func Test_boolField(t *testing.T) {
	tests := map[string]bool{
		`{"b":true}`:    true,
		`{"b":false}`:   false,
		`{"b":1}`:       true,
		`{"b":0}`:       false,
		`{"b":"yes"}`:   true,
		`{"b":"false"}`: false,
		`{"b":""}`:      false,
		`{"b":null}`:    false,
		`{}`:            false,
	}
	for raw, want := range tests {
		assert.Equal(t, want, boolField(gjson.Parse(raw), "b"), raw)
	}
}

func Test_feedToDomainSeverity(t *testing.T) {
	assert.Equal(t, domain.SeverityHigh, feedToDomainSeverity(" high "))
	assert.Equal(t, domain.SeverityMedium, feedToDomainSeverity("Moderate"))
	assert.Equal(t, domain.SeverityLow, feedToDomainSeverity("LOW"))
	assert.Equal(t, domain.SeverityUnknown, feedToDomainSeverity(""))
	assert.Equal(t, domain.SeverityUnknown, feedToDomainSeverity("severe"))
}

func Test_feedToDomainStatus(t *testing.T) {
	assert.Equal(t, domain.StatusInProgress, feedToDomainStatus("in-progress"))
	assert.Equal(t, domain.StatusInProgress, feedToDomainStatus("IN_PROGRESS"))
	assert.Equal(t, domain.StatusClosed, feedToDomainStatus("closed"))
	assert.Equal(t, domain.StatusOpen, feedToDomainStatus("resolved"))
	assert.Equal(t, domain.StatusOpen, feedToDomainStatus(""))
}

func Test_timeField_invalid(t *testing.T) {
	assert.Equal(t, testNow, timeField(gjson.Parse(`{"t":"yesterday"}`), testNow, "t"))
	assert.Equal(t, time.UnixMilli(1748772000123).UTC(), timeField(gjson.Parse(`{"t":1748772000123}`), testNow, "t"))
}
