package v1

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/kubescape/vulnintel/core/domain"
	"github.com/tidwall/gjson"
)

// layouts accepted for timestamps, upstream mixes RFC 3339 with zone-less NVD style dates
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// feedToDomain maps one raw feed record to the canonical Vulnerability.
// It never fails: missing or malformed fields fall back to their defaults.
func feedToDomain(raw gjson.Result, now time.Time) domain.Vulnerability {
	v := domain.Vulnerability{
		CVEID:                stringField(raw, "", "cve_id", "id", "cveId"),
		Title:                stringField(raw, "", "title"),
		Description:          stringField(raw, "", "description"),
		Severity:             feedToDomainSeverity(stringField(raw, "", "severity")),
		CVSSScore:            numberField(raw, "cvss_score", "cvss"),
		EPSSScore:            numberField(raw, "epss_score", "epss"),
		EPSSPercentile:       numberField(raw, "epss_percentile"),
		IsKEV:                boolField(raw, "is_kev"),
		HasPoC:               boolField(raw, "has_poc"),
		HasTemplate:          boolField(raw, "has_template"),
		ReportedOnHackerOne:  boolField(raw, "reported_on_hackerone"),
		PublishedDate:        timeField(raw, now, "published_date", "published"),
		LastUpdatedAt:        timeField(raw, now, "last_updated_at", "last_modified"),
		TaranisCollectedDate: timeField(raw, now, "taranis_collected_date"),
		Status:               feedToDomainStatus(stringField(raw, "", "status")),
		Vendor:               stringField(raw, domain.UnknownValue, "vendor"),
		Product:              stringField(raw, domain.UnknownValue, "product"),
		Family:               stringField(raw, domain.UnknownValue, "family"),
		Source:               stringField(raw, domain.UnknownValue, "source"),
		Country:              stringField(raw, "", "country"),
		Region:               stringField(raw, "", "region"),
		CWEID:                stringField(raw, "", "cwe_id"),
		Tags:                 tagsField(raw, "tags"),
		AffectedSystems:      int(numberField(raw, "affected_systems").Float()),
	}
	v.RiskScore = domain.CalculateRiskScore(v)
	return v
}

func feedToDomainSeverity(s string) domain.Severity {
	switch sev := domain.Severity(strings.ToUpper(strings.TrimSpace(s))); sev {
	case domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium, domain.SeverityLow:
		return sev
	case "MODERATE":
		return domain.SeverityMedium
	}
	return domain.SeverityUnknown
}

func feedToDomainStatus(s string) domain.Status {
	normalized := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToUpper(strings.TrimSpace(s)))
	switch status := domain.Status(normalized); status {
	case domain.StatusOpen, domain.StatusInProgress, domain.StatusClosed:
		return status
	}
	return domain.StatusOpen
}

// firstPresent returns the first path holding a non-null value
func firstPresent(raw gjson.Result, paths ...string) (gjson.Result, bool) {
	for _, p := range paths {
		r := raw.Get(p)
		if r.Exists() && r.Type != gjson.Null {
			return r, true
		}
	}
	return gjson.Result{}, false
}

func stringField(raw gjson.Result, def string, paths ...string) string {
	for _, p := range paths {
		r := raw.Get(p)
		if !r.Exists() || r.Type == gjson.Null {
			continue
		}
		if s := strings.TrimSpace(r.String()); s != "" {
			return s
		}
	}
	return def
}

// numberField accepts JSON numbers and numeric strings, anything else is missing
func numberField(raw gjson.Result, paths ...string) domain.OptionalFloat {
	r, ok := firstPresent(raw, paths...)
	if !ok {
		return domain.OptionalFloat{}
	}
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return domain.OptionalFloat{}
		}
		f = parsed
	default:
		return domain.OptionalFloat{}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.OptionalFloat{}
	}
	return domain.Float64(f)
}

func boolField(raw gjson.Result, path string) bool {
	r := raw.Get(path)
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		s := strings.ToLower(strings.TrimSpace(r.Str))
		return s != "" && s != "false" && s != "0"
	case gjson.JSON:
		return true
	}
	return false
}

func timeField(raw gjson.Result, now time.Time, paths ...string) time.Time {
	r, ok := firstPresent(raw, paths...)
	if !ok {
		return now
	}
	if r.Type == gjson.Number {
		// epoch milliseconds above this bound, seconds below
		if r.Num > 1e11 {
			return time.UnixMilli(r.Int()).UTC()
		}
		return time.Unix(r.Int(), 0).UTC()
	}
	s := strings.TrimSpace(r.String())
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

// tagsField accepts a list of strings or a comma separated string
func tagsField(raw gjson.Result, path string) []string {
	tags := []string{}
	r := raw.Get(path)
	switch {
	case r.IsArray():
		r.ForEach(func(_, tag gjson.Result) bool {
			if s := strings.TrimSpace(tag.String()); s != "" && tag.Type != gjson.Null {
				tags = append(tags, s)
			}
			return true
		})
	case r.Type == gjson.String:
		for _, s := range strings.Split(r.Str, ",") {
			if s = strings.TrimSpace(s); s != "" {
				tags = append(tags, s)
			}
		}
	}
	return tags
}
