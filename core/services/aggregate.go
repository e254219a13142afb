package services

import (
	"math"
	"sort"
	"time"

	"github.com/kubescape/vulnintel/core/domain"
)

const (
	TopCWECount       = 10
	TopVendorCount    = 10
	TopCountryCount   = 15
	TimeSeriesDays    = 30
	timeSeriesDateFmt = "2006-01-02"
)

// Aggregate derives every dashboard distribution from the given set.
// It never mutates its input and returns the same result for the same input and time.
func Aggregate(vulns []domain.Vulnerability, now time.Time, rule domain.HighRiskRule) domain.Dashboard {
	return domain.Dashboard{
		Totals:       computeTotals(vulns, rule),
		HighRiskRule: rule.Name(),
		Severity:     SeverityHistogram(vulns),
		Status:       StatusHistogram(vulns),
		CVSSBands:    CVSSBands(vulns),
		EPSSBands:    EPSSBands(vulns),
		TopCWEs:      TopN(vulns, func(v domain.Vulnerability) string { return v.CWEID }, TopCWECount),
		TopVendors:   TopN(vulns, domain.Vulnerability.VendorOrFamily, TopVendorCount),
		Sources:      TopN(vulns, func(v domain.Vulnerability) string { return v.Source }, 0),
		Geography:    Geography(vulns),
		TimeSeries:   TimeSeries(vulns, now, TimeSeriesDays),
		GeneratedAt:  now,
	}
}

func computeTotals(vulns []domain.Vulnerability, rule domain.HighRiskRule) domain.Totals {
	var totals domain.Totals
	var cvssSum, riskSum float64
	var cvssCount int
	for _, v := range vulns {
		if v.IsKEV {
			totals.KEV++
		}
		if v.HasPoC {
			totals.WithPoC++
		}
		if rule.IsHighRisk(v) {
			totals.HighRisk++
		}
		// missing scores are left out of the average instead of dragging it to zero
		if v.CVSSScore.Valid {
			cvssSum += v.CVSSScore.Value
			cvssCount++
		}
		riskSum += v.RiskScore
	}
	totals.Vulnerabilities = len(vulns)
	if cvssCount > 0 {
		totals.AverageCVSS = math.Round(cvssSum/float64(cvssCount)*100) / 100
	}
	if len(vulns) > 0 {
		totals.AverageRisk = math.Round(riskSum/float64(len(vulns))*100) / 100
	}
	return totals
}

// SeverityHistogram counts records per severity, unrecognized values land in UNKNOWN
func SeverityHistogram(vulns []domain.Vulnerability) domain.SeveritySummary {
	var s domain.SeveritySummary
	for _, v := range vulns {
		switch v.Severity {
		case domain.SeverityCritical:
			s.Critical++
		case domain.SeverityHigh:
			s.High++
		case domain.SeverityMedium:
			s.Medium++
		case domain.SeverityLow:
			s.Low++
		default:
			s.Unknown++
		}
	}
	return s
}

// StatusHistogram counts records per status, unrecognized values count as OPEN
func StatusHistogram(vulns []domain.Vulnerability) domain.StatusSummary {
	var s domain.StatusSummary
	for _, v := range vulns {
		switch v.Status {
		case domain.StatusInProgress:
			s.InProgress++
		case domain.StatusClosed:
			s.Closed++
		default:
			s.Open++
		}
	}
	return s
}

// CVSSBands buckets scores into [0,4], (4,7], (7,9] and (9,10].
// Scores outside [0,10] are clamped to the first or last band.
func CVSSBands(vulns []domain.Vulnerability) []domain.Band {
	bands := []domain.Band{
		{Label: "0-4", Min: 0, Max: 4},
		{Label: "4-7", Min: 4, Max: 7},
		{Label: "7-9", Min: 7, Max: 9},
		{Label: "9-10", Min: 9, Max: 10},
	}
	for _, v := range vulns {
		bands[cvssBandIndex(v.CVSSScore.Float())].Count++
	}
	return bands
}

func cvssBandIndex(score float64) int {
	switch {
	case score <= 4:
		return 0
	case score <= 7:
		return 1
	case score <= 9:
		return 2
	default:
		return 3
	}
}

// EPSSBands buckets probabilities into five 20% bands [min,max), the last band includes 1.0
func EPSSBands(vulns []domain.Vulnerability) []domain.Band {
	bands := []domain.Band{
		{Label: "0-20%", Min: 0, Max: 0.2},
		{Label: "20-40%", Min: 0.2, Max: 0.4},
		{Label: "40-60%", Min: 0.4, Max: 0.6},
		{Label: "60-80%", Min: 0.6, Max: 0.8},
		{Label: "80-100%", Min: 0.8, Max: 1},
	}
	for _, v := range vulns {
		bands[epssBandIndex(bands, v.EPSSScore.Float())].Count++
	}
	return bands
}

func epssBandIndex(bands []domain.Band, score float64) int {
	for i := len(bands) - 1; i > 0; i-- {
		if score >= bands[i].Min {
			return i
		}
	}
	return 0
}

// TopN groups records by key and returns the n largest groups, all groups when n <= 0.
// Empty keys are skipped; ties are ordered by key.
func TopN(vulns []domain.Vulnerability, key func(domain.Vulnerability) string, n int) []domain.KeyCount {
	counts := map[string]int{}
	for _, v := range vulns {
		if k := key(v); k != "" {
			counts[k]++
		}
	}
	result := make([]domain.KeyCount, 0, len(counts))
	for k, c := range counts {
		result = append(result, domain.KeyCount{Key: k, Count: c})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	if n > 0 && len(result) > n {
		result = result[:n]
	}
	return result
}

// Geography is the country distribution, records without a country are left out
func Geography(vulns []domain.Vulnerability) []domain.KeyCount {
	return TopN(vulns, func(v domain.Vulnerability) string { return v.Country }, TopCountryCount)
}

// TimeSeries counts records per UTC publish day over the last days days, oldest first.
// Days without records are reported with zero counts.
func TimeSeries(vulns []domain.Vulnerability, now time.Time, days int) []domain.DailyCount {
	series := make([]domain.DailyCount, days)
	index := make(map[string]int, days)
	today := now.UTC().Truncate(24 * time.Hour)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format(timeSeriesDateFmt)
		series[i].Date = date
		index[date] = i
	}
	for _, v := range vulns {
		i, ok := index[v.PublishedDate.UTC().Format(timeSeriesDateFmt)]
		if !ok {
			continue
		}
		day := &series[i]
		day.Total++
		switch v.Severity {
		case domain.SeverityCritical:
			day.Critical++
		case domain.SeverityHigh:
			day.High++
		case domain.SeverityMedium:
			day.Medium++
		case domain.SeverityLow:
			day.Low++
		}
		if v.HasPoC {
			day.WithExploit++
		}
		if v.IsKEV {
			day.KEV++
		}
	}
	return series
}
