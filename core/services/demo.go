package services

import (
	"math"
	"slices"

	"github.com/kubescape/vulnintel/core/domain"
)

// placeholder tables shown only when the demo overlay is enabled and real data is absent
var demoGeography = []domain.KeyCount{
	{Key: "US", Count: 450},
	{Key: "CN", Count: 320},
	{Key: "RU", Count: 280},
	{Key: "DE", Count: 180},
	{Key: "GB", Count: 150},
	{Key: "FR", Count: 120},
	{Key: "JP", Count: 110},
	{Key: "IN", Count: 100},
	{Key: "BR", Count: 90},
	{Key: "KR", Count: 80},
}

var demoSources = []domain.KeyCount{
	{Key: "NVD", Count: 520},
	{Key: "GitHub Advisory", Count: 310},
	{Key: "CISA KEV", Count: 140},
	{Key: "Exploit-DB", Count: 95},
	{Key: "HackerOne", Count: 40},
}

// ApplyDemoData overlays placeholder values for presentation where the dashboard has no
// real data. It returns a copy and leaves real buckets untouched.
func ApplyDemoData(d domain.Dashboard) domain.Dashboard {
	d.DemoData = true
	d.TimeSeries = slices.Clone(d.TimeSeries)
	for i := range d.TimeSeries {
		if d.TimeSeries[i].Total != 0 {
			continue
		}
		d.TimeSeries[i] = syntheticDay(d.TimeSeries[i].Date, i)
	}
	if len(d.Geography) == 0 {
		d.Geography = slices.Clone(demoGeography)
	}
	if len(d.Sources) == 0 {
		d.Sources = slices.Clone(demoSources)
	}
	return d
}

func syntheticDay(date string, index int) domain.DailyCount {
	baseline := 200 + 50*math.Sin(float64(index)*0.5)
	share := func(f float64) int {
		return int(math.Round(baseline * f))
	}
	return domain.DailyCount{
		Date:        date,
		Total:       share(1),
		Critical:    share(0.15),
		High:        share(0.3),
		Medium:      share(0.35),
		Low:         share(0.2),
		WithExploit: share(0.1),
		KEV:         share(0.05),
		Synthetic:   true,
	}
}
