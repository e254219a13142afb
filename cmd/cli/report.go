package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/core/services"
	"github.com/kubescape/vulnintel/internal/tools"
	"github.com/olekukonko/tablewriter"
)

const titleLength = 60

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	pink   = color.New(color.FgMagenta).SprintFunc()
)

type reportOptions struct {
	pages    int
	search   string
	highRisk bool
	limit    int
	demo     bool
}

// runReport loads up to opts.pages pages and prints the summary and the top vulnerabilities
func runReport(ctx context.Context, w io.Writer, service *services.DashboardService, opts reportOptions) error {
	if err := service.Load(ctx, domain.LoadCommand{Search: opts.search}); err != nil {
		return err
	}
	for page := 1; page < opts.pages; page++ {
		if service.Dashboard(ctx).Loader.State == domain.StateAllLoaded {
			break
		}
		if err := service.LoadMore(ctx); err != nil {
			return err
		}
	}

	d := service.Dashboard(ctx)
	if opts.demo {
		d = services.ApplyDemoData(d)
	}
	vulns := service.Vulnerabilities(ctx, domain.VulnerabilityFilter{HighRiskOnly: opts.highRisk, Limit: opts.limit})
	renderReport(w, d, vulns)
	return nil
}

func renderReport(w io.Writer, d domain.Dashboard, vulns []domain.Vulnerability) {
	fmt.Fprintf(w, "\nDetected %s vulnerabilities | "+
		"Critical: %s High: %s Medium: %s Low: %s\n",
		yellow(d.Totals.Vulnerabilities),
		red(d.Severity.Critical),
		pink(d.Severity.High),
		yellow(d.Severity.Medium),
		green(d.Severity.Low))
	fmt.Fprintf(w, "KEV: %d  With PoC: %d  High risk (%s): %d  Avg CVSS: %.2f  Avg risk: %.2f\n",
		d.Totals.KEV, d.Totals.WithPoC, d.HighRiskRule, d.Totals.HighRisk, d.Totals.AverageCVSS, d.Totals.AverageRisk)
	fmt.Fprintf(w, "Loader: %s, page %d, %d loaded", d.Loader.State, d.Loader.Page, d.Loader.Loaded)
	if d.Loader.TotalCount >= 0 {
		fmt.Fprintf(w, " of %d", d.Loader.TotalCount)
	}
	fmt.Fprint(w, "\n\n")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Severity", "Count"})
	for _, s := range domain.Severities {
		table.Append([]string{domain.SeverityLabel(s), strconv.Itoa(d.Severity.Count(s))})
	}
	table.Render()

	if len(d.TopVendors) > 0 {
		fmt.Fprint(w, "\nTop vendors:\n")
		table = tablewriter.NewWriter(w)
		table.SetHeader([]string{"Vendor", "Count"})
		for _, kc := range d.TopVendors {
			table.Append([]string{kc.Key, strconv.Itoa(kc.Count)})
		}
		table.Render()
	}

	fmt.Fprint(w, "\nVulnerabilities:\n")
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "CVEID", "Severity", "CVSS", "EPSS", "Risk", "KEV", "Published", "Title"})
	table.SetRowLine(true)
	for i, v := range vulns {
		table.Append([]string{
			strconv.Itoa(i + 1),
			v.CVEID,
			judgeSeverity(v.Severity),
			fmt.Sprintf("%.1f", v.CVSSScore.Float()),
			fmt.Sprintf("%.2f", v.EPSSScore.Float()),
			fmt.Sprintf("%.2f", v.RiskScore),
			yesNo(v.IsKEV),
			v.PublishedDate.Format("2006-01-02"),
			tools.Ellipsis(v.Title, titleLength),
		})
	}
	table.Render()
}

func judgeSeverity(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return red(domain.SeverityLabel(s))
	case domain.SeverityHigh:
		return pink(domain.SeverityLabel(s))
	case domain.SeverityMedium:
		return yellow(domain.SeverityLabel(s))
	case domain.SeverityLow:
		return green(domain.SeverityLabel(s))
	}
	return domain.SeverityLabel(s)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
