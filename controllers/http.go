package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/core/ports"
	"github.com/kubescape/vulnintel/core/services"
	"github.com/kubescape/vulnintel/internal/tools"
	"schneider.vip/problem"
)

const descriptionLength = 120

// HTTPController maps DashboardService ports to gin handlers that can be mapped to paths and methods
// this mapping is usually done in main()
type HTTPController struct {
	dashboardService ports.DashboardService
	workerPool       *workerpool.WorkerPool
	demo             bool
}

// NewHTTPController initializes the HTTPController struct with the injected dashboardService
func NewHTTPController(dashboardService ports.DashboardService, concurrency int, demo bool) *HTTPController {
	return &HTTPController{
		dashboardService: dashboardService,
		workerPool:       workerpool.New(concurrency),
		demo:             demo,
	}
}

// VulnerabilityRow is the list view of a vulnerability
type VulnerabilityRow struct {
	CVEID         string          `json:"cve_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Severity      domain.Severity `json:"severity"`
	SeverityLabel string          `json:"severity_label"`
	SeverityColor string          `json:"severity_color"`
	Status        domain.Status   `json:"status"`
	StatusLabel   string          `json:"status_label"`
	StatusColor   string          `json:"status_color"`
	CVSSScore     float64         `json:"cvss_score"`
	EPSSScore     float64         `json:"epss_score"`
	RiskScore     float64         `json:"risk_score"`
	IsKEV         bool            `json:"is_kev"`
	HasPoC        bool            `json:"has_poc"`
	Vendor        string          `json:"vendor"`
	PublishedDate time.Time       `json:"published_date"`
}

func toRow(v domain.Vulnerability) VulnerabilityRow {
	return VulnerabilityRow{
		CVEID:         v.CVEID,
		Title:         v.Title,
		Description:   tools.Ellipsis(v.Description, descriptionLength),
		Severity:      v.Severity,
		SeverityLabel: domain.SeverityLabel(v.Severity),
		SeverityColor: domain.SeverityColor(v.Severity),
		Status:        v.Status,
		StatusLabel:   domain.StatusLabel(v.Status),
		StatusColor:   domain.StatusColor(v.Status),
		CVSSScore:     v.CVSSScore.Float(),
		EPSSScore:     v.EPSSScore.Float(),
		RiskScore:     v.RiskScore,
		IsKEV:         v.IsKEV,
		HasPoC:        v.HasPoC,
		Vendor:        v.VendorOrFamily(),
		PublishedDate: v.PublishedDate,
	}
}

// Alive returns 200 OK
func (h HTTPController) Alive(c *gin.Context) {
	problem.Of(http.StatusOK).WriteTo(c.Writer)
}

// Ready calls dashboardService.Ready
func (h HTTPController) Ready(c *gin.Context) {
	if !h.dashboardService.Ready(c.Request.Context()) {
		problem.Of(http.StatusServiceUnavailable).WriteTo(c.Writer)
		return
	}

	problem.Of(http.StatusOK).WriteTo(c.Writer)
}

// Dashboard returns every aggregate of the loaded set, ?demo=true overlays placeholder data
func (h HTTPController) Dashboard(c *gin.Context) {
	demo := h.demo
	if q, ok := c.GetQuery("demo"); ok {
		var err error
		if demo, err = strconv.ParseBool(q); err != nil {
			problem.Of(http.StatusBadRequest).Append(problem.Detailf("demo=%s", q)).WriteTo(c.Writer)
			return
		}
	}

	d := h.dashboardService.Dashboard(c.Request.Context())
	if demo {
		d = services.ApplyDemoData(d)
	}
	c.JSON(http.StatusOK, d)
}

// Vulnerabilities lists the loaded set in priority order
func (h HTTPController) Vulnerabilities(c *gin.Context) {
	var filter domain.VulnerabilityFilter
	if q, ok := c.GetQuery("highRisk"); ok {
		highRisk, err := strconv.ParseBool(q)
		if err != nil {
			problem.Of(http.StatusBadRequest).Append(problem.Detailf("highRisk=%s", q)).WriteTo(c.Writer)
			return
		}
		filter.HighRiskOnly = highRisk
	}
	if q, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(q)
		if err != nil || limit < 0 {
			problem.Of(http.StatusBadRequest).Append(problem.Detailf("limit=%s", q)).WriteTo(c.Writer)
			return
		}
		filter.Limit = limit
	}

	vulns := h.dashboardService.Vulnerabilities(c.Request.Context(), filter)
	rows := make([]VulnerabilityRow, 0, len(vulns))
	for _, v := range vulns {
		rows = append(rows, toRow(v))
	}
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "items": rows})
}

// GetCVE calls dashboardService.GetCVE
func (h HTTPController) GetCVE(c *gin.Context) {
	cveID := c.Param("id")
	details := problem.Detailf("CVEID=%s", cveID)

	cve, err := h.dashboardService.GetCVE(c.Request.Context(), cveID)
	if err != nil {
		logger.L().Ctx(c.Request.Context()).Error("service error", helpers.Error(err),
			helpers.String("cveID", cveID))
		problem.Of(statusFromError(err)).Append(details).WriteTo(c.Writer)
		return
	}

	c.JSON(http.StatusOK, cve)
}

// Refresh unmarshalls the payload and queues dashboardService.Load on the worker pool
func (h HTTPController) Refresh(c *gin.Context) {
	var cmd domain.LoadCommand
	err := c.ShouldBindJSON(&cmd)
	if err != nil && !errors.Is(err, io.EOF) {
		logger.L().Ctx(c.Request.Context()).Error("handler error", helpers.Error(err))
		problem.Of(http.StatusBadRequest).WriteTo(c.Writer)
		return
	}

	jobID := uuid.NewString()
	details := problem.Detailf("JobID=%s, Search=%s", jobID, cmd.Search)

	ctx := context.WithoutCancel(c.Request.Context())
	h.workerPool.Submit(func() {
		logger.L().Info("refresh started", helpers.String("jobID", jobID),
			helpers.String("search", cmd.Search))
		if err := h.dashboardService.Load(ctx, cmd); err != nil {
			logger.L().Ctx(ctx).Error("refresh failed", helpers.Error(err),
				helpers.String("jobID", jobID))
			return
		}
		logger.L().Info("refresh done", helpers.String("jobID", jobID))
	})

	problem.Of(http.StatusAccepted).Append(details).WriteTo(c.Writer)
}

// LoadMore calls dashboardService.LoadMore and returns the loader status
func (h HTTPController) LoadMore(c *gin.Context) {
	err := h.dashboardService.LoadMore(c.Request.Context())
	if err != nil {
		logger.L().Ctx(c.Request.Context()).Error("service error", helpers.Error(err))
		problem.Of(statusFromError(err)).Append(problem.Detailf("%s", err)).WriteTo(c.Writer)
		return
	}

	c.JSON(http.StatusOK, h.dashboardService.Dashboard(c.Request.Context()).Loader)
}

// Shutdown waits for queued refresh jobs and stops the worker pool
func (h HTTPController) Shutdown() {
	logger.L().Info("purging refresh queue", helpers.Int("waiting", h.workerPool.WaitingQueueSize()))
	h.workerPool.StopWait()
}

func statusFromError(err error) int {
	var apiErr *domain.APIError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLoadInProgress), errors.Is(err, domain.ErrStaleResponse):
		return http.StatusConflict
	case errors.As(err, &apiErr), errors.Is(err, domain.ErrConnectionExpired):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
