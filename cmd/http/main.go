package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kubescape/go-logger"
	"github.com/kubescape/go-logger/helpers"
	v1 "github.com/kubescape/vulnintel/adapters/v1"
	"github.com/kubescape/vulnintel/config"
	"github.com/kubescape/vulnintel/controllers"
	"github.com/kubescape/vulnintel/core/domain"
	"github.com/kubescape/vulnintel/core/ports"
	"github.com/kubescape/vulnintel/core/services"
	"github.com/kubescape/vulnintel/internal/tools"
	"github.com/kubescape/vulnintel/repositories"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	ctx := context.Background()

	configDir := "/etc/config"
	if envPath := os.Getenv("CONFIG_DIR"); envPath != "" {
		configDir = envPath
	}

	c, err := config.LoadConfig(configDir)
	if err != nil {
		logger.L().Ctx(ctx).Fatal("load config error", helpers.Error(err))
	}
	logger.L().Info("config loaded",
		helpers.String("apiURL", c.APIURL),
		helpers.String("intelligenceAPIURL", c.IntelligenceAPIURL),
		helpers.String("highRiskRule", c.HighRiskRule),
		helpers.Int("pageSize", c.PageSize),
		helpers.Int("maxPages", c.MaxPages),
		helpers.String("gin", tools.PackageVersion("github.com/gin-gonic/gin")))

	// to enable otel, set OTEL_COLLECTOR_SVC=otel-collector:4317
	if otelHost, present := os.LookupEnv("OTEL_COLLECTOR_SVC"); present {
		ctx = logger.InitOtel("vulnintel",
			os.Getenv("RELEASE"),
			"",
			"",
			url.URL{Host: otelHost})
		defer logger.ShutdownOtel(ctx)
	}

	// cancelled on SIGINT/SIGTERM, stops auto refresh and the server
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cache ports.PageCache
	if c.CacheTTL > 0 {
		ttlCache := repositories.NewTTLCache(c.CacheTTL)
		defer ttlCache.Close()
		cache = ttlCache
	} else {
		cache = repositories.NewNoCache()
	}
	rule, err := c.Rule()
	if err != nil {
		logger.L().Ctx(ctx).Fatal("high risk rule error", helpers.Error(err))
	}
	feed := v1.NewFeedAdapter(c.APIURL, c.FeedTimeout, c.DetailTimeout, c.MaxRetries)
	service := services.NewDashboardService(feed, cache, rule, c.PageSize, c.MaxPages)
	controller := controllers.NewHTTPController(service, c.Workers, c.DemoData)

	// first page in the background, readiness reports when it arrived
	go func() {
		if err := service.Load(ctx, domain.LoadCommand{}); err != nil {
			logger.L().Ctx(ctx).Error("initial load failed", helpers.Error(err))
		}
	}()
	service.StartAutoRefresh(ctx, c.RefreshInterval, c.RefreshTimeout)

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(controller)

	srv := &http.Server{
		Addr:    c.ListenAddr,
		Handler: router,
	}

	go func() {
		logger.L().Info("starting server", helpers.String("addr", c.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Ctx(ctx).Fatal("router error", helpers.Error(err))
		}
	}()

	<-ctx.Done()

	stop()
	logger.L().Info("shutting down gracefully")

	// in-flight requests get 5 seconds
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.L().Ctx(ctx).Fatal("server forced to shutdown", helpers.Error(err))
	}

	// queued refresh jobs finish before exit
	controller.Shutdown()

	logger.L().Info("vulnintel exiting")
}

func newRouter(controller *controllers.HTTPController) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/v1/liveness", controller.Alive)
	router.GET("/v1/readiness", controller.Ready)

	group := router.Group("/v1")
	{
		group.Use(otelgin.Middleware("vulnintel-svc"))
		group.GET("/dashboard", controller.Dashboard)
		group.POST("/dashboard/refresh", controller.Refresh)
		group.POST("/dashboard/more", controller.LoadMore)
		group.GET("/vulnerabilities", controller.Vulnerabilities)
		group.GET("/cve/:id", controller.GetCVE)
	}
	return router
}
