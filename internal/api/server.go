// Package api exposes the dashboard's HTTP surface: live status and
// mode, positions, per-user statistics, summary history and Prometheus
// metrics.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trading-dashboard/internal/analytics"
	"trading-dashboard/internal/ingest"
	"trading-dashboard/internal/interfaces"
	"trading-dashboard/internal/ledger"
	"trading-dashboard/internal/logger"
	"trading-dashboard/internal/models"
	"trading-dashboard/internal/summary"
	"trading-dashboard/internal/types"
)

// Server wraps an http.Server running the gin engine, with graceful
// startup and shutdown.
type Server struct {
	server *http.Server
	addr   string
}

// Deps holds everything the handlers read from. All fields are required
// except Containers, which may be nil when no container store exists.
type Deps struct {
	Ingest     *ingest.Service
	Ledger     *ledger.Ledger
	Positions  interfaces.PositionStore
	Summaries  *summary.Aggregator
	Analytics  *analytics.Service
	Containers interfaces.ContainerStore
}

func NewServer(addr string, deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	registerRoutes(engine, deps)

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: engine,
		},
		addr: addr,
	}
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	logger.Info(ctx, "Starting HTTP server", "addr", s.addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info(context.Background(), "HTTP server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

func registerRoutes(engine *gin.Engine, deps Deps) {
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := engine.Group("/api")
	apiGroup.GET("/status", statusHandler(deps))
	apiGroup.GET("/mode", modeHandler(deps))
	apiGroup.GET("/positions", positionsHandler(deps))
	apiGroup.GET("/trades/:period", tradesHandler(deps))
	apiGroup.GET("/stats/:user", statsHandler(deps))
	apiGroup.GET("/pnl/:user", pnlHandler(deps))
	apiGroup.GET("/comparison/:period", comparisonHandler(deps))
	apiGroup.GET("/history/:period", historyHandler(deps))
	apiGroup.GET("/containers", containersHandler(deps))
	apiGroup.POST("/refresh", refreshHandler(deps))
}

func statusHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := deps.Ingest.Snapshot()
		c.JSON(http.StatusOK, snap)
	}
}

func modeHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := deps.Ingest.Snapshot()
		c.JSON(http.StatusOK, gin.H{"mode": snap.Mode})
	}
}

func positionsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := interfaces.PositionFilter{
			User:   c.Query("user"),
			Status: c.DefaultQuery("status", types.StatusOpen),
		}
		positions, err := deps.Positions.ListPositions(c.Request.Context(), f)
		if err != nil {
			serverError(c, err)
			return
		}
		if positions == nil {
			positions = []models.Position{}
		}
		c.JSON(http.StatusOK, gin.H{"positions": positions, "count": len(positions)})
	}
}

func tradesHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		trades, err := deps.Analytics.TradeHistory(c.Request.Context(), c.Param("period"))
		if err != nil {
			serverError(c, err)
			return
		}
		if trades == nil {
			trades = []models.Position{}
		}
		c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
	}
}

func statsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.Param("user")
		period := c.DefaultQuery("period", "all")

		stats, err := deps.Analytics.UserStatsByPeriod(c.Request.Context(), user, period)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func pnlHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		series, err := deps.Analytics.DailyPnlSeries(c.Request.Context(), c.Param("user"), days)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"series": series})
	}
}

func comparisonHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cmp, err := deps.Analytics.Comparison(c.Request.Context(), c.Param("period"))
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, cmp)
	}
}

func historyHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		period := c.Param("period")
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "30"))
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}

		points, err := deps.Summaries.History(c.Request.Context(), period, limit)
		switch {
		case errors.Is(err, summary.ErrUnknownPeriod):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case err != nil:
			serverError(c, err)
		default:
			// An empty series comes back as an empty slice, never an error.
			c.JSON(http.StatusOK, gin.H{"period": period, "points": points})
		}
	}
}

func containersHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Containers == nil {
			c.JSON(http.StatusOK, gin.H{"containers": []models.ContainerStatus{}})
			return
		}
		containers, err := deps.Containers.ListContainers(c.Request.Context())
		if err != nil {
			serverError(c, err)
			return
		}
		if containers == nil {
			containers = []models.ContainerStatus{}
		}
		c.JSON(http.StatusOK, gin.H{"containers": containers})
	}
}

// refreshHandler forces an immediate parse pass outside the poll cycle.
func refreshHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.Ingest.Run(c.Request.Context()); err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
	}
}

func serverError(c *gin.Context, err error) {
	logger.ErrorWithErr(c.Request.Context(), "Request failed", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
