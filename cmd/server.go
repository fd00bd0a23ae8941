package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aegis-ai/aegis-sim/sim"
	"github.com/aegis-ai/aegis-sim/sim/monitor"
)

const shutdownTimeout = 5 * time.Second

// serveCmd runs the monitor on its interval and serves the dashboard API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitor and serve the dashboard HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging("info")
		cfg := mustLoadConfig(cmd)
		if cfg.Interval <= 0 {
			logrus.Fatalf("--interval must be > 0 for serve")
		}

		mon, err := cfg.NewMonitor()
		if err != nil {
			logrus.Fatalf("Failed to create monitor: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if logrus.GetLevel() < logrus.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:    addr,
			Handler: NewRouter(mon),
		}

		go func() {
			if err := mon.Run(ctx); err != nil {
				logrus.Errorf("monitor stopped: %v", err)
			}
		}()
		go func() {
			logrus.Infof("Serving on %s (tick every %s)", addr, cfg.Interval)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Fatalf("HTTP server failed: %v", err)
			}
		}()

		<-ctx.Done()
		logrus.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("HTTP shutdown: %v", err)
		}
	},
}

// api binds HTTP handlers to one Monitor.
type api struct {
	mon *monitor.Monitor
	now func() time.Time
}

// NewRouter builds the gin engine for the dashboard API.
func NewRouter(mon *monitor.Monitor) *gin.Engine {
	a := &api{mon: mon, now: time.Now}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), allowAllOrigins())

	router.GET("/healthz", a.health)

	v := router.Group("/api")
	{
		v.GET("/tick", a.tick)
		v.GET("/snapshot", a.snapshot)
		v.GET("/summary", a.summary)
		v.GET("/history/ml", a.mlHistory)
		v.GET("/history/llm", a.llmHistory)
		v.GET("/alerts", a.alerts)
		v.POST("/alerts/:id/ack", a.acknowledge)
		v.GET("/compliance", a.compliance)
		v.GET("/flags", a.flags)
		v.PUT("/flags", a.setFlags)
		v.POST("/flags/:name/toggle", a.toggleFlag)
		v.POST("/refresh", a.refresh)
	}
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.Debugf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// allowAllOrigins lets a browser dashboard on another port poll the API.
func allowAllOrigins() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (a *api) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// tick returns a one-shot reading that does not touch monitor state.
// Query: triggerDrift, triggerHallucination, triggerCost, triggerSafety
// (booleans) and an optional seed.
func (a *api) tick(c *gin.Context) {
	var flags sim.StressFlags
	params := []struct {
		key string
		dst *bool
	}{
		{"triggerDrift", &flags.Drift},
		{"triggerHallucination", &flags.Hallucination},
		{"triggerCost", &flags.Cost},
		{"triggerSafety", &flags.Safety},
	}
	for _, p := range params {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("%s: %q is not a boolean", p.key, raw)})
			return
		}
		*p.dst = v
	}

	now := a.now()
	s := now.UnixNano()
	if raw := c.Query("seed"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("seed: %q is not an integer", raw)})
			return
		}
		s = v
	}
	c.IndentedJSON(http.StatusOK, monitor.Sample(s, flags, now))
}

func (a *api) snapshot(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, a.mon.Snapshot())
}

func (a *api) summary(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, a.mon.Summary())
}

func (a *api) mlHistory(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, a.mon.MLHistory())
}

func (a *api) llmHistory(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, a.mon.LLMHistory())
}

func (a *api) alerts(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, a.mon.Alerts())
}

func (a *api) acknowledge(c *gin.Context) {
	id := c.Param("id")
	if !a.mon.Acknowledge(id) {
		c.IndentedJSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("alert %s not found", id)})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"id": id, "acknowledged": true})
}

func (a *api) compliance(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, a.mon.Snapshot().Compliance)
}

func (a *api) flags(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, a.mon.Flags())
}

func (a *api) setFlags(c *gin.Context) {
	var f sim.StressFlags
	if err := c.ShouldBindJSON(&f); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("invalid flags body: %v", err)})
		return
	}
	a.mon.SetFlags(f)
	c.IndentedJSON(http.StatusOK, a.mon.Flags())
}

func (a *api) toggleFlag(c *gin.Context) {
	if _, err := a.mon.Toggle(c.Param("name")); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, a.mon.Flags())
}

// refresh forces an immediate tick, like the dashboard's refresh button.
func (a *api) refresh(c *gin.Context) {
	a.mon.Tick()
	c.IndentedJSON(http.StatusOK, a.mon.Snapshot())
}
