// Package pricing exposes the pricing service over HTTP.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/smartpark/core/logger"
	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/core/monitoring"
	"github.com/kilianp07/smartpark/core/prediction"
	corepricing "github.com/kilianp07/smartpark/core/pricing"
)

// Service is the subset of pricing.Service used by the handlers.
type Service interface {
	Schedule(ctx context.Context) (model.WeeklySchedule, error)
	Day(ctx context.Context, name string) (string, []model.ScheduleEntry, error)
	Current(ctx context.Context) (model.CurrentTier, error)
	Peaks(ctx context.Context, k int) (model.PeakReport, error)
	PricingConfig() model.PricingConfig
	Provider() prediction.Provider
}

// Options configures a Handler.
type Options struct {
	Service Service
	// ProviderName is reported by /api/model/info.
	ProviderName string
	// PeakCount is used when /api/peaks has no k parameter.
	PeakCount int
	Logger    logger.Logger
	Now       func() time.Time
}

// Handler serves the REST API.
type Handler struct {
	svc       Service
	provider  string
	peakCount int
	log       logger.Logger
	now       func() time.Time
}

// NewHandler returns a handler for opts.
func NewHandler(opts Options) *Handler {
	if opts.PeakCount <= 0 {
		opts.PeakCount = corepricing.DefaultPeakCount
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Handler{
		svc:       opts.Service,
		provider:  opts.ProviderName,
		peakCount: opts.PeakCount,
		log:       opts.Logger,
		now:       opts.Now,
	}
}

// Register mounts the routes under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/health", h.health)
	api.GET("/pricing/current", h.current)
	api.GET("/pricing/schedule", h.schedule)
	api.GET("/peaks", h.peaks)
	api.GET("/forecast", h.forecast)
	api.GET("/model/info", h.modelInfo)
}

// NewRouter returns a gin engine with recovery, request logging and the
// pricing routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())
	h.Register(r)
	return r
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debugw("http request", map[string]any{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Smart Parking API is running",
		"timestamp": h.now().Format(time.RFC3339),
	})
}

func (h *Handler) current(c *gin.Context) {
	cur, err := h.svc.Current(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cur)
}

func (h *Handler) schedule(c *gin.Context) {
	s, err := h.svc.Schedule(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) peaks(c *gin.Context) {
	k := h.peakCount
	if raw := c.Query("k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, fmt.Errorf("%w: %q", corepricing.ErrInvalidK, raw))
			return
		}
		k = v
	}
	report, err := h.svc.Peaks(c.Request.Context(), k)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) forecast(c *gin.Context) {
	day, entries, err := h.svc.Day(c.Request.Context(), c.Query("day"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{day: entries})
}

func (h *Handler) modelInfo(c *gin.Context) {
	resp := gin.H{
		"model_type": h.provider,
		"config":     h.svc.PricingConfig(),
	}
	if d, ok := h.svc.Provider().(prediction.Describer); ok {
		info, err := d.Describe(c.Request.Context())
		if err != nil {
			h.fail(c, err)
			return
		}
		resp["model"] = info
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	switch {
	case status == http.StatusServiceUnavailable:
		h.log.Warnf("%s: %v", c.FullPath(), err)
	case status >= http.StatusInternalServerError:
		h.log.Errorf("%s: %v", c.FullPath(), err)
		monitoring.CaptureException(err, map[string]string{"module": "api", "path": c.FullPath()})
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, prediction.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, corepricing.ErrInvalidK), errors.Is(err, corepricing.ErrUnknownDay):
		return http.StatusBadRequest
	case errors.Is(err, corepricing.ErrNoMatchingEntry):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
