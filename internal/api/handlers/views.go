package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/homecooks/profitboard/internal/cache"
	"github.com/homecooks/profitboard/internal/domain"
	"github.com/homecooks/profitboard/internal/service"
)

type ViewsHandler struct {
	engine *service.Engine
	views  cache.ViewCache
}

func NewViewsHandler(engine *service.Engine, views cache.ViewCache) *ViewsHandler {
	return &ViewsHandler{engine: engine, views: views}
}

// parseFilter reads the shared view filter query params:
//
//	from=2026-01-01&to=2026-01-31  inclusive dispatch date range
//	days=mon,thu                   dispatch weekdays (D2C listing only)
//	all_days=true                  lift the weekday filter entirely
func (h *ViewsHandler) parseFilter(c *gin.Context) (domain.ViewFilter, bool) {
	var filter domain.ViewFilter

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date, want YYYY-MM-DD"})
			return filter, false
		}
		filter.From = t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date, want YYYY-MM-DD"})
			return filter, false
		}
		filter.To = t
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'to' date precedes 'from' date"})
		return filter, false
	}

	filter.All = c.Query("all_days") == "true"
	if raw := strings.TrimSpace(c.Query("days")); raw != "" && !filter.All {
		for _, part := range strings.Split(raw, ",") {
			day, ok := parseWeekday(part)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weekday " + strings.TrimSpace(part)})
				return filter, false
			}
			filter.Days = append(filter.Days, day)
		}
	}
	return filter, true
}

var weekdays = map[string]time.Weekday{
	"mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday, "sun": time.Sunday,
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > 3 {
		s = s[:3]
	}
	d, ok := weekdays[s]
	return d, ok
}

// serveCached runs compute behind the rendered-view cache. The filter key is
// the raw query string; generation-tagged keys make stale entries unreachable
// after a cache clear.
func (h *ViewsHandler) serveCached(c *gin.Context, channel string, compute func() (interface{}, error)) {
	ctx := c.Request.Context()
	gen := h.engine.Generation()
	filterKey := c.Request.URL.RawQuery

	if payload, ok, err := h.views.Get(ctx, channel, gen, filterKey); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("view cache read failed")
	} else if ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}

	view, err := compute()
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("view computation failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	payload, err := json.Marshal(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.views.Set(ctx, channel, gen, filterKey, payload); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("view cache write failed")
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}

func (h *ViewsHandler) GetD2CView(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	h.serveCached(c, "d2c", func() (interface{}, error) {
		return h.engine.D2CView(c.Request.Context(), filter)
	})
}

func (h *ViewsHandler) GetRetailView(c *gin.Context) {
	filter, ok := h.parseFilter(c)
	if !ok {
		return
	}
	h.serveCached(c, "retail", func() (interface{}, error) {
		return h.engine.RetailView(c.Request.Context(), filter)
	})
}

func (h *ViewsHandler) GetGoPuffView(c *gin.Context) {
	weekOffset := 0
	if raw := strings.TrimSpace(c.Query("week_offset")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'week_offset', want a non-negative integer"})
			return
		}
		weekOffset = n
	}
	h.serveCached(c, "gopuff", func() (interface{}, error) {
		return h.engine.GoPuffView(c.Request.Context(), weekOffset)
	})
}

func (h *ViewsHandler) ClearCache(c *gin.Context) {
	status := h.engine.ClearCache()
	if err := h.views.InvalidateAll(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("view cache invalidation failed")
	}
	c.JSON(http.StatusOK, status)
}

func (h *ViewsHandler) CacheStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Status())
}
