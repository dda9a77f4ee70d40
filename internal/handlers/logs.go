package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"toon_bridge/internal/models"
	"toon_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid   = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errLoadLogs    = "failed to load logs"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

var eventTypes = map[string]bool{
	models.EventAvailable:     true,
	models.EventUnavailable:   true,
	models.EventCommand:       true,
	models.EventCommandFailed: true,
	models.EventPaired:        true,
	models.EventUnpaired:      true,
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List device events
// @Description  Filter by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'), type and device. A date-only 'to' covers the whole day.
// @Tags         logs
// @Produce      json
// @Param        from       query     string  false  "Start of range"  example(2025-08-01)
// @Param        to         query     string  false  "End of range. Date-only treated as end of day."  example(2025-08-31)
// @Param        type       query     string  false  "Event type"  Enums(AVAILABLE,UNAVAILABLE,COMMAND,COMMAND_FAILED,PAIRED,UNPAIRED)
// @Param        device_id  query     string  false  "Device id"
// @Success      200        {object}  map[string]interface{}  "count, events"
// @Failure      400        {object}  map[string]string
// @Failure      401        {object}  map[string]string
// @Failure      500        {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	var (
		from      time.Time
		to        time.Time
		eventType = strings.ToUpper(strings.TrimSpace(c.Query("type")))
		deviceID  = strings.TrimSpace(c.Query("device_id"))
		err       error
	)
	if qs := c.Query("from"); qs != "" {
		from, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = parseQueryTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "'from' must be <= 'to'"})
		return
	}
	if eventType != "" && !eventTypes[eventType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown event type %q", eventType)})
		return
	}

	events, err := h.services.EventLog.List(c.Request.Context(), service.LogFilter{
		From:     from,
		To:       to,
		Type:     eventType,
		DeviceID: deviceID,
	})
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errLoadLogs, "logs_list_failed", err,
			"from", from, "to", to, "type", eventType, "device_id", deviceID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

var errTimeFormat = errors.New("expected RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD'")

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: %w", s, errTimeFormat)
}
