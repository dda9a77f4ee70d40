package handlers

import (
	"errors"
	"net/http"

	"toon_bridge/internal/service"
	"toon_bridge/internal/toon"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidBodyPref = "invalid body: "
	errDeviceTimeout   = "device did not respond"
	errInternal        = "internal error"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service errors to an HTTP status and a message safe to return.
func statusFor(err error) (int, string) {
	var (
		rejected *toon.DeviceRejectedError
		comm     *toon.CommunicationError
	)
	switch {
	case errors.Is(err, toon.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDeviceNotFound):
		return http.StatusNotFound, err.Error()
	case errors.As(err, &rejected):
		return http.StatusBadGateway, rejected.Message
	case errors.Is(err, toon.ErrMalformedPayload):
		return http.StatusBadGateway, err.Error()
	case errors.As(err, &comm):
		return http.StatusGatewayTimeout, errDeviceTimeout
	}
	return http.StatusInternalServerError, errInternal
}

func (h *Handler) serviceError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	code, msg := statusFor(err)
	h.logAndJSONError(c, code, msg, logKey, err, kv...)
}

func (h *Handler) bindOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}
