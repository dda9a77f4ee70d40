package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusTargetSet       = "target_set"
	statusStateSet        = "state_set"
	statusProgramEnabled  = "program_enabled"
	statusProgramDisabled = "program_disabled"
)

// TargetTemperatureRequest is the payload for setting the target temperature.
type TargetTemperatureRequest struct {
	// Degrees Celsius; rounded to the nearest half degree
	Temperature float64 `json:"temperature" example:"21.5"`
}

// StateRequest is the payload for switching the temperature preset.
type StateRequest struct {
	// One of comfort, home, sleep, away
	State         string `json:"state" example:"away"`
	ResumeProgram bool   `json:"resume_program"`
}

// @Summary      Set target temperature
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "Device id"
// @Param        body  body      TargetTemperatureRequest  true  "Target"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      504   {object}  map[string]string
// @Router       /api/v1/devices/{id}/target-temperature [post]
// @Security     BearerAuth
func (h *Handler) setTargetTemperature(c *gin.Context) {
	id := c.Param("id")
	var req TargetTemperatureRequest
	if !h.bindOrBadRequest(c, &req) {
		return
	}
	if err := h.services.SetTargetTemperature(c.Request.Context(), id, req.Temperature); err != nil {
		h.serviceError(c, "target_temperature_failed", err, "device_id", id, "temperature", req.Temperature)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusTargetSet, "temperature": req.Temperature})
}

// @Summary      Set temperature state
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        id    path      string        true  "Device id"
// @Param        body  body      StateRequest  true  "State"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      504   {object}  map[string]string
// @Router       /api/v1/devices/{id}/state [post]
// @Security     BearerAuth
func (h *Handler) setState(c *gin.Context) {
	id := c.Param("id")
	var req StateRequest
	if !h.bindOrBadRequest(c, &req) {
		return
	}
	if err := h.services.SetState(c.Request.Context(), id, req.State, req.ResumeProgram); err != nil {
		h.serviceError(c, "temperature_state_failed", err, "device_id", id, "state", req.State)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStateSet, "state": req.State})
}

// @Summary      Resume the weekly program
// @Tags         thermostat
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/devices/{id}/program/enable [post]
// @Security     BearerAuth
func (h *Handler) enableProgram(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.EnableProgram(c.Request.Context(), id); err != nil {
		h.serviceError(c, "program_enable_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusProgramEnabled})
}

// @Summary      Stop the weekly program
// @Tags         thermostat
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/v1/devices/{id}/program/disable [post]
// @Security     BearerAuth
func (h *Handler) disableProgram(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.DisableProgram(c.Request.Context(), id); err != nil {
		h.serviceError(c, "program_disable_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusProgramDisabled})
}
