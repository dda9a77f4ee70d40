package handlers

import (
	"net/http"

	"toon_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

const statusActionDone = "action_done"

// @Summary      Temperature state condition
// @Tags         flows
// @Produce      json
// @Param        id     path      string  true  "Device id"
// @Param        state  query     string  true  "Expected state"
// @Success      200    {object}  map[string]bool
// @Failure      404    {object}  map[string]string
// @Router       /api/v1/devices/{id}/flows/conditions/temperature_state_is [get]
// @Security     BearerAuth
func (h *Handler) temperatureStateIs(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.services.TemperatureStateIs(c.Request.Context(), id, c.Query("state"))
	if err != nil {
		h.serviceError(c, "flow_condition_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": ok})
}

// @Summary      Run a flow action
// @Description  update_* actions refresh one status endpoint and never fail on device errors.
// @Tags         flows
// @Accept       json
// @Produce      json
// @Param        id      path      string        true   "Device id"
// @Param        action  path      string        true   "Action"  Enums(set_temperature_state,enable_program,disable_program,update_status,update_powerusage,update_metertotals,update_water)
// @Param        body    body      StateRequest  false  "Arguments of set_temperature_state"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /api/v1/devices/{id}/flows/actions/{action} [post]
// @Security     BearerAuth
func (h *Handler) runFlowAction(c *gin.Context) {
	id, action := c.Param("id"), c.Param("action")
	var req StateRequest
	if c.Request.ContentLength > 0 && !h.bindOrBadRequest(c, &req) {
		return
	}
	args := service.FlowArgs{State: req.State, ResumeProgram: req.ResumeProgram}
	if err := h.services.RunAction(c.Request.Context(), id, action, args); err != nil {
		h.serviceError(c, "flow_action_failed", err, "device_id", id, "action", action)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusActionDone, "action": action})
}
