package handlers

import (
	"net/http"

	"toon_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusRemoved        = "removed"
	statusAddressUpdated = "address_updated"
)

// AddDeviceRequest is the payload for pairing a device.
type AddDeviceRequest struct {
	Name    string `json:"name" binding:"required" example:"Living room"`
	Address string `json:"address" binding:"required" example:"192.168.1.20"`
}

type addressRequest struct {
	Address string `json:"address" binding:"required"`
}

type capabilityRequest struct {
	Value any `json:"value"`
}

// @Summary      List paired devices
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	list, err := h.services.Devices.List(c.Request.Context())
	if err != nil {
		h.serviceError(c, "devices_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "devices": list})
}

// @Summary      Pair a device
// @Description  Stores the device and runs its initial status fetches in the background.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        body  body      AddDeviceRequest  true  "Device"
// @Success      201   {object}  models.Device
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/devices [post]
// @Security     BearerAuth
func (h *Handler) addDevice(c *gin.Context) {
	var req AddDeviceRequest
	if !h.bindOrBadRequest(c, &req) {
		return
	}
	d, err := h.services.Add(c.Request.Context(), service.AddDeviceParams{Name: req.Name, Address: req.Address})
	if err != nil {
		h.serviceError(c, "device_add_failed", err, "address", req.Address)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// @Summary      Test a connection
// @Description  Reads the thermostat at address once. Nothing is stored.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        body  body      addressRequest  true  "Address"
// @Success      200   {object}  service.ProbeResult
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      504   {object}  map[string]string
// @Router       /api/v1/devices/probe [post]
// @Security     BearerAuth
func (h *Handler) probeDevice(c *gin.Context) {
	var req addressRequest
	if !h.bindOrBadRequest(c, &req) {
		return
	}
	res, err := h.services.Probe(c.Request.Context(), req.Address)
	if err != nil {
		h.serviceError(c, "device_probe_failed", err, "address", req.Address)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Get device state
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  service.DeviceState
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [get]
// @Security     BearerAuth
func (h *Handler) getDevice(c *gin.Context) {
	id := c.Param("id")
	st, err := h.services.GetDeviceState(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "device_get_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Remove a device
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [delete]
// @Security     BearerAuth
func (h *Handler) removeDevice(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.Remove(c.Request.Context(), id); err != nil {
		h.serviceError(c, "device_remove_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusRemoved, "id": id})
}

// @Summary      Change a device address
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Device id"
// @Param        body  body      addressRequest  true  "New address"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{id}/address [put]
// @Security     BearerAuth
func (h *Handler) updateAddress(c *gin.Context) {
	id := c.Param("id")
	var req addressRequest
	if !h.bindOrBadRequest(c, &req) {
		return
	}
	if err := h.services.UpdateAddress(c.Request.Context(), id, req.Address); err != nil {
		h.serviceError(c, "device_address_update_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusAddressUpdated, "address": req.Address})
}

// @Summary      List capability values
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  map[string]interface{}  "count, capabilities"
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id}/capabilities [get]
// @Security     BearerAuth
func (h *Handler) listCapabilities(c *gin.Context) {
	id := c.Param("id")
	st, err := h.services.GetDeviceState(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, "capabilities_list_failed", err, "device_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(st.Capabilities), "capabilities": st.Capabilities})
}

// @Summary      Write a capability
// @Description  Only target_temperature and temperature_state accept writes.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Device id"
// @Param        name  path      string             true  "Capability"
// @Param        body  body      capabilityRequest  true  "Value"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Failure      504   {object}  map[string]string
// @Router       /api/v1/devices/{id}/capabilities/{name} [put]
// @Security     BearerAuth
func (h *Handler) setCapability(c *gin.Context) {
	id, name := c.Param("id"), c.Param("name")
	var req capabilityRequest
	if !h.bindOrBadRequest(c, &req) {
		return
	}
	if err := h.services.SetCapability(c.Request.Context(), id, name, req.Value); err != nil {
		h.serviceError(c, "capability_set_failed", err, "device_id", id, "capability", name)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK, "capability": name, "value": req.Value})
}
