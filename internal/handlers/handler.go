package handlers

import (
	"net/http"

	_ "toon_bridge/docs"
	"toon_bridge/internal/logger"
	"toon_bridge/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const statusOK = "ok"

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger

	metricsPath    string
	metricsHandler http.Handler
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// WithMetrics exposes h on path next to the API.
func (h *Handler) WithMetrics(path string, handler http.Handler) *Handler {
	h.metricsPath = path
	h.metricsHandler = handler
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)
	if h.metricsHandler != nil {
		router.GET(h.metricsPath, gin.WrapH(h.metricsHandler))
	}

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerDeviceRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	devices := api.Group("/devices")
	{
		devices.GET("", h.listDevices)
		devices.POST("", h.addDevice)
		devices.POST("/probe", h.probeDevice)

		devices.GET("/:id", h.getDevice)
		devices.DELETE("/:id", h.removeDevice)
		devices.PUT("/:id/address", h.updateAddress)

		devices.GET("/:id/capabilities", h.listCapabilities)
		devices.PUT("/:id/capabilities/:name", h.setCapability)

		// Body example: {"temperature":21.5}
		devices.POST("/:id/target-temperature", h.setTargetTemperature)
		// Body example: {"state":"away","resume_program":false}
		devices.POST("/:id/state", h.setState)
		devices.POST("/:id/program/enable", h.enableProgram)
		devices.POST("/:id/program/disable", h.disableProgram)

		devices.GET("/:id/flows/conditions/temperature_state_is", h.temperatureStateIs)
		devices.POST("/:id/flows/actions/:action", h.runFlowAction)

		devices.GET("/:id/ws", h.wsConnect)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
		logs.GET("/", h.getLogs)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
