package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/response"
)

type AssistantHandler struct {
	assistantService service.AssistantService
	auth             *middleware.Auth
}

func NewAssistantHandler(assistantService service.AssistantService, auth *middleware.Auth) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService, auth: auth}
}

func (h *AssistantHandler) RegisterRoutes(router *gin.RouterGroup) {
	assistant := router.Group("/api/assistant", h.auth.RequireAuth())
	{
		assistant.POST("/justification", h.DraftJustification)
		assistant.GET("/forecast", h.Forecast)
	}
}

// DraftJustification godoc
// @Summary      Draft a justification with the text generator
// @Tags         assistant
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.JustificationDTO  true  "Item details"
// @Success      200      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /api/assistant/justification [post]
func (h *AssistantHandler) DraftJustification(c *gin.Context) {
	var req service.JustificationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	text, err := h.assistantService.DraftJustification(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"text": text}))
}

// Forecast godoc
// @Summary      Budget forecast narrative for the caller's subtree
// @Tags         assistant
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /api/assistant/forecast [get]
func (h *AssistantHandler) Forecast(c *gin.Context) {
	text, err := h.assistantService.Forecast(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"text": text}))
}
