package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procurement/internal/middleware"
	"procurement/internal/service"
	"procurement/pkg/response"
)

type DirectoryHandler struct {
	directoryService service.DirectoryService
	auth             *middleware.Auth
}

func NewDirectoryHandler(directoryService service.DirectoryService, auth *middleware.Auth) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService, auth: auth}
}

func (h *DirectoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api", h.auth.RequireAuth())
	{
		api.GET("/users/subordinates", h.Subordinates)
		api.GET("/directory/chain/:id", h.Chain)
	}
}

// Subordinates godoc
// @Summary      Direct reports of the caller
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.User}
// @Router       /api/users/subordinates [get]
func (h *DirectoryHandler) Subordinates(c *gin.Context) {
	users, err := h.directoryService.Subordinates(middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

// Chain godoc
// @Summary      Reporting chain of a user, root first
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=[]model.User}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/directory/chain/{id} [get]
func (h *DirectoryHandler) Chain(c *gin.Context) {
	chain, err := h.directoryService.Chain(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, chain))
}
