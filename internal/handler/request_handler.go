package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/service"
	"procurement/pkg/pagination"
	"procurement/pkg/response"
)

type RequestHandler struct {
	procurementService service.ProcurementService
	auth               *middleware.Auth
}

func NewRequestHandler(procurementService service.ProcurementService, auth *middleware.Auth) *RequestHandler {
	return &RequestHandler{procurementService: procurementService, auth: auth}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests", h.auth.RequireAuth())
	{
		requests.POST("", middleware.RequireRole(model.RoleBase), h.Submit)
		requests.GET("", h.ListVisible)
		requests.GET("/mine", h.ListMine)
		requests.GET("/:id", h.Get)
		requests.GET("/:id/audit", h.AuditTrail)
		requests.PUT("/:id/approve", h.Approve)
		requests.PUT("/:id/reject", h.Reject)
	}
	router.GET("/api/activity", h.auth.RequireAuth(), h.Activity)
}

// Submit godoc
// @Summary      Submit a procurement request
// @Description  Facility users raise a request; it starts at Pending Taluka Approval
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitRequestDTO  true  "Request"
// @Success      201      {object}  response.Response{data=model.ProcurementRequest}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	var req service.SubmitRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	created, err := h.procurementService.Submit(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// ListVisible godoc
// @Summary      Requests awaiting the caller
// @Description  Facilities see their own requests; approvers see their tier's pending queue
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Page{data=[]model.ProcurementRequest}
// @Router       /api/requests [get]
func (h *RequestHandler) ListVisible(c *gin.Context) {
	p := pagination.Parse(c)

	requests, total, err := h.procurementService.ListVisible(c.Request.Context(), middleware.CurrentUserID(c), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paged(http.StatusOK, requests, total, p.Page, p.Limit))
}

// ListMine godoc
// @Summary      Requests submitted by the caller
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ProcurementRequest}
// @Router       /api/requests/mine [get]
func (h *RequestHandler) ListMine(c *gin.Context) {
	requests, err := h.procurementService.ListMine(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// Get godoc
// @Summary      Get a request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.ProcurementRequest}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.procurementService.Get(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// AuditTrail godoc
// @Summary      Audit history of a request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=[]model.AuditEntry}
// @Router       /api/requests/{id}/audit [get]
func (h *RequestHandler) AuditTrail(c *gin.Context) {
	entries, err := h.procurementService.AuditTrail(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// Approve godoc
// @Summary      Approve the request at the caller's tier
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true   "Request ID"
// @Param        payload  body      service.DecisionDTO  false  "Optional comment"
// @Success      200      {object}  response.Response{data=model.ProcurementRequest}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/approve [put]
func (h *RequestHandler) Approve(c *gin.Context) {
	var body service.DecisionDTO
	if err := bindOptionalJSON(c, &body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	updated, err := h.procurementService.Approve(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), body.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// Reject godoc
// @Summary      Reject the request at the caller's tier
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true   "Request ID"
// @Param        payload  body      service.DecisionDTO  false  "Rejection comment"
// @Success      200      {object}  response.Response{data=model.ProcurementRequest}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/requests/{id}/reject [put]
func (h *RequestHandler) Reject(c *gin.Context) {
	var body service.DecisionDTO
	if err := bindOptionalJSON(c, &body); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	updated, err := h.procurementService.Reject(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c), body.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, updated))
}

// Activity godoc
// @Summary      Recent audit entries across the caller's hierarchy
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.Page{data=[]model.AuditEntry}
// @Router       /api/activity [get]
func (h *RequestHandler) Activity(c *gin.Context) {
	p := pagination.Parse(c)

	entries, total, err := h.procurementService.Activity(c.Request.Context(), middleware.CurrentUserID(c), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, entries, total, p.Page, p.Limit))
}
