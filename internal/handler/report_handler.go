package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"procurement/internal/middleware"
	"procurement/internal/model"
	"procurement/internal/report"
	"procurement/internal/service"
	"procurement/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService service.ReportService
	auth          *middleware.Auth
}

func NewReportHandler(reportService service.ReportService, auth *middleware.Auth) *ReportHandler {
	return &ReportHandler{reportService: reportService, auth: auth}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports", h.auth.RequireAuth())
	{
		reports.GET("/budget", h.Budget)
		reports.GET("/budget.xlsx", h.BudgetWorkbook)
		reports.GET("/grouping", middleware.RequireRole(model.RoleTaluka, model.RoleDistrict, model.RoleState), h.Grouping)
		reports.GET("/districts", middleware.RequireRole(model.RoleState), h.Districts)
	}
}

func modeFrom(c *gin.Context) report.Mode {
	return report.Mode(c.DefaultQuery("mode", string(report.ModeApproved)))
}

// Budget godoc
// @Summary      Cost rollup for the caller's subtree
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        mode  query     string  false  "approved (default) or projection"
// @Success      200   {object}  response.Response{data=report.CostReport}
// @Failure      400   {object}  response.Response
// @Router       /api/reports/budget [get]
func (h *ReportHandler) Budget(c *gin.Context) {
	rep, err := h.reportService.Budget(c.Request.Context(), middleware.CurrentUserID(c), modeFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rep))
}

// BudgetWorkbook godoc
// @Summary      Cost rollup as an XLSX workbook
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        mode  query  string  false  "approved (default) or projection"
// @Success      200   {file}  file
// @Router       /api/reports/budget.xlsx [get]
func (h *ReportHandler) BudgetWorkbook(c *gin.Context) {
	mode := modeFrom(c)
	data, err := h.reportService.BudgetWorkbook(c.Request.Context(), middleware.CurrentUserID(c), mode)
	if err != nil {
		writeError(c, err)
		return
	}
	filename := fmt.Sprintf("budget-%s-%s.xlsx", mode, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Grouping godoc
// @Summary      Requests grouped for the caller's tier
// @Description  state: district/taluka/facility; district: facility; taluka: facility/category
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/reports/grouping [get]
func (h *ReportHandler) Grouping(c *gin.Context) {
	grouping, err := h.reportService.Grouping(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, grouping))
}

// Districts godoc
// @Summary      Per-district cost rollups
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        mode  query     string  false  "approved (default) or projection"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /api/reports/districts [get]
func (h *ReportHandler) Districts(c *gin.Context) {
	rollup, err := h.reportService.Districts(c.Request.Context(), middleware.CurrentUserID(c), modeFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rollup))
}
