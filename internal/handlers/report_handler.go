package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// DepartmentTrainings reports assignment and completion counts for every
// training placed in a department
// @Router /reports/department-trainings [get]
func (h *ReportHandler) DepartmentTrainings(c *gin.Context) {
	departmentID := parseUintQueryPtr(c, "department_id")
	if departmentID == nil {
		h.RespondWithError(c, http.StatusBadRequest, "department_id is required", nil)
		return
	}

	report, err := h.reportService.DepartmentReport(c.Request.Context(), h.principal(c), *departmentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportDepartmentTrainings streams the department report as a workbook
// @Router /reports/department-trainings/{department_id}/export [get]
func (h *ReportHandler) ExportDepartmentTrainings(c *gin.Context) {
	departmentID := h.parseIDParam(c, "department_id")
	if departmentID == 0 {
		return
	}

	data, filename, err := h.reportService.ExportDepartmentReport(c.Request.Context(), h.principal(c), departmentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Department report exported", "department_id", departmentID, "bytes", len(data))
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
