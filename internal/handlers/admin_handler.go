package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves user administration, assignments, the overview page
// and the audit trail.
type AdminHandler struct {
	BaseHandler
	userService       services.UserService
	assignmentService services.AssignmentService
	reportService     services.ReportService
	auditService      services.AuditService
}

func NewAdminHandler(
	userService services.UserService,
	assignmentService services.AssignmentService,
	reportService services.ReportService,
	auditService services.AuditService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:       NewBaseHandler(logger),
		userService:       userService,
		assignmentService: assignmentService,
		reportService:     reportService,
		auditService:      auditService,
	}
}

// @Router /admin [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.reportService.AdminOverview(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// ===== USERS =====

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	filters := repositories.UserFilters{
		DepartmentID: parseUintQueryPtr(c, "department_id"),
		Search:       c.Query("search"),
		Limit:        limit,
		Offset:       offset,
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}
	if role := c.Query("role"); role != "" {
		r := models.UserRole(role)
		filters.Role = &r
	}
	if active := c.Query("is_active"); active != "" {
		if v, err := strconv.ParseBool(active); err == nil {
			filters.IsActive = &v
		}
	}

	result, err := h.userService.List(c.Request.Context(), h.principal(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "User created", user)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), h.principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "User updated", user)
}

func (h *AdminHandler) SetUserPassword(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.SetPasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.userService.SetPassword(c.Request.Context(), h.principal(c), id, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Password updated", nil)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), h.principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "User deleted", nil)
}

// ===== ASSIGNMENTS =====

// UserTrainingIDs returns the ids already assigned to a user.
func (h *AdminHandler) UserTrainingIDs(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	ids, err := h.assignmentService.AssignedTrainingIDs(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id, "training_ids": ids})
}

// AssignUserTrainings assigns trainings to the user in the path.
func (h *AdminHandler) AssignUserTrainings(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.AssignTrainingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.UserID = id
	h.assign(c, &req)
}

func (h *AdminHandler) ListAssignments(c *gin.Context) {
	limit, offset := pagination(c)
	filters := repositories.UserTrainingFilters{
		UserID:     parseUintQueryPtr(c, "user_id"),
		TrainingID: parseUintQueryPtr(c, "training_id"),
		Limit:      limit,
		Offset:     offset,
	}
	if s := c.Query("status"); s != "" {
		status := models.TrainingStatus(s)
		filters.Status = &status
	}

	result, err := h.assignmentService.ListAll(c.Request.Context(), h.principal(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateAssignments takes the user id from the body.
func (h *AdminHandler) CreateAssignments(c *gin.Context) {
	var req services.AssignTrainingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.assign(c, &req)
}

func (h *AdminHandler) assign(c *gin.Context, req *services.AssignTrainingsRequest) {
	h.LogRequest(c, "Assigning trainings", "target_user", req.UserID, "training_count", len(req.TrainingIDs))

	result, err := h.assignmentService.Assign(c.Request.Context(), h.principal(c), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if result.Assigned > 0 {
		status = http.StatusCreated
	}
	h.RespondWithSuccess(c, status, "Trainings assigned", result)
}

// ===== AUDIT =====

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit, offset := pagination(c)
	filters := repositories.AuditLogFilters{
		UserID:     parseUintQueryPtr(c, "user_id"),
		TargetType: c.Query("target_type"),
		DateFrom:   parseDateQuery(c, "date_from"),
		DateTo:     parseDateQuery(c, "date_to"),
		Limit:      limit,
		Offset:     offset,
	}
	if e := c.Query("event_type"); e != "" {
		event := models.AuditEventType(e)
		filters.EventType = &event
	}

	result, err := h.auditService.List(c.Request.Context(), h.principal(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// parseDateQuery accepts RFC 3339 timestamps or plain dates.
func parseDateQuery(c *gin.Context, param string) *time.Time {
	value := c.Query(param)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
