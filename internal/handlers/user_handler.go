package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the signed-in user's own pages.
type UserHandler struct {
	BaseHandler
	userService       services.UserService
	assignmentService services.AssignmentService
	reportService     services.ReportService
}

func NewUserHandler(
	userService services.UserService,
	assignmentService services.AssignmentService,
	reportService services.ReportService,
	logger utils.Logger,
) *UserHandler {
	return &UserHandler{
		BaseHandler:       NewBaseHandler(logger),
		userService:       userService,
		assignmentService: assignmentService,
		reportService:     reportService,
	}
}

// @Router /user/dashboard [get]
func (h *UserHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Profile updated", user)
}

// ListTrainings lists the user's assignments, optionally by status
// @Router /user/trainings [get]
func (h *UserHandler) ListTrainings(c *gin.Context) {
	var status *models.TrainingStatus
	if s := c.Query("status"); s != "" {
		ts := models.TrainingStatus(s)
		status = &ts
	}

	assignments, err := h.assignmentService.ListForUser(c.Request.Context(), h.principal(c), status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// @Router /user/trainings/{training_id} [get]
func (h *UserHandler) TrainingDetail(c *gin.Context) {
	trainingID := h.parseIDParam(c, "training_id")
	if trainingID == 0 {
		return
	}

	detail, err := h.assignmentService.TrainingDetail(c.Request.Context(), h.principal(c), trainingID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// @Router /user/trainings/{training_id}/start [post]
func (h *UserHandler) StartTraining(c *gin.Context) {
	trainingID := h.parseIDParam(c, "training_id")
	if trainingID == 0 {
		return
	}

	h.LogRequest(c, "Starting training", "training_id", trainingID)
	assignment, err := h.assignmentService.Start(c.Request.Context(), h.principal(c), trainingID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Training started", assignment)
}

// @Router /user/trainings/{training_id}/complete [post]
func (h *UserHandler) CompleteTraining(c *gin.Context) {
	trainingID := h.parseIDParam(c, "training_id")
	if trainingID == 0 {
		return
	}

	h.LogRequest(c, "Completing training", "training_id", trainingID)
	assignment, err := h.assignmentService.Complete(c.Request.Context(), h.principal(c), trainingID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Training completed", assignment)
}

// @Router /user/career-path [get]
func (h *UserHandler) CareerPath(c *gin.Context) {
	path, err := h.reportService.CareerPath(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, path)
}
