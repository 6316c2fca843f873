package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/training-service/internal/repositories"
	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/SAP-F-2025/training-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// CatalogHandler manages departments, levels, trainings and the training
// sections that place trainings into departments.
type CatalogHandler struct {
	BaseHandler
	departmentService services.DepartmentService
	levelService      services.LevelService
	trainingService   services.TrainingService
	sectionService    services.TrainingSectionService
}

func NewCatalogHandler(
	departmentService services.DepartmentService,
	levelService services.LevelService,
	trainingService services.TrainingService,
	sectionService services.TrainingSectionService,
	logger utils.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:       NewBaseHandler(logger),
		departmentService: departmentService,
		levelService:      levelService,
		trainingService:   trainingService,
		sectionService:    sectionService,
	}
}

// ===== DEPARTMENTS =====

// ListDepartments is also served publicly for the registration form.
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	departments, err := h.departmentService.List(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

func (h *CatalogHandler) GetDepartment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	department, err := h.departmentService.Get(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, department)
}

func (h *CatalogHandler) CreateDepartment(c *gin.Context) {
	var req services.DepartmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	department, err := h.departmentService.Create(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Department created", department)
}

func (h *CatalogHandler) UpdateDepartment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.DepartmentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	department, err := h.departmentService.Update(c.Request.Context(), h.principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Department updated", department)
}

func (h *CatalogHandler) DeleteDepartment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.departmentService.Delete(c.Request.Context(), h.principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Department deleted", nil)
}

// ===== LEVELS =====

func (h *CatalogHandler) ListLevels(c *gin.Context) {
	levels, err := h.levelService.List(c.Request.Context(), h.principal(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, levels)
}

func (h *CatalogHandler) GetLevel(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	level, err := h.levelService.Get(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, level)
}

func (h *CatalogHandler) CreateLevel(c *gin.Context) {
	var req services.LevelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	level, err := h.levelService.Create(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Level created", level)
}

func (h *CatalogHandler) UpdateLevel(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.LevelRequest
	if !h.bindJSON(c, &req) {
		return
	}
	level, err := h.levelService.Update(c.Request.Context(), h.principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Level updated", level)
}

func (h *CatalogHandler) DeleteLevel(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.levelService.Delete(c.Request.Context(), h.principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Level deleted", nil)
}

// ===== TRAININGS =====

// ListTrainings supports search, page, size, sort_by and sort_order.
func (h *CatalogHandler) ListTrainings(c *gin.Context) {
	limit, offset := pagination(c)
	filters := repositories.TrainingFilters{
		Search:    c.Query("search"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	result, err := h.trainingService.List(c.Request.Context(), h.principal(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CatalogHandler) GetTraining(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	training, err := h.trainingService.Get(c.Request.Context(), h.principal(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, training)
}

func (h *CatalogHandler) CreateTraining(c *gin.Context) {
	var req services.TrainingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	training, err := h.trainingService.Create(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Training created", training)
}

func (h *CatalogHandler) UpdateTraining(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	var req services.TrainingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	training, err := h.trainingService.Update(c.Request.Context(), h.principal(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Training updated", training)
}

func (h *CatalogHandler) DeleteTraining(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.trainingService.Delete(c.Request.Context(), h.principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Training deleted", nil)
}

// ===== TRAINING SECTIONS =====

func (h *CatalogHandler) ListSections(c *gin.Context) {
	filters := repositories.TrainingSectionFilters{
		DepartmentID: parseUintQueryPtr(c, "department_id"),
		TrainingID:   parseUintQueryPtr(c, "training_id"),
		LevelID:      parseUintQueryPtr(c, "level_id"),
	}
	sections, err := h.sectionService.List(c.Request.Context(), h.principal(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

func (h *CatalogHandler) CreateSection(c *gin.Context) {
	var req services.TrainingSectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	section, err := h.sectionService.Create(c.Request.Context(), h.principal(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Training section created", section)
}

func (h *CatalogHandler) DeleteSection(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	if err := h.sectionService.Delete(c.Request.Context(), h.principal(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Training section deleted", nil)
}
