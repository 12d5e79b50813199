package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/metrics"
	"github.com/clientdesk/clientdesk/pkg/model"
	"github.com/clientdesk/clientdesk/pkg/store/postgres"
)

type ProjectHandler struct {
	repo   *postgres.ProjectRepository
	logger *zap.Logger
}

func NewProjectHandler(db *postgres.Store, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{repo: postgres.NewProjectRepository(db.DB()), logger: logger}
}

// Decimal fields travel as strings ("150.00") to keep the JSON exact.
type projectRequest struct {
	ClientID    uint   `json:"client_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status"`
	RateType    string `json:"rate_type"`
	HourlyRate  string `json:"hourly_rate"`
	FixedPrice  string `json:"fixed_price"`
	BudgetHours *int   `json:"budget_hours"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

type projectResponse struct {
	ID          uint    `json:"id"`
	ClientID    uint    `json:"client_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	RateType    string  `json:"rate_type"`
	HourlyRate  *string `json:"hourly_rate,omitempty"`
	FixedPrice  *string `json:"fixed_price,omitempty"`
	BudgetHours *int    `json:"budget_hours,omitempty"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	Active      bool    `json:"active"`
}

type projectStatsResponse struct {
	ProjectID      uint   `json:"project_id"`
	BillableHours  string `json:"billable_hours"`
	BillableAmount string `json:"billable_amount"`
	OverBudget     bool   `json:"over_budget"`
	Active         bool   `json:"active"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	project, ok := h.buildProject(c, &req, &model.Project{})
	if !ok {
		return
	}

	if err := h.repo.Create(c.Request.Context(), project); err != nil {
		h.logger.Error("failed to create project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	metrics.RecordsCreated.WithLabelValues("project").Inc()
	c.JSON(http.StatusCreated, mapProject(project))
}

// buildProject applies a request onto a project record, validating enums,
// dates and decimal fields. It writes the error response itself.
func (h *ProjectHandler) buildProject(c *gin.Context, req *projectRequest, project *model.Project) (*model.Project, bool) {
	status := model.ProjectActive
	if req.Status != "" {
		status = model.ProjectStatus(req.Status)
		if !model.ValidProjectStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return nil, false
		}
	}

	rateType := model.RateHourly
	if req.RateType != "" {
		rateType = model.RateType(req.RateType)
		if !model.ValidRateType(rateType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate_type"})
			return nil, false
		}
	}

	var hourlyRate, fixedPrice *decimal.Decimal
	if req.HourlyRate != "" {
		rate, ok := parseAmount(req.HourlyRate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hourly_rate"})
			return nil, false
		}
		hourlyRate = &rate
	}
	if req.FixedPrice != "" {
		price, ok := parseAmount(req.FixedPrice)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fixed_price"})
			return nil, false
		}
		fixedPrice = &price
	}

	// The rate type selects which price field is meaningful; the other one
	// is dropped the way the admin form clears it.
	switch rateType {
	case model.RateHourly:
		fixedPrice = nil
	case model.RateFixed:
		hourlyRate = nil
	default:
		hourlyRate = nil
		fixedPrice = nil
	}

	startDate, ok := parseDate(req.StartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return nil, false
	}
	endDate, ok := parseDate(req.EndDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return nil, false
	}

	project.ClientID = req.ClientID
	project.Name = req.Name
	project.Description = req.Description
	project.Status = status
	project.RateType = rateType
	project.HourlyRate = hourlyRate
	project.FixedPrice = fixedPrice
	project.BudgetHours = req.BudgetHours
	project.StartDate = startDate
	project.EndDate = endDate

	return project, true
}

func (h *ProjectHandler) List(c *gin.Context) {
	var clientID uint
	if value := c.Query("client_id"); value != "" {
		parsed, ok := parseID(value)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
			return
		}
		clientID = parsed
	}

	var status *model.ProjectStatus
	if value := c.Query("status"); value != "" {
		parsed := model.ProjectStatus(value)
		if !model.ValidProjectStatus(parsed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		status = &parsed
	}

	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	projects, total, err := h.repo.List(c.Request.Context(), clientID, status, limit, offset)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list projects"})
		return
	}

	response := make([]projectResponse, 0, len(projects))
	for i := range projects {
		response = append(response, mapProject(&projects[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": response,
		"total":    total,
	})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	project, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("failed to get project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get project"})
		return
	}

	c.JSON(http.StatusOK, mapProject(project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	project, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("failed to load project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	if _, ok := h.buildProject(c, &req, project); !ok {
		return
	}

	if err := h.repo.Update(c.Request.Context(), project); err != nil {
		h.logger.Error("failed to update project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	c.JSON(http.StatusOK, mapProject(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var err error
	if c.Query("hard") == "true" {
		err = h.repo.HardDelete(c.Request.Context(), id)
	} else {
		err = h.repo.SoftDelete(c.Request.Context(), id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("failed to delete project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Stats reports the billing view of a project: billable hours and amount
// derived from its time entries, plus the over-budget check.
func (h *ProjectHandler) Stats(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	project, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("failed to get project", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get project"})
		return
	}

	stats, err := h.repo.Stats(c.Request.Context(), project)
	if err != nil {
		h.logger.Error("failed to compute project stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute project stats"})
		return
	}

	c.JSON(http.StatusOK, projectStatsResponse{
		ProjectID:      project.ID,
		BillableHours:  stats.BillableHours.String(),
		BillableAmount: stats.BillableAmount.String(),
		OverBudget:     stats.OverBudget,
		Active:         stats.Active,
	})
}

func mapProject(project *model.Project) projectResponse {
	response := projectResponse{
		ID:          project.ID,
		ClientID:    project.ClientID,
		Name:        project.Name,
		Description: project.Description,
		Status:      string(project.Status),
		RateType:    string(project.RateType),
		BudgetHours: project.BudgetHours,
		StartDate:   formatDate(project.StartDate),
		EndDate:     formatDate(project.EndDate),
		Active:      project.IsActive(),
	}
	if project.HourlyRate != nil {
		rate := project.HourlyRate.StringFixed(2)
		response.HourlyRate = &rate
	}
	if project.FixedPrice != nil {
		price := project.FixedPrice.StringFixed(2)
		response.FixedPrice = &price
	}
	return response
}
