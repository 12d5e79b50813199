package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clientdesk/clientdesk/pkg/model"
	"github.com/clientdesk/clientdesk/pkg/store/postgres"
	redisclient "github.com/clientdesk/clientdesk/pkg/store/redis"
)

const (
	dashboardCacheKey = "crm:dashboard:billable_hours"
	dashboardCacheTTL = 5 * time.Minute
)

// DashboardHandler serves the billable-hours overview the admin dashboard
// renders: per active project the logged billable hours, the derived
// amount and the over-budget flag.
type DashboardHandler struct {
	projects *postgres.ProjectRepository
	redis    *redisclient.Client
	logger   *zap.Logger
}

func NewDashboardHandler(db *postgres.Store, redis *redisclient.Client, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		projects: postgres.NewProjectRepository(db.DB()),
		redis:    redis,
		logger:   logger,
	}
}

type dashboardResponse struct {
	Projects    []projectStatsRow `json:"projects"`
	GeneratedAt string            `json:"generated_at"`
}

type projectStatsRow struct {
	ProjectID      uint   `json:"project_id"`
	Name           string `json:"name"`
	ClientID       uint   `json:"client_id"`
	BillableHours  string `json:"billable_hours"`
	BillableAmount string `json:"billable_amount"`
	BudgetHours    *int   `json:"budget_hours,omitempty"`
	OverBudget     bool   `json:"over_budget"`
}

func (h *DashboardHandler) BillableHours(c *gin.Context) {
	ctx := c.Request.Context()

	if h.redis != nil {
		cached, err := h.redis.Client().Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var response dashboardResponse
			if json.Unmarshal(cached, &response) == nil {
				c.JSON(http.StatusOK, response)
				return
			}
		}
	}

	status := model.ProjectActive
	projects, _, err := h.projects.List(ctx, 0, &status, 100, 0)
	if err != nil {
		h.logger.Error("failed to list active projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
		return
	}

	rows := make([]projectStatsRow, 0, len(projects))
	for i := range projects {
		stats, err := h.projects.Stats(ctx, &projects[i])
		if err != nil {
			h.logger.Error("failed to compute project stats",
				zap.Uint("project_id", projects[i].ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build dashboard"})
			return
		}
		rows = append(rows, projectStatsRow{
			ProjectID:      projects[i].ID,
			Name:           projects[i].Name,
			ClientID:       projects[i].ClientID,
			BillableHours:  stats.BillableHours.String(),
			BillableAmount: stats.BillableAmount.String(),
			BudgetHours:    projects[i].BudgetHours,
			OverBudget:     stats.OverBudget,
		})
	}

	response := dashboardResponse{
		Projects:    rows,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if h.redis != nil {
		if payload, err := json.Marshal(response); err == nil {
			_ = h.redis.Client().Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL).Err()
		}
	}

	c.JSON(http.StatusOK, response)
}
