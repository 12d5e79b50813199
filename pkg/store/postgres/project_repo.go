package postgres

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/billing"
	"github.com/clientdesk/clientdesk/pkg/model"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uint) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) List(ctx context.Context, clientID uint, status *model.ProjectStatus, limit, offset int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Project{})
	if clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error

	return projects, total, err
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProjectRepository) HardDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TotalBillableHours sums the billable hours logged against the project.
// Computed on read, never persisted.
func (r *ProjectRepository) TotalBillableHours(ctx context.Context, projectID uint) (decimal.Decimal, error) {
	var hours decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.TimeEntry{}).
		Select("SUM(hours)").
		Where("project_id = ? AND billable = ?", projectID, true).
		Scan(&hours).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !hours.Valid {
		return decimal.Zero, nil
	}
	return hours.Decimal, nil
}

// ProjectStats is the derived billing view of a project.
type ProjectStats struct {
	BillableHours  decimal.Decimal
	BillableAmount decimal.Decimal
	OverBudget     bool
	Active         bool
}

func (r *ProjectRepository) Stats(ctx context.Context, project *model.Project) (*ProjectStats, error) {
	hours, err := r.TotalBillableHours(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	return &ProjectStats{
		BillableHours:  hours,
		BillableAmount: billing.BillableAmount(project, hours),
		OverBudget:     billing.OverBudget(project, hours),
		Active:         project.IsActive(),
	}, nil
}
