package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/vekst-crm/crm-api/internal/domain"
	"gorm.io/gorm"
)

type JobApplicationRepository struct {
	db *gorm.DB
}

func NewJobApplicationRepository(db *gorm.DB) *JobApplicationRepository {
	return &JobApplicationRepository{db: db}
}

func (r *JobApplicationRepository) Create(ctx context.Context, application *domain.JobApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *JobApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobApplication, error) {
	var application domain.JobApplication
	query := r.db.WithContext(ctx).Preload("Skills").Where("id = ?", id)
	query = ApplyWorkspaceFilter(ctx, query)
	err := query.First(&application).Error
	if err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *JobApplicationRepository) Update(ctx context.Context, application *domain.JobApplication) error {
	return r.db.WithContext(ctx).Save(application).Error
}

func (r *JobApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.JobApplication{}, "id = ?", id).Error
}

// jobApplicationSortFields maps API sort fields to database columns
var jobApplicationSortFields = map[string]string{
	"name":      "name",
	"status":    "status",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

func (r *JobApplicationRepository) List(ctx context.Context, params domain.JobApplicationListParams) ([]domain.JobApplication, int64, error) {
	var applications []domain.JobApplication
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.JobApplication{})
	query = ApplyWorkspaceFilter(ctx, query)

	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Skill != "" {
		skill := strings.ToLower(strings.TrimSpace(params.Skill))
		query = query.Where(
			"EXISTS (SELECT 1 FROM job_application_skills s WHERE s.job_application_id = job_applications.id AND s.skill = ?)",
			skill)
	}
	if params.Search != "" {
		query = applySearchTerm(query, params.Search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := SortConfig{Field: params.SortBy, Order: ParseSortOrder(params.SortDir)}
	orderClause := BuildOrderClause(sort, jobApplicationSortFields, "created_at")

	page, pageSize := NormalizePaging(params.Page, params.PageSize)
	offset := (page - 1) * pageSize
	err := query.Preload("Skills").Offset(offset).Limit(pageSize).Order(orderClause).Find(&applications).Error

	return applications, total, err
}

// Search returns applications matching the term as a case-insensitive
// substring of the text fields, or as an exact member of the skill set
func (r *JobApplicationRepository) Search(ctx context.Context, term string) ([]domain.JobApplication, error) {
	var applications []domain.JobApplication
	query := r.db.WithContext(ctx).Model(&domain.JobApplication{})
	query = ApplyWorkspaceFilter(ctx, query)
	query = applySearchTerm(query, term)
	err := query.Preload("Skills").Order("created_at DESC").Find(&applications).Error
	return applications, err
}

func applySearchTerm(query *gorm.DB, term string) *gorm.DB {
	pattern := "%" + strings.ToLower(term) + "%"
	exact := strings.ToLower(strings.TrimSpace(term))
	return query.Where(
		`LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(desired_position) LIKE ?
			OR LOWER(current_employer) LIKE ? OR LOWER(education) LIKE ?
			OR EXISTS (SELECT 1 FROM job_application_skills s WHERE s.job_application_id = job_applications.id AND s.skill = ?)`,
		pattern, pattern, pattern, pattern, pattern, exact)
}

// ReplaceSkills swaps an application's skill rows for the given set.
// Values are lowercased and deduplicated before insert.
func (r *JobApplicationRepository) ReplaceSkills(ctx context.Context, application *domain.JobApplication, skills []string) error {
	rows := normalizeSkills(application.ID, skills)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_application_id = ?", application.ID).Delete(&domain.JobApplicationSkill{}).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		application.Skills = rows
		return nil
	})
}

func normalizeSkills(applicationID uuid.UUID, skills []string) []domain.JobApplicationSkill {
	seen := make(map[string]bool, len(skills))
	rows := make([]domain.JobApplicationSkill, 0, len(skills))
	for _, skill := range skills {
		skill = strings.ToLower(strings.TrimSpace(skill))
		if skill == "" || seen[skill] {
			continue
		}
		seen[skill] = true
		rows = append(rows, domain.JobApplicationSkill{
			JobApplicationID: applicationID,
			Skill:            skill,
		})
	}
	return rows
}

// UpdateStatusWithAudit writes the status change and its audit activity
// in a single transaction so the log entry fires exactly once per change
func (r *JobApplicationRepository) UpdateStatusWithAudit(ctx context.Context, application *domain.JobApplication, status domain.JobApplicationStatus, audit *domain.Activity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(application).Update("status", status).Error; err != nil {
			return err
		}
		if err := tx.Create(audit).Error; err != nil {
			return err
		}
		application.Status = status
		return nil
	})
}
