package database

import (
	"strings"

	"github.com/divanco-studio/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectRepo) GetDB() *gorm.DB {
	return r.db
}

// ProjectListFilter narrows the public project listing. Zero values mean
// "no filter" for that dimension.
type ProjectListFilter struct {
	Year         int
	ProjectType  string
	Status       string
	FeaturedOnly bool
	PublicOnly   bool
	Tags         []string
	Page         int
	Limit        int
}

// FindAll returns one page of active projects matching the filter plus
// the total match count.
func (r *ProjectRepo) FindAll(filter ProjectListFilter) ([]*models.Project, int64, error) {
	query := r.db.Model(&models.Project{}).Where("is_active = ?", true)

	if filter.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}
	if filter.ProjectType != "" {
		query = query.Where("project_type = ?", filter.ProjectType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	query = applyTagOverlap(query, filter.Tags)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 12)

	var projects []*models.Project
	err := query.
		Order("is_featured DESC").
		Order("year DESC").
		Order("updated_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&projects).Error
	return projects, total, err
}

// FindBySlug returns a public, active project with its media and
// published posts. Returns nil without error when no row matches.
func (r *ProjectRepo) FindBySlug(slug string) (*models.Project, error) {
	var project models.Project
	err := r.db.
		Preload("Media", "is_active = ?", true).
		Preload("BlogPosts", "status = ?", models.PostStatusPublished).
		Where("slug = ? AND is_public = ? AND is_active = ?", slug, true, true).
		First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// FindByID returns a project regardless of visibility flags (admin use).
func (r *ProjectRepo) FindByID(id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.Preload("Media").First(&project, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// Add inserts a new project into the database
func (r *ProjectRepo) Add(project *models.Project) error {
	return r.db.Create(project).Error
}

// Update updates an existing project in the database
func (r *ProjectRepo) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// SoftDelete flips isActive off; the row and its media rows survive.
func (r *ProjectRepo) SoftDelete(id uuid.UUID) error {
	return r.db.Model(&models.Project{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

// IncrementViewCount bumps the counter with a single atomic UPDATE so
// concurrent readers never lose increments.
func (r *ProjectRepo) IncrementViewCount(id uuid.UUID) error {
	return r.db.Model(&models.Project{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// Featured returns up to limit featured public projects in manual order.
func (r *ProjectRepo) Featured(limit int) ([]*models.Project, error) {
	if limit <= 0 {
		limit = 6
	}
	var projects []*models.Project
	err := r.db.
		Where("is_active = ? AND is_public = ? AND is_featured = ?", true, true, true).
		Order(`"order" ASC`).
		Order("updated_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// Recent returns the newest public projects.
func (r *ProjectRepo) Recent(limit int) ([]*models.Project, error) {
	if limit <= 0 {
		limit = 8
	}
	var projects []*models.Project
	err := r.db.
		Where("is_active = ? AND is_public = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// ByYear lists the public projects of one year.
func (r *ProjectRepo) ByYear(year int) ([]*models.Project, error) {
	var projects []*models.Project
	err := r.db.
		Where("year = ? AND is_public = ? AND is_active = ?", year, true, true).
		Order("is_featured DESC").
		Order("updated_at DESC").
		Find(&projects).Error
	return projects, err
}

// AvailableYears returns the distinct years that have public projects,
// newest first.
func (r *ProjectRepo) AvailableYears() ([]int, error) {
	var years []int
	err := r.db.Model(&models.Project{}).
		Where("is_public = ? AND is_active = ?", true, true).
		Distinct("year").
		Order("year DESC").
		Pluck("year", &years).Error
	return years, err
}

// applyTagOverlap matches rows whose JSON tag list intersects the given
// tags. Tags are stored as a JSON text column, so overlap is expressed
// as an OR of substring matches against the quoted values.
func applyTagOverlap(query *gorm.DB, tags []string) *gorm.DB {
	if len(tags) == 0 {
		return query
	}

	var clauses []string
	var args []interface{}
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		clauses = append(clauses, "tags LIKE ?")
		args = append(args, `%"`+tag+`"%`)
	}
	if len(clauses) == 0 {
		return query
	}
	return query.Where(strings.Join(clauses, " OR "), args...)
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
