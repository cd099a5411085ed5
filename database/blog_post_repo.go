package database

import (
	"strings"

	"github.com/divanco-studio/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

// BlogListFilter narrows the blog listing.
type BlogListFilter struct {
	Status       string
	AuthorID     *uuid.UUID
	ProjectID    *uuid.UUID
	FeaturedOnly bool
	Tags         []string
	Page         int
	Limit        int
}

// FindAll returns one page of posts matching the filter plus the total
// match count. Ordering is fixed: featured first, then publish date,
// then creation date.
func (r *BlogPostRepo) FindAll(filter BlogListFilter) ([]*models.BlogPost, int64, error) {
	query := r.db.Model(&models.BlogPost{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	query = applyTagOverlap(query, filter.Tags)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 10)

	var posts []*models.BlogPost
	err := query.
		Preload("Author").
		Preload("Project").
		Order("is_featured DESC").
		Order("published_at DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&posts).Error
	return posts, total, err
}

// FindBySlug returns a published post with author, project and media.
// Returns nil without error when no row matches.
func (r *BlogPostRepo) FindBySlug(slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.
		Preload("Author").
		Preload("Project").
		Preload("Media", "is_active = ?", true).
		Where("slug = ? AND status = ?", slug, models.PostStatusPublished).
		First(&post).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// FindByID returns a post regardless of status (admin use).
func (r *BlogPostRepo) FindByID(id uuid.UUID) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.
		Preload("Author").
		Preload("Project").
		Preload("Media").
		First(&post, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Add inserts a new blog post into the database
func (r *BlogPostRepo) Add(post *models.BlogPost) error {
	return r.db.Create(post).Error
}

// Update updates an existing blog post in the database
func (r *BlogPostRepo) Update(post *models.BlogPost) error {
	return r.db.Save(post).Error
}

// Delete removes a post permanently. Its media rows cascade away.
func (r *BlogPostRepo) Delete(id uuid.UUID) error {
	if err := r.db.Where("blog_post_id = ?", id).Delete(&models.MediaFile{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.BlogPost{}, "id = ?", id).Error
}

// IncrementViewCount bumps the counter atomically at the storage layer.
func (r *BlogPostRepo) IncrementViewCount(id uuid.UUID) error {
	return r.db.Model(&models.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// Related returns up to three published posts sharing the given post's
// project or any of its tags, excluding the post itself.
func (r *BlogPostRepo) Related(post *models.BlogPost) ([]*models.BlogPost, error) {
	query := r.db.Model(&models.BlogPost{}).
		Where("id <> ?", post.ID).
		Where("status = ?", models.PostStatusPublished)

	var clauses []string
	var args []interface{}
	if post.ProjectID != nil {
		clauses = append(clauses, "project_id = ?")
		args = append(args, *post.ProjectID)
	}
	for _, tag := range post.Tags {
		clauses = append(clauses, "tags LIKE ?")
		args = append(args, `%"`+tag+`"%`)
	}
	if len(clauses) == 0 {
		return nil, nil
	}
	query = query.Where(strings.Join(clauses, " OR "), args...)

	var related []*models.BlogPost
	err := query.
		Preload("Author").
		Order("published_at DESC").
		Limit(3).
		Find(&related).Error
	return related, err
}

// Featured returns up to limit featured published posts.
func (r *BlogPostRepo) Featured(limit int) ([]*models.BlogPost, error) {
	if limit <= 0 {
		limit = 3
	}
	var posts []*models.BlogPost
	err := r.db.
		Preload("Author").
		Preload("Project").
		Where("status = ? AND is_featured = ?", models.PostStatusPublished, true).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// Recent returns the latest published posts.
func (r *BlogPostRepo) Recent(limit int) ([]*models.BlogPost, error) {
	if limit <= 0 {
		limit = 5
	}
	var posts []*models.BlogPost
	err := r.db.
		Preload("Author").
		Where("status = ?", models.PostStatusPublished).
		Order("published_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
