package database

import (
	"github.com/divanco-studio/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MediaFileRepo struct {
	db *gorm.DB
}

func NewMediaFileRepo(db *gorm.DB) *MediaFileRepo {
	return &MediaFileRepo{db}
}

// Add inserts a new media file row
func (r *MediaFileRepo) Add(file *models.MediaFile) error {
	return r.db.Create(file).Error
}

func (r *MediaFileRepo) FindByID(id uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	err := r.db.First(&file, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// FindByProject lists a project's active media rows in manual order.
func (r *MediaFileRepo) FindByProject(projectID uuid.UUID) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	err := r.db.
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order(`"order" ASC`).
		Order("created_at ASC").
		Find(&files).Error
	return files, err
}

// FindByBlogPost lists a post's active media rows.
func (r *MediaFileRepo) FindByBlogPost(postID uuid.UUID) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	err := r.db.
		Where("blog_post_id = ? AND is_active = ?", postID, true).
		Order(`"order" ASC`).
		Order("created_at ASC").
		Find(&files).Error
	return files, err
}

// MainForProject returns the featured media row of a project, nil when
// there is none.
func (r *MediaFileRepo) MainForProject(projectID uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	err := r.db.
		Where("project_id = ? AND is_main = ? AND is_active = ?", projectID, true, true).
		First(&file).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// MainForBlogPost returns the featured media row of a post, nil when
// there is none.
func (r *MediaFileRepo) MainForBlogPost(postID uuid.UUID) (*models.MediaFile, error) {
	var file models.MediaFile
	err := r.db.
		Where("blog_post_id = ? AND is_main = ? AND is_active = ?", postID, true, true).
		First(&file).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// Update saves metadata edits or reordering
func (r *MediaFileRepo) Update(file *models.MediaFile) error {
	return r.db.Save(file).Error
}

// Delete removes a media row permanently
func (r *MediaFileRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.MediaFile{}, "id = ?", id).Error
}
