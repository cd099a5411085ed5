package database

import (
	"github.com/divanco-studio/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db}
}

// FindAll returns active categories with their active subcategories,
// both in manual order.
func (r *CategoryRepo) FindAll() ([]*models.Category, error) {
	var categories []*models.Category
	err := r.db.
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order(`"order" ASC`)
		}).
		Where("is_active = ?", true).
		Order(`"order" ASC`).
		Find(&categories).Error
	return categories, err
}

func (r *CategoryRepo) FindByID(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.Preload("Subcategories").First(&category, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepo) Add(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepo) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

// Delete removes a category and cascades its subcategories.
func (r *CategoryRepo) Delete(id uuid.UUID) error {
	if err := r.db.Where("category_id = ?", id).Delete(&models.Subcategory{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Category{}, "id = ?", id).Error
}

func (r *CategoryRepo) AddSubcategory(sub *models.Subcategory) error {
	return r.db.Create(sub).Error
}

func (r *CategoryRepo) UpdateSubcategory(sub *models.Subcategory) error {
	return r.db.Save(sub).Error
}

func (r *CategoryRepo) DeleteSubcategory(id uuid.UUID) error {
	return r.db.Delete(&models.Subcategory{}, "id = ?", id).Error
}

func (r *CategoryRepo) FindSubcategoryByID(id uuid.UUID) (*models.Subcategory, error) {
	var sub models.Subcategory
	err := r.db.First(&sub, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}
