package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups showroom subcategories (e.g. a product family).
type Category struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Slug        string    `json:"slug" gorm:"type:text;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"isActive"`

	Subcategories []Subcategory `json:"subcategories,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	if c.Slug == "" && c.Name != "" {
		c.Slug = Slugify(c.Name)
	}
	return nil
}

// Subcategory is one showroom catalog entry inside a category.
type Subcategory struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CategoryID  uuid.UUID `json:"categoryId" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:text;not null"`
	Slug        string    `json:"slug" gorm:"type:text;index"`
	Description string    `json:"description" gorm:"type:text"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Subcategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Subcategory) BeforeSave(tx *gorm.DB) error {
	if s.Slug == "" && s.Name != "" {
		s.Slug = Slugify(s.Name)
	}
	return nil
}
