package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscriber receives an email whenever a blog post is first published.
type Subscriber struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email            string    `json:"email" gorm:"type:text;not null;uniqueIndex"`
	Name             string    `json:"name" gorm:"type:text"`
	IsActive         bool      `json:"isActive" gorm:"index"`
	UnsubscribeToken string    `json:"-" gorm:"type:text;uniqueIndex"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.UnsubscribeToken == "" {
		s.UnsubscribeToken = uuid.NewString()
	}
	return nil
}
