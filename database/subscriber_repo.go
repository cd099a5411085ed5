package database

import (
	"github.com/divanco-studio/backend/models"
	"gorm.io/gorm"
)

type SubscriberRepo struct {
	db *gorm.DB
}

func NewSubscriberRepo(db *gorm.DB) *SubscriberRepo {
	return &SubscriberRepo{db}
}

func (r *SubscriberRepo) Add(subscriber *models.Subscriber) error {
	return r.db.Create(subscriber).Error
}

func (r *SubscriberRepo) Update(subscriber *models.Subscriber) error {
	return r.db.Save(subscriber).Error
}

// FindActive returns every subscriber that should receive publish
// notifications.
func (r *SubscriberRepo) FindActive() ([]*models.Subscriber, error) {
	var subscribers []*models.Subscriber
	err := r.db.Where("is_active = ?", true).Find(&subscribers).Error
	return subscribers, err
}

func (r *SubscriberRepo) FindByEmail(email string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.db.First(&subscriber, "email = ?", email).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

func (r *SubscriberRepo) FindByToken(token string) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.db.First(&subscriber, "unsubscribe_token = ?", token).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

// Deactivate flips a subscriber off without deleting the row.
func (r *SubscriberRepo) Deactivate(token string) error {
	return r.db.Model(&models.Subscriber{}).
		Where("unsubscribe_token = ?", token).
		Update("is_active", false).Error
}
