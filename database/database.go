package database

import (
	"github.com/divanco-studio/backend/models"
	"gorm.io/gorm"
)

type Database struct {
	projectRepo    *ProjectRepo
	blogPostRepo   *BlogPostRepo
	mediaFileRepo  *MediaFileRepo
	categoryRepo   *CategoryRepo
	userRepo       *UserRepo
	subscriberRepo *SubscriberRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		projectRepo:    NewProjectRepo(db),
		blogPostRepo:   NewBlogPostRepo(db),
		mediaFileRepo:  NewMediaFileRepo(db),
		categoryRepo:   NewCategoryRepo(db),
		userRepo:       NewUserRepo(db),
		subscriberRepo: NewSubscriberRepo(db),
	}
}

// Migrate creates or updates every table. Parent tables run first so
// foreign keys resolve.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Subscriber{},
		&models.Project{},
		&models.Subcategory{},
		&models.BlogPost{},
		&models.MediaFile{},
	)
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) MediaFileRepo() *MediaFileRepo {
	return d.mediaFileRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) SubscriberRepo() *SubscriberRepo {
	return d.subscriberRepo
}
