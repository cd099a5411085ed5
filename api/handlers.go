package api

import (
	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, storage services.MediaStorage, notifier services.Notifier, tokens tokenIssuer) *routeHandlers {
	return &routeHandlers{
		projectHandler: newProjectHandler(db.ProjectRepo(), db.MediaFileRepo(), storage),
		blogHandler: newBlogHandler(
			db.BlogPostRepo(),
			db.ProjectRepo(),
			db.UserRepo(),
			db.MediaFileRepo(),
			storage,
			notifier,
		),
		categoryHandler:   newCategoryHandler(db.CategoryRepo()),
		subscriberHandler: newSubscriberHandler(db.SubscriberRepo()),
		authHandler:       newAuthHandler(db.UserRepo(), tokens),
	}
}
