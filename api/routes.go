package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/divanco-studio/backend/models"
)

// setupRoutes mounts the public site routes and the authenticated admin
// routes. Fixed project paths are registered before the slug catch-all so
// chi matches them first.
func setupRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware) {
	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/projects/search", handlers.projectHandler.searchProjects())
		r.Get("/projects/filter-options", handlers.projectHandler.getFilterOptions())
		r.Get("/projects/suggestions", handlers.projectHandler.getSuggestions())
		r.Get("/projects/featured", handlers.projectHandler.getFeaturedProjects())
		r.Get("/projects/recent", handlers.projectHandler.getRecentProjects())
		r.Get("/projects/years", handlers.projectHandler.getAvailableYears())
		r.Get("/projects/year/{year}", handlers.projectHandler.getProjectsByYear())
		r.Get("/projects/{slug}", handlers.projectHandler.getProjectBySlug())

		r.Get("/blog", handlers.blogHandler.getAllBlogPosts())
		r.Get("/blog/featured", handlers.blogHandler.getFeaturedBlogPosts())
		r.Get("/blog/recent", handlers.blogHandler.getRecentBlogPosts())
		r.Get("/blog/{slug}", handlers.blogHandler.getBlogPostBySlug())

		r.Get("/showroom/categories", handlers.categoryHandler.getCategories())

		r.Post("/subscribers", handlers.subscriberHandler.subscribe())
		r.Get("/subscribers/unsubscribe/{token}", handlers.subscriberHandler.unsubscribe())

		r.Post("/auth/login", handlers.authHandler.login())
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(auth.authenticate)

		r.Group(func(r chi.Router) {
			r.Use(auth.requireRole(models.RoleAdmin))

			r.Post("/projects", handlers.projectHandler.createProject())
			r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
			r.Post("/projects/{projectID}/media", handlers.projectHandler.uploadProjectMedia())

			r.Delete("/blog/{blogPostID}", handlers.blogHandler.deleteBlogPost())

			r.Post("/showroom/categories", handlers.categoryHandler.createCategory())
			r.Put("/showroom/categories/{categoryID}", handlers.categoryHandler.updateCategory())
			r.Delete("/showroom/categories/{categoryID}", handlers.categoryHandler.deleteCategory())
			r.Post("/showroom/categories/{categoryID}/subcategories", handlers.categoryHandler.createSubcategory())
			r.Put("/showroom/subcategories/{subcategoryID}", handlers.categoryHandler.updateSubcategory())
			r.Delete("/showroom/subcategories/{subcategoryID}", handlers.categoryHandler.deleteSubcategory())
		})

		// Authors may write posts and attach media; only admins delete.
		r.Group(func(r chi.Router) {
			r.Use(auth.requireRole(models.RoleAdmin, models.RoleAuthor))

			r.Post("/blog", handlers.blogHandler.createBlogPost())
			r.Put("/blog/{blogPostID}", handlers.blogHandler.updateBlogPost())
			r.Post("/blog/{blogPostID}/media", handlers.blogHandler.uploadBlogMedia())
		})
	})
}
