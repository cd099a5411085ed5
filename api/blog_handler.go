package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/errs"
	"github.com/divanco-studio/backend/models"
	"github.com/divanco-studio/backend/services"
)

type blogHandler struct {
	responder   Responder
	logger      zerolog.Logger
	postRepo    *database.BlogPostRepo
	projectRepo *database.ProjectRepo
	userRepo    *database.UserRepo
	mediaRepo   *database.MediaFileRepo
	storage     services.MediaStorage
	notifier    services.Notifier
}

func newBlogHandler(
	postRepo *database.BlogPostRepo,
	projectRepo *database.ProjectRepo,
	userRepo *database.UserRepo,
	mediaRepo *database.MediaFileRepo,
	storage services.MediaStorage,
	notifier services.Notifier,
) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		postRepo:    postRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		mediaRepo:   mediaRepo,
		storage:     storage,
		notifier:    notifier,
	}
}

type blogPostRequest struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Excerpt    string     `json:"excerpt"`
	AuthorID   *uuid.UUID `json:"authorId"`
	ProjectID  *uuid.UUID `json:"projectId"`
	Tags       []string   `json:"tags"`
	Status     string     `json:"status"`
	IsFeatured *bool      `json:"isFeatured"`
}

func (h blogHandler) validateReferences(authorID, projectID *uuid.UUID) error {
	if authorID != nil {
		author, err := h.userRepo.FindByID(*authorID)
		if err != nil {
			return wrapDatabaseError("find author", "user", err)
		}
		if author == nil {
			return errs.NewInvalidFieldError("authorId", "author does not exist")
		}
	}
	if projectID != nil {
		project, err := h.projectRepo.FindByID(*projectID)
		if err != nil {
			return wrapDatabaseError("find project", "project", err)
		}
		if project == nil {
			return errs.NewInvalidFieldError("projectId", "project does not exist")
		}
	}
	return nil
}

// getAllBlogPosts lists posts. Without an explicit status filter only
// published posts are returned.
func (h blogHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := database.BlogListFilter{
			Status:       r.URL.Query().Get("status"),
			FeaturedOnly: queryBool(r, "featured"),
			Tags:         queryTags(r, "tags"),
			Page:         queryInt(r, "page"),
			Limit:        queryInt(r, "limit"),
		}
		if filter.Status == "" {
			filter.Status = models.PostStatusPublished
		}
		if raw := r.URL.Query().Get("author"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.responder.WriteError(w, errs.NewBadRequestError("invalid author"))
				return
			}
			filter.AuthorID = &id
		}
		if raw := r.URL.Query().Get("project"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				h.responder.WriteError(w, errs.NewBadRequestError("invalid project"))
				return
			}
			filter.ProjectID = &id
		}

		posts, total, err := h.postRepo.FindAll(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog posts", "blog posts", err))
			return
		}

		page, limit := filter.Page, filter.Limit
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 10
		}
		if limit > database.MaxPageSize {
			limit = database.MaxPageSize
		}
		h.responder.WritePage(w, posts, NewPagination(page, limit, total))
	}
}

func (h blogHandler) getFeaturedBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit")
		if limit < 1 || limit > database.MaxPageSize {
			limit = 3
		}
		posts, err := h.postRepo.Featured(limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find featured posts", "blog posts", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, posts)
	}
}

func (h blogHandler) getRecentBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit")
		if limit < 1 || limit > database.MaxPageSize {
			limit = 5
		}
		posts, err := h.postRepo.Recent(limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find recent posts", "blog posts", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, posts)
	}
}

// getBlogPostBySlug serves the public article page with up to three
// related posts. The view increment never delays the response.
func (h blogHandler) getBlogPostBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing slug"))
			return
		}

		post, err := h.postRepo.FindBySlug(slug)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("blog post not found"))
			return
		}

		related, err := h.postRepo.Related(post)
		if err != nil {
			h.logger.Error().Err(err).Str("slug", slug).Msg("failed to load related posts")
			related = nil
		}
		if related == nil {
			related = []*models.BlogPost{}
		}

		go func(id uuid.UUID) {
			if err := h.postRepo.IncrementViewCount(id); err != nil {
				h.logger.Error().Err(err).Str("postID", id.String()).Msg("failed to increment view count")
			}
		}(post.ID)

		h.responder.WriteData(w, http.StatusOK, map[string]interface{}{
			"post":    post,
			"related": related,
		})
	}
}

// createBlogPost creates a post. Creating directly in published state
// stamps publishedAt and fires the announcement side-effect.
func (h blogHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req blogPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		if len(strings.TrimSpace(req.Title)) < 5 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("title", "must be at least 5 characters"))
			return
		}
		if len(strings.TrimSpace(req.Content)) < 10 {
			h.responder.WriteError(w, errs.NewInvalidFieldError("content", "must be at least 10 characters"))
			return
		}
		if req.Status != "" && !models.ValidPostStatus(req.Status) {
			h.responder.WriteError(w, errs.NewInvalidFieldError("status", "must be one of draft, published, archived"))
			return
		}
		if err := h.validateReferences(req.AuthorID, req.ProjectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := models.BlogPost{
			Title:      strings.TrimSpace(req.Title),
			Content:    req.Content,
			Excerpt:    req.Excerpt,
			AuthorID:   req.AuthorID,
			ProjectID:  req.ProjectID,
			Tags:       req.Tags,
			Status:     req.Status,
			IsFeatured: req.IsFeatured != nil && *req.IsFeatured,
		}
		if post.Status == models.PostStatusPublished {
			now := time.Now()
			post.PublishedAt = &now
		}

		if err := h.postRepo.Add(&post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create blog post", "blog post", err))
			return
		}

		if post.IsPublished() {
			h.notifyPublished(&post)
		}

		h.responder.WriteData(w, http.StatusCreated, post)
	}
}

type blogPostUpdateRequest struct {
	Title      *string    `json:"title"`
	Content    *string    `json:"content"`
	Excerpt    *string    `json:"excerpt"`
	AuthorID   *uuid.UUID `json:"authorId"`
	ProjectID  *uuid.UUID `json:"projectId"`
	Tags       *[]string  `json:"tags"`
	Status     *string    `json:"status"`
	IsFeatured *bool      `json:"isFeatured"`
}

// updateBlogPost applies a partial update. The transition into published
// stamps publishedAt when absent and fires the announcement exactly once.
func (h blogHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathUUID(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("blog post not found"))
			return
		}

		var req blogPostUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		if req.Title != nil {
			if len(strings.TrimSpace(*req.Title)) < 5 {
				h.responder.WriteError(w, errs.NewInvalidFieldError("title", "must be at least 5 characters"))
				return
			}
			post.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			if len(strings.TrimSpace(*req.Content)) < 10 {
				h.responder.WriteError(w, errs.NewInvalidFieldError("content", "must be at least 10 characters"))
				return
			}
			post.Content = *req.Content
		}
		if req.Status != nil && !models.ValidPostStatus(*req.Status) {
			h.responder.WriteError(w, errs.NewInvalidFieldError("status", "must be one of draft, published, archived"))
			return
		}
		if err := h.validateReferences(req.AuthorID, req.ProjectID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if req.Excerpt != nil {
			post.Excerpt = *req.Excerpt
		}
		if req.AuthorID != nil {
			post.AuthorID = req.AuthorID
		}
		if req.ProjectID != nil {
			post.ProjectID = req.ProjectID
		}
		if req.Tags != nil {
			post.Tags = *req.Tags
		}
		if req.IsFeatured != nil {
			post.IsFeatured = *req.IsFeatured
		}

		wasPublished := post.Status == models.PostStatusPublished
		if req.Status != nil {
			post.Status = *req.Status
		}
		justPublished := !wasPublished && post.Status == models.PostStatusPublished
		if justPublished && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}

		if err := h.postRepo.Update(post); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update blog post", "blog post", err))
			return
		}

		if justPublished {
			h.notifyPublished(post)
		}

		h.responder.WriteData(w, http.StatusOK, post)
	}
}

// notifyPublished fires the announcement side-effect. Failures only log;
// the API response is never affected.
func (h blogHandler) notifyPublished(post *models.BlogPost) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.NotifyPostPublished(post); err != nil {
		h.logger.Error().Err(err).Str("postSlug", post.Slug).Msg("publish notification failed")
	}
}

// deleteBlogPost removes a post for good. Remote media cleanup is
// best-effort and runs before the rows disappear.
func (h blogHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathUUID(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("blog post not found"))
			return
		}

		h.cleanupRemoteMedia(r.Context(), post.ID)

		if err := h.postRepo.Delete(postID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete blog post", "blog post", err))
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "blog post deleted successfully")
	}
}

func (h blogHandler) cleanupRemoteMedia(ctx context.Context, postID uuid.UUID) {
	if h.storage == nil {
		return
	}
	files, err := h.mediaRepo.FindByBlogPost(postID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list media for cleanup")
		return
	}
	for _, file := range files {
		if err := h.storage.DeleteResponsiveImageSet(ctx, file.URLs); err != nil {
			h.logger.Error().Err(err).Str("mediaID", file.ID.String()).Msg("failed to delete remote media variants")
		}
	}
}

// uploadBlogMedia accepts a multipart upload for a post.
func (h blogHandler) uploadBlogMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathUUID(r, "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post, err := h.postRepo.FindByID(postID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find blog post", "blog post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("blog post not found"))
			return
		}

		upload, err := saveUploadedFile(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		// Reject bad form fields before the asset leaves for the gateway.
		mediaType := r.FormValue("mediaType")
		if mediaType != "" && !models.ValidMediaType(mediaType) {
			os.Remove(upload.Path)
			h.responder.WriteError(w, errs.NewInvalidFieldError("mediaType", "unknown media type"))
			return
		}

		folder := "divanco/blog/" + post.Slug
		media, err := storeUpload(r.Context(), h.storage, upload, folder)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		media.BlogPostID = &post.ID
		media.Description = r.FormValue("description")
		media.IsActive = true
		if mediaType != "" {
			media.Type = mediaType
		}

		if r.FormValue("type") == "featured" {
			h.replaceMainBlogMedia(r.Context(), post.ID)
			media.IsMain = true
		}

		if err := h.mediaRepo.Add(media); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create media file", "media file", err))
			return
		}

		h.responder.WriteData(w, http.StatusCreated, media)
	}
}

func (h blogHandler) replaceMainBlogMedia(ctx context.Context, postID uuid.UUID) {
	current, err := h.mediaRepo.MainForBlogPost(postID)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to look up current main media")
		return
	}
	if current == nil {
		return
	}

	if err := h.storage.DeleteResponsiveImageSet(ctx, current.URLs); err != nil {
		h.logger.Error().Err(err).Str("mediaID", current.ID.String()).Msg("failed to delete replaced media variants")
	}
	if err := h.mediaRepo.Delete(current.ID); err != nil {
		h.logger.Error().Err(err).Str("mediaID", current.ID.String()).Msg("failed to delete replaced media row")
	}
}
