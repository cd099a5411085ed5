package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
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

type projectHandler struct {
	responder   Responder
	logger      zerolog.Logger
	projectRepo *database.ProjectRepo
	mediaRepo   *database.MediaFileRepo
	storage     services.MediaStorage
}

func newProjectHandler(projectRepo *database.ProjectRepo, mediaRepo *database.MediaFileRepo, storage services.MediaStorage) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		projectRepo: projectRepo,
		mediaRepo:   mediaRepo,
		storage:     storage,
	}
}

type projectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Year        int      `json:"year"`
	Location    string   `json:"location"`
	Client      string   `json:"client"`
	Architect   string   `json:"architect"`
	ProjectType string   `json:"projectType"`
	Status      string   `json:"status"`
	Area        string   `json:"area"`
	Tags        []string `json:"tags"`

	IsFeatured *bool `json:"isFeatured"`
	IsPublic   *bool `json:"isPublic"`
	Order      *int  `json:"order"`

	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (req *projectRequest) validate() error {
	if len(strings.TrimSpace(req.Title)) < 5 {
		return errs.NewInvalidFieldError("title", "must be at least 5 characters")
	}
	if req.Year < 2000 {
		return errs.NewInvalidFieldError("year", "must be 2000 or later")
	}
	if !models.ValidProjectType(req.ProjectType) {
		return errs.NewInvalidFieldError("projectType", "must be one of Preproyecto, Proyecto, Dirección")
	}
	if req.Status != "" && !models.ValidProjectStatus(req.Status) {
		return errs.NewInvalidFieldError("status", "must be one of render, obra, finalizado")
	}
	for _, tag := range req.Tags {
		if !models.ValidProjectTag(tag) {
			return errs.NewInvalidFieldError("tags", fmt.Sprintf("unknown tag %q", tag))
		}
	}
	return nil
}

// getAllProjects lists active projects with optional filters and paging.
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := database.ProjectListFilter{
			Year:         queryInt(r, "year"),
			ProjectType:  r.URL.Query().Get("projectType"),
			Status:       r.URL.Query().Get("status"),
			FeaturedOnly: queryBool(r, "featured"),
			PublicOnly:   queryBool(r, "publicOnly"),
			Tags:         queryTags(r, "tags"),
			Page:         queryInt(r, "page"),
			Limit:        queryInt(r, "limit"),
		}

		projects, total, err := h.projectRepo.FindAll(filter)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find projects", "projects", err))
			return
		}

		page, limit := filter.Page, filter.Limit
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 12
		}
		if limit > database.MaxPageSize {
			limit = database.MaxPageSize
		}
		h.responder.WritePage(w, projects, NewPagination(page, limit, total))
	}
}

// searchProjects runs the dynamic filter query.
func (h projectHandler) searchProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := database.ProjectSearchQuery{
			Query:        r.URL.Query().Get("q"),
			Title:        r.URL.Query().Get("title"),
			Location:     r.URL.Query().Get("location"),
			Client:       r.URL.Query().Get("client"),
			Architect:    r.URL.Query().Get("architect"),
			Year:         queryInt(r, "year"),
			ProjectType:  r.URL.Query().Get("projectType"),
			Status:       r.URL.Query().Get("status"),
			Tags:         queryTags(r, "tags"),
			FeaturedOnly: queryBool(r, "featured"),
			PublicOnly:   true,
			SortBy:       r.URL.Query().Get("sortBy"),
			SortOrder:    r.URL.Query().Get("sortOrder"),
			Page:         queryInt(r, "page"),
			Limit:        queryInt(r, "limit"),
		}

		result, err := h.projectRepo.Search(q)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("search projects", "projects", err))
			return
		}

		page, limit := q.Page, q.Limit
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 12
		}
		if limit > database.MaxPageSize {
			limit = database.MaxPageSize
		}
		h.responder.writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Data: map[string]interface{}{
				"projects": result.Projects,
				"filters":  result.Filters,
			},
			Pagination: func() *Pagination {
				p := NewPagination(page, limit, result.Total)
				return &p
			}(),
		})
	}
}

// getFilterOptions returns the distinct values available for filtering.
func (h projectHandler) getFilterOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options, err := h.projectRepo.FilterOptions()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("aggregate filter options", "projects", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, options)
	}
}

// getSuggestions serves incremental-search hits for the search box.
func (h projectHandler) getSuggestions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suggestions, err := h.projectRepo.Suggestions(r.URL.Query().Get("q"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find suggestions", "projects", err))
			return
		}
		if suggestions == nil {
			suggestions = []database.Suggestion{}
		}
		h.responder.WriteData(w, http.StatusOK, suggestions)
	}
}

func (h projectHandler) getFeaturedProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit")
		if limit < 1 || limit > database.MaxPageSize {
			limit = 6
		}
		projects, err := h.projectRepo.Featured(limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find featured projects", "projects", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, projects)
	}
}

func (h projectHandler) getRecentProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit")
		if limit < 1 || limit > database.MaxPageSize {
			limit = 6
		}
		projects, err := h.projectRepo.Recent(limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find recent projects", "projects", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, projects)
	}
}

func (h projectHandler) getAvailableYears() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		years, err := h.projectRepo.AvailableYears()
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("aggregate years", "projects", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, years)
	}
}

func (h projectHandler) getProjectsByYear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil || year <= 0 {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid year"))
			return
		}
		projects, err := h.projectRepo.ByYear(year)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find projects by year", "projects", err))
			return
		}
		h.responder.WriteData(w, http.StatusOK, projects)
	}
}

// getProjectBySlug serves the public project detail page. The view count
// increment is fire-and-forget so it never delays the response.
func (h projectHandler) getProjectBySlug() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		if slug == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing slug"))
			return
		}

		project, err := h.projectRepo.FindBySlug(slug)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}

		go func(id uuid.UUID) {
			if err := h.projectRepo.IncrementViewCount(id); err != nil {
				h.logger.Error().Err(err).Str("projectID", id.String()).Msg("failed to increment view count")
			}
		}(project.ID)

		h.responder.WriteData(w, http.StatusOK, project)
	}
}

// createProject creates a new project (admin only).
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if err := req.validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project := models.Project{
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Content:     req.Content,
			Year:        req.Year,
			Location:    req.Location,
			Client:      req.Client,
			Architect:   req.Architect,
			ProjectType: req.ProjectType,
			Status:      req.Status,
			Area:        req.Area,
			Tags:        req.Tags,
			IsFeatured:  req.IsFeatured != nil && *req.IsFeatured,
			IsPublic:    req.IsPublic == nil || *req.IsPublic,
			IsActive:    true,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		}
		if req.Order != nil {
			project.Order = *req.Order
		}

		if err := h.projectRepo.Add(&project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create project", "project", err))
			return
		}

		h.responder.WriteData(w, http.StatusCreated, project)
	}
}

// updateProject applies a partial update to an existing project.
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}

		var req projectUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}
		if err := req.apply(project); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projectRepo.Update(project); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update project", "project", err))
			return
		}

		h.responder.WriteData(w, http.StatusOK, project)
	}
}

// projectUpdateRequest carries a partial update. Only present fields are
// applied.
type projectUpdateRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Content     *string   `json:"content"`
	Year        *int      `json:"year"`
	Location    *string   `json:"location"`
	Client      *string   `json:"client"`
	Architect   *string   `json:"architect"`
	ProjectType *string   `json:"projectType"`
	Status      *string   `json:"status"`
	Area        *string   `json:"area"`
	Tags        *[]string `json:"tags"`

	IsFeatured *bool `json:"isFeatured"`
	IsPublic   *bool `json:"isPublic"`
	Order      *int  `json:"order"`

	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (req *projectUpdateRequest) apply(project *models.Project) error {
	if req.Title != nil {
		if len(strings.TrimSpace(*req.Title)) < 5 {
			return errs.NewInvalidFieldError("title", "must be at least 5 characters")
		}
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Year != nil {
		if *req.Year < 2000 {
			return errs.NewInvalidFieldError("year", "must be 2000 or later")
		}
		project.Year = *req.Year
	}
	if req.ProjectType != nil {
		if !models.ValidProjectType(*req.ProjectType) {
			return errs.NewInvalidFieldError("projectType", "must be one of Preproyecto, Proyecto, Dirección")
		}
		project.ProjectType = *req.ProjectType
	}
	if req.Status != nil {
		if !models.ValidProjectStatus(*req.Status) {
			return errs.NewInvalidFieldError("status", "must be one of render, obra, finalizado")
		}
		project.Status = *req.Status
	}
	if req.Tags != nil {
		for _, tag := range *req.Tags {
			if !models.ValidProjectTag(tag) {
				return errs.NewInvalidFieldError("tags", fmt.Sprintf("unknown tag %q", tag))
			}
		}
		project.Tags = *req.Tags
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Content != nil {
		project.Content = *req.Content
	}
	if req.Location != nil {
		project.Location = *req.Location
	}
	if req.Client != nil {
		project.Client = *req.Client
	}
	if req.Architect != nil {
		project.Architect = *req.Architect
	}
	if req.Area != nil {
		project.Area = *req.Area
	}
	if req.IsFeatured != nil {
		project.IsFeatured = *req.IsFeatured
	}
	if req.IsPublic != nil {
		project.IsPublic = *req.IsPublic
	}
	if req.Order != nil {
		project.Order = *req.Order
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	return nil
}

// deleteProject soft-deletes a project; its media and posts survive.
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
			return
		}

		if err := h.projectRepo.SoftDelete(projectID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete project", "project", err))
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "project deleted successfully")
	}
}

// uploadProjectMedia accepts a multipart upload, sends it through the
// media gateway and records the resulting asset.
func (h projectHandler) uploadProjectMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := pathUUID(r, "projectID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projectRepo.FindByID(projectID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find project", "project", err))
			return
		}
		if project == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("project not found"))
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

		folder := "divanco/projects/" + project.Slug
		media, err := storeUpload(r.Context(), h.storage, upload, folder)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		media.ProjectID = &project.ID
		media.Description = r.FormValue("description")
		media.IsActive = true
		if mediaType != "" {
			media.Type = mediaType
		}

		if r.FormValue("type") == "featured" {
			h.replaceMainProjectMedia(r.Context(), project.ID)
			media.IsMain = true
		}

		if err := h.mediaRepo.Add(media); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create media file", "media file", err))
			return
		}

		h.responder.WriteData(w, http.StatusCreated, media)
	}
}

// replaceMainProjectMedia retires the current main asset. Remote cleanup
// is best-effort: a gateway failure only logs.
func (h projectHandler) replaceMainProjectMedia(ctx context.Context, projectID uuid.UUID) {
	current, err := h.mediaRepo.MainForProject(projectID)
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
