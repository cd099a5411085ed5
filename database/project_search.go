package database

import (
	"strings"

	"github.com/divanco-studio/backend/models"
	"gorm.io/gorm"
)

// MaxPageSize caps the limit query parameter for every list operation.
const MaxPageSize = 100

// Whitelisted sort fields for project search. Anything else silently
// falls back to the default ordering.
var projectSortFields = map[string]string{
	"title":     "title",
	"year":      "year",
	"viewCount": "view_count",
	"updatedAt": "updated_at",
	"createdAt": "created_at",
}

const (
	defaultSortField = "updatedAt"
	defaultSortOrder = "DESC"
)

// ProjectSearchQuery carries every independently-optional search filter.
// All provided filters combine with logical AND.
type ProjectSearchQuery struct {
	Query        string   // matches the denormalized searchableText
	Title        string   // title substring, case-insensitive
	Location     string   // location substring
	Client       string   // client substring
	Architect    string   // architect substring
	Year         int      // exact match
	ProjectType  string   // exact match
	Status       string   // exact match
	Tags         []string // overlap against the stored tag set
	FeaturedOnly bool
	PublicOnly   bool

	SortBy    string
	SortOrder string // ASC or DESC
	Page      int
	Limit     int
}

// AppliedFilters echoes which filters were actually used, for the
// "N filters active" UI affordance.
type AppliedFilters struct {
	Query       string   `json:"q,omitempty"`
	Title       string   `json:"title,omitempty"`
	Location    string   `json:"location,omitempty"`
	Client      string   `json:"client,omitempty"`
	Architect   string   `json:"architect,omitempty"`
	Year        int      `json:"year,omitempty"`
	ProjectType string   `json:"projectType,omitempty"`
	Status      string   `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Featured    bool     `json:"featured,omitempty"`
	Count       int      `json:"count"`
}

// ProjectSearchResult is one page of matches plus the filter echo.
type ProjectSearchResult struct {
	Projects []*models.Project
	Total    int64
	Filters  AppliedFilters
}

// Search runs the dynamic filter query. Featured projects always come
// first regardless of the caller's sort choice.
func (r *ProjectRepo) Search(q ProjectSearchQuery) (*ProjectSearchResult, error) {
	query := r.db.Model(&models.Project{}).Where("is_active = ?", true)
	filters := AppliedFilters{}

	if q.PublicOnly {
		query = query.Where("is_public = ?", true)
	}
	if q.Query != "" {
		query = query.Where("searchable_text LIKE ?", "%"+strings.ToLower(q.Query)+"%")
		filters.Query = q.Query
		filters.Count++
	}
	if q.Title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q.Title)+"%")
		filters.Title = q.Title
		filters.Count++
	}
	if q.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(q.Location)+"%")
		filters.Location = q.Location
		filters.Count++
	}
	if q.Client != "" {
		query = query.Where("LOWER(client) LIKE ?", "%"+strings.ToLower(q.Client)+"%")
		filters.Client = q.Client
		filters.Count++
	}
	if q.Architect != "" {
		query = query.Where("LOWER(architect) LIKE ?", "%"+strings.ToLower(q.Architect)+"%")
		filters.Architect = q.Architect
		filters.Count++
	}
	if q.Year != 0 {
		query = query.Where("year = ?", q.Year)
		filters.Year = q.Year
		filters.Count++
	}
	if q.ProjectType != "" {
		query = query.Where("project_type = ?", q.ProjectType)
		filters.ProjectType = q.ProjectType
		filters.Count++
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
		filters.Status = q.Status
		filters.Count++
	}
	if tags := normalizeTags(q.Tags); len(tags) > 0 {
		query = applyTagOverlap(query, tags)
		filters.Tags = tags
		filters.Count++
	}
	if q.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
		filters.Featured = true
		filters.Count++
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	page, limit := normalizePage(q.Page, q.Limit, 12)

	var projects []*models.Project
	err := query.
		Order("is_featured DESC").
		Order(sortClause(q.SortBy, q.SortOrder)).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	return &ProjectSearchResult{
		Projects: projects,
		Total:    total,
		Filters:  filters,
	}, nil
}

// FilterOptions aggregates the distinct values currently present, to
// populate the filter-selection UI. Full scan; fine at catalog volumes.
type FilterOptions struct {
	Years     []int    `json:"years"`
	Locations []string `json:"locations"`
	Tags      []string `json:"tags"`
	Types     []string `json:"projectTypes"`
	Statuses  []string `json:"statuses"`
}

func (r *ProjectRepo) FilterOptions() (*FilterOptions, error) {
	base := func() *gorm.DB {
		return r.db.Model(&models.Project{}).
			Where("is_active = ? AND is_public = ?", true, true)
	}

	opts := &FilterOptions{}

	if err := base().Distinct("year").Order("year DESC").Pluck("year", &opts.Years).Error; err != nil {
		return nil, err
	}
	if err := base().Where("location <> ''").Distinct("location").Order("location ASC").Pluck("location", &opts.Locations).Error; err != nil {
		return nil, err
	}
	if err := base().Where("project_type <> ''").Distinct("project_type").Pluck("project_type", &opts.Types).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status <> ''").Distinct("status").Pluck("status", &opts.Statuses).Error; err != nil {
		return nil, err
	}

	// Tags live inside a JSON column, so distinct values are collected
	// in memory from the matching rows.
	var tagLists []models.StringList
	if err := base().Pluck("tags", &tagLists).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, list := range tagLists {
		for _, tag := range list {
			if !seen[tag] {
				seen[tag] = true
				opts.Tags = append(opts.Tags, tag)
			}
		}
	}

	return opts, nil
}

// Suggestion is one incremental-search hit.
type Suggestion struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Slug  string `json:"slug,omitempty"`
}

// Suggestions runs per-field prefix/substring matching for the
// incremental-search UI, capped at five results.
func (r *ProjectRepo) Suggestions(term string) ([]Suggestion, error) {
	const maxSuggestions = 5

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	var suggestions []Suggestion

	var byTitle []*models.Project
	err := r.db.Model(&models.Project{}).
		Where("is_active = ? AND is_public = ?", true, true).
		Where("LOWER(title) LIKE ?", term+"%").
		Order("title ASC").
		Limit(maxSuggestions).
		Find(&byTitle).Error
	if err != nil {
		return nil, err
	}
	for _, p := range byTitle {
		suggestions = append(suggestions, Suggestion{Field: "title", Value: p.Title, Slug: p.Slug})
	}

	if len(suggestions) < maxSuggestions {
		var locations []string
		err := r.db.Model(&models.Project{}).
			Where("is_active = ? AND is_public = ?", true, true).
			Where("LOWER(location) LIKE ?", term+"%").
			Distinct("location").
			Order("location ASC").
			Limit(maxSuggestions-len(suggestions)).
			Pluck("location", &locations).Error
		if err != nil {
			return nil, err
		}
		for _, loc := range locations {
			suggestions = append(suggestions, Suggestion{Field: "location", Value: loc})
		}
	}

	return suggestions, nil
}

func sortClause(sortBy, sortOrder string) string {
	column, ok := projectSortFields[sortBy]
	if !ok {
		column = projectSortFields[defaultSortField]
		sortOrder = defaultSortOrder
	}
	order := strings.ToUpper(sortOrder)
	if order != "ASC" && order != "DESC" {
		order = defaultSortOrder
	}
	return column + " " + order
}

func normalizeTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		for _, part := range strings.Split(tag, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
