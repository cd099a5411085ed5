package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project participation types.
const (
	ProjectTypePreproyecto = "Preproyecto"
	ProjectTypeProyecto    = "Proyecto"
	ProjectTypeDireccion   = "Dirección"
)

// Project lifecycle states.
const (
	ProjectStatusRender     = "render"
	ProjectStatusObra       = "obra"
	ProjectStatusFinalizado = "finalizado"
)

var projectTypes = []string{ProjectTypePreproyecto, ProjectTypeProyecto, ProjectTypeDireccion}

var projectStatuses = []string{ProjectStatusRender, ProjectStatusObra, ProjectStatusFinalizado}

// ProjectTags is the closed set of tag values a project may carry.
var ProjectTags = []string{
	"residencial",
	"comercial",
	"industrial",
	"piscinas",
	"restaurantes",
	"hoteles",
	"oficinas",
	"moderno",
	"clasico",
	"minimalista",
	"sustentable",
	"lujo",
	"economico",
	"reforma",
	"construccion_nueva",
}

func ValidProjectType(t string) bool {
	for _, v := range projectTypes {
		if v == t {
			return true
		}
	}
	return false
}

func ValidProjectStatus(s string) bool {
	for _, v := range projectStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func ValidProjectTag(tag string) bool {
	for _, v := range ProjectTags {
		if v == tag {
			return true
		}
	}
	return false
}

// Project represents one portfolio entry of the studio.
type Project struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Content     string    `json:"content" gorm:"type:text"`
	Year        int       `json:"year" gorm:"not null;index"`
	Location    string    `json:"location" gorm:"type:text"`
	Client      string    `json:"client" gorm:"type:text"`
	Architect   string    `json:"architect" gorm:"type:text"`
	ProjectType string    `json:"projectType" gorm:"type:text;not null;index"`
	Status      string    `json:"status" gorm:"type:text;index"`
	Area        string    `json:"area" gorm:"type:text"`

	Tags           StringList `json:"tags" gorm:"type:text"`
	Slug           string     `json:"slug" gorm:"type:text;uniqueIndex"`
	SearchableText string     `json:"searchableText" gorm:"type:text;index"`

	IsFeatured bool `json:"isFeatured" gorm:"index"`
	IsPublic   bool `json:"isPublic" gorm:"index"`
	IsActive   bool `json:"isActive" gorm:"index"`
	Order      int  `json:"order"`
	ViewCount  int  `json:"viewCount"`

	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`

	Media     []MediaFile `json:"media,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	BlogPosts []BlogPost  `json:"blogPosts,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:SET NULL"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave derives the slug and the denormalized search text. The slug
// is <title>-<year>, disambiguated with a numeric suffix when another
// project already holds it.
func (p *Project) BeforeSave(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = ProjectStatusRender
	}

	if p.Slug == "" && p.Title != "" {
		base := fmt.Sprintf("%s-%d", Slugify(p.Title), p.Year)
		slug, err := uniqueProjectSlug(tx, base, p.ID)
		if err != nil {
			return err
		}
		p.Slug = slug
	}

	p.SearchableText = strings.ToLower(strings.Join([]string{
		p.Title,
		p.Description,
		p.Content,
		p.Location,
		p.Client,
		p.Architect,
		strings.Join(p.Tags, " "),
		fmt.Sprintf("%d", p.Year),
	}, " "))

	return nil
}

func uniqueProjectSlug(tx *gorm.DB, base string, selfID uuid.UUID) (string, error) {
	candidate := base
	for suffix := 1; ; suffix++ {
		var count int64
		err := tx.Model(&Project{}).
			Where("slug = ? AND id <> ?", candidate, selfID).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}
