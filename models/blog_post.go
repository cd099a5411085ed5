package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blog post publication states.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

var postStatuses = []string{PostStatusDraft, PostStatusPublished, PostStatusArchived}

func ValidPostStatus(s string) bool {
	for _, v := range postStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// BlogPost represents an article, optionally tied to a project.
type BlogPost struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title   string    `json:"title" gorm:"type:text;not null"`
	Slug    string    `json:"slug" gorm:"type:text;uniqueIndex"`
	Content string    `json:"content" gorm:"type:text;not null"`
	Excerpt string    `json:"excerpt" gorm:"type:text"`

	AuthorID  *uuid.UUID `json:"authorId" gorm:"type:uuid;index"`
	Author    *User      `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:SET NULL"`
	ProjectID *uuid.UUID `json:"projectId" gorm:"type:uuid;index"`
	Project   *Project   `json:"project,omitempty" gorm:"foreignKey:ProjectID;references:ID"`

	Tags           StringList `json:"tags" gorm:"type:text"`
	SearchableText string     `json:"searchableText" gorm:"type:text;index"`

	Status      string     `json:"status" gorm:"type:text;index"`
	IsFeatured  bool       `json:"isFeatured" gorm:"index"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	ViewCount   int        `json:"viewCount"`

	Media []MediaFile `json:"media,omitempty" gorm:"foreignKey:BlogPostID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *BlogPost) BeforeSave(tx *gorm.DB) error {
	if p.Status == "" {
		p.Status = PostStatusDraft
	}

	if p.Slug == "" && p.Title != "" {
		slug, err := uniquePostSlug(tx, Slugify(p.Title), p.ID)
		if err != nil {
			return err
		}
		p.Slug = slug
	}

	p.SearchableText = strings.ToLower(strings.Join([]string{
		p.Title,
		p.Excerpt,
		p.Content,
		strings.Join(p.Tags, " "),
	}, " "))

	return nil
}

// IsPublished reports whether the post is visible on the public site.
func (p *BlogPost) IsPublished() bool {
	return p.Status == PostStatusPublished
}

func uniquePostSlug(tx *gorm.DB, base string, selfID uuid.UUID) (string, error) {
	candidate := base
	for suffix := 1; ; suffix++ {
		var count int64
		err := tx.Model(&BlogPost{}).
			Where("slug = ? AND id <> ?", candidate, selfID).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(suffix)
	}
}
