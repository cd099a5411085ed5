package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Media file categories used by the portfolio.
const (
	MediaTypeRender         = "render"
	MediaTypePlano          = "plano"
	MediaTypeVideo          = "video"
	MediaTypeObraProceso    = "obra_proceso"
	MediaTypeObraFinalizada = "obra_finalizada"
	MediaTypeOtro           = "otro"
)

var mediaTypes = []string{
	MediaTypeRender,
	MediaTypePlano,
	MediaTypeVideo,
	MediaTypeObraProceso,
	MediaTypeObraFinalizada,
	MediaTypeOtro,
}

func ValidMediaType(t string) bool {
	for _, v := range mediaTypes {
		if v == t {
			return true
		}
	}
	return false
}

// MediaFile is one stored asset. Exactly one of ProjectID or BlogPostID
// is set; both entity kinds use these normalized rows rather than
// embedded JSON blobs.
type MediaFile struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ProjectID  *uuid.UUID `json:"projectId,omitempty" gorm:"type:uuid;index"`
	BlogPostID *uuid.UUID `json:"blogPostId,omitempty" gorm:"type:uuid;index"`

	Filename    string `json:"filename" gorm:"type:text;not null"`
	MimeType    string `json:"mimeType" gorm:"type:text"`
	Size        int64  `json:"size"`
	Type        string `json:"type" gorm:"type:text;index"`
	Description string `json:"description" gorm:"type:text"`

	Metadata JSONMap    `json:"metadata" gorm:"type:text"`
	URLs     VariantSet `json:"urls" gorm:"type:text"`

	IsMain   bool `json:"isMain"`
	Order    int  `json:"order"`
	IsActive bool `json:"isActive" gorm:"index"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *MediaFile) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Type == "" {
		m.Type = MediaTypeOtro
	}
	return nil
}
