package services

import (
	"context"

	"github.com/divanco-studio/backend/models"
)

// ResponsiveImageSet holds the three renditions produced for every
// uploaded image. Only the thumbnail is cropped; desktop and mobile are
// limit-resized with the aspect ratio preserved.
type ResponsiveImageSet struct {
	Desktop   models.ImageVariant `json:"desktop"`
	Mobile    models.ImageVariant `json:"mobile"`
	Thumbnail models.ImageVariant `json:"thumbnail"`
}

// ToVariantSet converts the set into the persisted map form.
func (s *ResponsiveImageSet) ToVariantSet() models.VariantSet {
	return models.VariantSet{
		"desktop":   s.Desktop,
		"mobile":    s.Mobile,
		"thumbnail": s.Thumbnail,
	}
}

// VideoAsset describes a stored video upload.
type VideoAsset struct {
	URL      string  `json:"url"`
	PublicID string  `json:"public_id"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	Bytes    int64   `json:"bytes"`
}

// DocumentAsset describes a stored raw document upload.
type DocumentAsset struct {
	URL              string `json:"url"`
	PublicID         string `json:"public_id"`
	Format           string `json:"format"`
	Bytes            int64  `json:"bytes"`
	OriginalFilename string `json:"original_filename"`
}

// MediaStorage is the gateway to the external media service. Handlers
// receive it as an explicit dependency so tests can substitute a double.
//
// Every upload method owns the temporary file at path: it is removed on
// success and on failure alike. No method retries a failed remote call.
type MediaStorage interface {
	UploadResponsiveImage(ctx context.Context, path, folder string) (*ResponsiveImageSet, error)
	UploadVideo(ctx context.Context, path, folder string) (*VideoAsset, error)
	UploadDocument(ctx context.Context, path, folder string) (*DocumentAsset, error)

	DeleteResponsiveImageSet(ctx context.Context, set models.VariantSet) error
	DeleteVideo(ctx context.Context, publicID string) error
	DeleteDocument(ctx context.Context, publicID string) error
}
