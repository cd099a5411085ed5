package api

import (
	"context"

	"github.com/divanco-studio/backend/models"
	"github.com/divanco-studio/backend/services"
)

// storeUpload pushes a spooled upload through the media gateway, picking
// the pipeline by upload kind, and returns the MediaFile skeleton for the
// caller to attach and persist. The gateway removes the temp file.
func storeUpload(ctx context.Context, storage services.MediaStorage, upload *uploadedFile, folder string) (*models.MediaFile, error) {
	media := &models.MediaFile{
		Filename: upload.Filename,
		MimeType: upload.MimeType,
		Size:     upload.Size,
	}

	switch upload.Kind {
	case uploadKindImage:
		set, err := storage.UploadResponsiveImage(ctx, upload.Path, folder)
		if err != nil {
			return nil, err
		}
		media.URLs = set.ToVariantSet()
		media.Metadata = models.JSONMap{
			"width":  set.Desktop.Width,
			"height": set.Desktop.Height,
		}

	case uploadKindVideo:
		asset, err := storage.UploadVideo(ctx, upload.Path, folder)
		if err != nil {
			return nil, err
		}
		media.URLs = models.VariantSet{
			"original": {URL: asset.URL, PublicID: asset.PublicID, Width: asset.Width, Height: asset.Height},
		}
		media.Metadata = models.JSONMap{
			"duration": asset.Duration,
			"format":   asset.Format,
			"bytes":    asset.Bytes,
		}
		media.Type = models.MediaTypeVideo

	case uploadKindDocument:
		asset, err := storage.UploadDocument(ctx, upload.Path, folder)
		if err != nil {
			return nil, err
		}
		media.URLs = models.VariantSet{
			"original": {URL: asset.URL, PublicID: asset.PublicID},
		}
		media.Metadata = models.JSONMap{
			"format": asset.Format,
			"bytes":  asset.Bytes,
		}
		media.Type = models.MediaTypePlano
	}

	return media, nil
}
