package services

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/divanco-studio/backend/config"
	"github.com/divanco-studio/backend/errs"
	"github.com/divanco-studio/backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Transformation strings for the three image renditions. c_limit never
// crops; the thumbnail uses c_fill with center gravity for an exact
// 400x300 card image.
const (
	desktopTransformation   = "c_limit,w_1920,h_1080,q_auto:good,f_webp"
	mobileTransformation    = "c_limit,w_768,h_576,q_auto:good,f_webp"
	thumbnailTransformation = "c_fill,g_center,w_400,h_300,q_auto:good,f_webp"
	videoTransformation     = "c_limit,w_1920,h_1080,q_auto,f_auto"
)

// CloudinaryStorage implements MediaStorage against the Cloudinary
// upload API. Requests are signed with SHA-1 over the sorted parameters
// plus the API secret, per the provider's signing scheme.
type CloudinaryStorage struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client
	logger    zerolog.Logger
}

// NewCloudinaryStorage builds the gateway from configuration. Required
// keys: CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY, CLOUDINARY_API_SECRET.
func NewCloudinaryStorage(cfg map[string]string) (*CloudinaryStorage, error) {
	cloudName := config.GetString(cfg, "CLOUDINARY_CLOUD_NAME", "")
	apiKey := config.GetString(cfg, "CLOUDINARY_API_KEY", "")
	apiSecret := config.GetString(cfg, "CLOUDINARY_API_SECRET", "")

	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials are not configured")
	}

	timeout := time.Duration(config.GetInt(cfg, "CLOUDINARY_TIMEOUT_SECONDS", 60)) * time.Second

	return &CloudinaryStorage{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   config.GetString(cfg, "CLOUDINARY_BASE_URL", "https://api.cloudinary.com"),
		client:    &http.Client{Timeout: timeout},
		logger:    log.With().Str("service", "cloudinary").Logger(),
	}, nil
}

// uploadResult mirrors the fields of the provider's upload response that
// the application consumes.
type uploadResult struct {
	PublicID         string  `json:"public_id"`
	SecureURL        string  `json:"secure_url"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	Format           string  `json:"format"`
	Bytes            int64   `json:"bytes"`
	Duration         float64 `json:"duration"`
	OriginalFilename string  `json:"original_filename"`
	Error            *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// UploadResponsiveImage uploads the three renditions of a local image.
// The temporary file is removed on every path, success and failure.
func (s *CloudinaryStorage) UploadResponsiveImage(ctx context.Context, path, folder string) (*ResponsiveImageSet, error) {
	defer s.removeTempFile(path)

	desktop, err := s.upload(ctx, path, "image", map[string]string{
		"folder":         folder + "/desktop",
		"transformation": desktopTransformation,
	})
	if err != nil {
		return nil, errs.NewMediaUploadError("responsive image", err)
	}

	mobile, err := s.upload(ctx, path, "image", map[string]string{
		"folder":         folder + "/mobile",
		"transformation": mobileTransformation,
	})
	if err != nil {
		return nil, errs.NewMediaUploadError("responsive image", err)
	}

	thumbnail, err := s.upload(ctx, path, "image", map[string]string{
		"folder":         folder + "/thumbnails",
		"transformation": thumbnailTransformation,
	})
	if err != nil {
		return nil, errs.NewMediaUploadError("responsive image", err)
	}

	return &ResponsiveImageSet{
		Desktop:   asVariant(desktop),
		Mobile:    asVariant(mobile),
		Thumbnail: asVariant(thumbnail),
	}, nil
}

// UploadVideo uploads a single limit-resized video rendition.
func (s *CloudinaryStorage) UploadVideo(ctx context.Context, path, folder string) (*VideoAsset, error) {
	defer s.removeTempFile(path)

	result, err := s.upload(ctx, path, "video", map[string]string{
		"folder":         folder + "/videos",
		"transformation": videoTransformation,
	})
	if err != nil {
		return nil, errs.NewMediaUploadError("video", err)
	}

	return &VideoAsset{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Duration: result.Duration,
		Width:    result.Width,
		Height:   result.Height,
		Format:   result.Format,
		Bytes:    result.Bytes,
	}, nil
}

// UploadDocument uploads a raw resource with no transformation.
func (s *CloudinaryStorage) UploadDocument(ctx context.Context, path, folder string) (*DocumentAsset, error) {
	defer s.removeTempFile(path)

	result, err := s.upload(ctx, path, "raw", map[string]string{
		"folder": folder + "/documents",
	})
	if err != nil {
		return nil, errs.NewMediaUploadError("document", err)
	}

	return &DocumentAsset{
		URL:              result.SecureURL,
		PublicID:         result.PublicID,
		Format:           result.Format,
		Bytes:            result.Bytes,
		OriginalFilename: result.OriginalFilename,
	}, nil
}

// DeleteResponsiveImageSet destroys every present variant in parallel
// and waits for all of them. A partial failure leaves the succeeded
// deletions in place and surfaces one error naming the failed variants.
func (s *CloudinaryStorage) DeleteResponsiveImageSet(ctx context.Context, set models.VariantSet) error {
	type outcome struct {
		variant string
		err     error
	}

	var wg sync.WaitGroup
	results := make(chan outcome, len(set))

	for _, variant := range []string{"desktop", "mobile", "thumbnail"} {
		entry, ok := set[variant]
		if !ok || entry.PublicID == "" {
			continue
		}
		wg.Add(1)
		go func(variant, publicID string) {
			defer wg.Done()
			results <- outcome{variant, s.destroy(ctx, "image", publicID)}
		}(variant, entry.PublicID)
	}

	wg.Wait()
	close(results)

	var failed []string
	var causes []error
	for res := range results {
		if res.err != nil {
			failed = append(failed, res.variant)
			causes = append(causes, res.err)
		}
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return errs.NewPartialDeleteError(failed, errors.Join(causes...))
	}
	return nil
}

// DeleteVideo destroys a video asset. The provider requires the caller
// to declare the resource type for non-image deletes.
func (s *CloudinaryStorage) DeleteVideo(ctx context.Context, publicID string) error {
	if err := s.destroy(ctx, "video", publicID); err != nil {
		return errs.NewMediaDeleteError(publicID, err)
	}
	return nil
}

// DeleteDocument destroys a raw asset.
func (s *CloudinaryStorage) DeleteDocument(ctx context.Context, publicID string) error {
	if err := s.destroy(ctx, "raw", publicID); err != nil {
		return errs.NewMediaDeleteError(publicID, err)
	}
	return nil
}

// upload POSTs one signed multipart upload request.
func (s *CloudinaryStorage) upload(ctx context.Context, path, resourceType string, params map[string]string) (*uploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload file: %w", err)
	}
	defer file.Close()

	params["timestamp"] = strconv.FormatInt(time.Now().Unix(), 10)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}

	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}
	if err := writer.WriteField("api_key", s.apiKey); err != nil {
		return nil, err
	}
	if err := writer.WriteField("signature", s.sign(params)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/upload", s.baseURL, s.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary request failed: %w", err)
	}
	defer resp.Body.Close()

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode cloudinary response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("cloudinary error: %s", result.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cloudinary returned status %d", resp.StatusCode)
	}

	return &result, nil
}

// destroy POSTs one signed delete-by-identifier request.
func (s *CloudinaryStorage) destroy(ctx context.Context, resourceType, publicID string) error {
	params := map[string]string{
		"public_id": publicID,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}

	form := url.Values{}
	for key, value := range params {
		form.Set(key, value)
	}
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.sign(params))

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/destroy", s.baseURL, s.cloudName, resourceType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Result string `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode cloudinary response: %w", err)
	}
	if result.Error != nil {
		return fmt.Errorf("cloudinary error: %s", result.Error.Message)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("cloudinary destroy returned %q", result.Result)
	}

	return nil
}

// sign computes the request signature: SHA-1 over the sorted parameters
// joined with '&', concatenated with the API secret.
func (s *CloudinaryStorage) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + s.apiSecret))
	return hex.EncodeToString(sum[:])
}

// removeTempFile deletes the per-request temporary upload. A failure
// here must never fail the surrounding operation.
func (s *CloudinaryStorage) removeTempFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to remove temporary upload file")
	}
}

func asVariant(result *uploadResult) models.ImageVariant {
	return models.ImageVariant{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Width:    result.Width,
		Height:   result.Height,
	}
}
