package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/divanco-studio/backend/errs"
	"github.com/divanco-studio/backend/models"
)

func newTestStorage(t *testing.T, baseURL string) *CloudinaryStorage {
	t.Helper()

	storage, err := NewCloudinaryStorage(map[string]string{
		"CLOUDINARY_CLOUD_NAME": "testcloud",
		"CLOUDINARY_API_KEY":    "key123",
		"CLOUDINARY_API_SECRET": "secret456",
		"CLOUDINARY_BASE_URL":   baseURL,
	})
	if err != nil {
		t.Fatalf("NewCloudinaryStorage failed: %v", err)
	}
	return storage
}

func writeTempUpload(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatalf("failed to write temp upload: %v", err)
	}
	return path
}

type recordedUpload struct {
	path           string
	folder         string
	transformation string
	signature      string
	apiKey         string
}

func TestNewCloudinaryStorageRequiresCredentials(t *testing.T) {
	_, err := NewCloudinaryStorage(map[string]string{
		"CLOUDINARY_CLOUD_NAME": "testcloud",
	})
	if err == nil {
		t.Fatal("expected error for missing credentials")
	}
}

func TestUploadResponsiveImageThreeVariants(t *testing.T) {
	var mu sync.Mutex
	var uploads []recordedUpload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("bad multipart request: %v", err)
		}
		mu.Lock()
		uploads = append(uploads, recordedUpload{
			path:           r.URL.Path,
			folder:         r.FormValue("folder"),
			transformation: r.FormValue("transformation"),
			signature:      r.FormValue("signature"),
			apiKey:         r.FormValue("api_key"),
		})
		n := len(uploads)
		mu.Unlock()

		json.NewEncoder(w).Encode(map[string]interface{}{
			"public_id":  fmt.Sprintf("projects/casa/variant-%d", n),
			"secure_url": fmt.Sprintf("https://res.example.com/variant-%d.webp", n),
			"width":      1920,
			"height":     1080,
		})
	}))
	defer server.Close()

	storage := newTestStorage(t, server.URL)
	path := writeTempUpload(t, "render.jpg")

	set, err := storage.UploadResponsiveImage(context.Background(), path, "divanco/projects/casa")
	if err != nil {
		t.Fatalf("UploadResponsiveImage failed: %v", err)
	}

	if len(uploads) != 3 {
		t.Fatalf("upload requests = %d, want 3", len(uploads))
	}
	wantFolders := []string{
		"divanco/projects/casa/desktop",
		"divanco/projects/casa/mobile",
		"divanco/projects/casa/thumbnails",
	}
	wantTransformations := []string{
		desktopTransformation,
		mobileTransformation,
		thumbnailTransformation,
	}
	for i, upload := range uploads {
		if upload.path != "/v1_1/testcloud/image/upload" {
			t.Errorf("request %d path = %q", i, upload.path)
		}
		if upload.folder != wantFolders[i] {
			t.Errorf("request %d folder = %q, want %q", i, upload.folder, wantFolders[i])
		}
		if upload.transformation != wantTransformations[i] {
			t.Errorf("request %d transformation = %q, want %q", i, upload.transformation, wantTransformations[i])
		}
		if upload.apiKey != "key123" {
			t.Errorf("request %d api_key = %q", i, upload.apiKey)
		}
		if upload.signature == "" {
			t.Errorf("request %d missing signature", i)
		}
	}

	if set.Desktop.URL == "" || set.Mobile.URL == "" || set.Thumbnail.URL == "" {
		t.Fatal("variant set incomplete")
	}
	variants := set.ToVariantSet()
	for _, key := range []string{"desktop", "mobile", "thumbnail"} {
		if variants[key].PublicID == "" {
			t.Errorf("ToVariantSet missing %q", key)
		}
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("temp file not removed after successful upload")
	}
}

func TestUploadRemovesTempFileOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Invalid image file"},
		})
	}))
	defer server.Close()

	storage := newTestStorage(t, server.URL)
	path := writeTempUpload(t, "broken.jpg")

	_, err := storage.UploadResponsiveImage(context.Background(), path, "divanco/projects/casa")
	if err == nil {
		t.Fatal("expected upload error")
	}
	if !errs.IsMediaUploadError(err) {
		t.Fatalf("error type = %v, want media upload error", err)
	}

	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatal("temp file not removed after failed upload")
	}
}

func TestUploadVideoUsesVideoEndpoint(t *testing.T) {
	var gotPath, gotFolder string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		gotPath = r.URL.Path
		gotFolder = r.FormValue("folder")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"public_id":  "projects/casa/videos/tour",
			"secure_url": "https://res.example.com/tour.mp4",
			"width":      1920,
			"height":     1080,
			"duration":   42.5,
			"format":     "mp4",
			"bytes":      1048576,
		})
	}))
	defer server.Close()

	storage := newTestStorage(t, server.URL)
	path := writeTempUpload(t, "tour.mp4")

	asset, err := storage.UploadVideo(context.Background(), path, "divanco/projects/casa")
	if err != nil {
		t.Fatalf("UploadVideo failed: %v", err)
	}
	if gotPath != "/v1_1/testcloud/video/upload" {
		t.Fatalf("endpoint = %q", gotPath)
	}
	if gotFolder != "divanco/projects/casa/videos" {
		t.Fatalf("folder = %q", gotFolder)
	}
	if asset.Duration != 42.5 || asset.Format != "mp4" {
		t.Fatalf("asset = %+v", asset)
	}
}

func TestUploadDocumentUsesRawEndpoint(t *testing.T) {
	var gotPath, gotFolder, gotTransformation string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(32 << 20)
		gotPath = r.URL.Path
		gotFolder = r.FormValue("folder")
		gotTransformation = r.FormValue("transformation")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"public_id":         "projects/casa/documents/planos",
			"secure_url":        "https://res.example.com/planos.pdf",
			"format":            "pdf",
			"bytes":             2048,
			"original_filename": "planos",
		})
	}))
	defer server.Close()

	storage := newTestStorage(t, server.URL)
	path := writeTempUpload(t, "planos.pdf")

	asset, err := storage.UploadDocument(context.Background(), path, "divanco/projects/casa")
	if err != nil {
		t.Fatalf("UploadDocument failed: %v", err)
	}
	if gotPath != "/v1_1/testcloud/raw/upload" {
		t.Fatalf("endpoint = %q", gotPath)
	}
	if gotFolder != "divanco/projects/casa/documents" {
		t.Fatalf("folder = %q", gotFolder)
	}
	if gotTransformation != "" {
		t.Fatalf("documents must upload untransformed, got %q", gotTransformation)
	}
	if asset.OriginalFilename != "planos" {
		t.Fatalf("asset = %+v", asset)
	}
}

func TestDeleteResponsiveImageSetPartialFailure(t *testing.T) {
	var mu sync.Mutex
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		mu.Lock()
		requests++
		mu.Unlock()

		if strings.Contains(r.FormValue("public_id"), "mobile") {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"message": "forced failure"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
	}))
	defer server.Close()

	storage := newTestStorage(t, server.URL)

	set := models.VariantSet{
		"desktop":   {PublicID: "casa/desktop/img"},
		"mobile":    {PublicID: "casa/mobile/img"},
		"thumbnail": {PublicID: "casa/thumbnails/img"},
	}

	err := storage.DeleteResponsiveImageSet(context.Background(), set)
	if err == nil {
		t.Fatal("expected partial failure error")
	}
	if !errs.IsPartialFailureError(err) {
		t.Fatalf("error type = %v, want partial failure", err)
	}
	if requests != 3 {
		t.Fatalf("destroy requests = %d, want all 3 attempted", requests)
	}

	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not an ApiErr: %v", err)
	}
	if !strings.Contains(apiErr.Details, "mobile") {
		t.Fatalf("details %q do not name the failed variant", apiErr.Details)
	}
	if strings.Contains(apiErr.Details, "desktop") {
		t.Fatalf("details %q name a succeeded variant", apiErr.Details)
	}
}

func TestDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"result": "not found"})
	}))
	defer server.Close()

	storage := newTestStorage(t, server.URL)
	if err := storage.DeleteVideo(context.Background(), "casa/videos/gone"); err != nil {
		t.Fatalf("DeleteVideo on missing asset failed: %v", err)
	}
}

func TestSignSortsParameters(t *testing.T) {
	storage := newTestStorage(t, "http://unused")

	params := map[string]string{
		"timestamp": "1700000000",
		"folder":    "divanco/projects/casa",
	}

	sum := sha1.Sum([]byte("folder=divanco/projects/casa&timestamp=1700000000" + "secret456"))
	want := hex.EncodeToString(sum[:])

	if got := storage.sign(params); got != want {
		t.Fatalf("sign = %q, want %q", got, want)
	}
}
