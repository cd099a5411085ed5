package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/models"
	"github.com/divanco-studio/backend/services"
)

// fakeStorage satisfies services.MediaStorage without touching the
// network. Like the real gateway it removes the spooled temp file.
type fakeStorage struct {
	mu          sync.Mutex
	uploads     int
	deletedSets []models.VariantSet
}

func (f *fakeStorage) record() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
}

func (f *fakeStorage) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

func (f *fakeStorage) UploadResponsiveImage(ctx context.Context, path, folder string) (*services.ResponsiveImageSet, error) {
	f.record()
	os.Remove(path)
	variant := func(kind string) models.ImageVariant {
		return models.ImageVariant{
			URL:      "https://res.example.com/" + kind,
			PublicID: folder + "/" + kind,
			Width:    1920,
			Height:   1080,
		}
	}
	return &services.ResponsiveImageSet{
		Desktop:   variant("desktop"),
		Mobile:    variant("mobile"),
		Thumbnail: variant("thumbnail"),
	}, nil
}

func (f *fakeStorage) UploadVideo(ctx context.Context, path, folder string) (*services.VideoAsset, error) {
	f.record()
	os.Remove(path)
	return &services.VideoAsset{URL: "https://res.example.com/video.mp4", PublicID: folder + "/video", Duration: 12.5, Format: "mp4"}, nil
}

func (f *fakeStorage) UploadDocument(ctx context.Context, path, folder string) (*services.DocumentAsset, error) {
	f.record()
	os.Remove(path)
	return &services.DocumentAsset{URL: "https://res.example.com/doc.pdf", PublicID: folder + "/doc", Format: "pdf"}, nil
}

func (f *fakeStorage) DeleteResponsiveImageSet(ctx context.Context, set models.VariantSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletedSets = append(f.deletedSets, set)
	return nil
}

func (f *fakeStorage) DeleteVideo(ctx context.Context, publicID string) error    { return nil }
func (f *fakeStorage) DeleteDocument(ctx context.Context, publicID string) error { return nil }

// fakeNotifier counts publish announcements.
type fakeNotifier struct {
	mu    sync.Mutex
	calls int
	slugs []string
}

func (f *fakeNotifier) NotifyPostPublished(post *models.BlogPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.slugs = append(f.slugs, post.Slug)
	return nil
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	handler  http.Handler
	db       database.Database
	storage  *fakeStorage
	notifier *fakeNotifier
	tokens   tokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(gormDB); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	db := database.New(gormDB)
	storage := &fakeStorage{}
	notifier := &fakeNotifier{}
	tokens := tokenIssuer{secret: []byte("test-secret"), ttl: time.Hour}

	return &testEnv{
		handler:  newRouter(db, storage, notifier, tokens),
		db:       db,
		storage:  storage,
		notifier: notifier,
		tokens:   tokens,
	}
}

func (e *testEnv) seedUser(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()

	user := models.User{Name: "Test User", Email: email, Role: role, IsActive: true}
	if err := user.SetPassword("secreto123"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if err := e.db.UserRepo().Add(&user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	token, err := e.tokens.Issue(&user)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return &user, token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, token := e.seedUser(t, "admin@example.com", models.RoleAdmin)
	return token
}

// do runs one request through the router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

type responseEnvelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Field      string          `json:"field"`
	Pagination *Pagination     `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()

	var env responseEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) responseEnvelope {
	t.Helper()

	env := decodeEnvelope(t, rec)
	if env.Data == nil {
		t.Fatalf("response has no data: %q", rec.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	return env
}
