package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/divanco-studio/backend/models"
)

func createProject(t *testing.T, env *testEnv, token string, body map[string]interface{}) models.Project {
	t.Helper()

	rec := env.do(t, http.MethodPost, "/projects", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project status = %d: %s", rec.Code, rec.Body.String())
	}
	var project models.Project
	decodeData(t, rec, &project)
	return project
}

func TestCreateProjectDerivesSlug(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa del Sol",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
		"tags":        []string{"residencial", "piscinas"},
	})

	if project.Slug != "casa-del-sol-2024" {
		t.Fatalf("slug = %q", project.Slug)
	}
	if project.Status != models.ProjectStatusRender {
		t.Fatalf("status = %q, want default render", project.Status)
	}
	if !project.IsPublic || !project.IsActive {
		t.Fatal("new project should default to public and active")
	}

	// Same title and year gets a disambiguated slug, not an error.
	second := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa del Sol",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
	})
	if second.Slug != "casa-del-sol-2024-1" {
		t.Fatalf("second slug = %q", second.Slug)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	cases := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{
			name:  "short title",
			body:  map[string]interface{}{"title": "Casa", "year": 2024, "projectType": models.ProjectTypeProyecto},
			field: "title",
		},
		{
			name:  "year too old",
			body:  map[string]interface{}{"title": "Casa Vieja", "year": 1990, "projectType": models.ProjectTypeProyecto},
			field: "year",
		},
		{
			name:  "unknown project type",
			body:  map[string]interface{}{"title": "Casa Nueva", "year": 2024, "projectType": "Remodelación"},
			field: "projectType",
		},
		{
			name:  "unknown tag",
			body:  map[string]interface{}{"title": "Casa Nueva", "year": 2024, "projectType": models.ProjectTypeProyecto, "tags": []string{"inventado"}},
			field: "tags",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/projects", token, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			envlp := decodeEnvelope(t, rec)
			if envlp.Success {
				t.Fatal("error response marked success")
			}
			if envlp.Field != tc.field {
				t.Fatalf("field = %q, want %q", envlp.Field, tc.field)
			}
		})
	}
}

func TestGetProjectBySlug(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa Laguna",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
	})

	rec := env.do(t, http.MethodGet, "/projects/"+project.Slug, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got models.Project
	decodeData(t, rec, &got)
	if got.ID != project.ID {
		t.Fatal("wrong project returned")
	}

	rec = env.do(t, http.MethodGet, "/projects/no-existe", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown slug status = %d, want 404", rec.Code)
	}
}

func TestListProjectsPagination(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	for i := 0; i < 3; i++ {
		createProject(t, env, token, map[string]interface{}{
			"title":       "Casa Numero " + string(rune('A'+i)),
			"year":        2024,
			"projectType": models.ProjectTypeProyecto,
		})
	}

	rec := env.do(t, http.MethodGet, "/projects?page=1&limit=2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	envlp := decodeEnvelope(t, rec)
	if envlp.Pagination == nil {
		t.Fatal("list response missing pagination")
	}
	if envlp.Pagination.TotalItems != 3 || envlp.Pagination.TotalPages != 2 || envlp.Pagination.ItemsPerPage != 2 {
		t.Fatalf("pagination = %+v", envlp.Pagination)
	}
}

func TestSoftDeletedProjectDisappearsFromPublicList(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa Laguna",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
	})

	rec := env.do(t, http.MethodDelete, "/projects/"+project.ID.String(), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/projects", "", nil)
	listEnv := decodeEnvelope(t, rec)
	if listEnv.Pagination.TotalItems != 0 {
		t.Fatalf("soft-deleted project still listed: %+v", listEnv.Pagination)
	}

	rec = env.do(t, http.MethodGet, "/projects/"+project.Slug, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("soft-deleted slug status = %d, want 404", rec.Code)
	}
}

func TestUpdateProjectPartial(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa Laguna",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
		"location":    "Punta del Este",
	})

	rec := env.do(t, http.MethodPut, "/projects/"+project.ID.String(), token, map[string]interface{}{
		"status":     models.ProjectStatusObra,
		"isFeatured": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated models.Project
	decodeData(t, rec, &updated)
	if updated.Status != models.ProjectStatusObra || !updated.IsFeatured {
		t.Fatalf("updated = status %q featured %v", updated.Status, updated.IsFeatured)
	}
	if updated.Location != "Punta del Este" {
		t.Fatal("untouched field lost on partial update")
	}
}

// multipartUpload builds a multipart body with one file part.
func multipartUpload(t *testing.T, filename, contentType string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create file part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write file part: %v", err)
	}
	for key, value := range fields {
		writer.WriteField(key, value)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, path, token, filename, contentType string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, formType := multipartUpload(t, filename, contentType, content, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", formType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadProjectImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa Laguna",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
	})

	rec := env.upload(t, "/projects/"+project.ID.String()+"/media", token,
		"render.jpg", "image/jpeg", []byte("fake image"), map[string]string{
			"mediaType":   models.MediaTypeRender,
			"description": "Render frontal",
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}

	var media models.MediaFile
	decodeData(t, rec, &media)
	if media.Type != models.MediaTypeRender {
		t.Fatalf("media type = %q", media.Type)
	}
	if media.URLs["desktop"].URL == "" || media.URLs["mobile"].URL == "" || media.URLs["thumbnail"].URL == "" {
		t.Fatalf("variant URLs incomplete: %+v", media.URLs)
	}
	if env.storage.uploadCount() != 1 {
		t.Fatalf("gateway uploads = %d, want 1", env.storage.uploadCount())
	}
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa Laguna",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
	})

	rec := env.upload(t, "/projects/"+project.ID.String()+"/media", token,
		"virus.exe", "application/x-msdownload", []byte("nope"), nil)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415: %s", rec.Code, rec.Body.String())
	}
	if env.storage.uploadCount() != 0 {
		t.Fatal("rejected upload reached the gateway")
	}
}

func TestUploadRejectsUnknownMediaTypeBeforeGateway(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa Laguna",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
	})

	rec := env.upload(t, "/projects/"+project.ID.String()+"/media", token,
		"render.jpg", "image/jpeg", []byte("fake image"), map[string]string{
			"mediaType": "inventado",
		})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	envlp := decodeEnvelope(t, rec)
	if envlp.Field != "mediaType" {
		t.Fatalf("field = %q, want mediaType", envlp.Field)
	}
	if env.storage.uploadCount() != 0 {
		t.Fatal("invalid mediaType still reached the gateway")
	}
}

func TestUploadEnforcesSizeCeilings(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa Laguna",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
	})

	cases := []struct {
		name        string
		filename    string
		contentType string
		size        int
	}{
		{name: "image over 10MB", filename: "render.jpg", contentType: "image/jpeg", size: 10*1024*1024 + 1},
		{name: "pdf over 20MB", filename: "planos.pdf", contentType: "application/pdf", size: 20*1024*1024 + 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.upload(t, "/projects/"+project.ID.String()+"/media", token,
				tc.filename, tc.contentType, bytes.Repeat([]byte("a"), tc.size), nil)
			if rec.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("status = %d, want 413", rec.Code)
			}
			if env.storage.uploadCount() != 0 {
				t.Fatal("oversized upload reached the gateway")
			}
		})
	}
}

func TestFeaturedUploadReplacesMainImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	project := createProject(t, env, token, map[string]interface{}{
		"title":       "Casa Laguna",
		"year":        2024,
		"projectType": models.ProjectTypeProyecto,
	})

	rec := env.upload(t, "/projects/"+project.ID.String()+"/media", token,
		"portada-v1.jpg", "image/jpeg", []byte("v1"), map[string]string{"type": "featured"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("first upload status = %d: %s", rec.Code, rec.Body.String())
	}
	var first models.MediaFile
	decodeData(t, rec, &first)
	if !first.IsMain {
		t.Fatal("featured upload not marked main")
	}

	rec = env.upload(t, "/projects/"+project.ID.String()+"/media", token,
		"portada-v2.jpg", "image/jpeg", []byte("v2"), map[string]string{"type": "featured"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("second upload status = %d: %s", rec.Code, rec.Body.String())
	}

	if len(env.storage.deletedSets) != 1 {
		t.Fatalf("remote deletes = %d, want the replaced set", len(env.storage.deletedSets))
	}

	main, err := env.db.MediaFileRepo().MainForProject(project.ID)
	if err != nil {
		t.Fatalf("MainForProject failed: %v", err)
	}
	if main == nil || main.Filename != "portada-v2.jpg" {
		t.Fatal("replacement did not become the main image")
	}

	files, err := env.db.MediaFileRepo().FindByProject(project.ID)
	if err != nil {
		t.Fatalf("FindByProject failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("media rows = %d, want replaced row removed", len(files))
	}
}
