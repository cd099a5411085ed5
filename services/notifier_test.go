package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/models"
)

func TestFormatHashtag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"residencial", "#Residencial"},
		{"construccion_nueva", "#ConstruccionNueva"},
		{"obra-proceso", "#ObraProceso"},
		{"piscinas climatizadas", "#PiscinasClimatizadas"},
	}
	for _, tc := range cases {
		if got := FormatHashtag(tc.in); got != tc.want {
			t.Errorf("FormatHashtag(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func openSubscriberDB(t *testing.T) database.Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Subscriber{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database.New(db)
}

func newTestResend(t *testing.T, baseURL string) *ResendClient {
	t.Helper()

	client, err := NewResendClient(map[string]string{
		"RESEND_API_KEY":    "re_test",
		"RESEND_FROM_EMAIL": "estudio@divanco.com",
		"RESEND_BASE_URL":   baseURL,
	})
	if err != nil {
		t.Fatalf("NewResendClient failed: %v", err)
	}
	return client
}

func TestNotifyPostPublishedEmailsActiveSubscribers(t *testing.T) {
	var mu sync.Mutex
	var sent []ResendEmailRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer re_test" {
			t.Errorf("authorization = %q", got)
		}
		var req ResendEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		mu.Lock()
		sent = append(sent, req)
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"id": "email-1"})
	}))
	defer server.Close()

	db := openSubscriberDB(t)

	active := models.Subscriber{Email: "ana@example.com", IsActive: true}
	if err := db.SubscriberRepo().Add(&active); err != nil {
		t.Fatalf("failed to seed subscriber: %v", err)
	}
	inactive := models.Subscriber{Email: "baja@example.com", IsActive: false}
	if err := db.SubscriberRepo().Add(&inactive); err != nil {
		t.Fatalf("failed to seed subscriber: %v", err)
	}

	notifier := NewPublishNotifier(db.SubscriberRepo(), newTestResend(t, server.URL), nil, "https://divanco.com", zerolog.Nop())

	post := &models.BlogPost{Title: "Nueva Obra Terminada", Slug: "nueva-obra-terminada", Excerpt: "Resumen."}
	if err := notifier.NotifyPostPublished(post); err != nil {
		t.Fatalf("NotifyPostPublished failed: %v", err)
	}

	if len(sent) != 1 {
		t.Fatalf("emails sent = %d, want only the active subscriber", len(sent))
	}
	email := sent[0]
	if len(email.To) != 1 || email.To[0] != "ana@example.com" {
		t.Fatalf("recipients = %v", email.To)
	}
	if !strings.Contains(email.Subject, "Nueva Obra Terminada") {
		t.Fatalf("subject = %q", email.Subject)
	}
	if !strings.Contains(email.Html, "https://divanco.com/blog/nueva-obra-terminada") {
		t.Fatal("email body missing post link")
	}
	if !strings.Contains(email.Html, "/unsubscribe/"+active.UnsubscribeToken) {
		t.Fatal("email body missing unsubscribe link")
	}
}

func TestNotifyPostPublishedCollectsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid recipient"})
	}))
	defer server.Close()

	db := openSubscriberDB(t)
	sub := models.Subscriber{Email: "ana@example.com", IsActive: true}
	if err := db.SubscriberRepo().Add(&sub); err != nil {
		t.Fatalf("failed to seed subscriber: %v", err)
	}

	notifier := NewPublishNotifier(db.SubscriberRepo(), newTestResend(t, server.URL), nil, "https://divanco.com", zerolog.Nop())

	post := &models.BlogPost{Title: "Nota con Problemas", Slug: "nota-con-problemas"}
	err := notifier.NotifyPostPublished(post)
	if err == nil {
		t.Fatal("expected aggregated failure")
	}
	if !strings.Contains(err.Error(), "invalid recipient") {
		t.Fatalf("error %q does not surface the channel failure", err)
	}
}

func TestTweetTextIncludesLinkAndHashtags(t *testing.T) {
	notifier := NewPublishNotifier(nil, nil, nil, "https://divanco.com/", zerolog.Nop())

	post := &models.BlogPost{
		Title: "Nueva Obra Terminada",
		Slug:  "nueva-obra-terminada",
		Tags:  models.StringList{"residencial", "construccion_nueva", "moderno", "lujo"},
	}

	text := notifier.tweetText(post)
	if !strings.Contains(text, "Nueva Obra Terminada") {
		t.Fatalf("tweet %q missing title", text)
	}
	if !strings.Contains(text, "https://divanco.com/blog/nueva-obra-terminada") {
		t.Fatalf("tweet %q missing link", text)
	}
	if !strings.Contains(text, "#Residencial") || !strings.Contains(text, "#ConstruccionNueva") {
		t.Fatalf("tweet %q missing hashtags", text)
	}
	// Only the first three tags become hashtags.
	if strings.Contains(text, "#Lujo") {
		t.Fatalf("tweet %q carries more than three hashtags", text)
	}
}
