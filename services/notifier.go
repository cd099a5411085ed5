package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/divanco-studio/backend/database"
	"github.com/divanco-studio/backend/models"
)

// Notifier announces a freshly published blog post to the outside world.
type Notifier interface {
	NotifyPostPublished(post *models.BlogPost) error
}

// PublishNotifier fans a publish announcement out to every active
// subscriber by email and posts a tweet. Each channel is best-effort:
// a failure on one channel does not stop the others, and all failures
// are joined into the returned error.
type PublishNotifier struct {
	subscribers *database.SubscriberRepo
	email       *ResendClient
	twitter     *TwitterClient
	siteURL     string
	logger      zerolog.Logger
}

// NewPublishNotifier wires the notifier. email and twitter may be nil
// when the corresponding credentials are not configured; those channels
// are then skipped.
func NewPublishNotifier(subscribers *database.SubscriberRepo, email *ResendClient, twitter *TwitterClient, siteURL string, logger zerolog.Logger) *PublishNotifier {
	return &PublishNotifier{
		subscribers: subscribers,
		email:       email,
		twitter:     twitter,
		siteURL:     strings.TrimRight(siteURL, "/"),
		logger:      logger.With().Str("service", "publishNotifier").Logger(),
	}
}

func (n *PublishNotifier) NotifyPostPublished(post *models.BlogPost) error {
	var failures []error

	if n.email != nil {
		if err := n.emailSubscribers(post); err != nil {
			n.logger.Error().Err(err).Str("postSlug", post.Slug).Msg("failed to email subscribers")
			failures = append(failures, err)
		}
	}

	if n.twitter != nil {
		if err := n.twitter.PostTweet(n.tweetText(post)); err != nil {
			n.logger.Error().Err(err).Str("postSlug", post.Slug).Msg("failed to tweet post announcement")
			failures = append(failures, err)
		}
	}

	return errors.Join(failures...)
}

func (n *PublishNotifier) emailSubscribers(post *models.BlogPost) error {
	subscribers, err := n.subscribers.FindActive()
	if err != nil {
		return fmt.Errorf("failed to load subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		return nil
	}

	postURL := fmt.Sprintf("%s/blog/%s", n.siteURL, post.Slug)
	subject := fmt.Sprintf("Nueva publicación: %s", post.Title)

	var failures []error
	for _, sub := range subscribers {
		unsubscribeURL := fmt.Sprintf("%s/unsubscribe/%s", n.siteURL, sub.UnsubscribeToken)
		html := n.emailBody(post, postURL, unsubscribeURL)
		if err := n.email.SendEmail(subject, html, []string{sub.Email}); err != nil {
			failures = append(failures, fmt.Errorf("subscriber %s: %w", sub.Email, err))
		}
	}
	return errors.Join(failures...)
}

func (n *PublishNotifier) emailBody(post *models.BlogPost, postURL, unsubscribeURL string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<h1>%s</h1>", post.Title))
	if post.Excerpt != "" {
		b.WriteString(fmt.Sprintf("<p>%s</p>", post.Excerpt))
	}
	b.WriteString(fmt.Sprintf(`<p><a href="%s">Leer la publicación completa</a></p>`, postURL))
	b.WriteString(fmt.Sprintf(`<p style="font-size:12px;color:#888"><a href="%s">Cancelar suscripción</a></p>`, unsubscribeURL))
	return b.String()
}

func (n *PublishNotifier) tweetText(post *models.BlogPost) string {
	postURL := fmt.Sprintf("%s/blog/%s", n.siteURL, post.Slug)

	var hashtags []string
	for i, tag := range post.Tags {
		if i >= 3 {
			break
		}
		hashtags = append(hashtags, FormatHashtag(tag))
	}

	text := fmt.Sprintf("%s\n\n%s", post.Title, postURL)
	if len(hashtags) > 0 {
		text += "\n\n" + strings.Join(hashtags, " ")
	}
	return text
}
