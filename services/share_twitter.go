package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/divanco-studio/backend/config"
)

const (
	twitterAPIURL  = "https://api.twitter.com/2/tweets"
	maxTweetLength = 280
)

// TwitterPostRequest represents a tweet creation request
type TwitterPostRequest struct {
	Text string `json:"text"`
}

// TwitterPostResponse represents the v2 API response for a created tweet
type TwitterPostResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// TwitterErrorResponse represents an error response from the Twitter API
type TwitterErrorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// TwitterClient posts announcement tweets via the Twitter v2 API using
// OAuth 1.0a user-context authentication.
type TwitterClient struct {
	client *http.Client
}

// NewTwitterClient builds the client from configuration. Required keys:
// TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN,
// TWITTER_ACCESS_TOKEN_SECRET.
func NewTwitterClient(cfg map[string]string) (*TwitterClient, error) {
	apiKey := config.GetString(cfg, "TWITTER_API_KEY", "")
	apiSecret := config.GetString(cfg, "TWITTER_API_SECRET", "")
	accessToken := config.GetString(cfg, "TWITTER_ACCESS_TOKEN", "")
	accessSecret := config.GetString(cfg, "TWITTER_ACCESS_TOKEN_SECRET", "")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("Twitter credentials are not fully configured")
	}

	oauthConfig := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = 30 * time.Second

	return &TwitterClient{client: httpClient}, nil
}

// PostTweet publishes text to the authenticated account. Text longer than
// the platform limit is truncated with an ellipsis.
func (c *TwitterClient) PostTweet(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("tweet text cannot be empty")
	}
	if len(text) > maxTweetLength {
		text = text[:maxTweetLength-3] + "..."
	}

	payload := TwitterPostRequest{Text: text}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal tweet payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, twitterAPIURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Twitter API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Twitter API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Twitter API response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errResp TwitterErrorResponse
		if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Title != "" {
			return fmt.Errorf("Twitter API error (%d): %s - %s", resp.StatusCode, errResp.Title, errResp.Detail)
		}
		return fmt.Errorf("Twitter API returned status %d", resp.StatusCode)
	}

	return nil
}

// FormatHashtag converts a tag like "construccion_nueva" into "#ConstruccionNueva".
func FormatHashtag(tag string) string {
	parts := strings.FieldsFunc(tag, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	var b strings.Builder
	b.WriteByte('#')
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}
