package mailsource

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/sirupsen/logrus"

	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/credentials"
	"support-pipeline-go/internal/model"
)

// GmailFetcher implements Fetcher using the Gmail API.
type GmailFetcher struct {
	service   *gmail.Service
	userEmail string
}

// NewGmailFetcher creates a Gmail API fetcher. The token comes from the
// configured refresh token when set, otherwise from the persisted credential
// store (bootstrapped once with tools/get_token.go).
func NewGmailFetcher(cfg *config.GmailConfig, store credentials.Store) (*GmailFetcher, error) {
	ctx := context.Background()

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       []string{gmail.GmailReadonlyScope},
		Endpoint:     google.Endpoint,
	}

	var token *oauth2.Token
	if cfg.RefreshToken != "" {
		token = &oauth2.Token{RefreshToken: cfg.RefreshToken}
	} else {
		tok, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("no Gmail credential available (run tools/get_token.go once): %w", err)
		}
		token = tok
	}

	tokenSource := oauth2Config.TokenSource(ctx, token)

	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailFetcher{
		service:   service,
		userEmail: cfg.UserEmail,
	}, nil
}

// Fetch lists messages newer than the cutoff and extracts each one. A
// per-message failure is logged and that message skipped; a list failure is
// returned to the caller.
func (f *GmailFetcher) Fetch(ctx context.Context, since time.Duration) ([]model.Message, error) {
	cutoff := time.Now().Add(-since)
	query := fmt.Sprintf("after:%d", cutoff.Unix())

	response, err := f.service.Users.Messages.List(f.userEmail).
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	var messages []model.Message
	for _, ref := range response.Messages {
		full, err := f.service.Users.Messages.Get(f.userEmail, ref.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			logrus.Warnf("Failed to get message %s: %v", ref.Id, err)
			continue
		}

		msg, err := parseMessage(full)
		if err != nil {
			logrus.Warnf("Failed to parse message %s: %v", ref.Id, err)
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// Close closes the Gmail fetcher (no-op for the Gmail API).
func (f *GmailFetcher) Close() error {
	return nil
}

// parseMessage extracts the pipeline's view of one Gmail message.
func parseMessage(msg *gmail.Message) (model.Message, error) {
	if msg.Payload == nil {
		return model.Message{}, fmt.Errorf("message %s has no payload", msg.Id)
	}

	return model.Message{
		ID:      msg.Id,
		Subject: headerValue(msg.Payload.Headers, "Subject", "No Subject"),
		Sender:  headerValue(msg.Payload.Headers, "From", "Unknown"),
		Date:    headerValue(msg.Payload.Headers, "Date", ""),
		Body:    model.Truncate(plainTextBody(msg.Payload), model.MaxBodyChars),
	}, nil
}

// headerValue returns the first header matching name, case-insensitively.
func headerValue(headers []*gmail.MessagePartHeader, name, fallback string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return fallback
}

// plainTextBody decodes the message body, preferring a dedicated text/plain
// part for multipart messages and falling back to the top-level body.
func plainTextBody(payload *gmail.MessagePart) string {
	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
				if data, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
					return string(data)
				}
				logrus.Warnf("Failed to decode text/plain part")
			}
			// text/plain may sit inside a nested multipart/alternative.
			if strings.HasPrefix(part.MimeType, "multipart/") {
				if body := plainTextBody(part); body != "" {
					return body
				}
			}
		}
		return ""
	}

	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := base64.URLEncoding.DecodeString(payload.Body.Data); err == nil {
			return string(data)
		}
		logrus.Warnf("Failed to decode message body")
	}
	return ""
}
