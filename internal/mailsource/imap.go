package mailsource

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	"github.com/sirupsen/logrus"

	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/model"
)

// IMAPFetcher implements Fetcher over IMAP for mailboxes without API access.
type IMAPFetcher struct {
	client *client.Client
}

// NewIMAPFetcher connects and logs in to the IMAP server.
func NewIMAPFetcher(cfg *config.GmailConfig) (*IMAPFetcher, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.IMAPHost, cfg.IMAPPort), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(cfg.IMAPUser, cfg.IMAPPassword); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	return &IMAPFetcher{client: c}, nil
}

// Fetch searches INBOX for messages within the window and extracts each one.
func (f *IMAPFetcher) Fetch(ctx context.Context, since time.Duration) ([]model.Message, error) {
	_, err := f.client.Select("INBOX", true)
	if err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().Add(-since)

	uids, err := f.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	if len(uids) == 0 {
		return []model.Message{}, nil
	}
	if len(uids) > maxResults {
		uids = uids[:maxResults]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem(), imap.FetchUid}

	ch := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- f.client.Fetch(seqset, items, ch)
	}()

	var messages []model.Message
	for msg := range ch {
		m, err := parseIMAPMessage(msg, section)
		if err != nil {
			logrus.Warnf("Failed to parse IMAP message: %v", err)
			continue
		}
		messages = append(messages, m)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return messages, nil
}

// Close logs out from the IMAP server.
func (f *IMAPFetcher) Close() error {
	return f.client.Logout()
}

// parseIMAPMessage extracts the pipeline's view of one IMAP message.
func parseIMAPMessage(msg *imap.Message, section *imap.BodySectionName) (model.Message, error) {
	m := model.Message{
		ID:      fmt.Sprintf("%d", msg.Uid),
		Subject: "No Subject",
		Sender:  "Unknown",
	}

	if msg.Envelope != nil {
		if msg.Envelope.Subject != "" {
			m.Subject = msg.Envelope.Subject
		}
		if len(msg.Envelope.From) > 0 {
			m.Sender = msg.Envelope.From[0].Address()
		}
		if !msg.Envelope.Date.IsZero() {
			m.Date = msg.Envelope.Date.Format(time.RFC1123Z)
		}
		if msg.Envelope.MessageId != "" {
			m.ID = msg.Envelope.MessageId
		}
	}

	body, err := imapPlainTextBody(msg, section)
	if err != nil {
		return m, err
	}
	m.Body = model.Truncate(body, model.MaxBodyChars)

	return m, nil
}

// imapPlainTextBody reads the message body, preferring a text/plain part.
func imapPlainTextBody(msg *imap.Message, section *imap.BodySectionName) (string, error) {
	r := msg.GetBody(section)
	if r == nil {
		return "", nil
	}

	entity, err := message.Read(r)
	if err != nil {
		return "", fmt.Errorf("failed to read message: %w", err)
	}

	if mr := entity.MultipartReader(); mr != nil {
		fallback := ""
		for {
			p, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", fmt.Errorf("failed to read part: %w", err)
			}

			contentType := p.Header.Get("Content-Type")
			if strings.Contains(contentType, "text/plain") {
				content, err := io.ReadAll(p.Body)
				if err != nil {
					return "", fmt.Errorf("failed to read part body: %w", err)
				}
				return string(content), nil
			}
			if fallback == "" && strings.Contains(contentType, "text/") {
				if content, err := io.ReadAll(p.Body); err == nil {
					fallback = string(content)
				}
			}
		}
		return fallback, nil
	}

	content, err := io.ReadAll(entity.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read message body: %w", err)
	}
	return string(content), nil
}
