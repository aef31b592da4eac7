package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/model"
)

const (
	notionVersion = "2022-06-28"
	notionTimeout = 30 * time.Second
	queryPageSize = 100
)

// NotionStore implements Store against the Notion API, addressed by a fixed
// database id.
type NotionStore struct {
	token      string
	databaseID string
	apiBase    string
	client     *http.Client
	clock      func() time.Time
}

// NewNotionStore creates a record store from configuration.
func NewNotionStore(cfg *config.NotionConfig) *NotionStore {
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = "https://api.notion.com"
	}
	return &NotionStore{
		token:      cfg.Token,
		databaseID: cfg.DatabaseID,
		apiBase:    apiBase,
		client:     &http.Client{Timeout: notionTimeout},
		clock:      time.Now,
	}
}

// Configured reports whether the store has a token and database id.
func (s *NotionStore) Configured() bool {
	return s.token != "" && s.databaseID != ""
}

type createPageRequest struct {
	Parent     pageParent     `json:"parent"`
	Properties pageProperties `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

type queryResponse struct {
	Results []struct {
		Properties pageProperties `json:"properties"`
	} `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// Append writes one record built from the message and its classification.
// Failures are logged and reported as false, never raised.
func (s *NotionStore) Append(ctx context.Context, msg model.Message, cls model.Classification) bool {
	if !s.Configured() {
		logrus.Warn("Record store not configured, skipping append")
		return false
	}

	record := model.NewRecord(msg, cls, s.clock())

	reqBody := createPageRequest{
		Parent:     pageParent{DatabaseID: s.databaseID},
		Properties: propertiesFromRecord(record),
	}

	if err := s.post(ctx, "/v1/pages", reqBody, nil); err != nil {
		logrus.Errorf("Failed to append record %q: %v", record.Title, err)
		return false
	}

	logrus.Infof("Appended record: %s", model.Truncate(record.Title, 50))
	return true
}

// Summarize queries the full record set, following pagination cursors, and
// folds every row into the summary. A query failure yields an error summary.
func (s *NotionStore) Summarize(ctx context.Context) model.Summary {
	if !s.Configured() {
		return model.Summary{Err: "record store not configured"}
	}

	summary := model.NewSummary()
	cursor := ""

	for {
		var resp queryResponse
		reqBody := queryRequest{StartCursor: cursor, PageSize: queryPageSize}
		if err := s.post(ctx, "/v1/databases/"+s.databaseID+"/query", reqBody, &resp); err != nil {
			logrus.Errorf("Failed to query records: %v", err)
			return model.ErrorSummary(err)
		}

		for _, row := range resp.Results {
			record := recordFromProperties(row.Properties)
			summary.Add(record)
		}

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return summary
}

// post sends one JSON request to the store and decodes the response into out
// when out is non-nil.
func (s *NotionStore) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBase+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("store returned %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
