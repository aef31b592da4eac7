package mailsource

import (
	"context"
	"time"

	"support-pipeline-go/internal/model"
)

// maxResults caps how many messages one fetch may return.
const maxResults = 50

// Fetcher retrieves support messages received within the lookback window.
// A nil error with an empty slice means the mailbox had no matching mail;
// fetch-level failures are reported through the error.
type Fetcher interface {
	Fetch(ctx context.Context, since time.Duration) ([]model.Message, error)
	Close() error
}
