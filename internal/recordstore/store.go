package recordstore

import (
	"context"

	"support-pipeline-go/internal/model"
)

// Store persists classified support issues in an external tabular store and
// aggregates the current set into a summary. Append reports failure as a
// boolean and never raises; Summarize reports failure inside the summary.
type Store interface {
	Append(ctx context.Context, msg model.Message, cls model.Classification) bool
	Summarize(ctx context.Context) model.Summary
}
