package classifier

import (
	"context"

	"support-pipeline-go/internal/model"
)

// Classifier assigns a category, priority and one-sentence summary to a
// support email. Implementations never fail the caller: any error degrades
// to the deterministic fallback.
type Classifier interface {
	Classify(ctx context.Context, subject, body string) model.Classification
}

// Fallback is the deterministic classification used when no model is
// configured or a call fails: category Other, priority Medium, the subject
// as the summary.
func Fallback(subject string) model.Classification {
	return model.Classification{
		Category: model.CategoryOther,
		Priority: model.PriorityMedium,
		Summary:  subject,
	}
}
