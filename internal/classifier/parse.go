package classifier

import (
	"regexp"
	"strings"

	"support-pipeline-go/internal/model"
)

var (
	categoryRe = regexp.MustCompile(`(?im)^\s*category:\s*(.+)$`)
	priorityRe = regexp.MustCompile(`(?im)^\s*priority:\s*(.+)$`)
	summaryRe  = regexp.MustCompile(`(?im)^\s*summary:\s*(.+)$`)
)

// ParseClassification extracts the three labeled fields from the model's
// reply. Fields are matched line-anchored and case-insensitively, first
// match wins. Each field that is absent gets its own default, so a partial
// reply still yields a usable classification.
func ParseClassification(text, subject string) model.Classification {
	cls := Fallback(subject)

	if m := categoryRe.FindStringSubmatch(text); m != nil {
		cls.Category = model.ParseCategory(strings.TrimSpace(m[1]))
	}
	if m := priorityRe.FindStringSubmatch(text); m != nil {
		cls.Priority = model.ParsePriority(strings.TrimSpace(m[1]))
	}
	if m := summaryRe.FindStringSubmatch(text); m != nil {
		if summary := strings.TrimSpace(m[1]); summary != "" {
			cls.Summary = summary
		}
	}

	return cls
}
