package notifier

import (
	"fmt"
	"sort"
	"strings"

	"support-pipeline-go/internal/model"
)

// FormatDigest renders the summary as the fixed-format digest text posted to
// the chat channel.
func FormatDigest(summary model.Summary) string {
	var b strings.Builder

	b.WriteString("📊 *Daily Maintenance Report*\n\n")
	b.WriteString(fmt.Sprintf("*Total Issues:* %d\n\n", summary.Total))

	b.WriteString("*By Category:*\n")
	b.WriteString(categoryLines(summary.ByCategory))
	b.WriteString("\n\n")

	b.WriteString("*By Priority:*\n")
	b.WriteString(priorityLines(summary.ByPriority))
	b.WriteString("\n\n")

	b.WriteString("*High Priority Items:*\n")
	b.WriteString(highPriorityLines(summary.HighPriority))
	b.WriteString("\n")

	return b.String()
}

func categoryLines(counts map[model.Category]int) string {
	if len(counts) == 0 {
		return "• None"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("• %s: %d", k, counts[model.Category(k)]))
	}
	return strings.Join(lines, "\n")
}

func priorityLines(counts map[model.Priority]int) string {
	if len(counts) == 0 {
		return "• None"
	}
	// High, Medium, Low in that order, then anything unexpected.
	order := []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}
	var lines []string
	for _, p := range order {
		if n, ok := counts[p]; ok {
			lines = append(lines, fmt.Sprintf("• %s: %d", p, n))
		}
	}
	for p, n := range counts {
		if p != model.PriorityHigh && p != model.PriorityMedium && p != model.PriorityLow {
			lines = append(lines, fmt.Sprintf("• %s: %d", p, n))
		}
	}
	return strings.Join(lines, "\n")
}

func highPriorityLines(titles []string) string {
	if len(titles) == 0 {
		return "✅ No high priority issues"
	}
	if len(titles) > model.MaxHighPriorityTitles {
		titles = titles[:model.MaxHighPriorityTitles]
	}
	lines := make([]string, 0, len(titles))
	for _, t := range titles {
		lines = append(lines, "🔴 "+t)
	}
	return strings.Join(lines, "\n")
}
