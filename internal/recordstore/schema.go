package recordstore

// The store's wire format lives in this file and nowhere else: fixed field
// names keyed to typed value wrappers (title, rich text, select, date).

import "support-pipeline-go/internal/model"

type pageProperties struct {
	Title       titleProperty    `json:"Title"`
	Description richTextProperty `json:"Description"`
	RootCause   selectProperty   `json:"Root Cause"`
	Priority    selectProperty   `json:"Priority"`
	Status      selectProperty   `json:"Status"`
	Date        dateProperty     `json:"Date"`
}

type titleProperty struct {
	Title []richText `json:"title"`
}

type richTextProperty struct {
	RichText []richText `json:"rich_text"`
}

type richText struct {
	Text textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

type selectProperty struct {
	Select *selectOption `json:"select"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateProperty struct {
	Date *dateValue `json:"date"`
}

type dateValue struct {
	Start string `json:"start"`
}

// propertiesFromRecord serializes a record into the store's property bag.
func propertiesFromRecord(r model.Record) pageProperties {
	return pageProperties{
		Title:       titleProperty{Title: []richText{{Text: textContent{Content: r.Title}}}},
		Description: richTextProperty{RichText: []richText{{Text: textContent{Content: r.Description}}}},
		RootCause:   selectProperty{Select: &selectOption{Name: string(r.Category)}},
		Priority:    selectProperty{Select: &selectOption{Name: string(r.Priority)}},
		Status:      selectProperty{Select: &selectOption{Name: string(r.Status)}},
		Date:        dateProperty{Date: &dateValue{Start: r.Date}},
	}
}

// recordFromProperties deserializes one queried row back into a record.
// Missing or out-of-vocabulary selects normalize to Other/Medium so the
// closed enums hold for every record the summary sees.
func recordFromProperties(p pageProperties) model.Record {
	r := model.Record{
		Title:    "No title",
		Category: model.CategoryOther,
		Priority: model.PriorityMedium,
	}

	if len(p.Title.Title) > 0 {
		r.Title = p.Title.Title[0].Text.Content
	}
	if len(p.Description.RichText) > 0 {
		r.Description = p.Description.RichText[0].Text.Content
	}
	if p.RootCause.Select != nil {
		r.Category = model.ParseCategory(p.RootCause.Select.Name)
	}
	if p.Priority.Select != nil {
		r.Priority = model.ParsePriority(p.Priority.Select.Name)
	}
	if p.Status.Select != nil {
		r.Status = model.Status(p.Status.Select.Name)
	}
	if p.Date.Date != nil {
		r.Date = p.Date.Date.Start
	}

	return r
}
