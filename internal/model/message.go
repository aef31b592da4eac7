package model

// MaxBodyChars is the number of body characters kept at ingestion time.
// Everything past it is dropped before the message enters the pipeline.
const MaxBodyChars = 500

// Message is one support email as fetched from the mailbox. Messages are
// immutable after the fetch and are not persisted by this service.
type Message struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Date    string `json:"date"`
	Body    string `json:"body"`
}
