package domain

import (
	"time"
	"unicode/utf8"
)

// MaxContentLength is the column width of messages.content, counted in characters.
const MaxContentLength = 1000

// Record is one persisted, immutable row representing a successfully
// dequeued queue item. ID is assigned by the store on insert.
type Record struct {
	ID          int64     `json:"id"`
	Content     string    `json:"content"`
	ProcessedAt time.Time `json:"processed_at"`
}

// NewRecord builds a Record for a payload popped at processedAt.
// The timestamp is normalised to UTC; the store never sets it.
func NewRecord(content string, processedAt time.Time) *Record {
	return &Record{Content: content, ProcessedAt: processedAt.UTC()}
}

// Validate enforces the content invariant: non-empty and at most
// MaxContentLength characters.
func (r *Record) Validate() error {
	return ValidateContent(r.Content)
}

// ValidateContent is shared by the producer (before push) and the consumer
// (after pop) so both sides reject the same payloads.
func ValidateContent(content string) error {
	if content == "" || utf8.RuneCountInString(content) > MaxContentLength {
		return ErrInvalidContent
	}
	return nil
}

// SubmitRequest is the inbound payload for a single producer submission.
type SubmitRequest struct {
	Content string `json:"content"`
}

func (r *SubmitRequest) Validate() error {
	return ValidateContent(r.Content)
}

// SubmitBatchRequest wraps several submissions pushed in one call.
type SubmitBatchRequest struct {
	Messages []SubmitRequest `json:"messages"`
}
