// Package feedback stores clinician reviews of eligibility verdicts.
// Reviewers record whether they agreed with the engine's recommendation;
// the verdicts themselves are never persisted.
package feedback

import (
	"context"
	"io"
	"time"
)

// Feedback is one reviewer's assessment of a verdict the engine produced.
type Feedback struct {
	ID int64 `json:"id,omitempty"`
	// ProfileDigest identifies the donor profile the verdict was produced
	// for, without storing the profile itself.
	ProfileDigest string `json:"profile_digest"`
	// VerdictLabel and Confidence echo the engine's recommendation at
	// review time.
	VerdictLabel  string  `json:"verdict_label"`
	Confidence    float64 `json:"confidence"`
	PrimaryReason string  `json:"primary_reason,omitempty"`
	// ReviewerVerdict is the label the reviewer considered correct.
	ReviewerVerdict string    `json:"reviewer_verdict"`
	ReviewerAgreed  bool      `json:"reviewer_agreed"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store defines the feedback storage operations.
type Store interface {
	// Save stores or updates feedback for a profile digest.
	Save(ctx context.Context, feedback *Feedback) error

	// Get retrieves feedback for a profile digest, nil when absent.
	Get(ctx context.Context, profileDigest string) (*Feedback, error)

	// List returns feedback entries, newest first, with pagination.
	List(ctx context.Context, limit, offset int) ([]*Feedback, error)

	// Count returns the total number of feedback entries.
	Count(ctx context.Context) (int64, error)

	// Delete removes a feedback entry by ID.
	Delete(ctx context.Context, id int64) error

	// ExportJSON exports all feedback to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON imports feedback from a JSON reader, skipping digests
	// already present. Returns imported and skipped counts.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	// Close releases store resources.
	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Feedback   []*Feedback `json:"feedback"`
}
