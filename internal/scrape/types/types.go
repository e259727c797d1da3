package types

import (
	"context"

	"leadscout-engine/internal/domain"
)

// Query is one (role, location) search against a job board.
type Query struct {
	Role       string
	Location   string
	MaxResults int
}

// RawLead is a board result before cleaning. Field values arrive as the
// board rendered them; the processor owns normalization.
type RawLead struct {
	Source      domain.Source
	SourceJobID string // board-native posting id, may be empty
	Title       string
	Company     string
	Location    string
	Summary     string
	URL         string
	DatePosted  string
	Role        string // the query role that produced this lead
}

type Fetcher interface {
	Name() string
	Source() domain.Source
	Fetch(ctx context.Context, q Query) ([]RawLead, error)
}
