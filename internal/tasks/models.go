package tasks

import (
	"errors"
	"time"
)

var (
	ErrNotFoundOrForbidden = errors.New("task not found")
	ErrInvalidTask         = errors.New("invalid task")
)

const (
	MaxContentLen  = 200
	MaxCategoryLen = 50
)

type Task struct {
	ID        int    `db:"id" json:"id"`
	Content   string `db:"content" json:"content"`
	IsDone    bool   `db:"is_done" json:"is_done"`
	Category  string `db:"category" json:"category"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
	OwnerID   int    `db:"owner_id" json:"owner_id"`
}

// Draft is a task before it has an id. Category nil means "classify it".
type Draft struct {
	Content  string  `json:"content"`
	IsDone   bool    `json:"is_done"`
	Category *string `json:"category,omitempty"`
}

// Patch carries only the fields present in an update request.
type Patch struct {
	IsDone   *bool   `json:"is_done,omitempty"`
	Content  *string `json:"content,omitempty"`
	Category *string `json:"category,omitempty"`
}

func (p Patch) empty() bool {
	return p.IsDone == nil && p.Content == nil && p.Category == nil
}

type SortItem struct {
	ID        int `json:"id"`
	SortOrder int `json:"sort_order"`
}

type Export struct {
	Tasks      []Task    `json:"tasks"`
	ExportedAt time.Time `json:"exported_at"`
}

type Stats struct {
	Total          int            `json:"total"`
	Done           int            `json:"done"`
	Pending        int            `json:"pending"`
	CompletionRate int            `json:"completion_rate"`
	ByCategory     map[string]int `json:"by_category"`
}
