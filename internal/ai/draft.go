package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyInput     = errors.New("text is empty")
	ErrAnalysisFailed = errors.New("ai analysis failed")
)

// Unrecognized is the title the model returns for input that is not a task.
const Unrecognized = "unrecognized"

const (
	PriorityNormal    = 1
	PriorityImportant = 2
	PriorityUrgent    = 3
)

const dateLayout = "2006-01-02"

type Draft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    int     `json:"priority"`
}

func (d *Draft) normalize() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	if d.Title == "" {
		return errors.New("title is empty")
	}
	if d.Priority < PriorityNormal || d.Priority > PriorityUrgent {
		return fmt.Errorf("priority %d out of range", d.Priority)
	}
	if d.DueDate != nil {
		v := strings.TrimSpace(*d.DueDate)
		if v == "" || strings.EqualFold(v, "null") {
			d.DueDate = nil
			return nil
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			return fmt.Errorf("due_date %q is not YYYY-MM-DD", v)
		}
		d.DueDate = &v
	}
	return nil
}
