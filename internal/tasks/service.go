package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"task-tracker-backend/internal/analytics"
	"task-tracker-backend/internal/classify"
	"task-tracker-backend/internal/logger"
)

type Service struct {
	store      *Store
	classifier classify.Classifier
	events     *analytics.Recorder
	now        func() time.Time
}

func NewService(store *Store, classifier classify.Classifier, events *analytics.Recorder) *Service {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Service{store: store, classifier: classifier, events: events, now: time.Now}
}

func (s *Service) List(ctx context.Context, ownerID int) ([]Task, error) {
	out, err := s.store.ListForOwner(ctx, ownerID)
	observe("list", err)
	return out, err
}

// Create stores a new task. A nil or blank category is computed by the
// classifier.
func (s *Service) Create(ctx context.Context, ownerID int, content string, category *string) (Task, error) {
	d, err := s.prepare(Draft{Content: content, Category: category})
	if err != nil {
		observe("create", err)
		return Task{}, err
	}

	t, err := s.store.Create(ctx, ownerID, d.Content, *d.Category, false)
	observe("create", err)
	if err != nil {
		return Task{}, err
	}

	createdCount.WithLabelValues(categoryLabel(t.Category)).Inc()
	contentLength.Observe(float64(utf8.RuneCountInString(t.Content)))
	logger.Info(ctx, "task created", "task_id", t.ID, "category", t.Category)
	s.events.Log(ctx, ownerID, analytics.EventTaskCreated, analytics.Props{
		"task_id":     t.ID,
		"category":    t.Category,
		"content_len": utf8.RuneCountInString(t.Content),
	})
	return t, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id int, p Patch) (Task, error) {
	if p.Content != nil {
		c, err := normalizeContent(*p.Content)
		if err != nil {
			observe("update", err)
			return Task{}, err
		}
		p.Content = &c
	}
	if p.Category != nil {
		c := strings.TrimSpace(*p.Category)
		if c == "" {
			err := fmt.Errorf("%w: category is empty", ErrInvalidTask)
			observe("update", err)
			return Task{}, err
		}
		if err := checkCategory(c); err != nil {
			observe("update", err)
			return Task{}, err
		}
		p.Category = &c
	}

	t, err := s.store.Update(ctx, ownerID, id, p)
	observe("update", err)
	if err != nil {
		return Task{}, err
	}

	if p.IsDone != nil && *p.IsDone {
		s.events.Log(ctx, ownerID, analytics.EventTaskCompleted, analytics.Props{"task_id": t.ID})
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int) error {
	err := s.store.Delete(ctx, ownerID, id)
	observe("delete", err)
	if err != nil {
		return err
	}
	s.events.Log(ctx, ownerID, analytics.EventTaskDeleted, analytics.Props{"task_id": id})
	return nil
}

func (s *Service) Reorder(ctx context.Context, ownerID int, items []SortItem) error {
	if len(items) == 0 {
		return nil
	}
	err := s.store.Reorder(ctx, ownerID, items)
	observe("reorder", err)
	if err != nil {
		return err
	}
	s.events.Log(ctx, ownerID, analytics.EventTasksSorted, analytics.Props{"count": len(items)})
	return nil
}

func (s *Service) Export(ctx context.Context, ownerID int) (Export, error) {
	list, err := s.store.ListForOwner(ctx, ownerID)
	observe("export", err)
	if err != nil {
		return Export{}, err
	}
	return Export{Tasks: list, ExportedAt: s.now().UTC()}, nil
}

// Import validates every draft before inserting any of them.
func (s *Service) Import(ctx context.Context, ownerID int, drafts []Draft) (int, error) {
	prepared := make([]Draft, 0, len(drafts))
	for i, d := range drafts {
		p, err := s.prepare(d)
		if err != nil {
			observe("import", err)
			return 0, fmt.Errorf("task %d: %w", i+1, err)
		}
		prepared = append(prepared, p)
	}
	if len(prepared) == 0 {
		return 0, nil
	}

	n, err := s.store.CreateMany(ctx, ownerID, prepared)
	observe("import", err)
	if err != nil {
		return 0, err
	}

	for _, d := range prepared {
		createdCount.WithLabelValues(categoryLabel(*d.Category)).Inc()
	}
	logger.Info(ctx, "tasks imported", "count", n)
	s.events.Log(ctx, ownerID, analytics.EventTasksImported, analytics.Props{"count": n})
	return n, nil
}

func (s *Service) Stats(ctx context.Context, ownerID int) (Stats, error) {
	rows, err := s.store.countByCategory(ctx, ownerID)
	observe("stats", err)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{ByCategory: make(map[string]int, len(rows))}
	for _, r := range rows {
		st.Total += r.Total
		st.Done += r.Done
		st.ByCategory[r.Category] = r.Total
	}
	st.Pending = st.Total - st.Done
	if st.Total > 0 {
		st.CompletionRate = st.Done * 100 / st.Total
	}
	return st, nil
}

func (s *Service) prepare(d Draft) (Draft, error) {
	content, err := normalizeContent(d.Content)
	if err != nil {
		return Draft{}, err
	}
	d.Content = content

	var category string
	if d.Category != nil {
		category = strings.TrimSpace(*d.Category)
	}
	if category == "" {
		category = s.classifier.Classify(content)
	}
	if err := checkCategory(category); err != nil {
		return Draft{}, err
	}
	d.Category = &category
	return d, nil
}

func normalizeContent(content string) (string, error) {
	c := strings.TrimSpace(content)
	if c == "" {
		return "", fmt.Errorf("%w: content is empty", ErrInvalidTask)
	}
	if utf8.RuneCountInString(c) > MaxContentLen {
		return "", fmt.Errorf("%w: content longer than %d characters", ErrInvalidTask, MaxContentLen)
	}
	return c, nil
}

func checkCategory(c string) error {
	if utf8.RuneCountInString(c) > MaxCategoryLen {
		return fmt.Errorf("%w: category longer than %d characters", ErrInvalidTask, MaxCategoryLen)
	}
	return nil
}
