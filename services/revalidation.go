package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Public page paths.
const (
	PathBookIndex = "/livro"
	PathCalendar  = "/livro/calendario"
)

// GroupPagePath is the public chapter of a group.
func GroupPagePath(slug string) string { return "/livro/" + slug }

// EventPagePath is the public page of an event.
func EventPagePath(id string) string { return "/livro/evento/" + id }

// PageInvalidator drops a cached public page so the next read rebuilds it.
type PageInvalidator interface {
	Invalidate(ctx context.Context, path string) error
}

// NoticePublisher announces finished revalidations to admin clients.
type NoticePublisher interface {
	PublishRevalidation(ctx context.Context, notice RevalidationNotice) error
}

// RevalidationNotice is the message sent after pages were refreshed.
type RevalidationNotice struct {
	Source string    `json:"origem"`
	Paths  []string  `json:"paths"`
	At     time.Time `json:"at"`
}

// Revalidator refreshes public pages after a committed write. It never fails
// the caller: the data is already stored, so problems are only logged.
type Revalidator struct {
	pages     PageInvalidator
	publisher NoticePublisher
	log       *zap.Logger
}

// NewRevalidator creates a Revalidator. Either dependency may be nil.
func NewRevalidator(pages PageInvalidator, publisher NoticePublisher, logger *zap.Logger) *Revalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Revalidator{pages: pages, publisher: publisher, log: logger}
}

// Revalidate invalidates each path in order, then publishes one notice with
// the paths that were refreshed.
func (r *Revalidator) Revalidate(ctx context.Context, source string, paths ...string) {
	if r == nil {
		return
	}
	paths = uniquePaths(paths)

	done := make([]string, 0, len(paths))
	for _, p := range paths {
		if r.pages != nil {
			if err := r.pages.Invalidate(ctx, p); err != nil {
				r.log.Warn("page revalidation failed", zap.String("path", p), zap.String("source", source), zap.Error(err))
				continue
			}
		}
		done = append(done, p)
	}

	if r.publisher == nil || len(done) == 0 {
		return
	}
	notice := RevalidationNotice{Source: source, Paths: done, At: time.Now().UTC()}
	if err := r.publisher.PublishRevalidation(ctx, notice); err != nil {
		r.log.Warn("revalidation notice not published", zap.String("source", source), zap.Error(err))
	}
}

// BookPages are refreshed by every group, event and meeting mutation.
func BookPages() []string {
	return []string{PathCalendar, PathBookIndex}
}

func uniquePaths(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0:0]
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
