package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"livro/models"
)

// newTestDB opens a private in-memory database with the schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection would get its own empty in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Group{}, &models.Event{}, &models.Meeting{}))
	return db
}

// pageRecorder is a PageInvalidator and NoticePublisher that remembers calls.
type pageRecorder struct {
	mu      sync.Mutex
	paths   []string
	notices []RevalidationNotice
	failOn  map[string]bool
}

func (r *pageRecorder) Invalidate(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn[path] {
		return errors.New("invalidate failed")
	}
	r.paths = append(r.paths, path)
	return nil
}

func (r *pageRecorder) PublishRevalidation(_ context.Context, n RevalidationNotice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func (r *pageRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = nil
	r.notices = nil
}

func (r *pageRecorder) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

type fixture struct {
	db       *gorm.DB
	pages    *pageRecorder
	groups   *GroupService
	events   *EventService
	meetings *MeetingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	pages := &pageRecorder{}
	rv := NewRevalidator(pages, pages, nil)
	return &fixture{
		db:       db,
		pages:    pages,
		groups:   NewGroupService(db, rv, nil),
		events:   NewEventService(db, rv, nil),
		meetings: NewMeetingService(db, rv, nil),
	}
}

func (f *fixture) group(t *testing.T, name string) models.Group {
	t.Helper()
	g, err := f.groups.Create(context.Background(), models.GroupRequest{Name: name})
	require.NoError(t, err)
	return g
}

func (f *fixture) event(t *testing.T, req models.EventRequest) models.Event {
	t.Helper()
	e, err := f.events.Create(context.Background(), req)
	require.NoError(t, err)
	return e
}
