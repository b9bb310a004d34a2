package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/trafine/internal/db"
	"github.com/Skotchmaster/trafine/internal/models"
	"github.com/Skotchmaster/trafine/internal/repo"
)

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return nil
}

func (p *recordingPublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[uint]models.Incident
	results []models.Incident
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uint]models.Incident{}}
}

func (f *fakeIndex) IndexIncident(_ context.Context, inc models.Incident) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if stored, ok := f.docs[inc.ID]; ok && stored.Revision >= inc.Revision {
		return nil
	}
	f.docs[inc.ID] = inc
	return nil
}

func (f *fakeIndex) SearchIncidents(_ context.Context, _ string, from, size int) (int64, []models.Incident, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.results)), f.results, nil
}

var errStoreDown = errors.New("store down")

type brokenStore struct{}

func (brokenStore) FindUserByUsername(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}

func (brokenStore) CreateUserIfNotExists(context.Context, *models.User) error {
	return errStoreDown
}

func (brokenStore) CreateIncident(context.Context, *models.Incident) error { return errStoreDown }

func (brokenStore) ListIncidents(context.Context) ([]models.Incident, error) {
	return nil, errStoreDown
}

func (brokenStore) GetIncident(context.Context, uint) (*models.Incident, error) {
	return nil, errStoreDown
}

func (brokenStore) ApplyVote(context.Context, uint, string, int, bool) (*models.Incident, error) {
	return nil, errStoreDown
}

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	conn, err := db.Open(context.Background(), db.MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	return repo.New(conn)
}
