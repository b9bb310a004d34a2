package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/trafine/internal/logging"
	"github.com/Skotchmaster/trafine/internal/models"
)

const publishTimeout = 5 * time.Second

type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
}

type IncidentStore interface {
	CreateIncident(ctx context.Context, inc *models.Incident) error
	ListIncidents(ctx context.Context) ([]models.Incident, error)
	GetIncident(ctx context.Context, id uint) (*models.Incident, error)
	ApplyVote(ctx context.Context, incidentID uint, voter string, value int, perVoter bool) (*models.Incident, error)
}

type IncidentIndex interface {
	IndexIncident(ctx context.Context, inc models.Incident) error
	SearchIncidents(ctx context.Context, query string, from, size int) (int64, []models.Incident, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// publish is best effort: a broker failure is logged and never fails the
// operation that produced the event.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
