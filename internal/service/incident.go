package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/trafine/internal/domain"
	"github.com/Skotchmaster/trafine/internal/logging"
	"github.com/Skotchmaster/trafine/internal/metrics"
	"github.com/Skotchmaster/trafine/internal/models"
	"github.com/Skotchmaster/trafine/internal/mykafka"
	"github.com/Skotchmaster/trafine/internal/repo"
	"github.com/Skotchmaster/trafine/internal/transport"
)

// IncidentService is the incident ledger. Records are append-only; only the
// vote score changes after creation.
type IncidentService struct {
	Repo      IncidentStore
	Index     IncidentIndex
	Publisher EventPublisher
	Metrics   *metrics.Metrics

	// PerVoter keeps one ballot per voter and incident, latest vote wins.
	// When false every vote adds to the score.
	PerVoter bool

	Now func() time.Time
}

func (s *IncidentService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Report appends a new incident attributed to reporter, which must come from
// a verified session.
func (s *IncidentService) Report(ctx context.Context, reporter string, req transport.ReportIncidentRequest) (*models.Incident, error) {
	l := logging.FromContext(ctx).With("svc", "incident.report")

	if reporter == "" {
		return nil, ErrUnauthenticated
	}

	typ := strings.TrimSpace(req.Type)
	if typ == "" || strings.TrimSpace(req.Location) == "" {
		return nil, fmt.Errorf("%w: type and location are required", ErrValidation)
	}
	loc, err := domain.ParseCoordinate(req.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	inc := &models.Incident{
		Type:        typ,
		Location:    loc.String(),
		Description: strings.TrimSpace(req.Description),
		ReportedBy:  reporter,
		Timestamp:   s.now(),
	}
	if err := s.Repo.CreateIncident(ctx, inc); err != nil {
		l.Error("report_error", "status", 500, "reason", "cannot store incident", "error", err)
		return nil, fmt.Errorf("create incident: %w", err)
	}

	s.Metrics.IncrementIncidentsReported()
	s.index(ctx, *inc)
	publish(ctx, s.Publisher, mykafka.TopicIncidentEvents, key(inc.ID), map[string]any{
		"type":     "incident_reported",
		"incident": inc,
	})
	return inc, nil
}

func (s *IncidentService) List(ctx context.Context) ([]models.Incident, error) {
	return s.Repo.ListIncidents(ctx)
}

func (s *IncidentService) Get(ctx context.Context, id uint) (*models.Incident, error) {
	inc, err := s.Repo.GetIncident(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrIncidentNotFound) {
			return nil, fmt.Errorf("%w: incident %d", ErrNotFound, id)
		}
		return nil, err
	}
	return inc, nil
}

// Vote moves the score of incident id by vote, which must be +1 or -1, and
// returns the updated record.
func (s *IncidentService) Vote(ctx context.Context, voter string, id uint, vote int) (*models.Incident, error) {
	l := logging.FromContext(ctx).With("svc", "incident.vote")

	if voter == "" {
		return nil, ErrUnauthenticated
	}
	if vote != 1 && vote != -1 {
		return nil, ErrInvalidVote
	}

	inc, err := s.Repo.ApplyVote(ctx, id, voter, vote, s.PerVoter)
	if err != nil {
		if errors.Is(err, repo.ErrIncidentNotFound) {
			return nil, fmt.Errorf("%w: incident %d", ErrNotFound, id)
		}
		l.Error("vote_error", "status", 500, "reason", "cannot apply vote", "error", err)
		return nil, fmt.Errorf("apply vote: %w", err)
	}

	s.Metrics.ObserveVote(vote)
	s.index(ctx, *inc)
	publish(ctx, s.Publisher, mykafka.TopicIncidentEvents, key(inc.ID), map[string]any{
		"type":       "incident_voted",
		"incidentId": inc.ID,
		"voter":      voter,
		"vote":       vote,
		"votes":      inc.Votes,
	})
	return inc, nil
}

func (s *IncidentService) Search(ctx context.Context, query string, from, size int) (int64, []models.Incident, error) {
	if s.Index == nil {
		return 0, nil, ErrSearchDisabled
	}
	if strings.TrimSpace(query) == "" {
		return 0, nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	return s.Index.SearchIncidents(ctx, query, from, size)
}

func (s *IncidentService) index(ctx context.Context, inc models.Incident) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexIncident(ctx, inc); err != nil {
		logging.FromContext(ctx).Error("incident_index_failed", "incident_id", inc.ID, "error", err)
	}
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
