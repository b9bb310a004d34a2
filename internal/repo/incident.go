package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/trafine/internal/models"
)

// CreateIncident appends inc in a single INSERT; the id comes from the
// autoincrement key, so concurrent reports never share one.
func (r *GormRepo) CreateIncident(ctx context.Context, inc *models.Incident) error {
	inc.ID = 0
	return r.DB.WithContext(ctx).Create(inc).Error
}

func (r *GormRepo) ListIncidents(ctx context.Context) ([]models.Incident, error) {
	items := make([]models.Incident, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetIncident(ctx context.Context, id uint) (*models.Incident, error) {
	var inc models.Incident
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&inc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncidentNotFound
		}
		return nil, err
	}
	return &inc, nil
}

// ApplyVote adds value to the incident score and bumps its revision. With
// perVoter set, the voter's previous ballot is replaced and only the
// difference is applied, so the score is the sum of every voter's latest vote.
func (r *GormRepo) ApplyVote(ctx context.Context, incidentID uint, voter string, value int, perVoter bool) (*models.Incident, error) {
	var updated models.Incident

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Incident
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", incidentID).
			First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrIncidentNotFound
			}
			return err
		}

		delta := value
		if perVoter {
			var err error
			if delta, err = replaceBallot(tx, incidentID, voter, value); err != nil {
				return err
			}
		}

		if delta != 0 {
			if err := tx.Model(&models.Incident{}).
				Where("id = ?", incidentID).
				Updates(map[string]any{
					"votes":    gorm.Expr("votes + ?", delta),
					"revision": gorm.Expr("revision + 1"),
				}).Error; err != nil {
				return err
			}
		}

		return tx.Where("id = ?", incidentID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// replaceBallot stores value as the voter's ballot and returns how much the
// incident score has to move.
func replaceBallot(tx *gorm.DB, incidentID uint, voter string, value int) (int, error) {
	var ballot models.IncidentVote
	err := tx.Where("incident_id = ? AND voter = ?", incidentID, voter).First(&ballot).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ballot = models.IncidentVote{IncidentID: incidentID, Voter: voter, Value: value}
		if err := tx.Create(&ballot).Error; err != nil {
			return 0, err
		}
		return value, nil
	case err != nil:
		return 0, err
	}

	delta := value - ballot.Value
	if delta == 0 {
		return 0, nil
	}
	if err := tx.Model(&ballot).Update("value", value).Error; err != nil {
		return 0, err
	}
	return delta, nil
}
