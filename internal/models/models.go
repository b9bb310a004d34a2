package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `gorm:"not null"                 json:"createdAt"`
}

// Incident is append-only except for Votes.
type Incident struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        string    `gorm:"not null"                 json:"type"`
	Location    string    `gorm:"not null"                 json:"location"`
	Description string    `gorm:"not null;default:''"      json:"description"`
	ReportedBy  string    `gorm:"index;not null"           json:"reportedBy"`
	Votes       int       `gorm:"not null;default:0"       json:"votes"`
	Timestamp   time.Time `gorm:"not null"                 json:"timestamp"`

	// Revision grows with every score change and orders search index writes.
	Revision uint64 `gorm:"not null;default:0" json:"-"`
}

// IncidentVote is the latest ballot of one voter on one incident.
type IncidentVote struct {
	ID         uint      `gorm:"primaryKey"                                json:"id"`
	IncidentID uint      `gorm:"not null;uniqueIndex:idx_incident_voter"   json:"incidentId"`
	Voter      string    `gorm:"not null;uniqueIndex:idx_incident_voter"   json:"voter"`
	Value      int       `gorm:"not null"                                  json:"value"`
	UpdatedAt  time.Time `gorm:"not null"                                  json:"updatedAt"`
}

func All() []any {
	return []any{&User{}, &Incident{}, &IncidentVote{}}
}
