package transport

import (
	"time"

	"github.com/Skotchmaster/trafine/internal/models"
	"github.com/Skotchmaster/trafine/internal/tokens"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ProtectedResponse struct {
	Message string                `json:"message"`
	User    *tokens.SessionClaims `json:"user"`
}

type ReportIncidentRequest struct {
	Type        string `json:"type"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// VoteRequest uses pointers so an absent field is told apart from zero.
type VoteRequest struct {
	IncidentID *uint `json:"incidentId"`
	Vote       *int  `json:"vote"`
}

type IncidentResponse struct {
	Message  string           `json:"message"`
	Incident *models.Incident `json:"incident"`
}

type SearchMeta struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

type SearchResponse struct {
	Data []models.Incident `json:"data"`
	Meta SearchMeta        `json:"meta"`
}

type UpstreamErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

type QRResponse struct {
	QRCodeURL string `json:"qrCodeUrl"`
}
