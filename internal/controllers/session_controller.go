package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet_expenses/internal/expenses"
)

// TokenIssuer signs fleet session tokens.
type TokenIssuer interface {
	GenerateToken(fleetCode string) (string, time.Time, error)
}

type SessionController struct {
	issuer TokenIssuer
}

func NewSessionController(issuer TokenIssuer) *SessionController {
	return &SessionController{issuer: issuer}
}

// CreateSession exchanges a fleet code for a session token the dashboard
// keeps instead of the bare code.
func (sc *SessionController) CreateSession(c *gin.Context) {
	var body struct {
		FleetCode string `json:"fleetCode"`
	}
	if !bindJSON(c, "session", &body) {
		return
	}

	fleetCode, err := expenses.NormalizeFleetCode(body.FleetCode)
	if err != nil {
		respondError(c, "create session", err)
		return
	}

	token, expiresAt, err := sc.issuer.GenerateToken(fleetCode)
	if err != nil {
		respondError(c, "create session", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":     token,
		"fleetCode": fleetCode,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}
