package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"

	"fleet_expenses/internal/expenses"
	"fleet_expenses/internal/middleware"
	"fleet_expenses/internal/repository"
)

// resolveFleetCode picks the fleet code a request acts on. Without a session
// the requested code is used as is. With one, an omitted code falls back to
// the session's and a different code is refused with 403.
func resolveFleetCode(c *gin.Context, requested string) (string, bool) {
	requested = strings.TrimSpace(requested)
	session, scoped := middleware.SessionFleetCode(c)
	if !scoped {
		return requested, true
	}
	if requested == "" {
		return session, true
	}
	if requested != session {
		c.JSON(http.StatusForbidden, gin.H{"error": "Fleet code does not match the current session"})
		return "", false
	}
	return requested, true
}

// bindJSON decodes the request body and writes the error response when it
// cannot. Oversized bodies are 413.
func bindJSON(c *gin.Context, what string, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " input: " + err.Error()})
	return false
}

// respondError maps a service error onto a JSON response.
func respondError(c *gin.Context, action string, err error) {
	var verr *expenses.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, repository.ErrExpenseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Failed to " + action)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + ": " + err.Error()})
	}
}
