package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// FleetCodeKey is the gin context key holding the fleet code of a verified
// session token.
const FleetCodeKey = "fleet_code"

// FleetClaims is the payload of a fleet session token.
type FleetClaims struct {
	FleetCode string `json:"fleet_code"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies fleet session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken signs a token scoped to fleetCode and returns it with its
// expiry.
func (s *Sessions) GenerateToken(fleetCode string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := FleetClaims{
		FleetCode: fleetCode,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, expiresAt, err
}

// ValidateToken parses tokenStr and returns the fleet code it carries.
func (s *Sessions) ValidateToken(tokenStr string) (string, error) {
	claims := &FleetClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || strings.TrimSpace(claims.FleetCode) == "" {
		return "", errors.New("token carries no fleet code")
	}
	return claims.FleetCode, nil
}

// FleetScope reads an optional bearer token. A valid token puts its fleet
// code on the context; a malformed or expired one aborts with 401. Requests
// without an Authorization header pass through untouched.
func (s *Sessions) FleetScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header"})
			return
		}

		fleetCode, err := s.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set(FleetCodeKey, fleetCode)
		c.Next()
	}
}

// SessionFleetCode returns the fleet code set by FleetScope, if any.
func SessionFleetCode(c *gin.Context) (string, bool) {
	v, ok := c.Get(FleetCodeKey)
	if !ok {
		return "", false
	}
	code, ok := v.(string)
	return code, ok
}
