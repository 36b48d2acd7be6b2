package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps the JSON bodies the API accepts.
const MaxBodyBytes = 64 << 10

// LimitBody stops reading a request body after limit bytes. Handlers see
// an *http.MaxBytesError from the decoder once the limit is crossed.
func LimitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
