// Package middleware holds Gin middleware shared by every HTTP
// entrypoint.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hemolymph/bloodless-server/internal/logging"
)

// HeaderXCorrelationID is the header carrying the request's correlation
// id, generated if the caller didn't supply one.
const HeaderXCorrelationID = "X-Correlation-ID"

// CorrelationID stamps every request with a correlation id, echoing a
// caller-supplied one back or minting a fresh one, and makes it
// available to internal/logging via the Gin context.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(HeaderXCorrelationID)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Header(HeaderXCorrelationID, correlationID)
		c.Set(string(logging.CorrelationIDKey), correlationID)

		c.Next()
	}
}
