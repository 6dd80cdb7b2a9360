package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ClientKeyHeader identifies a returning visitor across wizard sessions. The
// site stores the key client-side and sends it on every wizard request; the
// saved-draft slot is keyed by it.
const ClientKeyHeader = "X-Client-Key"

// ClientKeyMiddleware reads the client key header, issuing a fresh key when
// the caller has none yet. The key is echoed back so the site can persist it.
func ClientKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(ClientKeyHeader)
		if key == "" {
			key = uuid.New().String()
		}
		c.Set("clientKey", key)
		c.Header(ClientKeyHeader, key)
		c.Next()
	}
}
