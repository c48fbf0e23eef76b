package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"venueledger/internal/core/apperror"
	"venueledger/pkg/logger"
)

// Recovery answers a panic with a 500 error body. It is installed outermost,
// so it renders the response itself; the stack only goes to the log.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered",
				"panic", r,
				"path", c.FullPath(),
				"stack", string(debug.Stack()),
			)

			c.Abort()
			if c.Writer.Written() {
				return
			}
			writeError(c, apperror.NewInternal(fmt.Errorf("panic: %v", r)))
		}()
		c.Next()
	}
}
