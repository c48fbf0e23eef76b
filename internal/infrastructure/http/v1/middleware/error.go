package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"venueledger/internal/core/apperror"
	"venueledger/pkg/logger"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler middleware renders the last gin error as JSON.
// Internal causes are logged and never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		writeError(c, c.Errors.Last().Err)
	}
}

func writeError(c *gin.Context, err error) {
	status, body := renderError(c, err)

	raw, mErr := json.Marshal(body)
	if mErr != nil {
		logger.Error(c.Request.Context(), "marshal error body", "error", mErr)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	finishFailedIdempotency(c, status, raw)
	c.Data(status, gin.MIMEJSON+"; charset=utf-8", raw)
}

func renderError(c *gin.Context, err error) (int, ErrorBody) {
	ctx := c.Request.Context()

	if appErr, ok := apperror.AsAppError(err); ok {
		if appErr.Err != nil {
			logger.Error(ctx, "request error",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}
		return appErr.HTTPStatus, ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
	}

	logger.Error(ctx, "unhandled error", "error", err)
	return http.StatusInternalServerError, ErrorBody{
		Code:    apperror.CodeInternal,
		Message: "Internal server error",
		Details: map[string]any{"request_id": c.GetString("request_id")},
	}
}
