package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// operatorIDKey stores the authenticated operator in the request context.
const operatorIDKey = contextKey("operatorID")

// WithOperatorID stores the operator identifier in ctx.
func WithOperatorID(ctx context.Context, operatorID string) context.Context {
	return context.WithValue(ctx, operatorIDKey, operatorID)
}

// GetOperatorIDFromContext retrieves the authenticated operator from the request.
// It returns the operator ID and a boolean indicating if it was found.
func GetOperatorIDFromContext(c *gin.Context) (string, bool) {
	operatorID, ok := c.Request.Context().Value(operatorIDKey).(string)
	if !ok || operatorID == "" {
		return "", false
	}
	return operatorID, true
}
