package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/pkg/apperror"
)

const (
	ContextUserID = "user_id"
	ContextUser   = "user"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetUser retrieves the user loaded by the staff/admin middleware.
func GetUser(c *gin.Context) (*entity.User, error) {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil, apperror.ErrUnauthorized
	}
	user, ok := v.(*entity.User)
	if !ok || user == nil {
		return nil, apperror.ErrUnauthorized
	}
	return user, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		zap.L().Error("internal error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
