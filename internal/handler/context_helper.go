package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sciclass-api/internal/middleware"
	"github.com/noah-isme/sciclass-api/internal/models"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
	"github.com/noah-isme/sciclass-api/pkg/response"
)

type studentLoader interface {
	GetStudent(ctx context.Context, id string) (*models.Student, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// currentStudent loads the roster record of the authenticated student and
// writes the error response itself when that fails.
func currentStudent(c *gin.Context, loader studentLoader) (*models.Student, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.Role != models.RoleStudent {
		response.Error(c, appErrors.ErrForbidden)
		return nil, false
	}
	student, err := loader.GetStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return student, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func respondOK(c *gin.Context, data interface{}) {
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
