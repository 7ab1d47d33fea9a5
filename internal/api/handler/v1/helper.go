package v1

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventpass/eventpass-api/internal/api/handler/v1/response"
	"github.com/eventpass/eventpass-api/internal/api/middleware"
	"github.com/eventpass/eventpass-api/internal/domain"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// getUserFromContext loads the authenticated principal. The user record is
// re-read per request so role changes take effect immediately.
func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	userID := ctx.GetString(middleware.ContextKeyUserID)
	if userID == "" {
		return domain.User{}, response.ErrUnauthorized()
	}

	user, err := svc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		return domain.User{}, response.ErrUnauthorized()
	}

	return user, nil
}

func getPagination(ctx *gin.Context) (limit, offset int, respErr *response.Err) {
	limit = defaultPageLimit
	offset = 0

	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxPageLimit {
			return 0, 0, response.ErrBadRequest(errors.New("limit must be between 1 and 100"))
		}
		limit = parsed
	}

	if raw := ctx.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, 0, response.ErrBadRequest(errors.New("offset must not be negative"))
		}
		offset = parsed
	}

	return limit, offset, nil
}
