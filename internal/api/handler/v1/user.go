package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventpass/eventpass-api/internal/api/handler/v1/request"
	"github.com/eventpass/eventpass-api/internal/api/handler/v1/response"
	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	ListUsers(ctx context.Context, caller domain.User) ([]domain.User, error)
	UpdateRole(ctx context.Context, caller domain.User, userID string, role domain.UserRole) (domain.User, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleGetMe godoc
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  response.Err
// @Router       /me [get]
// @Security     BearerAuth
func (h *UserHandler) HandleGetMe(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// HandleListUsers godoc
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users [get]
// @Security     BearerAuth
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	users, err := h.svc.ListUsers(ctx.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
			return
		}

		err = fmt.Errorf("v1.HandleListUsers -> h.svc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleUpdateUserRole godoc
// @Summary      Update a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        userID   path      string                     true  "user ID"
// @Param        request  body      request.UpdateRoleRequest  true  "new role"
// @Success      200      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users/{userID}/role [patch]
// @Security     BearerAuth
func (h *UserHandler) HandleUpdateUserRole(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.svc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	userID := ctx.Param("userID")

	var req request.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateRole(ctx.Request.Context(), user, userID, domain.UserRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound("user", "id", userID))
		case errors.Is(err, service.ErrInvalidRole):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidRole))
		default:
			err = fmt.Errorf("v1.HandleUpdateUserRole -> h.svc.UpdateRole -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}
