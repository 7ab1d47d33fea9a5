package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventpass/eventpass-api/internal/api/handler/v1/response"
	"github.com/eventpass/eventpass-api/internal/domain"
	"github.com/eventpass/eventpass-api/internal/service"
)

type RegistrationService interface {
	Register(ctx context.Context, user domain.User, eventID string) (domain.Registration, error)
	Cancel(ctx context.Context, user domain.User, regID string) error
	ListMine(ctx context.Context, user domain.User) ([]domain.Registration, error)
	ListAttendees(ctx context.Context, caller domain.User, eventID string) ([]domain.Attendee, error)
}

type RegistrationHandler struct {
	svc  RegistrationService
	uSvc UserService
}

func NewRegistrationHandler(svc RegistrationService, uSvc UserService) *RegistrationHandler {
	return &RegistrationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleRegister godoc
// @Summary      Register the caller for an event
// @Tags         registrations
// @Produce      json
// @Param        eventID  path      string  true  "event ID"
// @Success      201      {object}  domain.Registration
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/registrations [post]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleRegister(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID := ctx.Param("eventID")

	reg, err := h.svc.Register(ctx.Request.Context(), user, eventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "id", eventID))
		case errors.Is(err, service.ErrAlreadyRegistered):
			response.RenderErr(ctx, response.ErrConflict(service.ErrAlreadyRegistered))
		case errors.Is(err, service.ErrEventFull):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrEventFull))
		case errors.Is(err, service.ErrEventNotPublished):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrEventNotPublished))
		case errors.Is(err, service.ErrEventEnded):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrEventEnded))
		default:
			err = fmt.Errorf("v1.HandleRegister -> h.svc.Register -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, reg)
}

// HandleCancelRegistration godoc
// @Summary      Cancel the caller's registration
// @Tags         registrations
// @Produce      json
// @Param        registrationID  path  string  true  "registration ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /registrations/{registrationID} [delete]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleCancelRegistration(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	regID := ctx.Param("registrationID")

	if err := h.svc.Cancel(ctx.Request.Context(), user, regID); err != nil {
		switch {
		case errors.Is(err, service.ErrRegistrationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("registration", "id", regID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
		case errors.Is(err, service.ErrTicketUsed):
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("cannot cancel a ticket that has already been checked in")))
		default:
			err = fmt.Errorf("v1.HandleCancelRegistration -> h.svc.Cancel -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListMyRegistrations godoc
// @Summary      List the caller's tickets
// @Tags         registrations
// @Produce      json
// @Success      200  {array}   domain.Registration
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /me/registrations [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleListMyRegistrations(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	regs, err := h.svc.ListMine(ctx.Request.Context(), user)
	if err != nil {
		err = fmt.Errorf("v1.HandleListMyRegistrations -> h.svc.ListMine -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, regs)
}

// HandleListAttendees godoc
// @Summary      List an event's attendees
// @Tags         registrations
// @Produce      json
// @Param        eventID  path      string  true  "event ID"
// @Success      200      {array}   domain.Attendee
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/attendees [get]
// @Security     BearerAuth
func (h *RegistrationHandler) HandleListAttendees(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID := ctx.Param("eventID")

	attendees, err := h.svc.ListAttendees(ctx.Request.Context(), user, eventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "id", eventID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
		default:
			err = fmt.Errorf("v1.HandleListAttendees -> h.svc.ListAttendees -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, attendees)
}
