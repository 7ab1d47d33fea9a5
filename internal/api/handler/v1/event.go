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

type EventService interface {
	CreateEvent(ctx context.Context, issuer domain.User, event domain.Event) (domain.Event, error)
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	ListPublished(ctx context.Context, limit, offset int) ([]domain.Event, int64, error)
	ListManaged(ctx context.Context, caller domain.User, limit, offset int) ([]domain.Event, int64, error)
	ListPending(ctx context.Context, caller domain.User, limit, offset int) ([]domain.Event, int64, error)
	ApproveEvent(ctx context.Context, caller domain.User, eventID string) (domain.Event, error)
	RejectEvent(ctx context.Context, caller domain.User, eventID string) (domain.Event, error)
	UpdateEvent(ctx context.Context, caller domain.User, eventID string, updates domain.Event) (domain.Event, error)
	DeleteEvent(ctx context.Context, caller domain.User, eventID string) error
}

type EventHandler struct {
	svc  EventService
	uSvc UserService
}

func NewEventHandler(svc EventService, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListEvents godoc
// @Summary      List published events
// @Tags         events
// @Produce      json
// @Param        limit   query     int  false  "page size"
// @Param        offset  query     int  false  "page offset"
// @Success      200     {object}  response.EventList
// @Failure      400     {object}  response.Err
// @Failure      500     {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	limit, offset, respErr := getPagination(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, total, err := h.svc.ListPublished(ctx.Request.Context(), limit, offset)
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.ListPublished -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.EventList{Items: events, Total: total, Limit: limit, Offset: offset})
}

// HandleListManagedEvents godoc
// @Summary      List events managed by the caller
// @Tags         events
// @Produce      json
// @Success      200  {object}  response.EventList
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/managed [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListManagedEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limit, offset, respErr := getPagination(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, total, err := h.svc.ListManaged(ctx.Request.Context(), user, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
			return
		}

		err = fmt.Errorf("v1.HandleListManagedEvents -> h.svc.ListManaged -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.EventList{Items: events, Total: total, Limit: limit, Offset: offset})
}

// HandleListPendingEvents godoc
// @Summary      List events awaiting approval
// @Tags         events
// @Produce      json
// @Success      200  {object}  response.EventList
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/pending [get]
// @Security     BearerAuth
func (h *EventHandler) HandleListPendingEvents(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limit, offset, respErr := getPagination(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, total, err := h.svc.ListPending(ctx.Request.Context(), user, limit, offset)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
			return
		}

		err = fmt.Errorf("v1.HandleListPendingEvents -> h.svc.ListPending -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.EventList{Items: events, Total: total, Limit: limit, Offset: offset})
}

// HandleGetEvent godoc
// @Summary      Get event details
// @Tags         events
// @Produce      json
// @Param        eventID  path      string  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID := ctx.Param("eventID")

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "id", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Description  Admin-created events are published immediately; organizer-created events start pending.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "event details"
// @Success      201      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), user, domain.Event{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
		case errors.Is(err, service.ErrInvalidTimeWindow):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidTimeWindow))
		default:
			err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      string                      true  "event ID"
// @Param        request  body      request.UpdateEventRequest  true  "event details"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID} [patch]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID := ctx.Param("eventID")

	var req request.UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	event, err := h.svc.UpdateEvent(ctx.Request.Context(), user, eventID, domain.Event{
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "id", eventID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
		case errors.Is(err, service.ErrInvalidTimeWindow):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidTimeWindow))
		default:
			err = fmt.Errorf("v1.HandleUpdateEvent -> h.svc.UpdateEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event and its registrations
// @Tags         events
// @Produce      json
// @Param        eventID  path  string  true  "event ID"
// @Success      204
// @Failure      401  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID := ctx.Param("eventID")

	if err := h.svc.DeleteEvent(ctx.Request.Context(), user, eventID); err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "id", eventID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
		default:
			err = fmt.Errorf("v1.HandleDeleteEvent -> h.svc.DeleteEvent -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleApproveEvent godoc
// @Summary      Approve a pending event
// @Tags         events
// @Produce      json
// @Param        eventID  path      string  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/approve [post]
// @Security     BearerAuth
func (h *EventHandler) HandleApproveEvent(ctx *gin.Context) {
	h.handleApproval(ctx, h.svc.ApproveEvent)
}

// HandleRejectEvent godoc
// @Summary      Reject a pending event
// @Tags         events
// @Produce      json
// @Param        eventID  path      string  true  "event ID"
// @Success      200      {object}  domain.Event
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /events/{eventID}/reject [post]
// @Security     BearerAuth
func (h *EventHandler) HandleRejectEvent(ctx *gin.Context) {
	h.handleApproval(ctx, h.svc.RejectEvent)
}

func (h *EventHandler) handleApproval(ctx *gin.Context, action func(context.Context, domain.User, string) (domain.Event, error)) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID := ctx.Param("eventID")

	event, err := action(ctx.Request.Context(), user, eventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "id", eventID))
		case errors.Is(err, service.ErrForbidden):
			response.RenderErr(ctx, response.ErrPermissionDenied(service.ErrForbidden))
		case errors.Is(err, service.ErrInvalidTransition):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidTransition))
		default:
			err = fmt.Errorf("v1.handleApproval -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, event)
}
