package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventpass/eventpass-api/internal/api/handler/v1/request"
	"github.com/eventpass/eventpass-api/internal/api/handler/v1/response"
	"github.com/eventpass/eventpass-api/internal/domain"
)

type CheckInService interface {
	Verify(ctx context.Context, verifier domain.User, ticketCode string) (domain.CheckInResult, error)
	WalkIn(ctx context.Context, verifier domain.User, eventID, email, displayName string) (domain.CheckInResult, error)
}

type CheckInHandler struct {
	svc  CheckInService
	uSvc UserService
}

func NewCheckInHandler(svc CheckInService, uSvc UserService) *CheckInHandler {
	return &CheckInHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleVerifyTicket godoc
// @Summary      Verify a ticket code and check the attendee in
// @Description  Failure cases (invalid code, foreign event, used or cancelled ticket) come back as a result body, not an error status.
// @Tags         checkin
// @Accept       json
// @Produce      json
// @Param        request  body      request.VerifyTicketRequest  true  "ticket code"
// @Success      200      {object}  domain.CheckInResult
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /checkin/verify [post]
// @Security     BearerAuth
func (h *CheckInHandler) HandleVerifyTicket(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.VerifyTicketRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.Verify(ctx.Request.Context(), user, req.TicketCode)
	if err != nil {
		err = fmt.Errorf("v1.HandleVerifyTicket -> h.svc.Verify -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleWalkIn godoc
// @Summary      Register an attendee on site and check them in
// @Tags         checkin
// @Accept       json
// @Produce      json
// @Param        request  body      request.WalkInRequest  true  "walk-in details"
// @Success      200      {object}  domain.CheckInResult
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /checkin/walk-in [post]
// @Security     BearerAuth
func (h *CheckInHandler) HandleWalkIn(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.WalkInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.svc.WalkIn(ctx.Request.Context(), user, req.EventID, req.Email, req.DisplayName)
	if err != nil {
		err = fmt.Errorf("v1.HandleWalkIn -> h.svc.WalkIn -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}
