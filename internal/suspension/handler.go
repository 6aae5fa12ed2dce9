package suspension

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/middleware"
	"github.com/stagepass/trust-safety/pkg/validation"
)

// Handler handles HTTP requests for user suspensions
type Handler struct {
	service *Service
}

// NewHandler creates a new suspension handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SuspendUser handles creating a suspension
func (h *Handler) SuspendUser(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SuspendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.TranslateBindError(err))
		return
	}

	suspension, err := h.service.SuspendUser(c.Request.Context(), actor, &req)
	if err != nil {
		common.RespondError(c, err, "failed to suspend user")
		return
	}

	common.CreatedResponse(c, suspension)
}

// LiftSuspension handles lifting a suspension
func (h *Handler) LiftSuspension(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	suspensionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid suspension ID")
		return
	}

	suspension, err := h.service.LiftSuspension(c.Request.Context(), actor, suspensionID)
	if err != nil {
		common.RespondError(c, err, "failed to lift suspension")
		return
	}

	common.SuccessResponse(c, suspension)
}

// ListSuspensions handles the suspension list views
func (h *Handler) ListSuspensions(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		common.RespondError(c, err, "invalid filter")
		return
	}

	result, err := h.service.ListSuspensions(c.Request.Context(), actor, filter)
	if err != nil {
		common.RespondError(c, err, "failed to list suspensions")
		return
	}

	common.SuccessResponse(c, result)
}

func filterFromQuery(c *gin.Context) (*Filter, error) {
	filter := &Filter{}
	filter.Limit, filter.Offset = common.PageParams(c)

	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, common.NewBadRequestError("invalid user_id filter", nil)
		}
		filter.UserID = &id
		return filter, nil
	}

	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return nil, common.NewBadRequestError("invalid active filter", nil)
		}
		filter.Active = &active
		return filter, nil
	}

	if v := c.Query("type"); v != "" {
		suspensionType := SuspensionType(v)
		if !suspensionType.Valid() {
			return nil, common.NewBadRequestError("unknown type filter", nil)
		}
		filter.Type = &suspensionType
	}

	return filter, nil
}
