package risk

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/middleware"
)

// Handler handles HTTP requests for risk views
type Handler struct {
	service *Service
}

// NewHandler creates a new risk handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetUserRiskProfile handles the per-user risk investigation view
func (h *Handler) GetUserRiskProfile(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user ID")
		return
	}

	profile, err := h.service.GetUserRiskProfile(c.Request.Context(), actor, userID)
	if err != nil {
		common.RespondError(c, err, "failed to compute risk profile")
		return
	}

	common.SuccessResponse(c, profile)
}

// GetSystemStatistics handles the operational dashboard counts
func (h *Handler) GetSystemStatistics(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.service.GetSystemStatistics(c.Request.Context(), actor)
	if err != nil {
		common.RespondError(c, err, "failed to gather statistics")
		return
	}

	common.SuccessResponse(c, stats)
}
