package verification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/middleware"
	"github.com/stagepass/trust-safety/pkg/validation"
)

// Handler handles HTTP requests for ticket verifications
type Handler struct {
	service *Service
}

// NewHandler creates a new verification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RunVerification handles running the automated check battery on a listing
func (h *Handler) RunVerification(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid listing ID")
		return
	}

	verification, err := h.service.RunAutomatedVerification(c.Request.Context(), actor, listingID)
	if err != nil {
		common.RespondError(c, err, "failed to run verification")
		return
	}

	common.CreatedResponse(c, verification)
}

// ListVerifications handles the verification review queue
func (h *Handler) ListVerifications(c *gin.Context) {
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

	result, err := h.service.ListVerifications(c.Request.Context(), actor, filter)
	if err != nil {
		common.RespondError(c, err, "failed to list verifications")
		return
	}

	common.SuccessResponse(c, result)
}

// ReviewVerification handles a moderator's manual verdict
func (h *Handler) ReviewVerification(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	verificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid verification ID")
		return
	}

	var req ManualReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.TranslateBindError(err))
		return
	}

	verification, err := h.service.PerformManualReview(c.Request.Context(), actor, verificationID, req.Status, req.Notes)
	if err != nil {
		common.RespondError(c, err, "failed to review verification")
		return
	}

	common.SuccessResponse(c, verification)
}

func filterFromQuery(c *gin.Context) (*Filter, error) {
	filter := &Filter{}
	filter.Limit, filter.Offset = common.PageParams(c)

	if v := c.Query("status"); v != "" {
		status := VerificationStatus(v)
		switch status {
		case StatusPending, StatusVerified, StatusRejected, StatusRequiresManualReview:
			filter.Status = &status
		default:
			return nil, common.NewBadRequestError("unknown status filter", nil)
		}
		return filter, nil
	}

	if v := c.Query("listing_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, common.NewBadRequestError("invalid listing_id filter", nil)
		}
		filter.ListingID = &id
		return filter, nil
	}

	if v := c.Query("method"); v != "" {
		method := VerificationMethod(v)
		if !method.Valid() {
			return nil, common.NewBadRequestError("unknown method filter", nil)
		}
		filter.Method = &method
	}

	return filter, nil
}
