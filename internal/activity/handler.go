package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/middleware"
	"github.com/stagepass/trust-safety/pkg/validation"
)

// Handler handles HTTP requests for suspicious activities and the detection
// trigger endpoints called by the marketplace on user actions.
type Handler struct {
	service  *Service
	detector *Detector
}

// NewHandler creates a new suspicious activity handler
func NewHandler(service *Service, detector *Detector) *Handler {
	return &Handler{service: service, detector: detector}
}

// ListActivities handles the moderation activity queue
func (h *Handler) ListActivities(c *gin.Context) {
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

	result, err := h.service.ListActivities(c.Request.Context(), actor, filter)
	if err != nil {
		common.RespondError(c, err, "failed to list activities")
		return
	}

	common.SuccessResponse(c, result)
}

// ReviewActivity handles reviewing or dismissing a finding
func (h *Handler) ReviewActivity(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid activity ID")
		return
	}

	var req struct {
		Status ActivityStatus `json:"status" binding:"required,oneof=reviewed dismissed"`
		Notes  string         `json:"notes" binding:"max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.TranslateBindError(err))
		return
	}

	finding, err := h.service.ReviewActivity(c.Request.Context(), actor, activityID, req.Status, req.Notes)
	if err != nil {
		common.RespondError(c, err, "failed to review activity")
		return
	}

	common.SuccessResponse(c, finding)
}

// RunRapidListingCheck triggers the rapid-listing rule for a user. The
// response never reflects rule failures: detection is fire-and-continue.
func (h *Handler) RunRapidListingCheck(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid user ID")
		return
	}

	finding := h.detector.DetectRapidListing(c.Request.Context(), userID)
	common.AcceptedResponse(c, finding)
}

// RunPriceManipulationCheck triggers the price-manipulation rule for a listing
func (h *Handler) RunPriceManipulationCheck(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid listing ID")
		return
	}

	finding := h.detector.DetectPriceManipulation(c.Request.Context(), listingID)
	common.AcceptedResponse(c, finding)
}

// RunDuplicateImageCheck triggers the duplicate-image rule for a listing
func (h *Handler) RunDuplicateImageCheck(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid listing ID")
		return
	}

	finding := h.detector.DetectDuplicateImages(c.Request.Context(), listingID)
	common.AcceptedResponse(c, finding)
}

func filterFromQuery(c *gin.Context) (*Filter, error) {
	filter := &Filter{}
	filter.Limit, filter.Offset = common.PageParams(c)

	if v := c.Query("status"); v != "" {
		status := ActivityStatus(v)
		switch status {
		case StatusPending, StatusReviewed, StatusDismissed:
			filter.Status = &status
		default:
			return nil, common.NewBadRequestError("unknown status filter", nil)
		}
		return filter, nil
	}

	if v := c.Query("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, common.NewBadRequestError("invalid user_id filter", nil)
		}
		filter.UserID = &id
		return filter, nil
	}

	if v := c.Query("severity"); v != "" {
		severity := Severity(v)
		if !severity.Valid() {
			return nil, common.NewBadRequestError("unknown severity filter", nil)
		}
		filter.Severity = &severity
		return filter, nil
	}

	if v := c.Query("activity_type"); v != "" {
		activityType := ActivityType(v)
		if !activityType.Valid() {
			return nil, common.NewBadRequestError("unknown activity_type filter", nil)
		}
		filter.ActivityType = &activityType
	}

	return filter, nil
}
