package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/stagepass/trust-safety/pkg/common"
	"github.com/stagepass/trust-safety/pkg/middleware"
	"github.com/stagepass/trust-safety/pkg/validation"
)

// Handler handles HTTP requests for fraud reports
type Handler struct {
	service *Service
}

// NewHandler creates a new fraud reports handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitReport handles filing a new fraud report
func (h *Handler) SubmitReport(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.TranslateBindError(err))
		return
	}

	report, err := h.service.SubmitReport(c.Request.Context(), actor, &req)
	if err != nil {
		common.RespondError(c, err, "failed to submit report")
		return
	}

	common.CreatedResponse(c, report)
}

// ListReports handles the moderation report queue
func (h *Handler) ListReports(c *gin.Context) {
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

	result, err := h.service.ListReports(c.Request.Context(), actor, filter)
	if err != nil {
		common.RespondError(c, err, "failed to list reports")
		return
	}

	common.SuccessResponse(c, result)
}

// AssignReport handles assigning a report to a moderator
func (h *Handler) AssignReport(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid report ID")
		return
	}

	var req struct {
		ModeratorID uuid.UUID `json:"moderator_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.TranslateBindError(err))
		return
	}

	report, err := h.service.AssignReport(c.Request.Context(), actor, reportID, req.ModeratorID)
	if err != nil {
		common.RespondError(c, err, "failed to assign report")
		return
	}

	common.SuccessResponse(c, report)
}

// ResolveReport handles resolving a report
func (h *Handler) ResolveReport(c *gin.Context) {
	h.closeReport(c, StatusResolved)
}

// DismissReport handles dismissing a report
func (h *Handler) DismissReport(c *gin.Context) {
	h.closeReport(c, StatusDismissed)
}

func (h *Handler) closeReport(c *gin.Context, status ReportStatus) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid report ID")
		return
	}

	var req struct {
		Resolution string `json:"resolution" binding:"required,min=3,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.TranslateBindError(err))
		return
	}

	var report *FraudReport
	if status == StatusResolved {
		report, err = h.service.ResolveReport(c.Request.Context(), actor, reportID, req.Resolution)
	} else {
		report, err = h.service.DismissReport(c.Request.Context(), actor, reportID, req.Resolution)
	}
	if err != nil {
		common.RespondError(c, err, "failed to close report")
		return
	}

	common.SuccessResponse(c, report)
}

func filterFromQuery(c *gin.Context) (*Filter, error) {
	filter := &Filter{}
	filter.Limit, filter.Offset = common.PageParams(c)

	if v := c.Query("status"); v != "" {
		status := ReportStatus(v)
		switch status {
		case StatusOpen, StatusAssigned, StatusResolved, StatusDismissed:
			filter.Status = &status
		default:
			return nil, common.NewBadRequestError("unknown status filter", nil)
		}
		return filter, nil
	}

	if v := c.Query("assigned_to"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, common.NewBadRequestError("invalid assigned_to filter", nil)
		}
		filter.AssignedTo = &id
		return filter, nil
	}

	if v := c.Query("reported_user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, common.NewBadRequestError("invalid reported_user_id filter", nil)
		}
		filter.ReportedUserID = &id
		return filter, nil
	}

	if v := c.Query("type"); v != "" {
		reportType := ReportType(v)
		if !reportType.Valid() {
			return nil, common.NewBadRequestError("unknown type filter", nil)
		}
		filter.Type = &reportType
	}

	return filter, nil
}
