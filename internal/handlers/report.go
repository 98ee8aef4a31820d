package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ymgta/time-tracker-api/internal/dto"
	apierrors "github.com/ymgta/time-tracker-api/internal/errors"
	"github.com/ymgta/time-tracker-api/internal/middleware"
	"github.com/ymgta/time-tracker-api/internal/services"
)

// ReportHandler exposes the range aggregation as a report surface.
type ReportHandler struct {
	trackerService *services.TrackerService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(trackerService *services.TrackerService) *ReportHandler {
	return &ReportHandler{
		trackerService: trackerService,
	}
}

// TrackedTime returns the date-grouped entries of a range together with the
// total tracked seconds and the billed amount at project rates.
func (h *ReportHandler) TrackedTime(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		apierrors.BadRequest(c, "from and to query parameters are required")
		return
	}

	filter, ok := entryFilterFromQuery(c)
	if !ok {
		return
	}

	result, err := h.trackerService.GetByRange(team.ID, from, to, filter)
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRangeResponse(*result))
}
