package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ymgta/time-tracker-api/internal/dto"
	apierrors "github.com/ymgta/time-tracker-api/internal/errors"
	"github.com/ymgta/time-tracker-api/internal/middleware"
	"github.com/ymgta/time-tracker-api/internal/repository"
	"github.com/ymgta/time-tracker-api/internal/services"
)

// TrackerHandler exposes the tracker entry store and the timer lifecycle.
type TrackerHandler struct {
	trackerService *services.TrackerService
}

// NewTrackerHandler creates a new TrackerHandler.
func NewTrackerHandler(trackerService *services.TrackerService) *TrackerHandler {
	return &TrackerHandler{
		trackerService: trackerService,
	}
}

// ListEntries returns entries for one date, or for a range when from/to are
// given, together with the aggregate totals.
func (h *TrackerHandler) ListEntries(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	filter, ok := entryFilterFromQuery(c)
	if !ok {
		return
	}

	if date := c.Query("date"); date != "" {
		result, err := h.trackerService.GetByDate(team.ID, date, filter)
		if err != nil {
			respondTrackerError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToDayResponse(*result))
		return
	}

	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		apierrors.BadRequest(c, "Either date or from/to query parameters are required")
		return
	}

	result, err := h.trackerService.GetByRange(team.ID, from, to, filter)
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRangeResponse(*result))
}

// UpsertEntries creates one entry per date, or updates the entry named by id.
func (h *TrackerHandler) UpsertEntries(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	type UpsertRequest struct {
		ID          *uint64    `json:"id"`
		Dates       []string   `json:"dates"`
		Start       time.Time  `json:"start" binding:"required"`
		Stop        *time.Time `json:"stop"`
		Duration    *int64     `json:"duration"`
		AssignedID  *uint64    `json:"assigned_id"`
		ProjectID   uint64     `json:"project_id"`
		Description string     `json:"description"`
	}

	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// An absent duration is derived from start/stop
	duration := int64(-1)
	if req.Duration != nil {
		duration = *req.Duration
	}

	entries, err := h.trackerService.Upsert(team.ID, services.UpsertEntryInput{
		ID:          req.ID,
		Dates:       req.Dates,
		Start:       req.Start,
		Stop:        req.Stop,
		Duration:    duration,
		AssignedID:  req.AssignedID,
		ProjectID:   req.ProjectID,
		Description: req.Description,
	})
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": dto.ToTrackerEntryDTOs(entries),
	})
}

// BulkCreateEntries expands and inserts many records in one atomic batch
func (h *TrackerHandler) BulkCreateEntries(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	type BulkEntry struct {
		Start       time.Time  `json:"start" binding:"required"`
		Stop        *time.Time `json:"stop"`
		Dates       []string   `json:"dates" binding:"required"`
		AssignedID  *uint64    `json:"assigned_id"`
		ProjectID   uint64     `json:"project_id" binding:"required"`
		Description string     `json:"description"`
		Duration    *int64     `json:"duration"`
	}
	type BulkRequest struct {
		Entries []BulkEntry `json:"entries" binding:"required"`
	}

	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	inputs := make([]services.BulkEntryInput, len(req.Entries))
	for i, e := range req.Entries {
		duration := int64(-1)
		if e.Duration != nil {
			duration = *e.Duration
		}
		inputs[i] = services.BulkEntryInput{
			Start:       e.Start,
			Stop:        e.Stop,
			Dates:       e.Dates,
			AssignedID:  e.AssignedID,
			ProjectID:   e.ProjectID,
			Description: e.Description,
			Duration:    duration,
		}
	}

	entries, err := h.trackerService.BulkCreate(team.ID, inputs)
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entries": dto.ToTrackerEntryDTOs(entries),
	})
}

// DeleteEntry removes one entry by id
func (h *TrackerHandler) DeleteEntry(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	entryID, err := strconv.ParseUint(c.Param("entry_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid entry ID")
		return
	}

	entry, err := h.trackerService.Delete(team.ID, entryID)
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry": dto.ToTrackerEntryDTO(*entry),
	})
}

// StartTimer starts a fresh timer, or resumes a paused entry when
// continue_from_entry_id is given.
func (h *TrackerHandler) StartTimer(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	type StartRequest struct {
		ProjectID           uint64     `json:"project_id"`
		AssignedID          *uint64    `json:"assigned_id"`
		Start               *time.Time `json:"start"`
		ContinueFromEntryID *uint64    `json:"continue_from_entry_id"`
	}

	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	entry, err := h.trackerService.StartTimer(team.ID, services.StartTimerInput{
		ProjectID:           req.ProjectID,
		AssignedID:          resolveAssignee(c, req.AssignedID),
		Start:               req.Start,
		ContinueFromEntryID: req.ContinueFromEntryID,
	})
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"entry": dto.ToTrackerEntryDTO(*entry),
	})
}

// StopTimer closes the matching running timer
func (h *TrackerHandler) StopTimer(c *gin.Context) {
	h.closeTimer(c, false)
}

// PauseTimer closes the matching running timer while keeping it resumable
func (h *TrackerHandler) PauseTimer(c *gin.Context) {
	h.closeTimer(c, true)
}

func (h *TrackerHandler) closeTimer(c *gin.Context, pause bool) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	type StopRequest struct {
		EntryID    *uint64    `json:"entry_id"`
		AssignedID *uint64    `json:"assigned_id"`
		At         *time.Time `json:"at"`
	}

	// An empty body stops the caller's own running timer
	var req StopRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.StopTimerInput{
		EntryID:    req.EntryID,
		AssignedID: resolveAssignee(c, req.AssignedID),
		At:         req.At,
	}

	var entry *dto.TrackerEntryDTO
	if pause {
		paused, err := h.trackerService.PauseTimer(team.ID, input)
		if err != nil {
			respondTrackerError(c, err)
			return
		}
		d := dto.ToTrackerEntryDTO(*paused)
		entry = &d
	} else {
		stopped, err := h.trackerService.StopTimer(team.ID, input)
		if err != nil {
			respondTrackerError(c, err)
			return
		}
		d := dto.ToTrackerEntryDTO(*stopped)
		entry = &d
	}

	c.JSON(http.StatusOK, gin.H{
		"entry": entry,
	})
}

// CurrentTimer returns the running entry for the scope, or null
func (h *TrackerHandler) CurrentTimer(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	assignedID, ok := assigneeFromQuery(c)
	if !ok {
		return
	}

	entry, err := h.trackerService.CurrentTimer(team.ID, resolveAssignee(c, assignedID))
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"entry": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entry": dto.ToTrackerEntryDTO(*entry),
	})
}

// TimerStatus reports whether a timer is running plus its elapsed seconds
func (h *TrackerHandler) TimerStatus(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	assignedID, ok := assigneeFromQuery(c)
	if !ok {
		return
	}

	status, err := h.trackerService.GetTimerStatus(team.ID, resolveAssignee(c, assignedID))
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimerStatusResponse(*status))
}

// PausedEntries lists resumable entries, most recent first
func (h *TrackerHandler) PausedEntries(c *gin.Context) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return
	}

	assignedID, ok := assigneeFromQuery(c)
	if !ok {
		return
	}

	entries, err := h.trackerService.PausedEntries(team.ID, resolveAssignee(c, assignedID))
	if err != nil {
		respondTrackerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": dto.ToTrackerEntryDTOs(entries),
	})
}

// resolveAssignee defaults the assignee to the caller's own identity.
func resolveAssignee(c *gin.Context, assignedID *uint64) *uint64 {
	if assignedID != nil {
		return assignedID
	}
	userID, exists := middleware.GetUserID(c)
	if !exists {
		return nil
	}
	return &userID
}

// entryFilterFromQuery parses optional project_id/user_id filters. It writes
// the error response itself and reports success through the second value.
func entryFilterFromQuery(c *gin.Context) (repository.EntryFilter, bool) {
	filter := repository.EntryFilter{}

	if raw := c.Query("project_id"); raw != "" {
		projectID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return filter, false
		}
		filter.ProjectID = &projectID
	}

	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid user_id")
			return filter, false
		}
		filter.AssignedID = &userID
	}

	return filter, true
}

func assigneeFromQuery(c *gin.Context) (*uint64, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		return nil, true
	}
	userID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user_id")
		return nil, false
	}
	return &userID, true
}

func respondTrackerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEntryNotFound):
		apierrors.NotFound(c, "Tracker entry not found")
	case errors.Is(err, services.ErrNoRunningTimer):
		apierrors.RespondWithError(c, http.StatusNotFound,
			apierrors.NewAPIError(apierrors.ErrCodeNoRunningTimer, "No running timer"))
	case errors.Is(err, services.ErrEntryNotResumable):
		apierrors.RespondWithError(c, http.StatusConflict,
			apierrors.NewAPIError(apierrors.ErrCodeInvalidState, "Entry is not paused and cannot be resumed"))
	case errors.Is(err, services.ErrNoDates):
		apierrors.BadRequest(c, "At least one date is required")
	case errors.Is(err, services.ErrUpsertDateConflict):
		apierrors.BadRequest(c, "An explicit id cannot be combined with multiple dates")
	case errors.Is(err, services.ErrInvalidDate):
		apierrors.BadRequest(c, "Dates must be formatted as YYYY-MM-DD")
	case errors.Is(err, services.ErrProjectRequired):
		apierrors.BadRequest(c, "A project is required to start a timer")
	case errors.Is(err, services.ErrTooManyEntries):
		apierrors.BadRequest(c, "Too many entries in one bulk call")
	default:
		apierrors.InternalError(c, "")
	}
}
