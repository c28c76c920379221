package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-goals/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/comitanigiacomo/kanso-goals/internal/core/services"
)

type GoalHandler struct {
	svc        *services.GoalService
	defaultLoc *time.Location
}

// NewGoalHandler builds the goal endpoints. defaultLoc is used when a request
// names no timezone.
func NewGoalHandler(svc *services.GoalService, defaultLoc *time.Location) *GoalHandler {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &GoalHandler{
		svc:        svc,
		defaultLoc: defaultLoc,
	}
}

type createGoalRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Frequency   string `json:"frequency" binding:"required" enums:"daily,weekly,monthly"`
}

type importGoalRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Frequency   string `json:"frequency" binding:"required" enums:"daily,weekly,monthly"`
	CreatedAt   string `json:"created_at" binding:"required"`
}

type updateGoalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Frequency   string  `json:"frequency" enums:"daily,weekly,monthly"`
	Version     int     `json:"version"`
}

type syncResponse struct {
	Changes []*domain.Goal `json:"changes"`
	// Timestamp is the last_sync value for the next call.
	Timestamp time.Time `json:"timestamp"`
}

func (h *GoalHandler) RegisterRoutes(router *gin.RouterGroup) {
	goals := router.Group("/goals")
	{
		goals.POST("", h.Create)
		goals.POST("/import", h.Import)
		goals.GET("", h.List)
		goals.GET("/due", h.Due)
		goals.GET("/sync", h.Sync)
		goals.GET("/:id", h.Get)
		goals.GET("/:id/schedule", h.Schedule)
		goals.PUT("/:id", h.Update)
		goals.DELETE("/:id", h.Delete)
	}
}

func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "user context missing"})
	}
	return userID, ok
}

// Create godoc
// @Summary      Create a goal
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        goal  body      createGoalRequest  true  "Goal"
// @Success      201   {object}  domain.Goal
// @Failure      400   {object}  errorResponse
// @Security     BearerAuth
// @Router       /goals [post]
func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	goal, err := h.svc.Create(c.Request.Context(), services.CreateGoalInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// Import godoc
// @Summary      Upload a goal created offline
// @Description  created_at is RFC 3339 or YYYY-MM-DD; a bare date is read in the request timezone.
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        goal  body      importGoalRequest  true  "Goal"
// @Param        tz    query     string             false "IANA timezone"
// @Success      201   {object}  domain.Goal
// @Failure      400   {object}  errorResponse
// @Security     BearerAuth
// @Router       /goals/import [post]
func (h *GoalHandler) Import(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loc, err := requestLocation(c, h.defaultLoc)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var req importGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	goal, err := h.svc.Import(c.Request.Context(), services.ImportGoalInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
		CreatedAt:   req.CreatedAt,
		Location:    loc,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// List godoc
// @Summary      List active goals
// @Tags         goals
// @Produce      json
// @Success      200  {array}  domain.Goal
// @Security     BearerAuth
// @Router       /goals [get]
func (h *GoalHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	list, err := h.svc.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// Due godoc
// @Summary      Goals due on a day
// @Tags         goals
// @Produce      json
// @Param        date  query     string  false  "YYYY-MM-DD, defaults to today"
// @Param        tz    query     string  false  "IANA timezone"
// @Success      200   {object}  services.DueList
// @Failure      400   {object}  errorResponse
// @Security     BearerAuth
// @Router       /goals/due [get]
func (h *GoalHandler) Due(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loc, err := requestLocation(c, h.defaultLoc)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	date, err := parseDay(c.Query("date"), loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid date format, use YYYY-MM-DD"})
		return
	}

	due, err := h.svc.ListDue(c.Request.Context(), services.DueInput{
		UserID:   userID,
		Date:     date,
		Location: loc,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, due)
}

// Sync godoc
// @Summary      Changes since the last sync, tombstones included
// @Tags         goals
// @Produce      json
// @Param        last_sync  query  string  false  "RFC 3339 timestamp"
// @Success      200  {object}  syncResponse
// @Failure      400  {object}  errorResponse
// @Security     BearerAuth
// @Router       /goals/sync [get]
func (h *GoalHandler) Sync(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var lastSync time.Time
	if raw := c.Query("last_sync"); raw != "" {
		var err error
		lastSync, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid last_sync format, use RFC3339"})
			return
		}
	}

	// Taken before the query: a write racing it must land after the cursor.
	syncedAt := time.Now().UTC()

	deltas, err := h.svc.GetDelta(c.Request.Context(), userID, lastSync)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, syncResponse{
		Changes:   deltas,
		Timestamp: syncedAt,
	})
}

// Get godoc
// @Summary      Get one goal
// @Tags         goals
// @Produce      json
// @Param        id   path      string  true  "Goal ID"
// @Success      200  {object}  domain.Goal
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /goals/{id} [get]
func (h *GoalHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	goal, err := h.svc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Schedule godoc
// @Summary      Due status and next due day of one goal
// @Tags         goals
// @Produce      json
// @Param        id    path      string  true   "Goal ID"
// @Param        from  query     string  false  "YYYY-MM-DD, defaults to today"
// @Param        tz    query     string  false  "IANA timezone"
// @Success      200   {object}  domain.GoalSchedule
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Security     BearerAuth
// @Router       /goals/{id}/schedule [get]
func (h *GoalHandler) Schedule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	loc, err := requestLocation(c, h.defaultLoc)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	from, err := parseDay(c.Query("from"), loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid from format, use YYYY-MM-DD"})
		return
	}

	preview, err := h.svc.Schedule(c.Request.Context(), c.Param("id"), userID, from, loc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// Update godoc
// @Summary      Update title or description
// @Description  Frequency is immutable; sending a different one is a conflict.
// @Tags         goals
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Goal ID"
// @Param        goal  body      updateGoalRequest  true  "Changes"
// @Success      200   {object}  domain.Goal
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Security     BearerAuth
// @Router       /goals/{id} [put]
func (h *GoalHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req updateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	goal, err := h.svc.Update(c.Request.Context(), services.UpdateGoalInput{
		ID:          c.Param("id"),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Frequency:   req.Frequency,
		Version:     req.Version,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// Delete godoc
// @Summary      Delete a goal
// @Tags         goals
// @Param        id   path  string  true  "Goal ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /goals/{id} [delete]
func (h *GoalHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
