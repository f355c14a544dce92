package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"chargeslot/internal/api"
	"chargeslot/internal/auth"
	"chargeslot/internal/logger"
	"chargeslot/internal/slot"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type CreateBookingRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	SlotID int    `json:"slot_id" validate:"required,gte=1"`
	Notes  string `json:"notes" validate:"max=500"`
}

type Handler struct {
	service Service
	loc     *time.Location
}

func NewHandler(service Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{
		service: service,
		loc:     loc,
	}
}

// ListSlots returns the configured slot catalog.
// @Summary      List slots
// @Description  Returns the daily charging windows.
// @Tags         slots
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   slot.TimeSlot
// @Failure      401  {object}  api.ErrorResponse
// @Router       /slots [get]
func (h *Handler) ListSlots(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Slots())
}

// Calendar renders one or more days starting at ?from (default today).
// @Summary      Calendar
// @Description  Returns slot states and allowed actions for up to seven days.
// @Tags         slots
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "First day (YYYY-MM-DD)"
// @Param        days  query     int     false  "Number of days (1-7)"
// @Success      200   {array}   CalendarDay
// @Failure      400   {object}  api.ErrorResponse
// @Failure      401   {object}  api.ErrorResponse
// @Failure      500   {object}  api.ErrorResponse
// @Router       /calendar [get]
func (h *Handler) Calendar(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	from := time.Now().In(h.loc)
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from must be formatted as YYYY-MM-DD"})
			return
		}
		from = parsed
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "days must be a number"})
		return
	}

	calendar, err := h.service.Calendar(c.Request.Context(), userID, auth.IsAdmin(c), from, days)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, calendar)
}

// @Summary      Book slot
// @Description  Books a slot on the given date for the current user.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) BookSlot(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if errs := api.ValidateStruct(req); errs != nil {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be formatted as YYYY-MM-DD"})
		return
	}

	b, err := h.service.BookSlot(c.Request.Context(), userID, date, req.SlotID, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

// @Summary      List my bookings
// @Description  Returns upcoming and past bookings of the current user.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  MyBookings
// @Failure      401  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.MyBookings(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// CancelBooking cancels the caller's booking. Admins may cancel any booking.
// @Summary      Cancel booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      400  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /bookings/{id}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	h.mutate(c, func(c *gin.Context, userID, id uuid.UUID) (*Booking, error) {
		return h.service.CancelBooking(c.Request.Context(), userID, auth.IsAdmin(c), id)
	})
}

// AdminCancelBooking cancels any booking; the route is guarded by RequireRole.
// @Summary      Cancel booking as admin
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      400  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /admin/bookings/{id}/cancel [post]
func (h *Handler) AdminCancelBooking(c *gin.Context) {
	h.mutate(c, func(c *gin.Context, userID, id uuid.UUID) (*Booking, error) {
		return h.service.CancelBooking(c.Request.Context(), userID, true, id)
	})
}

// @Summary      Report booking
// @Description  Marks an active booking as not charging and suspends its owner.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      400  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /bookings/{id}/report [post]
func (h *Handler) ReportAbuse(c *gin.Context) {
	h.mutate(c, func(c *gin.Context, userID, id uuid.UUID) (*Booking, error) {
		return h.service.ReportAbuse(c.Request.Context(), userID, id)
	})
}

// @Summary      Withdraw report
// @Description  Withdraws the caller's report and lifts the owner's suspension.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /bookings/{id}/report [delete]
func (h *Handler) UndoReport(c *gin.Context) {
	h.mutate(c, func(c *gin.Context, userID, id uuid.UUID) (*Booking, error) {
		return h.service.UndoReport(c.Request.Context(), userID, id)
	})
}

// @Summary      Confirm charging
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  Booking
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      409  {object}  api.ErrorResponse
// @Router       /bookings/{id}/confirm [post]
func (h *Handler) ConfirmCharging(c *gin.Context) {
	h.mutate(c, func(c *gin.Context, userID, id uuid.UUID) (*Booking, error) {
		return h.service.ConfirmCharging(c.Request.Context(), userID, id)
	})
}

func (h *Handler) mutate(c *gin.Context, fn func(c *gin.Context, userID, id uuid.UUID) (*Booking, error)) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	b, err := fn(c, userID, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var forbidden *ForbiddenError

	switch {
	case errors.As(err, &forbidden):
		until := forbidden.BannedUntil
		logger.Warn("Booking request rejected: banned", "path", c.FullPath(), "banned_until", until)
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "you are suspended from booking", BannedUntil: &until})
	case errors.Is(err, ErrForbidden):
		logger.Warn("Booking request forbidden", "path", c.FullPath())
		c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "not allowed"})
	case errors.Is(err, ErrSlotInPast):
		logger.Info("Booking request for past slot", "path", c.FullPath())
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "slot has already ended"})
	case errors.Is(err, ErrConflict):
		logger.Info("Booking conflict", "path", c.FullPath())
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "slot already booked, refresh the calendar"})
	case errors.Is(err, ErrNotFound):
		logger.Info("Booking not found", "path", c.FullPath())
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "booking not found"})
	case errors.Is(err, ErrNotReportable):
		logger.Info("Booking state does not allow this action", "path", c.FullPath())
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "booking state does not allow this action"})
	case errors.Is(err, ErrInvalidRange), errors.Is(err, slot.ErrUnknownSlot):
		logger.Info("Invalid booking request", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	default:
		logger.Error("Booking request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
	}
}
