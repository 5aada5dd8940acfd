package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinica/sistema/internal/platform/auth"
	"github.com/clinica/sistema/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the booking endpoints. All of them require a patient
// session.
func (h *Handler) RegisterRoutes(protected *echo.Group) {
	protected.POST("/appointments", h.CreateAppointment)
	protected.GET("/appointments", h.ListAppointments)
	protected.GET("/appointments/:id", h.GetAppointment)
	protected.DELETE("/appointments/:id", h.CancelAppointment)

	protected.GET("/patients/me/appointments", h.AppointmentHistory)
	protected.GET("/patients/me/appointments/pending", h.PendingAppointments)

	protected.GET("/doctors/:id/slots", h.AvailableSlots)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var in CreateAppointmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// The session owns the booking regardless of what the body claims.
	in.PatientID = auth.PatientFromContext(c)

	appt, err := h.svc.CreateAppointment(c.Request().Context(), in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	if err := h.svc.CancelAppointment(c.Request().Context(), auth.PatientFromContext(c), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	appt, err := h.svc.GetAppointment(c.Request().Context(), auth.PatientFromContext(c), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AppointmentHistory(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.AppointmentHistory(c.Request().Context(), auth.PatientFromContext(c), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) PendingAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PendingAppointments(c.Request().Context(), auth.PatientFromContext(c), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AvailableSlots(c echo.Context) error {
	doctorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	from := time.Now().Truncate(24 * time.Hour)
	if raw := c.QueryParam("from"); raw != "" {
		from, err = time.Parse(DateLayout, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be formatted "+DateLayout)
		}
	}

	items, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, from)
	if err != nil {
		return mapError(err)
	}
	if items == nil {
		items = []*Slot{}
	}
	return c.JSON(http.StatusOK, items)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrAlreadyCancelled):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
