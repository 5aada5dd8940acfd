package patient

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinica/sistema/internal/platform/auth"
)

type Handler struct {
	svc    *Service
	tokens *auth.TokenIssuer
}

func NewHandler(svc *Service, tokens *auth.TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

// RegisterRoutes wires the public registration endpoints and the
// session-protected profile endpoints.
func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/patients/register", h.Register)
	public.POST("/patients/login", h.Login)

	protected.GET("/patients/me", h.Me)
	protected.GET("/patients/me/addresses", h.ListAddresses)
	protected.POST("/patients/me/addresses", h.AddAddress)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string   `json:"token"`
	Patient *Patient `json:"patient"`
}

func (h *Handler) Login(c echo.Context) error {
	var in loginRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Authenticate(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return mapError(err)
	}
	token, err := h.tokens.Issue(p.ID, p.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue session")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Patient: p})
}

func (h *Handler) Me(c echo.Context) error {
	p, err := h.svc.GetByID(c.Request().Context(), auth.PatientFromContext(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListAddresses(c echo.Context) error {
	items, err := h.svc.ListAddresses(c.Request().Context(), auth.PatientFromContext(c))
	if err != nil {
		return mapError(err)
	}
	if items == nil {
		items = []*Address{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) AddAddress(c echo.Context) error {
	var a Address
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddAddress(c.Request().Context(), auth.PatientFromContext(c), &a); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
