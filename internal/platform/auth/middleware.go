package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	// PatientIDKey is the echo context key carrying the authenticated patient id.
	PatientIDKey = "patient_id"
	// PatientEmailKey is the echo context key carrying the authenticated email.
	PatientEmailKey = "patient_email"
)

// Middleware validates the Authorization bearer token and stores the patient
// identity in the request context.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				if err == ErrExpiredToken {
					return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			patientID, err := claims.PatientID()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			c.Set(PatientIDKey, patientID)
			c.Set(PatientEmailKey, claims.Email)
			return next(c)
		}
	}
}

// PatientFromContext returns the authenticated patient id, or 0 when the
// request carries no session.
func PatientFromContext(c echo.Context) int64 {
	id, _ := c.Get(PatientIDKey).(int64)
	return id
}
