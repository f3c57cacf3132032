package laborder

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/optica/optica/internal/domain/patient"
	"github.com/optica/optica/internal/domain/sale"
	"github.com/optica/optica/internal/platform/auth"
	"github.com/optica/optica/internal/platform/notification"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("admin", "vendedor")

	g := api.Group("", role)
	g.GET("/lab-orders/:patientId", h.GetLabOrder)
	g.POST("/lab-orders/:patientId/complete", h.CompleteLabOrder)
}

func (h *Handler) GetLabOrder(c echo.Context) error {
	patientID, targetDate, err := params(c, c.QueryParam("date"))
	if err != nil {
		return err
	}

	view, err := h.svc.Load(c.Request().Context(), patientID, targetDate)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, view)
}

type completeRequest struct {
	Date    string `json:"date"`
	Message string `json:"message"`
}

// CompleteLabOrder re-resolves the screen state for the requested date and
// runs the completion workflow against it, returning the pruned pending set.
func (h *Handler) CompleteLabOrder(c echo.Context) error {
	var req completeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patientID, targetDate, err := params(c, req.Date)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	view, err := h.svc.Load(ctx, patientID, targetDate)
	if err != nil {
		return mapError(err)
	}

	updated, err := h.svc.Complete(ctx, view, req.Message)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func params(c echo.Context, date string) (uuid.UUID, sale.Date, error) {
	raw := c.Param("patientId")
	if raw == "" {
		return uuid.Nil, sale.Date{}, echo.NewHTTPError(http.StatusBadRequest, ErrMissingPatientID.Error())
	}
	patientID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, sale.Date{}, echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	if date == "" {
		return uuid.Nil, sale.Date{}, echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}
	targetDate, err := sale.ParseDate(date)
	if err != nil {
		return uuid.Nil, sale.Date{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return patientID, targetDate, nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrMissingPatientID),
		errors.Is(err, ErrMissingData),
		errors.Is(err, notification.ErrMissingContact):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, patient.ErrNotFound), errors.Is(err, sale.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyCompleted):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		// Backend unreachable or failed; prior state is untouched and the
		// operator may retry by hand.
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}
