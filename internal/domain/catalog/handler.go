package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/optica/optica/internal/platform/auth"
)

type Handler struct {
	repo CatalogRepository
}

func NewHandler(repo CatalogRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/branches", h.ListBranches)
	api.GET("/lenses", h.ListLenses)
	api.POST("/branches", h.CreateBranch, auth.RequireRole("admin"))
}

func (h *Handler) CreateBranch(c echo.Context) error {
	var b Branch
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := b.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.repo.CreateBranch(c.Request().Context(), &b); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) ListBranches(c echo.Context) error {
	items, err := h.repo.ListBranches(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListLenses(c echo.Context) error {
	items, err := h.repo.ListLenses(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}
