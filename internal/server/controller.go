package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	pkgmdw "github.com/nguyentranbao-ct/catalog-browser/internal/server/middleware"
	"github.com/nguyentranbao-ct/catalog-browser/internal/usecase"
)

type Controller interface {
	Health(c echo.Context) error
	Browse(c echo.Context) error
	Categories(c echo.Context) error
}

type controller struct {
	catalogUsecase  usecase.CatalogUsecase
	categoryUsecase usecase.CategoryUsecase
}

func NewHandler(catalogUsecase usecase.CatalogUsecase, categoryUsecase usecase.CategoryUsecase) Controller {
	return &controller{
		catalogUsecase:  catalogUsecase,
		categoryUsecase: categoryUsecase,
	}
}

// Browse answers one filter query. The raw query string is decoded leniently,
// so malformed values fall back to defaults rather than failing.
func (h *controller) Browse(c echo.Context) error {
	ctx := c.Request().Context()
	result, err := h.catalogUsecase.Browse(ctx, c.QueryString())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkgmdw.Response{Success: true, Data: result})
}

func (h *controller) Categories(c echo.Context) error {
	ctx := c.Request().Context()
	list := h.categoryUsecase.List
	if c.QueryParam("refresh") == "true" {
		list = h.categoryUsecase.Refresh
	}
	categories, err := list(ctx)
	if err != nil {
		return &pkgmdw.ResponseError{
			Status:       http.StatusBadGateway,
			Err:          err,
			ErrorCode:    "categories_unavailable",
			ErrorMessage: "category list is unavailable",
		}
	}
	return c.JSON(http.StatusOK, pkgmdw.Response{Success: true, Data: categories})
}

func (h *controller) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "catalog-browser",
	})
}
