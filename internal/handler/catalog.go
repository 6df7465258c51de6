package handler

import (
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	product, err := h.catalogService.CreateProduct(ctx, callerID(c), &req)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, dto.NewProductResponse(product))
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.catalogService.ListProducts(ctx)
	if err != nil {
		return httpError(err)
	}

	resp := make([]*dto.ProductResponse, len(products))
	for i, p := range products {
		resp[i] = dto.NewProductResponse(p)
	}

	return c.JSON(http.StatusOK, resp)
}
