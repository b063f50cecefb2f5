package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tienda-api/internal/application/catalog"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
)

// CatalogHandler expone la vista de vitrina compartida: el listado paginado
// con su estado de filtro y el top de más vendidos.
type CatalogHandler struct {
	svc *catalog.Service
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) view() dto.CatalogViewResponse {
	listing := h.svc.Listing()
	best := h.svc.BestSellers()
	f := h.svc.Filters()
	out := dto.CatalogViewResponse{
		Products: dto.ProductsFromEntities(listing.Products),
		HasMore:  listing.HasMore,
		Loading:  listing.Loading,
		Filters: dto.FilterRequest{
			SearchTerm:    f.SearchTerm,
			CategoryID:    f.CategoryID,
			SubcategoryID: f.SubcategoryID,
			SortBy:        f.SortBy,
		},
		BestSellers:        dto.ProductsFromEntities(best.Items),
		BestSellersLoading: best.Loading,
	}
	if listing.Err != nil {
		out.Error = listing.Err.Error()
	}
	if best.Err != nil {
		out.BestSellersError = best.Err.Error()
	}
	return out
}

// Get godoc
// @Summary      Snapshot de la vitrina
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  dto.CatalogViewResponse
// @Router       /api/catalog [get]
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	return c.JSON(h.view())
}

// SetFilters godoc
// @Summary      Aplicar estado de filtro a la vitrina
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        body  body  dto.FilterRequest  true  "Estado de filtro"
// @Success      200   {object}  dto.CatalogViewResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/catalog/filters [put]
func (h *CatalogHandler) SetFilters(c *fiber.Ctx) error {
	var in dto.FilterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	f := catalog.FilterState{
		SearchTerm:    in.SearchTerm,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		SortBy:        in.SortBy,
	}
	if err := h.svc.SetFilters(c.Context(), f); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(h.view())
}

// LoadMore godoc
// @Summary      Avanzar la página del listado
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  dto.CatalogViewResponse
// @Router       /api/catalog/more [post]
func (h *CatalogHandler) LoadMore(c *fiber.Ctx) error {
	if err := h.svc.LoadMore(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(h.view())
}

// Reset godoc
// @Summary      Limpiar el listado de la vitrina
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  dto.CatalogViewResponse
// @Router       /api/catalog/reset [post]
func (h *CatalogHandler) Reset(c *fiber.Ctx) error {
	h.svc.Reset()
	return c.JSON(h.view())
}

// Reload godoc
// @Summary      Re-disparar la consulta vigente (re-intento tras error)
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  dto.CatalogViewResponse
// @Router       /api/catalog/reload [post]
func (h *CatalogHandler) Reload(c *fiber.Ctx) error {
	if err := h.svc.Reload(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(h.view())
}

// RefreshBestSellers godoc
// @Summary      Re-consultar el top de más vendidos
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  dto.CatalogViewResponse
// @Router       /api/catalog/bestsellers/refresh [post]
func (h *CatalogHandler) RefreshBestSellers(c *fiber.Ctx) error {
	if err := h.svc.RefreshBestSellers(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(h.view())
}
