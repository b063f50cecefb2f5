package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tienda-api/internal/application/catalog"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/application/usecase"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// ProductHandler maneja las peticiones HTTP para productos: el listado
// público sin estado y las operaciones administrativas. El borrado pasa por
// el gateway del catálogo para propagarse a los buffers de la vitrina.
type ProductHandler struct {
	uc       *usecase.ProductUseCase
	svc      *catalog.Service
	st       store.Store
	pageSize int
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase, svc *catalog.Service, st store.Store, pageSize int) *ProductHandler {
	return &ProductHandler{uc: uc, svc: svc, st: st, pageSize: pageSize}
}

// List godoc
// @Summary      Listar productos (paginación por cursor)
// @Tags         products
// @Produce      json
// @Param        search       query  string  false  "Término de búsqueda"
// @Param        category     query  string  false  "ID de categoría"
// @Param        subcategory  query  string  false  "ID de subcategoría"
// @Param        sort         query  string  false  "Orden campo-dir"  default(createdAt-desc)
// @Param        cursor       query  string  false  "Token de la página anterior"
// @Param        limit        query  int     false  "Tamaño de página"
// @Success      200          {object}  dto.ProductPageResponse
// @Failure      400          {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	f := catalog.FilterState{
		SearchTerm:    c.Query("search"),
		CategoryID:    c.Query("category"),
		SubcategoryID: c.Query("subcategory"),
		SortBy:        c.Query("sort"),
	}
	limit := c.QueryInt("limit", h.pageSize)
	if limit <= 0 {
		limit = h.pageSize
	}
	if limit > 100 {
		limit = 100
	}
	after, err := decodeCursor(c.Query("cursor"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_CURSOR", Message: "cursor inválido"})
	}
	page, err := catalog.FetchPage(c.Context(), h.st, f, limit, after)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := dto.ProductPageResponse{
		Items:   dto.ProductsFromEntities(page.Products),
		HasMore: page.HasMore,
	}
	if page.HasMore {
		out.NextCursor = encodeCursor(page.Cursor)
	}
	return c.JSON(out)
}

// BestSellers godoc
// @Summary      Top de más vendidos
// @Tags         products
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products/bestsellers [get]
func (h *ProductHandler) BestSellers(c *fiber.Ctx) error {
	best := h.svc.BestSellers()
	if best.Err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: best.Err.Error()})
	}
	return c.JSON(dto.ProductsFromEntities(best.Items))
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce     json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar producto (permanente)
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.svc.DeleteProduct(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrOperationInFlight) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IN_FLIGHT", Message: "otro borrado está en curso"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
