package http

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/Tienda-api/internal/application/categories"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// CategoryHandler maneja las peticiones HTTP para el árbol de categorías,
// respaldado por la caché en vivo.
type CategoryHandler struct {
	cache *categories.Cache
}

// NewCategoryHandler construye el handler.
func NewCategoryHandler(cache *categories.Cache) *CategoryHandler {
	return &CategoryHandler{cache: cache}
}

func (h *CategoryHandler) snapshotResponse(snap categories.Snapshot) dto.CategorySnapshotResponse {
	out := dto.CategorySnapshotResponse{
		Categories: dto.CategoriesFromEntities(snap.Categories),
		Loading:    snap.Loading,
	}
	var active []entity.Category
	for _, c := range snap.Categories {
		if c.IsActive {
			active = append(active, c)
		}
	}
	out.ActiveCategories = dto.CategoriesFromEntities(active)
	if snap.Err != nil {
		out.Error = snap.Err.Error()
	}
	return out
}

// List godoc
// @Summary      Snapshot del árbol de categorías
// @Tags         categories
// @Produce      json
// @Success      200  {object}  dto.CategorySnapshotResponse
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.snapshotResponse(h.cache.Snapshot()))
}

// GetByID godoc
// @Summary      Obtener categoría por ID
// @Tags         categories
// @Produce      json
// @Param        id   path  string  true  "ID de la categoría"
// @Success      200  {object}  dto.CategoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	cat := h.cache.GetCategoryByID(id)
	if cat == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "categoría no encontrada"})
	}
	return c.JSON(dto.CategoryFromEntity(*cat))
}

// Create godoc
// @Summary      Crear categoría o subcategoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryRequest  true  "Datos de la categoría"
// @Success      201   {object}  dto.CreateCategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	id, err := h.cache.CreateCategory(c.Context(), entity.Category{
		Name:        in.Name,
		Description: in.Description,
		ParentID:    in.ParentID,
		Order:       in.Order,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateCategoryResponse{ID: id})
}

// Update godoc
// @Summary      Actualizar categoría
// @Tags         categories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la categoría"
// @Param        body  body  dto.UpdateCategoryRequest  true  "Datos a actualizar"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	err := h.cache.UpdateCategory(c.Context(), id, categories.CategoryPatch{
		Name:        in.Name,
		Description: in.Description,
		ParentID:    in.ParentID,
		Order:       in.Order,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "categoría no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Deactivate godoc
// @Summary      Desactivar categoría (borrado suave)
// @Tags         categories
// @Security     Bearer
// @Param        id   path  string  true  "ID de la categoría"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Deactivate(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.cache.DeactivateCategory(c.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "categoría no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePermanently godoc
// @Summary      Eliminar categoría (permanente)
// @Tags         categories
// @Security     Bearer
// @Param        id   path  string  true  "ID de la categoría"
// @Success      204
// @Router       /api/categories/{id}/permanent [delete]
func (h *CategoryHandler) DeletePermanently(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.cache.DeleteCategoryPermanently(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stream godoc
// @Summary      Suscripción SSE al árbol de categorías
// @Tags         categories
// @Produce      text/event-stream
// @Success      200
// @Router       /api/categories/stream [get]
func (h *CategoryHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ch, cancel := h.cache.Watch()
		defer cancel()
		for snap := range ch {
			payload, err := json.Marshal(h.snapshotResponse(snap))
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: categories\ndata: %s\n\n", payload); err != nil {
				return
			}
			// Flush falla cuando el cliente cerró: única señal de desconexión.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
