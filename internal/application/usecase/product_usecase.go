package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Tienda-api/internal/application/catalog"
	"github.com/jhoicas/Tienda-api/internal/application/categories"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/keywords"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// ProductUseCase operaciones administrativas sobre productos. El borrado no
// vive aquí: pasa por el gateway del catálogo para propagarse a los buffers.
type ProductUseCase struct {
	st   store.Store
	cats *categories.Cache
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(st store.Store, cats *categories.Cache) *ProductUseCase {
	return &ProductUseCase{st: st, cats: cats}
}

// Create crea un producto. El SKU queda en mayúsculas y es inmutable después;
// los keywords se derivan del nombre; salesCount inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if name == "" || sku == "" {
		return nil, fmt.Errorf("sku y name son requeridos: %w", domain.ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("el precio no puede ser negativo: %w", domain.ErrInvalidInput)
	}
	if err := uc.checkSubcategory(in.CategoryID, in.SubcategoryID); err != nil {
		return nil, err
	}

	product := entity.Product{
		SKU:           sku,
		Name:          name,
		Price:         in.Price,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		Keywords:      keywords.FromName(name),
		SalesCount:    0,
		CreatedAt:     time.Now(),
	}

	id, err := uc.st.Add(ctx, store.Products, catalog.DocFromProduct(product))
	if err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	product.ID = id
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// GetByID obtiene un producto. Devuelve (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	doc, err := uc.st.Get(ctx, store.Products, id)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	out := dto.ProductFromEntity(catalog.ProductFromDoc(*doc))
	return &out, nil
}

// Update actualiza un producto. Renombrar re-deriva los keywords; el SKU no
// se toca. Devuelve (nil, nil) si el producto no existe.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	doc, err := uc.st.Get(ctx, store.Products, id)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	if doc == nil {
		return nil, nil
	}
	product := catalog.ProductFromDoc(*doc)

	patch := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("name no puede quedar vacío: %w", domain.ErrInvalidInput)
		}
		product.Name = name
		product.Keywords = keywords.FromName(name)
		patch["name"] = name
		patch["keywords"] = product.Keywords
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, fmt.Errorf("el precio no puede ser negativo: %w", domain.ErrInvalidInput)
		}
		product.Price = *in.Price
		patch["price"] = in.Price.InexactFloat64()
	}
	if in.Description != nil {
		product.Description = *in.Description
		patch["description"] = *in.Description
	}
	if in.ImageURL != nil {
		product.ImageURL = *in.ImageURL
		patch["imageUrl"] = *in.ImageURL
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
		patch["categoryId"] = *in.CategoryID
	}
	if in.SubcategoryID != nil {
		product.SubcategoryID = *in.SubcategoryID
		if *in.SubcategoryID == "" {
			patch["subcategoryId"] = nil
		} else {
			patch["subcategoryId"] = *in.SubcategoryID
		}
	}
	if err := uc.checkSubcategory(product.CategoryID, product.SubcategoryID); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		out := dto.ProductFromEntity(product)
		return &out, nil
	}

	if err := uc.st.Update(ctx, store.Products, id, patch); err != nil {
		return nil, fmt.Errorf("actualizar producto: %w", err)
	}
	out := dto.ProductFromEntity(product)
	return &out, nil
}

// checkSubcategory exige que la subcategoría, cuando la conocemos, pertenezca
// a la categoría indicada. Una referencia colgante (no está en la caché) se
// tolera: la integridad referencial del catálogo es blanda.
func (uc *ProductUseCase) checkSubcategory(categoryID, subcategoryID string) error {
	if subcategoryID == "" {
		return nil
	}
	sub := uc.cats.GetCategoryByID(subcategoryID)
	if sub == nil {
		return nil
	}
	if sub.ParentID != categoryID {
		return fmt.Errorf("la subcategoría no pertenece a la categoría: %w", domain.ErrInvalidInput)
	}
	return nil
}
