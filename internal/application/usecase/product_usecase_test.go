package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-api/internal/application/categories"
	"github.com/jhoicas/Tienda-api/internal/application/dto"
	"github.com/jhoicas/Tienda-api/internal/application/usecase"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// fixture arma el caso de uso sobre un memstore con una categoría raíz y una
// subcategoría, y devuelve sus ids.
func fixture(t *testing.T) (*usecase.ProductUseCase, string, string) {
	t.Helper()
	st := memstore.New()
	cats := categories.NewCache(st, logger.Nop())
	ctx := context.Background()

	catID, err := cats.CreateCategory(ctx, entity.Category{Name: "Hogar"})
	require.NoError(t, err)
	subID, err := cats.CreateCategory(ctx, entity.Category{Name: "Cocina", ParentID: catID})
	require.NoError(t, err)

	return usecase.NewProductUseCase(st, cats), catID, subID
}

func TestCreate_NormalizaSKUYDerivaKeywords(t *testing.T) {
	uc, catID, _ := fixture(t)

	out, err := uc.Create(context.Background(), dto.CreateProductRequest{
		SKU:        "  sku-123 ",
		Name:       "Lámpara LED",
		Price:      decimal.NewFromFloat(25.50),
		CategoryID: catID,
	})
	require.NoError(t, err)
	assert.Equal(t, "SKU-123", out.SKU, "el SKU se guarda en mayúsculas")
	assert.Equal(t, int64(0), out.SalesCount)

	// Los keywords derivados hacen al producto encontrable sin tildes.
	got, err := uc.GetByID(context.Background(), out.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Lámpara LED", got.Name)
}

func TestCreate_Validaciones(t *testing.T) {
	uc, catID, _ := fixture(t)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "X", Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el nombre es obligatorio")

	_, err = uc.Create(ctx, dto.CreateProductRequest{
		SKU: "X", Name: "Algo", Price: decimal.NewFromInt(-1), CategoryID: catID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el precio no puede ser negativo")
}

func TestCreate_SubcategoriaDebeSerHijaDeLaCategoria(t *testing.T) {
	uc, _, subID := fixture(t)

	_, err := uc.Create(context.Background(), dto.CreateProductRequest{
		SKU:           "X",
		Name:          "Olla",
		Price:         decimal.NewFromInt(10),
		CategoryID:    "otra-categoria",
		SubcategoryID: subID,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_SubcategoriaColganteSeTolera(t *testing.T) {
	uc, catID, _ := fixture(t)

	// Integridad blanda: una referencia que la caché no conoce no bloquea.
	_, err := uc.Create(context.Background(), dto.CreateProductRequest{
		SKU:           "X",
		Name:          "Olla",
		Price:         decimal.NewFromInt(10),
		CategoryID:    catID,
		SubcategoryID: "id-desconocido",
	})
	assert.NoError(t, err)
}

func TestUpdate_RenombrarRederivaKeywords(t *testing.T) {
	uc, catID, _ := fixture(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateProductRequest{
		SKU: "K1", Name: "Silla vieja", Price: decimal.NewFromInt(5), CategoryID: catID,
	})
	require.NoError(t, err)

	nuevo := "Sofá Nuevo"
	out, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{Name: &nuevo})
	require.NoError(t, err)
	assert.Equal(t, "Sofá Nuevo", out.Name)
	assert.Equal(t, "K1", out.SKU, "el SKU es inmutable")
}

func TestUpdate_ProductoInexistenteDevuelveNil(t *testing.T) {
	uc, _, _ := fixture(t)
	nuevo := "X"
	out, err := uc.Update(context.Background(), "no-existe", dto.UpdateProductRequest{Name: &nuevo})
	require.NoError(t, err)
	assert.Nil(t, out, "no encontrado es un centinela, no un error")
}

func TestGetByID_InexistenteDevuelveNil(t *testing.T) {
	uc, _, _ := fixture(t)
	out, err := uc.GetByID(context.Background(), "no-existe")
	require.NoError(t, err)
	assert.Nil(t, out)
}
