package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/pharmstock/internal/inventory"
)

func TestGetProduct_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetProduct(context.Background(), 7)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListProducts_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestListProducts_CaseInsensitiveOrder(t *testing.T) {
	s := createTestStore(t)

	mustAddProduct(t, s, "zinc", "1")
	mustAddProduct(t, s, "Aspirin", "1")
	mustAddProduct(t, s, "ibuprofen", "1")

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Aspirin", "ibuprofen", "zinc"}, names(products))
}

func TestListProducts_FoldsNonASCII(t *testing.T) {
	s := createTestStore(t)

	mustAddProduct(t, s, "éosine", "1")
	mustAddProduct(t, s, "Zovirax", "1")
	mustAddProduct(t, s, "Éther", "1")

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Zovirax", "éosine", "Éther"}, names(products))
}

func TestListProducts_TieBreakByCreationOrder(t *testing.T) {
	s := createTestStore(t)

	mustAddProduct(t, s, "aspirin", "1")
	mustAddProduct(t, s, "ASPIRIN", "1")
	mustAddProduct(t, s, "Aspirin", "1")

	products, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"aspirin", "ASPIRIN", "Aspirin"}, names(products))
}

func TestGetInventory_SingleOut(t *testing.T) {
	s := createTestStore(t)
	id := mustAddProduct(t, s, "Aspirin", "10")
	mustAddMovement(t, s, id, inventory.MovementOut, "3")

	lines, err := s.GetInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, "Aspirin", line.Name)
	assert.Equal(t, "3", line.TotalOut.String())
	require.True(t, line.Remaining.Valid)
	assert.Equal(t, "7", line.Remaining.Decimal.String())

	// Stored quantity and live remaining agree.
	assert.Equal(t, line.Quantity, line.Remaining.Decimal.String())
}

func TestGetInventory_NoMovements(t *testing.T) {
	s := createTestStore(t)
	mustAddProduct(t, s, "Aspirin", "12")

	lines, err := s.GetInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.True(t, lines[0].TotalOut.IsZero())
	require.True(t, lines[0].Remaining.Valid)
	assert.Equal(t, "12", lines[0].Remaining.Decimal.String())
	assert.Equal(t, "12", lines[0].Quantity)
}

func TestGetInventory_NonNumericQuantity(t *testing.T) {
	s := createTestStore(t)
	mustAddProduct(t, s, "Sérum", "2 boites")

	lines, err := s.GetInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.Equal(t, "2 boites", lines[0].Quantity)
	assert.True(t, lines[0].TotalOut.IsZero())
	assert.False(t, lines[0].Remaining.Valid)
}

func TestGetInventory_IgnoresIn(t *testing.T) {
	s := createTestStore(t)
	id := mustAddProduct(t, s, "Aspirin", "10")
	mustAddMovement(t, s, id, inventory.MovementIn, "50")

	lines, err := s.GetInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "10", lines[0].Remaining.Decimal.String())
}

func TestGetInventory_OrderedLikeListProducts(t *testing.T) {
	s := createTestStore(t)
	zinc := mustAddProduct(t, s, "zinc", "5")
	mustAddProduct(t, s, "Aspirin", "10")
	mustAddProduct(t, s, "ibuprofen", "8")
	mustAddMovement(t, s, zinc, inventory.MovementOut, "1")

	lines, err := s.GetInventory(context.Background())
	require.NoError(t, err)

	got := make([]string, len(lines))
	for i, l := range lines {
		got[i] = l.Name
	}
	assert.Equal(t, []string{"Aspirin", "ibuprofen", "zinc"}, got)
	assert.Equal(t, "4", lines[2].Remaining.Decimal.String())
	assert.True(t, lines[0].TotalOut.IsZero())
}

func TestRemainingFormulasDiverge(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := mustAddProduct(t, s, "Aspirin", "0")

	mustAddMovement(t, s, id, inventory.MovementIn, "5")
	mustAddMovement(t, s, id, inventory.MovementIn, "2")
	mustAddMovement(t, s, id, inventory.MovementOut, "3")

	remaining, err := s.RemainingForProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "4", remaining.String())

	lines, err := s.GetInventory(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "3", lines[0].TotalOut.String())
	require.True(t, lines[0].Remaining.Valid)
	assert.Equal(t, "-3", lines[0].Remaining.Decimal.String())
}

func TestRemainingForProduct_NoMovements(t *testing.T) {
	s := createTestStore(t)
	id := mustAddProduct(t, s, "Aspirin", "10")

	remaining, err := s.RemainingForProduct(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
}

func TestRemainingForProduct_OnlyThatProduct(t *testing.T) {
	s := createTestStore(t)
	a := mustAddProduct(t, s, "Aspirin", "10")
	b := mustAddProduct(t, s, "Ibuprofen", "10")
	mustAddMovement(t, s, a, inventory.MovementIn, "4")
	mustAddMovement(t, s, b, inventory.MovementIn, "100")

	remaining, err := s.RemainingForProduct(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimal.NewFromInt(4)))
}

func TestRemainingForProduct_UnknownProduct(t *testing.T) {
	s := createTestStore(t)

	_, err := s.RemainingForProduct(context.Background(), 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestListMovements_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	a := mustAddProduct(t, s, "Aspirin", "10")
	b := mustAddProduct(t, s, "Ibuprofen", "20")

	first := mustAddMovement(t, s, a, inventory.MovementOut, "1")
	second := mustAddMovement(t, s, b, inventory.MovementIn, "5")
	third := mustAddMovement(t, s, a, inventory.MovementOut, "2")

	lines, err := s.ListMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, []int64{third.ID, second.ID, first.ID},
		[]int64{lines[0].ID, lines[1].ID, lines[2].ID})

	assert.Equal(t, "Aspirin", lines[0].ProductName)
	assert.Equal(t, "7", lines[0].ProductQuantity)
	assert.Equal(t, inventory.MovementOut, lines[0].Type)
	assert.Equal(t, "2", lines[0].Quantity.String())
	assert.Equal(t, third.CreatedAt, lines[0].CreatedAt)

	assert.Equal(t, "Ibuprofen", lines[1].ProductName)
	assert.Equal(t, inventory.MovementIn, lines[1].Type)
}

func TestListMovements_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	lines, err := s.ListMovements(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, lines)
	assert.Empty(t, lines)
}

func TestStore_ConcurrentUse(t *testing.T) {
	s := createTestStore(t)
	id := mustAddProduct(t, s, "Aspirin", "100")

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := s.AddMovement(ctx, id, inventory.MovementOut, decimal.NewFromInt(1))
			return err
		})
		g.Go(func() error {
			_, err := s.GetInventory(ctx)
			return err
		})
	}
	require.NoError(t, g.Wait())

	p, err := s.GetProduct(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "90", p.Quantity)
}

func names(products []inventory.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}
