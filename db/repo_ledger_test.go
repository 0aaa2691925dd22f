package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"stockwise/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "stockwise.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(conn))
	return NewRepo(conn)
}

func seedProduct(t *testing.T, r *Repo, qty, reorder int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:           uuid.NewString(),
		Name:         "Stapler",
		Category:     "office",
		Location:     "A-1",
		Quantity:     qty,
		ReorderPoint: reorder,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func movementCount(t *testing.T, r *Repo, productID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.DB.Model(&models.StockMovement{}).
		Where("product_id = ?", productID).Count(&n).Error)
	return n
}

func TestLoanOut(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 5, 2)

	loan, err := r.LoanOut(ctx, p.ID, 3, "j.silva", time.Now().UTC())
	require.NoError(t, err)
	require.NotEmpty(t, loan.ID)
	assert.Equal(t, models.LoanStatusLoaned, loan.Status)
	assert.Equal(t, p.Name, loan.ProductName)
	assert.Equal(t, 3, loan.Quantity)

	got, err := r.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	ms, err := r.ListMovements(ctx, MovementsQuery{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, ms.Movements, 1)
	assert.Equal(t, models.MovementTypeLoan, ms.Movements[0].Type)
	assert.Equal(t, 3, ms.Movements[0].Quantity)
}

func TestLoanOutInsufficientStockWritesNothing(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 2, 1)

	_, err := r.LoanOut(ctx, p.ID, 3, "j.silva", time.Now().UTC())
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := r.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	loans, err := r.ListLoans(ctx, p.ID, "", "")
	require.NoError(t, err)
	assert.Empty(t, loans)
	assert.Zero(t, movementCount(t, r, p.ID))
}

func TestLoanOutUnknownProduct(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.LoanOut(context.Background(), uuid.NewString(), 1, "j.silva", time.Now().UTC())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoanOutRejectsBadInput(t *testing.T) {
	r := newTestRepo(t)
	p := seedProduct(t, r, 5, 1)

	_, err := r.LoanOut(context.Background(), p.ID, 0, "j.silva", time.Now().UTC())
	require.ErrorIs(t, err, ErrValidation)
	_, err = r.LoanOut(context.Background(), p.ID, 2, "", time.Now().UTC())
	require.ErrorIs(t, err, ErrValidation)
}

func TestReturnLoanRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 5, 2)

	loan, err := r.LoanOut(ctx, p.ID, 3, "j.silva", time.Now().UTC())
	require.NoError(t, err)

	returned, err := r.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	// 借出后立刻归还恢复原数量
	got, err := r.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	assert.EqualValues(t, 2, movementCount(t, r, p.ID)) // loan + return
}

func TestReturnLoanTwiceFails(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 5, 2)

	loan, err := r.LoanOut(ctx, p.ID, 2, "j.silva", time.Now().UTC())
	require.NoError(t, err)
	_, err = r.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)

	before := movementCount(t, r, p.ID)
	_, err = r.ReturnLoan(ctx, loan.ID)
	require.ErrorIs(t, err, ErrInvalidState)

	// 第二次归还零写入
	got, err := r.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
	assert.Equal(t, before, movementCount(t, r, p.ID))
}

func TestReturnUnknownLoan(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.ReturnLoan(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestReturnLoanSurvivesDeletedProduct(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 5, 2)

	loan, err := r.LoanOut(ctx, p.ID, 2, "j.silva", time.Now().UTC())
	require.NoError(t, err)

	// 模拟产品被带外删掉（正常路径会被 Conflict 挡住）
	require.NoError(t, r.DB.Delete(&models.Product{}, "id = ?", p.ID).Error)

	returned, err := r.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusReturned, returned.Status)
}

func TestAdjustStock(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 5, 2)

	require.NoError(t, r.AdjustStock(ctx, p.ID, 3, "damage"))

	got, err := r.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	ms, err := r.ListMovements(ctx, MovementsQuery{ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, ms.Movements, 1)
	assert.Equal(t, models.MovementTypeDeduction, ms.Movements[0].Type)
	assert.Equal(t, "damage", ms.Movements[0].Reason)
	assert.Equal(t, 3, ms.Movements[0].Quantity)
}

func TestAdjustStockInsufficient(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 2, 1)

	err := r.AdjustStock(ctx, p.ID, 5, "damage")
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := r.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.Zero(t, movementCount(t, r, p.ID))
}

func TestRestockProduct(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 2, 1)

	require.NoError(t, r.RestockProduct(ctx, p.ID, 10, "supplier delivery"))

	got, err := r.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Quantity)

	ms, err := r.ListMovements(ctx, MovementsQuery{ProductID: p.ID, Type: models.MovementTypeRestock})
	require.NoError(t, err)
	require.Len(t, ms.Movements, 1)
}

func TestDeleteProductBlockedByActiveLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 5, 2)

	loan, err := r.LoanOut(ctx, p.ID, 1, "j.silva", time.Now().UTC())
	require.NoError(t, err)

	require.ErrorIs(t, r.DeleteProduct(ctx, p.ID), ErrConflict)

	// 归还后可以删；历史流水和已归还借出保留
	_, err = r.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.NoError(t, r.DeleteProduct(ctx, p.ID))

	_, err = r.FindProductByID(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 2, movementCount(t, r, p.ID))
	loans, err := r.ListLoans(ctx, p.ID, "", "returned")
	require.NoError(t, err)
	assert.Len(t, loans, 1)
}

func TestDeleteUnknownProduct(t *testing.T) {
	r := newTestRepo(t)
	require.ErrorIs(t, r.DeleteProduct(context.Background(), uuid.NewString()), ErrNotFound)
}

func TestQuantityNeverNegative(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, 4, 1)

	// 接受与拒绝交错的一串操作后数量仍 >= 0
	_, err := r.LoanOut(ctx, p.ID, 3, "a", time.Now().UTC())
	require.NoError(t, err)
	_, err = r.LoanOut(ctx, p.ID, 3, "b", time.Now().UTC())
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.NoError(t, r.AdjustStock(ctx, p.ID, 1, "damage"))
	require.ErrorIs(t, r.AdjustStock(ctx, p.ID, 1, "damage"), ErrInsufficientStock)

	got, err := r.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got.Quantity, 0)
	assert.Equal(t, 0, got.Quantity)
}
