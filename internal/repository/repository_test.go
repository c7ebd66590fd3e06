package repository

import (
	"context"
	"database/sql"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rihanvyakoob07/authenflow-platform/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var productCols = []string{"id", "title", "description", "price", "category", "in_stock",
	"purchase_link", "clicks", "rating", "num_reviews", "created_at", "updated_at"}

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Ada", "ada@example.com", "hash", "user", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))

	u := &model.User{Name: "Ada", Email: "  Ada@Example.COM ", PasswordHash: "hash", Role: model.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, uint64(9), u.ID)
	assert.Equal(t, "ada@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Create(context.Background(), &model.User{Email: "a@b.c", Role: model.RoleUser})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserGetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "Nobody@Example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserScanUnknownRoleFallsBackToUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepo(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at", "updated_at"}).
			AddRow(3, "Eve", "eve@example.com", "hash", "Admn", now, now))

	u, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestWishlistAddDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWishlistRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wishlist_items")).
		WithArgs(uint64(1), uint64(2), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wishlist_items")).
		WithArgs(uint64(1), uint64(2), sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062})

	require.NoError(t, repo.Add(context.Background(), 1, 2))
	assert.ErrorIs(t, repo.Add(context.Background(), 1, 2), ErrDuplicateEntry)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistAddMissingProduct(t *testing.T) {
	db, mock := newMock(t)
	repo := NewWishlistRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO wishlist_items")).
		WillReturnError(&mysql.MySQLError{Number: 1452})

	assert.ErrorIs(t, repo.Add(context.Background(), 1, 99), ErrNotFound)
}

func TestIncrementClicksConcurrent(t *testing.T) {
	db, mock := newMock(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewProductRepo(db)

	const clicks = 10
	for i := 0; i < clicks; i++ {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET clicks = clicks + 1 WHERE id = ?")).
			WithArgs(uint64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	var wg sync.WaitGroup
	errs := make(chan error, clicks)
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.IncrementClicks(context.Background(), 5)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	// Every click is a single relative UPDATE; no read-modify-write happened.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementClicksNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET clicks = clicks + 1")).
		WithArgs(uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.IncrementClicks(context.Background(), 404), ErrNotFound)
}

func TestAppendReviewsRecomputesInsideTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM products WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_reviews")).
		WithArgs(uint64(1), nil, "Seed A", 3.0, "ok", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_reviews")).
		WithArgs(uint64(1), nil, "Seed B", 4.0, "good", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT rating FROM product_reviews WHERE product_id = ?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(5.0).AddRow(3.0).AddRow(4.0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET rating = ?, num_reviews = ?")).
		WithArgs(4.0, 3, sqlmock.AnyArg(), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "Lamp", "desc", 10.0, "home", true, "http://x", 0, 4.0, 3, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "url"}).AddRow(1, "a.png"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_reviews WHERE product_id IN")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "name", "rating", "comment", "created_at"}).
			AddRow(1, 1, 7, "Ada", 5.0, "great", now).
			AddRow(2, 1, nil, "Seed A", 3.0, "ok", now).
			AddRow(3, 1, nil, "Seed B", 4.0, "good", now))
	mock.ExpectCommit()

	p, err := repo.AppendReviews(context.Background(), 1, []model.Review{
		{Name: "Seed A", Rating: 3, Comment: "ok"},
		{Name: "Seed B", Rating: 4, Comment: "good"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumReviews)
	assert.Equal(t, 4.0, p.Rating)
	assert.Len(t, p.Reviews, 3)
	assert.Equal(t, uint64(7), p.Reviews[0].UserID)
	assert.Equal(t, []string{"a.png"}, p.Images)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendReviewsMissingProductRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.AppendReviews(context.Background(), 9, []model.Review{{Name: "x", Rating: 5, Comment: "y"}})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductUpdateAppliesChangesToLockedRow(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(2, "Old", "d", 9.5, "c", true, "http://l", 99, 4.5, 2, now, now))
	// Price comes from the locked row, not from any earlier read.
	mock.ExpectExec(`UPDATE products SET title = \?, description = \?, price = \?, category = \?, in_stock = \?, purchase_link = \?, updated_at = \? WHERE id = \?`).
		WithArgs("New", "d", 9.5, "c", true, "http://l", sqlmock.AnyArg(), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(2, "New", "d", 9.5, "c", true, "http://l", 99, 4.5, 2, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "url"}).AddRow(2, "kept.png"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "name", "rating", "comment", "created_at"}))
	mock.ExpectCommit()

	title := "New"
	p, err := repo.Update(context.Background(), 2, model.ProductChanges{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", p.Title)
	assert.Equal(t, 9.5, p.Price)
	assert.Equal(t, []string{"kept.png"}, p.Images)
	assert.Equal(t, int64(99), p.Clicks)
	// No DELETE or INSERT on product_images was expected, so none ran.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductUpdateReplacesSuppliedImages(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(2, "Lamp", "d", 3.5, "c", true, "http://l", 0, 0.0, 0, now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET title = ?")).
		WithArgs("Lamp", "d", 3.5, "c", false, "http://l", sqlmock.AnyArg(), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM product_images WHERE product_id = ?")).
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO product_images")).
		WithArgs(uint64(2), 0, "one.png").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(2, "Lamp", "d", 3.5, "c", false, "http://l", 0, 0.0, 0, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "url"}).AddRow(2, "one.png"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "name", "rating", "comment", "created_at"}))
	mock.ExpectCommit()

	inStock := false
	p, err := repo.Update(context.Background(), 2, model.ProductChanges{InStock: &inStock, Images: []string{"one.png"}})
	require.NoError(t, err)
	assert.False(t, p.InStock)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductUpdateMissingRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 8, model.ProductChanges{})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDReadsOneSnapshot(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "Lamp", "d", 10.0, "home", true, "http://x", 0, 5.0, 1, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "url"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "name", "rating", "comment", "created_at"}).
			AddRow(1, 1, 7, "Ada", 5.0, "great", now))
	mock.ExpectCommit()

	p, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, p.Reviews, p.NumReviews)
	assert.Equal(t, 5.0, p.Rating)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFoundRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id = ?")).
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectRollback()

	_, err := repo.GetByID(context.Background(), 4)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductDeleteNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = ?")).
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 3), ErrNotFound)
}

func TestListByIDsKeepsRequestedOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE id IN (?,?,?)")).
		WithArgs(uint64(3), uint64(1), uint64(8)).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "One", "d", 1.0, "c", true, "l", 0, 0.0, 0, now, now).
			AddRow(3, "Three", "d", 3.0, "c", true, "l", 0, 0.0, 0, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_images")).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "url"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM product_reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "user_id", "name", "rating", "comment", "created_at"}))
	mock.ExpectCommit()

	out, err := repo.ListByIDs(context.Background(), []uint64{3, 1, 8})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Three", out[0].Title)
	assert.Equal(t, "One", out[1].Title)
	assert.Empty(t, out[0].Images)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
