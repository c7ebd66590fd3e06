// Package repository contains data access logic separated from HTTP handlers.
// This file defines the product aggregate: a `products` row together with
// its ordered `product_images` and `product_reviews`.  The derived rating
// columns are only written inside AppendReviews.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rihanvyakoob07/authenflow-platform/internal/model"
)

// ProductRepo encapsulates all database queries related to products.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo constructs a ProductRepo with the provided DB handle.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, title, description, price, category, in_stock, purchase_link,
	clicks, rating, num_reviews, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*model.Product, error) {
	p := &model.Product{Images: []string{}, Reviews: []model.Review{}}
	err := s.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Category, &p.InStock,
		&p.PurchaseLink, &p.Clicks, &p.Rating, &p.NumReviews, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts p and its images in one transaction.  On success p.ID
// and the timestamps are populated.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO products (title, description, price, category, in_stock, purchase_link,
		 clicks, rating, num_reviews, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?)`,
		p.Title, p.Description, p.Price, p.Category, p.InStock, p.PurchaseLink, now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := insertImagesTx(ctx, tx, uint64(id), p.Images); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	p.ID = uint64(id)
	p.Clicks, p.Rating, p.NumReviews = 0, 0, 0
	p.Reviews = []model.Review{}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// querier is the read surface shared by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// read runs fn inside a read-only transaction, so the product rows, images
// and reviews it loads all come from one snapshot.
func (r *ProductRepo) read(ctx context.Context, fn func(q querier) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// GetByID loads a product with its images and reviews.  It returns
// ErrNotFound if no row is found.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	var p *model.Product
	err := r.read(ctx, func(q querier) error {
		var err error
		p, err = getProduct(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListAll returns every product ordered by id.
func (r *ProductRepo) ListAll(ctx context.Context) ([]*model.Product, error) {
	var out []*model.Product
	err := r.read(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
		if err != nil {
			return err
		}
		if out, err = collectProducts(rows); err != nil {
			return err
		}
		return attach(ctx, q, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListByIDs returns the products whose ids are listed, in the order of
// ids.  Unknown ids are skipped.
func (r *ProductRepo) ListByIDs(ctx context.Context, ids []uint64) ([]*model.Product, error) {
	if len(ids) == 0 {
		return []*model.Product{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	var found []*model.Product
	err := r.read(ctx, func(q querier) error {
		rows, err := q.QueryContext(ctx,
			"SELECT "+productColumns+" FROM products WHERE id IN ("+placeholders(len(ids))+")", args...)
		if err != nil {
			return err
		}
		if found, err = collectProducts(rows); err != nil {
			return err
		}
		return attach(ctx, q, found)
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]*model.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Update applies ch to product id.  The row is read under FOR UPDATE and
// the changes are applied to that copy, so concurrent edits of different
// fields do not overwrite each other.  Images are only rewritten when ch
// carries them.  Clicks and the rating aggregate are never written here.
func (r *ProductRepo) Update(ctx context.Context, id uint64, ch model.ProductChanges) (*model.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ? FOR UPDATE", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ch.Apply(p)
	p.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET title = ?, description = ?, price = ?, category = ?, in_stock = ?,
		 purchase_link = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Description, p.Price, p.Category, p.InStock, p.PurchaseLink, p.UpdatedAt, id); err != nil {
		return nil, err
	}
	if ch.Images != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM product_images WHERE product_id = ?", id); err != nil {
			return nil, err
		}
		if err := insertImagesTx(ctx, tx, id, ch.Images); err != nil {
			return nil, err
		}
	}
	// Re-read inside the transaction: the stored images and reviews belong
	// to the same snapshot as the locked row.
	out, err := getProduct(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return out, nil
}

// Delete removes a product.  Images, reviews and wishlist entries go with
// it through ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementClicks bumps the click counter by one in a single statement,
// so concurrent clicks never lose an update.
func (r *ProductRepo) IncrementClicks(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE products SET clicks = clicks + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendReviews adds reviews to a product and recomputes its rating
// aggregate inside one transaction.  The product row is locked first, so
// appends to the same product are serialised and the aggregate always
// reflects the full review list.
func (r *ProductRepo) AppendReviews(ctx context.Context, productID uint64, reviews []model.Review) (*model.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM products WHERE id = ? FOR UPDATE", productID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	for _, rv := range reviews {
		created := rv.CreatedAt
		if created.IsZero() {
			created = now
		}
		var userID any
		if rv.UserID != 0 {
			userID = rv.UserID
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO product_reviews (product_id, user_id, name, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			productID, userID, rv.Name, rv.Rating, rv.Comment, created); err != nil {
			return nil, err
		}
	}

	all, err := ratingsTx(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	mean, count := model.RecomputeRating(all)
	if _, err := tx.ExecContext(ctx,
		"UPDATE products SET rating = ?, num_reviews = ?, updated_at = ? WHERE id = ?",
		mean, count, now, productID); err != nil {
		return nil, err
	}
	p, err := getProduct(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return p, nil
}

// Count returns the number of products.
func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n)
	return n, err
}

// TotalClicks returns the sum of all click counters.
func (r *ProductRepo) TotalClicks(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(clicks), 0) FROM products").Scan(&n)
	return n, err
}

func ratingsTx(ctx context.Context, tx *sql.Tx, productID uint64) ([]model.Review, error) {
	rows, err := tx.QueryContext(ctx, "SELECT rating FROM product_reviews WHERE product_id = ?", productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.Rating); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func insertImagesTx(ctx context.Context, tx *sql.Tx, productID uint64, images []string) error {
	for i, url := range images {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO product_images (product_id, position, url) VALUES (?, ?, ?)",
			productID, i, url); err != nil {
			return err
		}
	}
	return nil
}

func collectProducts(rows *sql.Rows) ([]*model.Product, error) {
	defer rows.Close()
	out := []*model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// getProduct loads one product and its children through q.
func getProduct(ctx context.Context, q querier, id uint64) (*model.Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := attach(ctx, q, []*model.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// attach loads images and reviews for the given products with one query
// each.
func attach(ctx context.Context, q querier, products []*model.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Product, len(products))
	args := make([]any, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		args = append(args, p.ID)
	}
	in := placeholders(len(args))

	imgRows, err := q.QueryContext(ctx,
		"SELECT product_id, url FROM product_images WHERE product_id IN ("+in+") ORDER BY product_id, position", args...)
	if err != nil {
		return err
	}
	defer imgRows.Close()
	for imgRows.Next() {
		var (
			pid uint64
			url string
		)
		if err := imgRows.Scan(&pid, &url); err != nil {
			return err
		}
		if p, ok := byID[pid]; ok {
			p.Images = append(p.Images, url)
		}
	}
	if err := imgRows.Err(); err != nil {
		return err
	}

	revRows, err := q.QueryContext(ctx,
		`SELECT id, product_id, user_id, name, rating, comment, created_at
		 FROM product_reviews WHERE product_id IN (`+in+`) ORDER BY product_id, id`, args...)
	if err != nil {
		return err
	}
	defer revRows.Close()
	for revRows.Next() {
		var (
			rv     model.Review
			pid    uint64
			userID sql.NullInt64
		)
		if err := revRows.Scan(&rv.ID, &pid, &userID, &rv.Name, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return err
		}
		if userID.Valid {
			rv.UserID = uint64(userID.Int64)
		}
		if p, ok := byID[pid]; ok {
			p.Reviews = append(p.Reviews, rv)
		}
	}
	return revRows.Err()
}
