package repository

import (
	"context"
	"database/sql"
	"time"
)

// WishlistRepo stores (user, product) pairs in `wishlist_items`.  The
// composite primary key makes each pair unique.
type WishlistRepo struct{ DB *sql.DB }

func NewWishlistRepo(db *sql.DB) *WishlistRepo { return &WishlistRepo{DB: db} }

// Add saves productID on the user's wishlist.  It returns
// ErrDuplicateEntry when the product is already present and ErrNotFound
// when the product does not exist.
func (r *WishlistRepo) Add(ctx context.Context, userID, productID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO wishlist_items (user_id, product_id, created_at) VALUES (?,?,?)",
		userID, productID, time.Now().UTC())
	switch {
	case err == nil:
		return nil
	case isDuplicateKey(err):
		return ErrDuplicateEntry
	case isMissingReference(err):
		return ErrNotFound
	}
	return err
}

// Remove deletes productID from the wishlist.  Removing an absent item is
// not an error.
func (r *WishlistRepo) Remove(ctx context.Context, userID, productID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM wishlist_items WHERE user_id=? AND product_id=?", userID, productID)
	return err
}

// ProductIDs lists the wishlist of userID in insertion order.
func (r *WishlistRepo) ProductIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT product_id FROM wishlist_items WHERE user_id=? ORDER BY created_at, product_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
