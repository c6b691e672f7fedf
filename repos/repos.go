package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// conn returns tx when the caller is inside a transaction, the repo's own handle
// otherwise, bound to ctx either way.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// firstOrNil turns gorm.ErrRecordNotFound into a nil result.
func firstOrNil[T any](q *gorm.DB, out *T) (*T, error) {
	if err := q.First(out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}
