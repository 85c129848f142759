package repository

import (
	"context"
	"errors"

	"questflow/pkg/db/option"
	"questflow/pkg/errutil"

	"gorm.io/gorm"
)

// Repository is the typed CRUD contract backing every entity table. Query
// structs use gorm struct-equality semantics; options refine sorting, locking
// and operators. All writes surface constraint violations as typed errors so
// callers can distinguish "invariant would break" from infrastructure failure.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, id string, values any) error
	Delete(ctx context.Context, id string) error
	BatchCreate(ctx context.Context, entities []*T) error
	BatchUpdate(ctx context.Context, entities []*T) error
	Count(ctx context.Context, query *T) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore returns a gorm-backed repository for the entity type.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx}
}

func (s *store[T]) apply(db *gorm.DB, opts ...option.QueryOption) *gorm.DB {
	for _, opt := range opts {
		db = opt(db)
	}
	return db
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var out []*T
	db := s.apply(s.db.WithContext(ctx).Where(query), opts...)
	if err := db.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindOne returns (nil, nil) when no row matches.
func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var out T
	db := s.apply(s.db.WithContext(ctx).Where(query), opts...)
	if err := db.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Create(ctx context.Context, entity *T) error {
	return translate(s.db.WithContext(ctx).Create(entity).Error)
}

func (s *store[T]) Update(ctx context.Context, id string, values any) error {
	return translate(s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(values).Error)
}

func (s *store[T]) Delete(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T)).Error)
}

// BatchCreate inserts all entities within a single transaction: the storage's
// atomic batch of independent statements.
func (s *store[T]) BatchCreate(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Create(entities).Error)
}

func (s *store[T]) BatchUpdate(ctx context.Context, entities []*T) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entity := range entities {
			if err := tx.Save(entity).Error; err != nil {
				return translate(err)
			}
		}
		return nil
	})
}

func (s *store[T]) Count(ctx context.Context, query *T) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where(query).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// translate normalises driver errors into the core's typed kinds. Relies on
// gorm's TranslateError config for duplicate-key detection.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errutil.ConstraintViolation("duplicate key", errutil.WithErr(err))
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return errutil.ConstraintViolation("foreign key violated", errutil.WithErr(err))
	}
	return err
}
