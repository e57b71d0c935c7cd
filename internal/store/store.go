// Package store implements the relational repositories behind the API. Each
// operation that checks for a row and then mutates runs in one transaction.
package store

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db           *gorm.DB
	passwordCost int
}

type Option func(*Store)

// WithPasswordCost sets the bcrypt cost used for account passwords.
func WithPasswordCost(cost int) Option {
	return func(s *Store) {
		s.passwordCost = cost
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{
		db:           db,
		passwordCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying handle, for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Page limits a listing. The zero value returns every row.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		q = q.Offset(p.Offset).Limit(p.Limit)
	}
	return q
}

func (s *Store) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// list counts all rows of model and loads the requested page into dest.
func list(ctx context.Context, db *gorm.DB, model interface{}, order string, page Page, dest interface{}) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(model).Count(&total).Error; err != nil {
			return err
		}
		return page.apply(tx.Order(order)).Find(dest).Error
	})
	return total, err
}

// first loads the row with the given primary key, mapping a missing row
// onto ErrNotFound with the given message.
func first(tx *gorm.DB, dest interface{}, id uint, notFound string) error {
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "%s", notFound)
	}
	return err
}

func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func save(tx *gorm.DB, value interface{}) error {
	return tx.Omit(clause.Associations).Save(value).Error
}
