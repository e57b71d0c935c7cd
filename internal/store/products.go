package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"shopapi/internal/models"
)

const (
	productNotFound = "Product could not be found with that product ID"

	// DefaultRestockThreshold applies when a restock request names none.
	DefaultRestockThreshold = 10
	// RestockIncrement is added to the stock of every low product.
	RestockIncrement = 20
)

func (s *Store) ListProducts(ctx context.Context, page Page) ([]models.Product, int64, error) {
	products := []models.Product{}
	total, err := list(ctx, s.db, &models.Product{}, "product_id", page, &products)
	if err != nil {
		return nil, 0, translate(err, "list products")
	}
	return products, total, nil
}

func (s *Store) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := first(s.db.WithContext(ctx), &product, id, productNotFound); err != nil {
		return nil, translate(err, "get product")
	}
	return &product, nil
}

// ProductByName returns the first product, by id, whose name matches exactly.
func (s *Store) ProductByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("name = ?", name).Order("product_id").First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Product could not be found by that name")
	}
	if err != nil {
		return nil, translate(err, "product by name")
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ProductID = 0
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return translate(err, "create product")
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, id uint, patch models.ProductPatch) (*models.Product, error) {
	var product models.Product
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &product, id, productNotFound); err != nil {
			return err
		}
		patch.Apply(&product)
		return save(tx, &product)
	})
	if err != nil {
		return nil, translate(err, "update product")
	}
	return &product, nil
}

// DeleteProduct removes a product and detaches it from every order.
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var product models.Product
		if err := first(tx, &product, id, productNotFound); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.OrderProduct{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	return translate(err, "delete product")
}

// Restock adds RestockIncrement to every product whose stock is below
// threshold and returns those products with their new stock.
func (s *Store) Restock(ctx context.Context, threshold int) ([]models.Product, error) {
	restocked := []models.Product{}
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("stock < ?", threshold).Order("product_id").Find(&restocked).Error; err != nil {
			return err
		}
		if len(restocked) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(restocked))
		for _, p := range restocked {
			ids = append(ids, p.ProductID)
		}
		err := tx.Model(&models.Product{}).
			Where("product_id IN ?", ids).
			UpdateColumn("stock", gorm.Expr("stock + ?", RestockIncrement)).Error
		if err != nil {
			return err
		}
		for i := range restocked {
			restocked[i].Stock += RestockIncrement
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "restock products")
	}
	return restocked, nil
}
