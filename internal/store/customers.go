package store

import (
	"context"

	"gorm.io/gorm"

	"shopapi/internal/models"
)

const customerNotFound = "Customer could not be found with that customer ID"

func (s *Store) ListCustomers(ctx context.Context, page Page) ([]models.Customer, int64, error) {
	customers := []models.Customer{}
	total, err := list(ctx, s.db, &models.Customer{}, "customer_id", page, &customers)
	if err != nil {
		return nil, 0, translate(err, "list customers")
	}
	return customers, total, nil
}

func (s *Store) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := first(s.db.WithContext(ctx), &customer, id, customerNotFound); err != nil {
		return nil, translate(err, "get customer")
	}
	return &customer, nil
}

// CustomerExists reports whether a customer with the given id is stored.
func (s *Store) CustomerExists(ctx context.Context, id uint) (bool, error) {
	ok, err := exists(s.db.WithContext(ctx), &models.Customer{}, "customer_id = ?", id)
	if err != nil {
		return false, translate(err, "check customer")
	}
	return ok, nil
}

// CreateCustomer inserts c. The id is always assigned by the database.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	c.CustomerID = 0
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return translate(err, "create customer")
	}
	return nil
}

func (s *Store) UpdateCustomer(ctx context.Context, id uint, patch models.CustomerPatch) (*models.Customer, error) {
	var customer models.Customer
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &customer, id, customerNotFound); err != nil {
			return err
		}
		patch.Apply(&customer)
		return save(tx, &customer)
	})
	if err != nil {
		return nil, translate(err, "update customer")
	}
	return &customer, nil
}

// DeleteCustomer removes a customer that has no account and no orders.
func (s *Store) DeleteCustomer(ctx context.Context, id uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var customer models.Customer
		if err := first(tx, &customer, id, customerNotFound); err != nil {
			return err
		}

		hasAccount, err := exists(tx, &models.CustomerAccount{}, "customer_id = ?", id)
		if err != nil {
			return err
		}
		hasOrders, err := exists(tx, &models.Order{}, "customer_id = ?", id)
		if err != nil {
			return err
		}
		if hasAccount || hasOrders {
			return newError(ErrConflict, "Customer has an account or orders and cannot be deleted")
		}

		return tx.Delete(&customer).Error
	})
	return translate(err, "delete customer")
}

// CustomerOrders returns the order history of a customer with each order's
// products attached.
func (s *Store) CustomerOrders(ctx context.Context, id uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var customer models.Customer
		if err := first(tx, &customer, id, customerNotFound); err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Order("order_id").Find(&orders).Error; err != nil {
			return err
		}
		return attachProducts(tx, orders)
	})
	if err != nil {
		return nil, translate(err, "customer orders")
	}
	return orders, nil
}
