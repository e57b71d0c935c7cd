package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopapi/internal/models"
)

const orderNotFound = "Order could not be found with that order ID"

func (s *Store) ListOrders(ctx context.Context, page Page) ([]models.Order, int64, error) {
	orders := []models.Order{}
	total, err := list(ctx, s.db, &models.Order{}, "order_id", page, &orders)
	if err != nil {
		return nil, 0, translate(err, "list orders")
	}
	return orders, total, nil
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := first(s.db.WithContext(ctx), &order, id, orderNotFound); err != nil {
		return nil, translate(err, "get order")
	}
	return &order, nil
}

// OrderDetails returns the order with its products attached.
func (s *Store) OrderDetails(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &order, id, orderNotFound); err != nil {
			return err
		}
		orders := []models.Order{order}
		if err := attachProducts(tx, orders); err != nil {
			return err
		}
		order = orders[0]
		return nil
	})
	if err != nil {
		return nil, translate(err, "order details")
	}
	return &order, nil
}

// OrdersByCustomer lists a customer's orders without checking that the
// customer exists.
func (s *Store) OrdersByCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("order_id").Find(&orders).Error
	if err != nil {
		return nil, translate(err, "orders by customer")
	}
	return orders, nil
}

// CreateOrder inserts o in the Created status together with its product
// associations.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order, productIDs []uint) error {
	o.OrderID = 0
	o.Status = models.StatusCreated
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := checkOrderCustomer(tx, o.CustomerID); err != nil {
			return err
		}
		ids := uniqueIDs(productIDs)
		if err := checkProducts(tx, ids); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(o).Error; err != nil {
			return err
		}
		return linkProducts(tx, o.OrderID, ids)
	})
	return translate(err, "create order")
}

func (s *Store) UpdateOrder(ctx context.Context, id uint, patch models.OrderPatch) (*models.Order, error) {
	var order models.Order
	err := s.tx(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &order, id, orderNotFound); err != nil {
			return err
		}
		if patch.Date != nil {
			order.Date = *patch.Date
		}
		if patch.CustomerID != nil && *patch.CustomerID != order.CustomerID {
			if err := checkOrderCustomer(tx, *patch.CustomerID); err != nil {
				return err
			}
			order.CustomerID = *patch.CustomerID
		}
		if patch.Status != nil {
			if !models.CanTransition(order.Status, *patch.Status) {
				return newError(ErrInvalidTransition, "Order status cannot change from %s to %s", order.Status, *patch.Status)
			}
			order.Status = *patch.Status
		}
		if err := save(tx, &order); err != nil {
			return err
		}

		if patch.ProductIDs == nil {
			return nil
		}
		ids := uniqueIDs(*patch.ProductIDs)
		if err := checkProducts(tx, ids); err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderProduct{}).Error; err != nil {
			return err
		}
		return linkProducts(tx, id, ids)
	})
	if err != nil {
		return nil, translate(err, "update order")
	}
	return &order, nil
}

func (s *Store) DeleteOrder(ctx context.Context, id uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var order models.Order
		if err := first(tx, &order, id, orderNotFound); err != nil {
			return err
		}
		return deleteOrder(tx, &order)
	})
	return translate(err, "delete order")
}

// CancelOrder deletes an order that has not shipped or completed.
func (s *Store) CancelOrder(ctx context.Context, id uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var order models.Order
		if err := first(tx, &order, id, orderNotFound); err != nil {
			return err
		}
		if !models.Cancelable(order.Status) {
			return newError(ErrNotCancelable, "Cannot cancel order. It has already been shipped or completed.")
		}
		return deleteOrder(tx, &order)
	})
	return translate(err, "cancel order")
}

func (s *Store) TrackOrder(ctx context.Context, id uint) (models.Tracking, error) {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return models.Tracking{}, err
	}
	return order.Track(), nil
}

// AddProductToOrder associates an existing product with an existing order.
func (s *Store) AddProductToOrder(ctx context.Context, orderID, productID uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		var order models.Order
		if err := first(tx, &order, orderID, orderNotFound); err != nil {
			return err
		}
		if err := checkProducts(tx, []uint{productID}); err != nil {
			return err
		}
		linked, err := exists(tx, &models.OrderProduct{}, "order_id = ? AND product_id = ?", orderID, productID)
		if err != nil {
			return err
		}
		if linked {
			return newError(ErrConflict, "Product %d is already part of order %d", productID, orderID)
		}
		return linkProducts(tx, orderID, []uint{productID})
	})
	return translate(err, "add product to order")
}

func (s *Store) RemoveProductFromOrder(ctx context.Context, orderID, productID uint) error {
	err := s.tx(ctx, func(tx *gorm.DB) error {
		res := tx.Where("order_id = ? AND product_id = ?", orderID, productID).Delete(&models.OrderProduct{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newError(ErrNotFound, "Product %d is not part of order %d", productID, orderID)
		}
		return nil
	})
	return translate(err, "remove product from order")
}

// OrderTotal sums the prices of the products associated with an order.
func (s *Store) OrderTotal(ctx context.Context, id uint) (models.OrderTotal, error) {
	order, err := s.OrderDetails(ctx, id)
	if err != nil {
		return models.OrderTotal{}, err
	}
	total := models.OrderTotal{
		OrderID:      order.OrderID,
		CustomerID:   order.CustomerID,
		ProductCount: len(order.Products),
	}
	for _, p := range order.Products {
		total.TotalPrice += p.Price
	}
	return total, nil
}

func deleteOrder(tx *gorm.DB, order *models.Order) error {
	if err := tx.Where("order_id = ?", order.OrderID).Delete(&models.OrderProduct{}).Error; err != nil {
		return err
	}
	return tx.Delete(order).Error
}

func checkOrderCustomer(tx *gorm.DB, customerID uint) error {
	found, err := exists(tx, &models.Customer{}, "customer_id = ?", customerID)
	if err != nil {
		return err
	}
	if !found {
		return newError(ErrInvalidReference, "Customer %d does not exist", customerID)
	}
	return nil
}

// checkProducts fails with ErrInvalidReference unless every id names a
// stored product. ids must be free of duplicates.
func checkProducts(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Product{}).Where("product_id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		return newError(ErrInvalidReference, "One or more products do not exist")
	}
	return nil
}

func linkProducts(tx *gorm.DB, orderID uint, productIDs []uint) error {
	if len(productIDs) == 0 {
		return nil
	}
	links := make([]models.OrderProduct, 0, len(productIDs))
	for _, productID := range productIDs {
		links = append(links, models.OrderProduct{OrderID: orderID, ProductID: productID})
	}
	return tx.Create(&links).Error
}

// attachProducts loads the products of every order in place.
func attachProducts(tx *gorm.DB, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	orderIDs := make([]uint, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.OrderID)
	}

	var links []models.OrderProduct
	if err := tx.Where("order_id IN ?", orderIDs).Order("order_id, product_id").Find(&links).Error; err != nil {
		return err
	}

	byID := map[uint]models.Product{}
	productIDs := make([]uint, 0, len(links))
	for _, l := range links {
		productIDs = append(productIDs, l.ProductID)
	}
	if ids := uniqueIDs(productIDs); len(ids) > 0 {
		var products []models.Product
		if err := tx.Where("product_id IN ?", ids).Find(&products).Error; err != nil {
			return err
		}
		for _, p := range products {
			byID[p.ProductID] = p
		}
	}

	index := make(map[uint]int, len(orders))
	for i := range orders {
		orders[i].Products = []models.Product{}
		index[orders[i].OrderID] = i
	}
	for _, l := range links {
		if p, ok := byID[l.ProductID]; ok {
			i := index[l.OrderID]
			orders[i].Products = append(orders[i].Products, p)
		}
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
