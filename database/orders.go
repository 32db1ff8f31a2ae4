package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flashxship-api/models"
	"flashxship-api/utils"
)

var (
	ErrItemNotFound         = errors.New("ordered item not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrEquipmentUnavailable = errors.New("equipment unavailable")
)

// CreateOrder places an order in one transaction: resolve every submitted
// item against the live catalog, freeze its unit price, decrement product
// stock and take rented equipment off availability. Prices sent by the
// client are ignored; the catalog is the source of truth at order time.
func (c *Connection) CreateOrder(ctx context.Context, user models.AuthUser, req models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if err := c.ensureConnection(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %v", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	reference := uuid.New().String()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (reference, user_id, status, payment_status, total_amount,
		                    requires_delivery, delivery_country, delivery_address,
		                    delivery_city, delivery_postal_code, delivery_phone,
		                    recipient_name, recipient_email, recipient_phone,
		                    created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`, reference, user.ID, models.OrderStatusPending, models.PaymentStatusPending,
		req.Delivery.Required, req.Delivery.Country, req.Delivery.Address,
		req.Delivery.City, req.Delivery.PostalCode, req.Delivery.Phone,
		req.Recipient.Name, req.Recipient.Email, req.Recipient.Phone)
	if err != nil {
		return nil, fmt.Errorf("error creating order: %v", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("error getting order id: %v", err)
	}

	var total float64
	for _, item := range req.Items {
		switch item.ItemType {
		case "product":
			var name string
			var price float64
			var stock int
			err := tx.QueryRowContext(ctx,
				`SELECT name, price, stock FROM products WHERE id = ? FOR UPDATE`,
				item.ItemID).Scan(&name, &price, &stock)
			if err != nil {
				if err == sql.ErrNoRows {
					return nil, ErrItemNotFound
				}
				return nil, fmt.Errorf("error loading product %d: %v", item.ItemID, err)
			}
			if stock < item.Quantity {
				return nil, ErrInsufficientStock
			}

			lineTotal := utils.Round(price * float64(item.Quantity))
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, item_type, product_id, name, quantity, rental_days, unit_price, line_total)
				VALUES (?, 'product', ?, ?, ?, 0, ?, ?)
			`, orderID, item.ItemID, name, item.Quantity, price, lineTotal)
			if err != nil {
				return nil, fmt.Errorf("error inserting order item: %v", err)
			}

			_, err = tx.ExecContext(ctx,
				`UPDATE products SET stock = stock - ? WHERE id = ?`,
				item.Quantity, item.ItemID)
			if err != nil {
				return nil, fmt.Errorf("error updating product stock: %v", err)
			}
			total += lineTotal

		case "equipment":
			var name string
			var perDay float64
			var available bool
			err := tx.QueryRowContext(ctx,
				`SELECT name, rental_price_per_day, available FROM equipment WHERE id = ? FOR UPDATE`,
				item.ItemID).Scan(&name, &perDay, &available)
			if err != nil {
				if err == sql.ErrNoRows {
					return nil, ErrItemNotFound
				}
				return nil, fmt.Errorf("error loading equipment %d: %v", item.ItemID, err)
			}
			if !available {
				return nil, ErrEquipmentUnavailable
			}

			days := item.Days
			if days < 1 {
				days = 1
			}
			lineTotal := utils.Round(perDay * float64(days) * float64(item.Quantity))
			_, err = tx.ExecContext(ctx, `
				INSERT INTO order_items (order_id, item_type, equipment_id, name, quantity, rental_days, unit_price, line_total)
				VALUES (?, 'equipment', ?, ?, ?, ?, ?, ?)
			`, orderID, item.ItemID, name, item.Quantity, days, perDay, lineTotal)
			if err != nil {
				return nil, fmt.Errorf("error inserting order item: %v", err)
			}

			_, err = tx.ExecContext(ctx,
				`UPDATE equipment SET available = 0 WHERE id = ?`, item.ItemID)
			if err != nil {
				return nil, fmt.Errorf("error updating equipment availability: %v", err)
			}
			total += lineTotal

		default:
			return nil, fmt.Errorf("unknown item type: %s", item.ItemType)
		}
	}

	total = utils.Round(total)
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET total_amount = ? WHERE id = ?`, total, orderID); err != nil {
		return nil, fmt.Errorf("error setting order total: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %v", err)
	}

	return &models.CreateOrderResponse{
		OrderID:     int(orderID),
		Reference:   reference,
		TotalAmount: total,
		Message:     "Order created successfully",
	}, nil
}

const orderColumns = `
	o.id, o.reference, o.user_id, u.username, o.status, o.payment_status,
	o.total_amount, o.requires_delivery, o.delivery_country, o.delivery_address,
	o.delivery_city, o.delivery_postal_code, o.delivery_phone,
	o.recipient_name, o.recipient_email, o.recipient_phone,
	COALESCE(o.stripe_session_id, ''), COALESCE(o.stripe_payment_intent_id, ''),
	o.created_at, o.updated_at
`

func scanOrder(scanner interface{ Scan(...interface{}) error }) (*models.Order, error) {
	var o models.Order
	err := scanner.Scan(
		&o.ID, &o.Reference, &o.UserID, &o.Username, &o.Status, &o.PaymentStatus,
		&o.TotalAmount, &o.Delivery.Required, &o.Delivery.Country, &o.Delivery.Address,
		&o.Delivery.City, &o.Delivery.PostalCode, &o.Delivery.Phone,
		&o.Recipient.Name, &o.Recipient.Email, &o.Recipient.Phone,
		&o.StripeSession, &o.StripeIntent,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Connection) loadOrderItems(order *models.Order) error {
	rows, err := c.db.Query(`
		SELECT id, item_type, COALESCE(product_id, 0), COALESCE(equipment_id, 0),
		       name, quantity, rental_days, unit_price, line_total
		FROM order_items
		WHERE order_id = ?
		ORDER BY id ASC
	`, order.ID)
	if err != nil {
		return fmt.Errorf("error loading order items: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID, &item.ItemType, &item.ProductID, &item.EquipmentID,
			&item.Name, &item.Quantity, &item.RentalDays, &item.UnitPrice, &item.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("error scanning order item: %v", err)
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

// GetOrders returns a user's own orders; staff passes userID 0 for all.
func (c *Connection) GetOrders(userID int) ([]models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
	`
	args := []interface{}{}
	if userID > 0 {
		query += ` WHERE o.user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY o.created_at DESC`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing orders: %v", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning order: %v", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := c.loadOrderItems(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (c *Connection) GetOrderByID(id int) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id = ?
	`

	order, err := scanOrder(c.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}
	if err := c.loadOrderItems(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Connection) UpdateOrderStatus(id int, status string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = NOW() WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("error updating order status: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (c *Connection) SetOrderStripeSession(id int, sessionID string) error {
	_, err := c.db.Exec(
		`UPDATE orders SET stripe_session_id = ?, updated_at = NOW() WHERE id = ?`,
		sessionID, id)
	if err != nil {
		return fmt.Errorf("error storing stripe session: %v", err)
	}
	return nil
}

// MarkOrderPaid flips the payment bookkeeping when the gateway confirms the
// checkout session completed.
func (c *Connection) MarkOrderPaid(id int, paymentIntentID string) error {
	result, err := c.db.Exec(`
		UPDATE orders
		SET payment_status = ?, status = ?, stripe_payment_intent_id = ?, updated_at = NOW()
		WHERE id = ?
	`, models.PaymentStatusPaid, models.OrderStatusConfirmed, paymentIntentID, id)
	if err != nil {
		return fmt.Errorf("error marking order paid: %v", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
