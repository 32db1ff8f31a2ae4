package database

import (
	"database/sql"
	"fmt"

	"flashxship-api/models"
)

func (c *Connection) CreateContactMessage(userID int, req models.ContactRequest) (int, error) {
	var user interface{}
	if userID > 0 {
		user = userID
	}

	result, err := c.db.Exec(`
		INSERT INTO contact_messages (user_id, name, email, subject, message, responded, created_at)
		VALUES (?, ?, ?, ?, ?, 0, NOW())
	`, user, req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		return 0, fmt.Errorf("error creating contact message: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting message id: %v", err)
	}
	return int(id), nil
}

func (c *Connection) GetContactMessages() ([]models.ContactMessage, error) {
	rows, err := c.db.Query(`
		SELECT id, COALESCE(user_id, 0), name, email, subject, message,
		       responded, COALESCE(admin_response, ''), responded_at, created_at
		FROM contact_messages
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("error listing contact messages: %v", err)
	}
	defer rows.Close()

	var messages []models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		err := rows.Scan(
			&m.ID, &m.UserID, &m.Name, &m.Email, &m.Subject, &m.Message,
			&m.Responded, &m.AdminResponse, &m.RespondedAt, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning contact message: %v", err)
		}
		messages = append(messages, m)
	}

	return messages, rows.Err()
}

func (c *Connection) GetContactMessageByID(id int) (*models.ContactMessage, error) {
	var m models.ContactMessage
	err := c.db.QueryRow(`
		SELECT id, COALESCE(user_id, 0), name, email, subject, message,
		       responded, COALESCE(admin_response, ''), responded_at, created_at
		FROM contact_messages
		WHERE id = ?
	`, id).Scan(
		&m.ID, &m.UserID, &m.Name, &m.Email, &m.Subject, &m.Message,
		&m.Responded, &m.AdminResponse, &m.RespondedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Connection) RespondToMessage(id int, response string) error {
	result, err := c.db.Exec(`
		UPDATE contact_messages
		SET admin_response = ?, responded = 1, responded_at = NOW()
		WHERE id = ?
	`, response, id)
	if err != nil {
		return fmt.Errorf("error responding to message: %v", err)
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

// GetDashboardStats backs the admin landing page counters.
func (c *Connection) GetDashboardStats() (*models.DashboardStats, error) {
	var stats models.DashboardStats
	err := c.db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM equipment),
			(SELECT COUNT(*) FROM orders),
			(SELECT COUNT(*) FROM contact_messages WHERE responded = 0)
	`).Scan(&stats.TotalProducts, &stats.TotalEquipment, &stats.TotalOrders, &stats.PendingMessages)
	if err != nil {
		return nil, fmt.Errorf("error loading dashboard stats: %v", err)
	}
	return &stats, nil
}
