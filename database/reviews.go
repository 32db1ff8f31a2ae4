package database

import (
	"database/sql"
	"fmt"

	"flashxship-api/models"
)

// Reviews surface on the storefront only after staff approval. Listing
// orders by rating first matches how the carousel presents them.

func (c *Connection) CreateReview(userID int, req models.ReviewRequest) (int, error) {
	var user interface{}
	if userID > 0 {
		user = userID
	}

	result, err := c.db.Exec(`
		INSERT INTO reviews (user_id, name, email, company, rating, comment, is_approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, NOW())
	`, user, req.Name, req.Email, req.Company, req.Rating, req.Comment)
	if err != nil {
		return 0, fmt.Errorf("error creating review: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting review id: %v", err)
	}
	return int(id), nil
}

func (c *Connection) GetReviews(approvedOnly bool) ([]models.Review, error) {
	query := `
		SELECT id, COALESCE(user_id, 0), name, email, COALESCE(company, ''),
		       rating, comment, is_approved, created_at
		FROM reviews
	`
	if approvedOnly {
		query += ` WHERE is_approved = 1`
	}
	query += ` ORDER BY rating DESC, created_at DESC`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing reviews: %v", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var r models.Review
		err := rows.Scan(
			&r.ID, &r.UserID, &r.Name, &r.Email, &r.Company,
			&r.Rating, &r.Comment, &r.IsApproved, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning review: %v", err)
		}
		reviews = append(reviews, r)
	}

	return reviews, rows.Err()
}

func (c *Connection) ApproveReview(id int) error {
	result, err := c.db.Exec(`UPDATE reviews SET is_approved = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error approving review: %v", err)
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

func (c *Connection) DeleteReview(id int) error {
	result, err := c.db.Exec(`DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting review: %v", err)
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
