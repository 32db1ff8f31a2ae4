package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"flashxship-api/models"
)

// User accounts and the opaque refresh/reset tokens tied to them. Passwords
// arrive here already digested (utils.HashPassword).

func (c *Connection) CreateUser(username, email, passwordHash string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
		INSERT INTO users (username, email, passphrase, is_staff, created_at)
		VALUES (?, ?, ?, 0, NOW())
	`, username, email, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("error creating user: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting user id: %v", err)
	}
	return int(id), nil
}

func (c *Connection) GetUserByCredentials(username, passwordHash string) (*models.AuthUser, error) {
	var user models.AuthUser
	err := c.db.QueryRow(`
		SELECT id, username, email, is_staff
		FROM users
		WHERE username = ? AND passphrase = ?
	`, username, passwordHash).Scan(&user.ID, &user.Username, &user.Email, &user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Connection) GetUserByID(id int) (*models.AuthUser, error) {
	var user models.AuthUser
	err := c.db.QueryRow(`
		SELECT id, username, email, is_staff FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Username, &user.Email, &user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Connection) GetUserByEmail(email string) (*models.AuthUser, error) {
	var user models.AuthUser
	err := c.db.QueryRow(`
		SELECT id, username, email, is_staff FROM users WHERE email = ?
	`, email).Scan(&user.ID, &user.Username, &user.Email, &user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken and EmailTaken exclude one user id so profile updates can
// keep their current values.
func (c *Connection) UsernameTaken(username string, excludeUserID int) (bool, error) {
	var exists bool
	err := c.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM users WHERE username = ? AND id != ?)
	`, username, excludeUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking username: %v", err)
	}
	return exists, nil
}

func (c *Connection) EmailTaken(email string, excludeUserID int) (bool, error) {
	var exists bool
	err := c.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id != ?)
	`, email, excludeUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %v", err)
	}
	return exists, nil
}

func (c *Connection) UpdateUserProfile(id int, username, email string) error {
	result, err := c.db.Exec(`
		UPDATE users SET username = ?, email = ? WHERE id = ?
	`, username, email, id)
	if err != nil {
		return fmt.Errorf("error updating profile: %v", err)
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

func (c *Connection) UpdateUserPassword(id int, passwordHash string) error {
	_, err := c.db.Exec(`UPDATE users SET passphrase = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("error updating password: %v", err)
	}
	return nil
}

// StoreRefreshToken rotates: older active tokens for the user are
// deactivated so at most one refresh token is live at a time.
func (c *Connection) StoreRefreshToken(userID int, token string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET is_active = 0 WHERE user_id = ? AND is_active = 1`,
		userID); err != nil {
		return fmt.Errorf("error deactivating old tokens: %v", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at, is_active, created_at)
		VALUES (?, ?, ?, 1, NOW())
	`, userID, token, expiresAt); err != nil {
		return fmt.Errorf("error storing refresh token: %v", err)
	}

	return tx.Commit()
}

// GetRefreshToken returns the owning user and expiry of an active token.
func (c *Connection) GetRefreshToken(token string) (int, time.Time, error) {
	var userID int
	var expiresAt time.Time
	err := c.db.QueryRow(`
		SELECT user_id, expires_at FROM refresh_tokens
		WHERE token = ? AND is_active = 1
	`, token).Scan(&userID, &expiresAt)
	if err != nil {
		return 0, time.Time{}, err
	}
	return userID, expiresAt, nil
}

func (c *Connection) RevokeRefreshToken(token string) error {
	_, err := c.db.Exec(
		`UPDATE refresh_tokens SET is_active = 0 WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("error revoking refresh token: %v", err)
	}
	return nil
}

func (c *Connection) StorePasswordResetToken(userID int, token string, expiresAt time.Time) error {
	_, err := c.db.Exec(`
		INSERT INTO password_reset_tokens (user_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, 0, NOW())
	`, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("error storing reset token: %v", err)
	}
	return nil
}

// ConsumePasswordResetToken marks a token used and returns its user, or
// sql.ErrNoRows for unknown, used or expired tokens.
func (c *Connection) ConsumePasswordResetToken(token string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	var userID int
	err = tx.QueryRowContext(ctx, `
		SELECT user_id FROM password_reset_tokens
		WHERE token = ? AND used = 0 AND expires_at > NOW()
		FOR UPDATE
	`, token).Scan(&userID)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET used = 1 WHERE token = ?`, token); err != nil {
		return 0, fmt.Errorf("error consuming reset token: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return userID, nil
}
