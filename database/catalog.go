package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"flashxship-api/models"
)

// Catalog queries. Products and equipment keep separate category tables, as
// rental gear and sale goods are curated independently.

const (
	ProductCategoriesTable   = "product_categories"
	EquipmentCategoriesTable = "equipment_categories"
)

func (c *Connection) GetProducts() ([]models.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.category_id,
		       p.image_url, p.stock, p.created_at,
		       pc.name, pc.description
		FROM products p
		JOIN product_categories pc ON pc.id = p.category_id
		ORDER BY p.created_at DESC
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %v", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		var cat models.Category
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID,
			&p.ImageURL, &p.Stock, &p.CreatedAt,
			&cat.Name, &cat.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %v", err)
		}
		cat.ID = p.CategoryID
		p.Category = &cat
		products = append(products, p)
	}

	return products, rows.Err()
}

func (c *Connection) GetProductByID(id int) (*models.Product, error) {
	query := `
		SELECT p.id, p.name, p.description, p.price, p.category_id,
		       p.image_url, p.stock, p.created_at,
		       pc.name, pc.description
		FROM products p
		JOIN product_categories pc ON pc.id = p.category_id
		WHERE p.id = ?
	`

	var p models.Product
	var cat models.Category
	err := c.db.QueryRow(query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID,
		&p.ImageURL, &p.Stock, &p.CreatedAt,
		&cat.Name, &cat.Description,
	)
	if err != nil {
		return nil, err
	}
	cat.ID = p.CategoryID
	p.Category = &cat
	return &p, nil
}

func (c *Connection) CreateProduct(req models.ProductRequest) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
		INSERT INTO products (name, description, price, category_id, image_url, stock, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
	`, req.Name, req.Description, req.Price, req.CategoryID, req.ImageURL, req.Stock)
	if err != nil {
		return 0, fmt.Errorf("error creating product: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting product id: %v", err)
	}
	return int(id), nil
}

func (c *Connection) UpdateProduct(id int, req models.ProductRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, category_id = ?, image_url = ?, stock = ?
		WHERE id = ?
	`, req.Name, req.Description, req.Price, req.CategoryID, req.ImageURL, req.Stock, id)
	if err != nil {
		return fmt.Errorf("error updating product: %v", err)
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

func (c *Connection) DeleteProduct(id int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting product: %v", err)
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

func (c *Connection) GetEquipment() ([]models.Equipment, error) {
	query := `
		SELECT e.id, e.name, e.description, e.rental_price_per_day, e.category_id,
		       e.image_url, e.available, e.created_at,
		       ec.name, ec.description
		FROM equipment e
		JOIN equipment_categories ec ON ec.id = e.category_id
		ORDER BY e.created_at DESC
	`

	rows, err := c.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error listing equipment: %v", err)
	}
	defer rows.Close()

	var items []models.Equipment
	for rows.Next() {
		var e models.Equipment
		var cat models.Category
		err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.RentalPricePerDay, &e.CategoryID,
			&e.ImageURL, &e.Available, &e.CreatedAt,
			&cat.Name, &cat.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning equipment: %v", err)
		}
		cat.ID = e.CategoryID
		e.Category = &cat
		items = append(items, e)
	}

	return items, rows.Err()
}

func (c *Connection) GetEquipmentByID(id int) (*models.Equipment, error) {
	query := `
		SELECT e.id, e.name, e.description, e.rental_price_per_day, e.category_id,
		       e.image_url, e.available, e.created_at,
		       ec.name, ec.description
		FROM equipment e
		JOIN equipment_categories ec ON ec.id = e.category_id
		WHERE e.id = ?
	`

	var e models.Equipment
	var cat models.Category
	err := c.db.QueryRow(query, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.RentalPricePerDay, &e.CategoryID,
		&e.ImageURL, &e.Available, &e.CreatedAt,
		&cat.Name, &cat.Description,
	)
	if err != nil {
		return nil, err
	}
	cat.ID = e.CategoryID
	e.Category = &cat
	return &e, nil
}

func (c *Connection) CreateEquipment(req models.EquipmentRequest) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
		INSERT INTO equipment (name, description, rental_price_per_day, category_id, image_url, available, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
	`, req.Name, req.Description, req.RentalPricePerDay, req.CategoryID, req.ImageURL, req.Available)
	if err != nil {
		return 0, fmt.Errorf("error creating equipment: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting equipment id: %v", err)
	}
	return int(id), nil
}

func (c *Connection) UpdateEquipment(id int, req models.EquipmentRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
		UPDATE equipment
		SET name = ?, description = ?, rental_price_per_day = ?, category_id = ?,
		    image_url = ?, available = ?
		WHERE id = ?
	`, req.Name, req.Description, req.RentalPricePerDay, req.CategoryID,
		req.ImageURL, req.Available, id)
	if err != nil {
		return fmt.Errorf("error updating equipment: %v", err)
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

// DeleteEquipment releases the unit back to available before removal, so
// any rental bookkeeping pointing at it reads as returned.
func (c *Connection) DeleteEquipment(id int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := c.db.ExecContext(ctx, `UPDATE equipment SET available = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error releasing equipment: %v", err)
	}

	result, err := c.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting equipment: %v", err)
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

func (c *Connection) GetCategories(table string) ([]models.Category, error) {
	if table != ProductCategoriesTable && table != EquipmentCategoriesTable {
		return nil, fmt.Errorf("unknown category table: %s", table)
	}

	rows, err := c.db.Query(`SELECT id, name, description FROM ` + table + ` ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %v", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description); err != nil {
			return nil, fmt.Errorf("error scanning category: %v", err)
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

func (c *Connection) CreateCategory(table string, req models.CategoryRequest) (int, error) {
	if table != ProductCategoriesTable && table != EquipmentCategoriesTable {
		return 0, fmt.Errorf("unknown category table: %s", table)
	}

	result, err := c.db.Exec(`INSERT INTO `+table+` (name, description) VALUES (?, ?)`,
		req.Name, req.Description)
	if err != nil {
		return 0, fmt.Errorf("error creating category: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting category id: %v", err)
	}
	return int(id), nil
}

func (c *Connection) DeleteCategory(table string, id int) error {
	if table != ProductCategoriesTable && table != EquipmentCategoriesTable {
		return fmt.Errorf("unknown category table: %s", table)
	}

	result, err := c.db.Exec(`DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting category: %v", err)
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
