package store

import (
	"database/sql"

	"github.com/wrenfield/hearth/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var checked int

	err := scanner.Scan(
		&item.ID, &item.Item, &item.Quantity, &item.Store, &checked, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Checked = checked != 0
	return &item, nil
}

const shoppingCols = `id, item, quantity, store, checked, created_at`

func (s *ShoppingStore) Create(item string, quantity int, storeName string) (*model.ShoppingItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_list (item, quantity, store) VALUES (?, ?, ?)`,
		item, quantity, storeName,
	)
	if err != nil {
		return nil, &PersistenceError{Resource: "shopping item", Op: "create", Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, &PersistenceError{Resource: "shopping item", Op: "create", Err: err}
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) GetByID(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_list WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Resource: "shopping item", Op: "get", Err: err}
	}
	return item, nil
}

// List returns every item, checked or not, newest first by id.
func (s *ShoppingStore) List() ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(`SELECT ` + shoppingCols + ` FROM shopping_list ORDER BY id DESC`)
	if err != nil {
		return nil, &PersistenceError{Resource: "shopping list", Op: "list", Err: err}
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, &PersistenceError{Resource: "shopping list", Op: "list", Err: err}
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Resource: "shopping list", Op: "list", Err: err}
	}
	return items, nil
}

// Delete removes an item. Unknown ids are a no-op so a row already deleted
// in another tab does not turn into an error.
func (s *ShoppingStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_list WHERE id = ?`, id)
	if err != nil {
		return &PersistenceError{Resource: "shopping item", Op: "delete", Err: err}
	}
	return nil
}

// ToggleChecked flips checked in a single statement, so two concurrent
// toggles land as two flips rather than losing one. Returns the row after
// the flip, or nil if the id does not exist.
func (s *ShoppingStore) ToggleChecked(id int64) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(`UPDATE shopping_list SET checked = 1 - checked WHERE id = ?`, id)
	if err != nil {
		return nil, &PersistenceError{Resource: "shopping item", Op: "toggle", Err: err}
	}
	return s.GetByID(id)
}

func (s *ShoppingStore) CountUnchecked() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM shopping_list WHERE checked = 0`).Scan(&count)
	if err != nil {
		return 0, &PersistenceError{Resource: "shopping list", Op: "count", Err: err}
	}
	return count, nil
}
