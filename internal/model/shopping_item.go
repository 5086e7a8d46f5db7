package model

import "time"

type ShoppingItem struct {
	ID        int64     `json:"id"`
	Item      string    `json:"item"`
	Quantity  int       `json:"quantity"`
	Store     string    `json:"store"`
	Checked   bool      `json:"checked"`
	CreatedAt time.Time `json:"created_at"`
}
