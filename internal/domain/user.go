package domain

import "time"

type User struct {
	ID          int32     `json:"id"`
	AdminID     int32     `json:"admin_id"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Name        string    `json:"name"`
	CashBalance float64   `json:"cash_balance"`
	GoldBalance float64   `json:"gold_balance"` // grams
	CreatedAt   time.Time `json:"created_at"`
}

// Admin is the tenant owner an order belongs to. Only the fields the
// notification paths need.
type Admin struct {
	ID    int32  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DeviceToken is one registered push target for a user. Tokens flagged
// permanently invalid by the push provider get pruned.
type DeviceToken struct {
	ID        int32     `json:"id"`
	UserID    int32     `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
