package domain

type Product struct {
	ID           int32   `json:"id"`
	AdminID      int32   `json:"admin_id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Weight       float64 `json:"weight"` // grams
	MakingCharge float64 `json:"making_charge"`
}

type CartItem struct {
	ProductID int32 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type Cart struct {
	UserID int32      `json:"user_id"`
	Items  []CartItem `json:"items"`
}
