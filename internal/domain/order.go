package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "Cash"
	PaymentMethodGold       PaymentMethod = "Gold"
	PaymentMethodGoldToGold PaymentMethod = "GoldToGold"
)

type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "User Approval Pending"
	ItemStatusApproved ItemStatus = "Approved"
	ItemStatusRejected ItemStatus = "Rejected"
)

// validItemNext encodes the per-item state machine. Approved and Rejected are
// terminal, but a terminal item may be overwritten with the same decision
// (idempotent re-decide) without re-entering the map.
var validItemNext = map[ItemStatus]map[ItemStatus]bool{
	ItemStatusPending:  {ItemStatusApproved: true, ItemStatusRejected: true},
	ItemStatusApproved: {},
	ItemStatusRejected: {},
}

func CanTransitionItem(from, to ItemStatus) bool {
	return validItemNext[from][to]
}

type OrderStatus string

const (
	OrderStatusProcessing         OrderStatus = "Processing"
	OrderStatusApproved           OrderStatus = "Approved"
	OrderStatusPending            OrderStatus = "User Approval Pending"
	OrderStatusPartiallyProcessed OrderStatus = "Partially Processed"
	OrderStatusCancelled          OrderStatus = "Cancelled"
)

type OrderItem struct {
	ID              int32      `json:"id"`
	ProductID       int32      `json:"product_id"`
	Quantity        int32      `json:"quantity"`
	FixedPrice      float64    `json:"fixed_price"`   // locked at booking time
	ProductWeight   float64    `json:"product_weight"` // grams, locked at booking time
	MakingCharge    float64    `json:"making_charge"`
	ItemStatus      ItemStatus `json:"item_status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

type Order struct {
	ID                 int32         `json:"id"`
	AdminID            int32         `json:"admin_id"`
	UserID             int32         `json:"user_id"`
	Items              []OrderItem   `json:"items"`
	TotalPrice         float64       `json:"total_price"`
	TotalWeight        float64       `json:"total_weight"`
	PaymentMethod      PaymentMethod `json:"payment_method"`
	OrderStatus        OrderStatus   `json:"order_status"`
	OrderRemark        string        `json:"order_remark,omitempty"`
	TransactionID      string        `json:"transaction_id"`
	NotificationSentAt *time.Time    `json:"notification_sent_at,omitempty"`
	SettledAt          *time.Time    `json:"settled_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
}

// RecomputeTotals rebuilds TotalPrice and TotalWeight from the current item
// set. Rejected items contribute nothing. Safe to call repeatedly.
func (o *Order) RecomputeTotals() {
	var price, weight float64
	for _, it := range o.Items {
		if it.ItemStatus == ItemStatusRejected {
			continue
		}
		qty := float64(it.Quantity)
		price += it.FixedPrice * qty
		weight += it.ProductWeight * qty
	}
	o.TotalPrice = price
	o.TotalWeight = weight
}

// MakingCharges sums making charge over non-rejected items.
func (o *Order) MakingCharges() float64 {
	var total float64
	for _, it := range o.Items {
		if it.ItemStatus == ItemStatusRejected {
			continue
		}
		total += it.MakingCharge * float64(it.Quantity)
	}
	return total
}

// Item returns the embedded item with the given id, or nil.
func (o *Order) Item(itemID int32) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// HasPendingItems reports whether any item still awaits a user decision.
func (o *Order) HasPendingItems() bool {
	for _, it := range o.Items {
		if it.ItemStatus == ItemStatusPending {
			return true
		}
	}
	return false
}
