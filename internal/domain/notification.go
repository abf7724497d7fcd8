package domain

// StatusTag is the stable vocabulary shared with the email/push content
// builders. Several spellings are historical and must not be corrected; the
// downstream templates key on them as-is.
type StatusTag string

const (
	TagOrderPlaced     StatusTag = "order_placed"
	TagApproval        StatusTag = "approvel"
	TagApprovalPending StatusTag = "user_approvel_pending"
	TagPending         StatusTag = "pending"
	TagProcessing      StatusTag = "processing"
	TagSuccess         StatusTag = "scusess"
	TagReject          StatusTag = "reject"
	TagItemApproved    StatusTag = "approved"
	TagItemRejected    StatusTag = "item_rejected"
)

// TagForOrderStatus maps an aggregate order status to the tag the content
// builders expect for it.
func TagForOrderStatus(s OrderStatus) StatusTag {
	switch s {
	case OrderStatusApproved:
		return TagSuccess
	case OrderStatusPending:
		return TagApprovalPending
	case OrderStatusPartiallyProcessed:
		return TagProcessing
	case OrderStatusCancelled:
		return TagReject
	default:
		return TagPending
	}
}

type Notification struct {
	ID         int32             `json:"id"`
	UserID     int32             `json:"user_id"`
	AdminID    int32             `json:"admin_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  string            `json:"created_at"`
}
