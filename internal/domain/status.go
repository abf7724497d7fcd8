package domain

// DeriveOrderStatus maps the per-item statuses of an order to its aggregate
// status. Precedence is fixed and evaluated top to bottom, first match wins:
//
//  1. no items                          -> Processing
//  2. all items approved                -> Approved
//  3. any item awaiting user decision   -> User Approval Pending
//  4. mix of rejected and approved      -> Partially Processed
//  5. all items rejected                -> Cancelled
//  6. anything else                     -> Processing
//
// The function is pure: it reads nothing but its argument and has no side
// effects. Order-level status must only ever be set through this function
// after creation.
func DeriveOrderStatus(items []OrderItem) OrderStatus {
	if len(items) == 0 {
		return OrderStatusProcessing
	}

	var approved, rejected, pending int
	for _, it := range items {
		switch it.ItemStatus {
		case ItemStatusApproved:
			approved++
		case ItemStatusRejected:
			rejected++
		case ItemStatusPending:
			pending++
		}
	}

	total := len(items)
	switch {
	case approved == total:
		return OrderStatusApproved
	case pending > 0:
		return OrderStatusPending
	case rejected > 0 && approved > 0:
		return OrderStatusPartiallyProcessed
	case rejected == total:
		return OrderStatusCancelled
	default:
		return OrderStatusProcessing
	}
}
