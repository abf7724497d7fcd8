package domain

import "time"

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

type TransactionMethod string

const (
	MethodCash         TransactionMethod = "CASH"
	MethodGoldToGold   TransactionMethod = "GOLD_TO_GOLD"
	MethodReceivedCash TransactionMethod = "RECEIVED_CASH"
	MethodReceivedGold TransactionMethod = "RECEIVED_GOLD"
)

type BalanceType string

const (
	BalanceTypeCash BalanceType = "CASH"
	BalanceTypeGold BalanceType = "GOLD"
)

// Transaction is one immutable ledger entry. Amount is always positive; Type
// carries the direction. BalanceAfter snapshots the user balance immediately
// after this entry was applied and must always agree with the balance field
// on the user row.
type Transaction struct {
	ID           int32             `json:"id"`
	UserID       int32             `json:"user_id"`
	Type         TransactionType   `json:"type"`
	Method       TransactionMethod `json:"method"`
	Amount       float64           `json:"amount"`
	BalanceType  BalanceType       `json:"balance_type"`
	BalanceAfter float64           `json:"balance_after"`
	OrderID      *int32            `json:"order_id,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Posting is the result of one ledger post: the appended transaction and the
// balance the user row was left at.
type Posting struct {
	NewBalance  float64
	Transaction *Transaction
}
