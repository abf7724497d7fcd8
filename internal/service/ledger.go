package service

import (
	"context"
	"fmt"
	"math"

	"aurum-backend/internal/domain"
	"aurum-backend/internal/repository"
)

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	userRepo   repository.UserRepository
	txRunner   repository.TxRunner
}

func NewLedgerService(ledgerRepo repository.LedgerRepository, userRepo repository.UserRepository, txRunner repository.TxRunner) LedgerService {
	return &ledgerService{ledgerRepo: ledgerRepo, userRepo: userRepo, txRunner: txRunner}
}

// Post reads the current balance, applies delta, and appends the transaction
// row with the resulting balance snapshot. Balance update and transaction
// insert commit together or not at all; a failure leaves neither behind.
func (s *ledgerService) Post(ctx context.Context, userID int32, balanceType domain.BalanceType, delta float64, method domain.TransactionMethod, orderID *int32) (*domain.Posting, error) {
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta == 0 {
		return nil, domain.ErrInvalidAmount
	}

	txType := domain.TransactionTypeCredit
	if delta < 0 {
		txType = domain.TransactionTypeDebit
	}

	var posting *domain.Posting
	err := s.txRunner.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.userRepo.GetBalance(ctx, userID, balanceType)
		if err != nil {
			return fmt.Errorf("read balance for user %d: %w", userID, err)
		}

		newBalance := current + delta
		if err := s.userRepo.UpdateBalance(ctx, userID, balanceType, newBalance); err != nil {
			return fmt.Errorf("update balance for user %d: %w", userID, err)
		}

		tx := &domain.Transaction{
			UserID:       userID,
			Type:         txType,
			Method:       method,
			Amount:       math.Abs(delta),
			BalanceType:  balanceType,
			BalanceAfter: newBalance,
			OrderID:      orderID,
		}
		if err := s.ledgerRepo.CreateTransaction(ctx, tx); err != nil {
			return fmt.Errorf("append transaction for user %d: %w", userID, err)
		}

		posting = &domain.Posting{NewBalance: newBalance, Transaction: tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posting, nil
}

func (s *ledgerService) GetTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Transaction, int32, error) {
	return s.ledgerRepo.ListByUser(ctx, userID, page, pageSize)
}
