package gateway

import (
	"context"
	"fmt"
)

// BankTransferAdapter is an offline provider: initiating a payment
// returns transfer instructions, and settlement happens out of band once
// operations match an incoming transfer to the reference.
type BankTransferAdapter struct {
	BankName      string
	AccountName   string
	AccountNumber string
}

func NewBankTransferAdapter(bank, accountName, accountNumber string) *BankTransferAdapter {
	return &BankTransferAdapter{
		BankName:      bank,
		AccountName:   accountName,
		AccountNumber: accountNumber,
	}
}

func (b *BankTransferAdapter) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	fields := map[string]string{
		"bank_name":      b.BankName,
		"account_name":   b.AccountName,
		"account_number": b.AccountNumber,
		"amount":         fmt.Sprintf("%d", req.Amount),
		"currency":       req.Currency,
		"narration":      req.Reference,
	}

	return InitiateResponse{
		Reference: req.Reference,
		Fields:    fields,
	}, nil
}

func (b *BankTransferAdapter) Verify(ctx context.Context, req VerifyRequest) (VerifyResponse, error) {
	// A transfer can only be confirmed manually. The confirmation comes
	// through the return callback carrying confirmed=true.
	if req.Data["confirmed"] == "true" {
		return VerifyResponse{Success: true, State: "confirmed"}, nil
	}
	return VerifyResponse{Pending: true, State: "awaiting_transfer"}, nil
}
