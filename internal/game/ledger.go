package game

import (
	"context"
	"strings"

	"skytycoon/internal/apperr"
	"skytycoon/internal/events"
	"skytycoon/internal/models"
	"skytycoon/internal/report"
)

type NewTransaction struct {
	Amount      models.Money
	Type        models.TransactionType
	Description string
	// Date defaults to the player's current game date.
	Date *models.Date
}

// PostTransaction appends a ledger entry and applies it to the balance.
func (e *Engine) PostTransaction(ctx context.Context, playerID int64, in NewTransaction) (models.Transaction, error) {
	switch in.Type {
	case models.TransactionPurchase, models.TransactionRevenue, models.TransactionExpense:
	default:
		return models.Transaction{}, apperr.Invalid("invalid transaction", []apperr.Issue{{Field: "type", Message: "must be one of purchase, revenue, expense"}})
	}
	if !in.Amount.WholeCents() {
		return models.Transaction{}, apperr.Invalid("invalid transaction", []apperr.Issue{{Field: "amount", Message: "must have at most 2 decimal places"}})
	}

	defer e.locks.lock(playerID)()
	p, err := e.GetPlayer(ctx, playerID)
	if err != nil {
		return models.Transaction{}, err
	}
	date := p.CurrentDate
	if in.Date != nil {
		date = *in.Date
	}
	tx, err := e.store.CreateTransaction(ctx, models.Transaction{
		PlayerID:    playerID,
		Amount:      in.Amount,
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
	})
	if err != nil {
		return models.Transaction{}, storeErr(err, "transaction", playerID)
	}
	p.Money = p.Money.Plus(in.Amount)
	if _, err := e.store.UpdatePlayer(ctx, p); err != nil {
		return models.Transaction{}, storeErr(err, "player", playerID)
	}
	e.record(ctx, p, events.TransactionPosted, "%s of %s: %s", tx.Type, tx.Amount, tx.Description)
	return tx, nil
}

// ListTransactions returns the player's ledger, newest first.
func (e *Engine) ListTransactions(ctx context.Context, playerID int64) ([]models.Transaction, error) {
	if _, err := e.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}
	list, err := e.store.ListTransactionsByPlayer(ctx, playerID)
	if err != nil {
		return nil, storeErr(err, "transactions", playerID)
	}
	return list, nil
}

// Statement gathers the player's balance and full ledger for an account
// statement.
func (e *Engine) Statement(ctx context.Context, playerID int64) (report.Statement, error) {
	p, err := e.GetPlayer(ctx, playerID)
	if err != nil {
		return report.Statement{}, err
	}
	txs, err := e.store.ListTransactionsByPlayer(ctx, playerID)
	if err != nil {
		return report.Statement{}, storeErr(err, "transactions", playerID)
	}
	return report.Statement{Player: p, Transactions: txs, Generated: e.now()}, nil
}
