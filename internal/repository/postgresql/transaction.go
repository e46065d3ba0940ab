package postgresql

import (
	"context"

	"github.com/kenzahr/workforce-ledger-go/internal/pkg/database"
)

// GetQuerier returns the ambient transaction when one is in the context,
// otherwise the pool. Repositories use it for every statement so ledger
// mutations compose into one atomic unit under the tx manager.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}
