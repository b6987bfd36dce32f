package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor runs queries, either on the pool or inside a transaction.
	DBExecutor interface {
		sqlx.ExtContext
	}

	// Transactor runs fn inside one transaction. The transaction is committed
	// once fn returns nil and rolled back otherwise.
	Transactor interface {
		InTx(ctx context.Context, fn func(exec DBExecutor) error) error
	}
)

// GetExec returns the transaction executor when one is passed, def otherwise.
func GetExec(def DBExecutor, exec []DBExecutor) DBExecutor {
	if len(exec) > 0 && exec[0] != nil {
		return exec[0]
	}
	return def
}
