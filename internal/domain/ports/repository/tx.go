package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager runs fn inside a storage transaction and hands the
// infra-defined handle (pgx.Tx for Postgres) to repositories through tx.
// Repositories MUST accept a nil tx as the non-transactional path.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
