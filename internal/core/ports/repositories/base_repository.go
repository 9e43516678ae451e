package repositories

import (
	"context"
)

// TransactionManager runs fn inside a single storage transaction. Every
// repository handed to fn shares that transaction; the transaction commits
// when fn returns nil and rolls back otherwise. Locks taken through the
// provided repositories are released when the transaction ends.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(repos RepositoryProvider) error) error
}
