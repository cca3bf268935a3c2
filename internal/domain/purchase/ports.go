// internal/domain/purchase/ports.go
package purchase

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
)

// TokenContract reads and mutates token spending state for a wallet
type TokenContract interface {
	BalanceOf(ctx context.Context, wallet string) (decimal.Decimal, error)
	Allowance(ctx context.Context, wallet, spender string) (decimal.Decimal, error)
	Approve(ctx context.Context, wallet, spender string, amount decimal.Decimal) (TxHandle, error)
}

// Marketplace submits purchase transactions. Contract-tracked models go
// through BuyModelWithToken with their numeric on-chain id; database-only
// models through BuyDatabaseModelWithToken, which carries the seller so the
// contract can route payment, plus the optional contract model id when the
// listing has one.
type Marketplace interface {
	BuyModelWithToken(ctx context.Context, wallet string, contractModelID int64, tokens decimal.Decimal) (TxHandle, error)
	BuyDatabaseModelWithToken(ctx context.Context, wallet, modelID, seller string, tokens decimal.Decimal, contractModelID *int64) (TxHandle, error)
}

// Recorder persists the purchase log entry after a settled transaction
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Notifier surfaces purchase progress to the user
type Notifier interface {
	Push(n notification.Notification) notification.Notification
}
