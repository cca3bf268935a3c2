// internal/domain/purchase/entity.go
package purchase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/your-org/ainexus-marketplace/internal/domain/cart"
)

// Status tracks where a purchase attempt is in its lifecycle
type Status string

const (
	StatusIdle                Status = "idle"
	StatusValidating          Status = "validating"
	StatusAwaitingApproval    Status = "awaiting_approval"
	StatusSubmitting          Status = "submitting"
	StatusPendingConfirmation Status = "pending_confirmation"
	StatusSettled             Status = "settled"
	StatusFailed              Status = "failed"
)

// FailureKind classifies why a purchase attempt could not settle
type FailureKind string

const (
	FailNotConnected        FailureKind = "wallet_not_connected"
	FailInsufficientBalance FailureKind = "insufficient_balance"
	FailApprovalRequired    FailureKind = "approval_required"
	FailChainExecution      FailureKind = "chain_execution"
	FailBackendLogging      FailureKind = "backend_logging"
	FailUserInput           FailureKind = "user_input"
)

// Failure is a classified purchase error. Shortfall is only set for
// insufficient-balance failures.
type Failure struct {
	Kind      FailureKind
	Message   string
	Shortfall decimal.Decimal
	Err       error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// classifyChainError inspects a raw chain submission error and maps it to a
// more specific failure when the gateway surfaced a recognizable revert
// reason. Anything unrecognized stays a chain execution failure.
func classifyChainError(err error) *Failure {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient"):
		return &Failure{Kind: FailInsufficientBalance, Message: "token balance too low for this purchase", Err: err}
	case strings.Contains(msg, "allowance"), strings.Contains(msg, "approve"):
		return &Failure{Kind: FailApprovalRequired, Message: "marketplace spending approval required", Err: err}
	case strings.Contains(msg, "rejected"), strings.Contains(msg, "denied"):
		return &Failure{Kind: FailUserInput, Message: "transaction rejected by wallet", Err: err}
	default:
		return &Failure{Kind: FailChainExecution, Message: "on-chain purchase failed", Err: err}
	}
}

// TxHandle identifies a submitted transaction
type TxHandle struct {
	Hash string `json:"hash"`
}

// Receipt is the outcome of a single item purchase attempt. LogWarning is set
// when the chain transaction settled but recording it in the purchase log
// failed; the purchase itself still counts as successful.
type Receipt struct {
	Item       cart.Item       `json:"item"`
	Status     Status          `json:"status"`
	TxHash     string          `json:"tx_hash,omitempty"`
	Tokens     decimal.Decimal `json:"tokens"`
	LogWarning string          `json:"log_warning,omitempty"`
	Failure    *Failure        `json:"-"`
}

// FailureDetail exposes the classified failure for JSON responses
func (r Receipt) FailureDetail() map[string]string {
	if r.Failure == nil {
		return nil
	}
	detail := map[string]string{
		"kind":    string(r.Failure.Kind),
		"message": r.Failure.Message,
	}
	if r.Failure.Shortfall.IsPositive() {
		detail["shortfall"] = r.Failure.Shortfall.String()
	}
	return detail
}

// BulkReceipt is the outcome of a purchase-all run. Partial success is the
// expected shape: Receipts holds one entry per attempted item, in cart order.
type BulkReceipt struct {
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Receipts  []Receipt `json:"receipts"`
}

// Entry is the purchase-log record written after a settled transaction
type Entry struct {
	ModelID              string          `json:"model_id"`
	ContractModelID      *int64          `json:"contract_model_id,omitempty"`
	ModelName            string          `json:"model_name"`
	WalletAddress        string          `json:"wallet_address"`
	SellerAddress        string          `json:"seller_address"`
	TxHash               string          `json:"tx_hash"`
	PriceTokens          decimal.Decimal `json:"price_tokens"`
	Network              string          `json:"network"`
	TransactionType      string          `json:"transaction_type"`
	Status               string          `json:"status"`
	TokenContractAddress string          `json:"token_contract_address"`
	TokenSymbol          string          `json:"token_symbol"`
	TokenDecimals        int             `json:"token_decimals"`
}
