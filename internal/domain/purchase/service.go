// internal/domain/purchase/service.go
package purchase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ainexus-marketplace/internal/domain/cart"
	"github.com/your-org/ainexus-marketplace/internal/domain/notification"
)

// Options carries the chain parameters the orchestrator needs
type Options struct {
	MarketplaceAddress   string
	TokenContractAddress string
	TokenSymbol          string
	TokenDecimals        int
	Network              string
	TokensPerBase        decimal.Decimal
	ApprovalThreshold    decimal.Decimal
}

// Service orchestrates purchases: validate balance and allowance, submit the
// right marketplace call per item flavor, record the settled transaction, and
// remove the item from the cart. The chain transaction is the commit point:
// once it settles, logging failures downgrade to a warning and the item still
// leaves the cart.
type Service struct {
	store    *cart.Store
	token    TokenContract
	market   Marketplace
	recorder Recorder
	notifier Notifier
	opts     Options
	logger   *logrus.Logger
}

// NewService creates the purchase orchestrator. Recorder and notifier may be
// nil; recording and toasts are then skipped.
func NewService(store *cart.Store, token TokenContract, market Marketplace, recorder Recorder, notifier Notifier, opts Options, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if opts.TokensPerBase.IsZero() {
		opts.TokensPerBase = decimal.NewFromInt(1000)
	}
	if opts.ApprovalThreshold.IsZero() {
		opts.ApprovalThreshold = decimal.NewFromInt(1000000)
	}
	return &Service{
		store:    store,
		token:    token,
		market:   market,
		recorder: recorder,
		notifier: notifier,
		opts:     opts,
		logger:   logger,
	}
}

// TokensFor converts an item's base-currency price into platform tokens
func (s *Service) TokensFor(item cart.Item) decimal.Decimal {
	return item.PriceDecimal().Mul(s.opts.TokensPerBase)
}

// PurchaseItem buys a single cart item for the wallet. The returned receipt
// always carries the item and its token cost; on failure the receipt's
// Failure explains why and the item stays in the cart.
func (s *Service) PurchaseItem(ctx context.Context, wallet, itemID string) Receipt {
	item, ok := s.store.GetItem(itemID)
	if !ok {
		return Receipt{
			Status:  StatusFailed,
			Failure: &Failure{Kind: FailUserInput, Message: fmt.Sprintf("item %s is not in the cart", itemID)},
		}
	}

	receipt := Receipt{Item: item, Status: StatusValidating, Tokens: s.TokensFor(item)}
	if wallet == "" {
		receipt.Status = StatusFailed
		receipt.Failure = &Failure{Kind: FailNotConnected, Message: "wallet not connected"}
		return receipt
	}

	if fail := s.precheck(ctx, wallet, receipt.Tokens); fail != nil {
		receipt.Status = s.failStatus(fail)
		receipt.Failure = fail
		s.notifyFailure(item, fail)
		return receipt
	}

	return s.submit(ctx, wallet, receipt)
}

// PurchaseAll buys every cart item sequentially. Balance and allowance are
// checked once against the aggregate token cost up front; individual submits
// then run strictly in order, and a mid-run failure does not revert the
// purchases already settled.
func (s *Service) PurchaseAll(ctx context.Context, wallet string) BulkReceipt {
	items := s.store.Items()
	bulk := BulkReceipt{Receipts: make([]Receipt, 0, len(items))}
	if len(items) == 0 {
		return bulk
	}

	if wallet == "" {
		fail := &Failure{Kind: FailNotConnected, Message: "wallet not connected"}
		for _, item := range items {
			bulk.Receipts = append(bulk.Receipts, Receipt{Item: item, Status: StatusFailed, Tokens: s.TokensFor(item), Failure: fail})
			bulk.Failed++
		}
		return bulk
	}

	totalTokens := decimal.Zero
	for _, item := range items {
		totalTokens = totalTokens.Add(s.TokensFor(item))
	}

	if fail := s.precheck(ctx, wallet, totalTokens); fail != nil {
		s.notifyFailure(items[0], fail)
		for _, item := range items {
			bulk.Receipts = append(bulk.Receipts, Receipt{Item: item, Status: s.failStatus(fail), Tokens: s.TokensFor(item), Failure: fail})
			bulk.Failed++
		}
		return bulk
	}

	for _, item := range items {
		receipt := s.submit(ctx, wallet, Receipt{Item: item, Status: StatusValidating, Tokens: s.TokensFor(item)})
		bulk.Receipts = append(bulk.Receipts, receipt)
		if receipt.Status == StatusSettled {
			bulk.Succeeded++
		} else {
			bulk.Failed++
		}
	}
	return bulk
}

// ApproveSpending raises the wallet's marketplace allowance. Approval is an
// explicit user action; the orchestrator never auto-approves.
func (s *Service) ApproveSpending(ctx context.Context, wallet string, amount decimal.Decimal) (TxHandle, error) {
	if wallet == "" {
		return TxHandle{}, &Failure{Kind: FailNotConnected, Message: "wallet not connected"}
	}
	if !amount.IsPositive() {
		amount = s.opts.ApprovalThreshold
	}

	tx, err := s.token.Approve(ctx, wallet, s.opts.MarketplaceAddress, amount)
	if err != nil {
		return TxHandle{}, classifyChainError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"wallet": wallet,
		"amount": amount.String(),
		"tx":     tx.Hash,
	}).Info("Marketplace spending approved")
	s.notify(notification.Notification{
		Type:    notification.TypeSuccess,
		Title:   "Approval submitted",
		Message: fmt.Sprintf("Approved %s %s for marketplace spending", amount.String(), s.opts.TokenSymbol),
		TxHash:  tx.Hash,
		Status:  notification.StatusPending,
	})
	return tx, nil
}

// precheck validates balance and allowance against the required token amount
func (s *Service) precheck(ctx context.Context, wallet string, required decimal.Decimal) *Failure {
	balance, err := s.token.BalanceOf(ctx, wallet)
	if err != nil {
		return &Failure{Kind: FailChainExecution, Message: "could not read token balance", Err: err}
	}
	if balance.LessThan(required) {
		return &Failure{
			Kind:      FailInsufficientBalance,
			Message:   fmt.Sprintf("need %s %s, have %s", required.String(), s.opts.TokenSymbol, balance.String()),
			Shortfall: required.Sub(balance),
		}
	}

	allowance, err := s.token.Allowance(ctx, wallet, s.opts.MarketplaceAddress)
	if err != nil {
		return &Failure{Kind: FailChainExecution, Message: "could not read marketplace allowance", Err: err}
	}
	if allowance.LessThan(s.opts.ApprovalThreshold) {
		return &Failure{
			Kind:    FailApprovalRequired,
			Message: fmt.Sprintf("marketplace allowance %s below required %s", allowance.String(), s.opts.ApprovalThreshold.String()),
		}
	}
	return nil
}

// submit sends the purchase transaction, records it, and removes the item
func (s *Service) submit(ctx context.Context, wallet string, receipt Receipt) Receipt {
	item := receipt.Item
	receipt.Status = StatusSubmitting

	var (
		tx  TxHandle
		err error
	)
	if item.IsContractModel {
		// A contract-tracked item without its on-chain id is malformed data,
		// not a listing the database path can charge for.
		if item.ContractModelID == nil {
			fail := &Failure{Kind: FailUserInput, Message: fmt.Sprintf("item %s is marked contract-tracked but carries no contract model id", item.ID)}
			receipt.Status = StatusFailed
			receipt.Failure = fail
			s.notifyFailure(item, fail)
			return receipt
		}
		tx, err = s.market.BuyModelWithToken(ctx, wallet, *item.ContractModelID, receipt.Tokens)
	} else {
		tx, err = s.market.BuyDatabaseModelWithToken(ctx, wallet, item.ID, item.Seller, receipt.Tokens, item.ContractModelID)
	}
	if err != nil {
		fail := classifyChainError(err)
		receipt.Status = s.failStatus(fail)
		receipt.Failure = fail
		s.logger.WithError(err).WithFields(logrus.Fields{
			"wallet": wallet,
			"model":  item.ID,
		}).Error("Purchase transaction failed")
		s.notifyFailure(item, fail)
		return receipt
	}

	receipt.TxHash = tx.Hash
	receipt.Status = StatusSettled

	if s.recorder != nil {
		entry := Entry{
			ModelID:              item.ID,
			ContractModelID:      item.ContractModelID,
			ModelName:            item.Name,
			WalletAddress:        wallet,
			SellerAddress:        item.Seller,
			TxHash:               tx.Hash,
			PriceTokens:          receipt.Tokens,
			Network:              s.opts.Network,
			TransactionType:      s.transactionType(item),
			Status:               "confirmed",
			TokenContractAddress: s.opts.TokenContractAddress,
			TokenSymbol:          s.opts.TokenSymbol,
			TokenDecimals:        s.opts.TokenDecimals,
		}
		if err := s.recorder.Record(ctx, entry); err != nil {
			// Chain state is the source of truth here; a logging miss
			// must not unwind a settled purchase.
			receipt.LogWarning = "purchase settled on-chain but could not be recorded"
			s.logger.WithError(err).WithField("tx", tx.Hash).Warn("Failed to record settled purchase")
		}
	}

	s.store.RemoveItem(ctx, item.ID)
	s.logger.WithFields(logrus.Fields{
		"wallet": wallet,
		"model":  item.ID,
		"tokens": receipt.Tokens.String(),
		"tx":     tx.Hash,
	}).Info("Purchase settled")
	s.notify(notification.Notification{
		Type:    notification.TypePurchase,
		Title:   "Purchase complete",
		Message: fmt.Sprintf("Purchased %s", item.Name),
		Amount:  fmt.Sprintf("%s %s", receipt.Tokens.String(), s.opts.TokenSymbol),
		TxHash:  tx.Hash,
		Status:  notification.StatusConfirmed,
	})
	return receipt
}

func (s *Service) transactionType(item cart.Item) string {
	if item.IsContractModel {
		return "contract_model_purchase"
	}
	return "database_model_purchase"
}

func (s *Service) failStatus(fail *Failure) Status {
	if fail.Kind == FailApprovalRequired {
		return StatusAwaitingApproval
	}
	return StatusFailed
}

func (s *Service) notify(n notification.Notification) {
	if s.notifier == nil {
		return
	}
	s.notifier.Push(n)
}

func (s *Service) notifyFailure(item cart.Item, fail *Failure) {
	s.notify(notification.Notification{
		Type:    notification.TypeError,
		Title:   "Purchase failed",
		Message: fmt.Sprintf("%s: %s", item.Name, fail.Message),
		Status:  notification.StatusFailed,
	})
}
