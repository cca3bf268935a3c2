// internal/domain/notification/poller.go
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// StatsSource reads the wallet's aggregate on-chain activity
type StatsSource interface {
	Stats(ctx context.Context, address string) (ChainStats, error)
}

// Poller periodically re-reads chain aggregates for one wallet and turns
// positive deltas into notifications. It only ever observes committed chain
// state, so a purchase the orchestrator already reported can be reported a
// second time here; consumers must tolerate duplicates.
type Poller struct {
	source   StatsSource
	queue    *Queue
	address  string
	symbol   string
	interval time.Duration
	eps      decimal.Decimal
	logger   *logrus.Logger

	prev    ChainStats
	primed  bool
}

// NewPoller creates a poller for the wallet address
func NewPoller(source StatsSource, queue *Queue, address, tokenSymbol string, interval time.Duration, amountEps decimal.Decimal, logger *logrus.Logger) *Poller {
	if logger == nil {
		logger = logrus.New()
	}
	return &Poller{
		source:   source,
		queue:    queue,
		address:  address,
		symbol:   tokenSymbol,
		interval: interval,
		eps:      amountEps,
		logger:   logger,
	}
}

// Run polls until the context is cancelled. The first successful read only
// primes the baseline snapshot; diffs start from the second read.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll performs one read-and-diff cycle
func (p *Poller) poll(ctx context.Context) {
	stats, err := p.source.Stats(ctx, p.address)
	if err != nil {
		p.logger.WithError(err).WithField("wallet", p.address).Debug("Chain stats poll failed")
		return
	}

	if !p.primed {
		p.prev = stats
		p.primed = true
		return
	}

	p.diff(stats)
	p.prev = stats
}

// diff synthesizes notifications for any positive activity delta
func (p *Poller) diff(curr ChainStats) {
	spentDelta := curr.TotalSpent.Sub(p.prev.TotalSpent)
	receivedDelta := curr.TotalReceived.Sub(p.prev.TotalReceived)

	if delta := curr.PurchaseCount - p.prev.PurchaseCount; delta > 0 {
		p.queue.Push(Notification{
			Type:    TypePurchase,
			Title:   "Purchase confirmed",
			Message: fmt.Sprintf("%d model purchase(s) confirmed on-chain", delta),
			Amount:  p.formatAmount(spentDelta),
			Status:  StatusConfirmed,
		})
	} else if spentDelta.GreaterThan(p.eps) {
		p.queue.Push(Notification{
			Type:    TypeBalanceChange,
			Title:   "Tokens spent",
			Message: "Your token balance decreased",
			Amount:  p.formatAmount(spentDelta),
		})
	}

	if delta := curr.SaleCount - p.prev.SaleCount; delta > 0 {
		p.queue.Push(Notification{
			Type:    TypeSale,
			Title:   "Model sold",
			Message: fmt.Sprintf("%d of your model(s) sold", delta),
			Amount:  p.formatAmount(receivedDelta),
			Status:  StatusConfirmed,
		})
	} else if receivedDelta.GreaterThan(p.eps) {
		p.queue.Push(Notification{
			Type:    TypeBalanceChange,
			Title:   "Tokens received",
			Message: "Your token balance increased",
			Amount:  p.formatAmount(receivedDelta),
		})
	}
}

func (p *Poller) formatAmount(amount decimal.Decimal) string {
	if !amount.IsPositive() {
		return ""
	}
	return fmt.Sprintf("%s %s", amount.String(), p.symbol)
}
