// internal/domain/notification/registry.go
package notification

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Registry owns one notification queue per session and the chain poller for
// sessions that have a wallet connected. Queues are created lazily and live
// until the session is dropped.
type Registry struct {
	mu      sync.Mutex
	queues  map[string]*Queue
	cancels map[string]context.CancelFunc

	source      StatsSource
	tokenSymbol string
	maxVisible  int
	displayTTL  time.Duration
	interval    time.Duration
	eps         decimal.Decimal
	logger      *logrus.Logger
}

// NewRegistry creates a session notification registry. Source may be nil;
// pollers are then never started and only direct pushes surface.
func NewRegistry(source StatsSource, tokenSymbol string, maxVisible int, displayTTL, pollInterval time.Duration, amountEps decimal.Decimal, logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		queues:      make(map[string]*Queue),
		cancels:     make(map[string]context.CancelFunc),
		source:      source,
		tokenSymbol: tokenSymbol,
		maxVisible:  maxVisible,
		displayTTL:  displayTTL,
		interval:    pollInterval,
		eps:         amountEps,
		logger:      logger,
	}
}

// Queue returns the session's queue, creating it on first use
func (r *Registry) Queue(sessionID string) *Queue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queueLocked(sessionID)
}

// StartPoller begins chain-diff polling for the session's wallet. Starting
// twice for the same session replaces the previous poller.
func (r *Registry) StartPoller(sessionID, wallet string) {
	if r.source == nil || wallet == "" || r.interval <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cancel, ok := r.cancels[sessionID]; ok {
		cancel()
	}

	queue := r.queueLocked(sessionID)
	ctx, cancel := context.WithCancel(context.Background())
	r.cancels[sessionID] = cancel

	poller := NewPoller(r.source, queue, wallet, r.tokenSymbol, r.interval, r.eps, r.logger)
	go poller.Run(ctx)

	r.logger.WithFields(logrus.Fields{
		"session": sessionID,
		"wallet":  wallet,
	}).Debug("Chain notification poller started")
}

// Drop stops the session's poller and discards its queue
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cancel, ok := r.cancels[sessionID]; ok {
		cancel()
		delete(r.cancels, sessionID)
	}
	delete(r.queues, sessionID)
}

// Close stops every poller
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sessionID, cancel := range r.cancels {
		cancel()
		delete(r.cancels, sessionID)
	}
}

func (r *Registry) queueLocked(sessionID string) *Queue {
	queue, ok := r.queues[sessionID]
	if !ok {
		queue = NewQueue(r.maxVisible, r.displayTTL)
		r.queues[sessionID] = queue
	}
	return queue
}
