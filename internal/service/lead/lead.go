// Package lead delivers quote leads to the CRM collaborator.
//
// Delivery is a best-effort side effect: Notify never blocks the caller,
// never reports an error and never retries. When every delivery slot is
// busy the lead is dropped.
package lead

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliamunaev/quote-wizard/internal/model"
	"github.com/iliamunaev/quote-wizard/internal/service/pool"
	"github.com/iliamunaev/quote-wizard/internal/service/tracker"
)

// Client is the lead-capture collaborator.
type Client interface {
	SubmitFreeQuote(ctx context.Context, req model.FreeQuoteRequest) error
}

// Notifier sends quote leads in the background.
type Notifier struct {
	client  Client
	slots   *pool.Pool
	tr      *tracker.Tracker
	timeout time.Duration
	log     *zap.Logger
}

// New returns a Notifier running at most slots deliveries at once, each
// bounded by timeout.
func New(client Client, slots int, timeout time.Duration, tr *tracker.Tracker, log *zap.Logger) *Notifier {
	if client == nil {
		panic("lead.New: nil client")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		client:  client,
		slots:   pool.New(slots),
		tr:      tr,
		timeout: timeout,
		log:     log,
	}
}

// Notify starts delivering req and returns immediately. The delivery
// outlives ctx's cancellation but keeps its values.
func (n *Notifier) Notify(ctx context.Context, req model.FreeQuoteRequest) {
	if !n.slots.TryAcquire() {
		n.log.Debug("quote lead dropped, no free slot", zap.String("zip", req.ZipCode))
		return
	}

	n.tr.Inc()
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer n.slots.Release()
		defer n.tr.Dec()

		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		if err := n.client.SubmitFreeQuote(ctx, req); err != nil {
			n.log.Debug("quote lead not delivered", zap.String("zip", req.ZipCode), zap.Error(err))
			return
		}
		n.log.Debug("quote lead delivered", zap.String("zip", req.ZipCode))
	}()
}

// Wait blocks until every started delivery has finished or ctx ends.
func (n *Notifier) Wait(ctx context.Context) error {
	return n.slots.Drain(ctx)
}

// FromSelection builds the lead of a priced service selection.
func FromSelection(zip string, sel model.ServiceSelection) model.FreeQuoteRequest {
	return model.FreeQuoteRequest{
		ZipCode:      zip,
		FirstName:    sel.FirstName,
		Phone:        sel.Phone,
		NumberOfDogs: sel.NumberOfDogs,
		Frequency:    sel.Frequency,
		LastCleaned:  sel.LastCleaned,
	}
}
