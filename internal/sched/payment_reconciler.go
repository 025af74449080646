package sched

import (
	"context"
	"time"

	"lanprime/internal/service"
)

// PaymentReconciler periodically sweeps payments stuck in pending and asks
// the provider for their outcome. This covers lost webhooks and crashes
// between the provider confirming and the status update landing.
type PaymentReconciler struct {
	svc        *service.PaymentService
	interval   time.Duration
	staleAfter time.Duration
}

func NewPaymentReconciler(svc *service.PaymentService, interval, staleAfter time.Duration) *PaymentReconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &PaymentReconciler{svc: svc, interval: interval, staleAfter: staleAfter}
}

// Start blocks until ctx is cancelled. Run it in its own goroutine.
func (w *PaymentReconciler) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.svc.Reconcile(ctx, w.staleAfter, 200)
		}
	}
}
