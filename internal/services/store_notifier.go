package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/store"
)

// StoreNotifier persists every terminal job to the store, the production
// wiring for pkg/dispatch.Notifier. Persistence failures are logged and
// swallowed, the same best-effort tolerance JobService applies to writes
// on the submit path.
type StoreNotifier struct {
	store *store.Store
}

func NewStoreNotifier(st *store.Store) *StoreNotifier {
	return &StoreNotifier{store: st}
}

func (n *StoreNotifier) OnTerminal(job *models.Job) {
	if err := n.store.Job().Upsert(context.Background(), job); err != nil {
		zap.S().Named("store_notifier").Errorw("failed to persist terminal job", "job_id", job.ID, "error", err)
	}
}
