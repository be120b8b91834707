package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/queue"
	"github.com/tupyy/dispatch-agent/internal/services"
	"github.com/tupyy/dispatch-agent/pkg/dispatch"
)

var _ = Describe("StatsService", func() {
	It("reports queue depth, worker counts and task totals", func() {
		q := queue.New()
		p := pool.New(&fakeProber{})
		exec := &fakeExecutor{fn: func(ctx context.Context, w *models.Worker, pl models.Payload, fileName string) (map[string]any, error) {
			return map[string]any{"ok": true}, nil
		}}
		d := dispatch.New(q, p, exec, nil, dispatch.Config{TaskTimeout: time.Second, QueueTimeout: time.Hour})

		idle := p.Add("http://w1", "w1", "pipeline")
		busy := p.Add("http://w2", "w2", "pipeline")
		offline := p.Add("http://w3", "w3", "pipeline")
		p.SetStatus(idle.ID, models.WorkerIdle)
		p.SetStatus(busy.ID, models.WorkerIdle)
		p.SetStatus(offline.ID, models.WorkerOffline)
		p.TryBind(busy.ID, "job-1")

		q.Enqueue(&models.Job{ID: "job-2", Status: models.JobPending, CreatedAt: time.Now().UTC()})

		svc := services.NewStatsService(q, p, d)
		snap := svc.Snapshot()

		Expect(snap.QueuePending).To(Equal(1))
		Expect(snap.InstancesTotal).To(Equal(3))
		Expect(snap.InstancesIdle).To(Equal(1))
		Expect(snap.InstancesBusy).To(Equal(1))
		Expect(snap.InstancesOffline).To(Equal(1))
		Expect(p.Get(idle.ID).Status).To(Equal(models.WorkerIdle))
	})
})
