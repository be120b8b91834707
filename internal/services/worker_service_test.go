package services_test

import (
	"context"
	"database/sql"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/services"
	"github.com/tupyy/dispatch-agent/internal/store"
)

var _ = Describe("WorkerService", func() {
	var (
		ctx context.Context
		db  *sql.DB
		st  *store.Store
		p   *pool.Pool
		svc *services.WorkerService
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		st = store.NewStore(db)
		Expect(st.Migrate(ctx)).To(Succeed())

		p = pool.New(&fakeProber{})
		svc = services.NewWorkerService(p, st)
	})

	AfterEach(func() {
		Expect(st.Close()).To(Succeed())
	})

	It("registers and persists a worker", func() {
		w, err := svc.Add(ctx, "http://w1", "w1", "pipeline")
		Expect(err).NotTo(HaveOccurred())

		got, err := st.Worker().Get(ctx, w.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("w1"))
	})

	It("rejects removing an unknown worker", func() {
		err := svc.Remove(ctx, "missing")
		Expect(err).To(HaveOccurred())
	})

	It("rejects removing a worker with a job in flight", func() {
		w, err := svc.Add(ctx, "http://w1", "w1", "pipeline")
		Expect(err).NotTo(HaveOccurred())
		p.SetStatus(w.ID, models.WorkerIdle)
		Expect(p.TryBind(w.ID, "job-1")).To(BeTrue())

		err = svc.Remove(ctx, w.ID)
		Expect(err).To(HaveOccurred())
	})

	It("rejects a URL update while the worker is busy", func() {
		w, err := svc.Add(ctx, "http://w1", "w1", "pipeline")
		Expect(err).NotTo(HaveOccurred())
		p.SetStatus(w.ID, models.WorkerIdle)
		Expect(p.TryBind(w.ID, "job-1")).To(BeTrue())

		newURL := "http://new"
		_, err = svc.Update(ctx, w.ID, services.UpdateParams{URL: &newURL})
		Expect(err).To(HaveOccurred())
	})

	It("allows a name update while the worker is busy", func() {
		w, err := svc.Add(ctx, "http://w1", "w1", "pipeline")
		Expect(err).NotTo(HaveOccurred())
		p.SetStatus(w.ID, models.WorkerIdle)
		Expect(p.TryBind(w.ID, "job-1")).To(BeTrue())

		newName := "renamed"
		updated, err := svc.Update(ctx, w.ID, services.UpdateParams{Name: &newName})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Name).To(Equal("renamed"))
	})

	It("enables and disables a worker, persisting the flag", func() {
		w, err := svc.Add(ctx, "http://w1", "w1", "pipeline")
		Expect(err).NotTo(HaveOccurred())

		Expect(svc.Disable(ctx, w.ID)).To(Succeed())
		Expect(p.Get(w.ID).Status).To(Equal(models.WorkerDisabled))

		Expect(svc.Enable(ctx, w.ID)).To(Succeed())
		Expect(p.Get(w.ID).Enabled).To(BeTrue())
	})
})
