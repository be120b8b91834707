package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/queue"
	"github.com/tupyy/dispatch-agent/internal/services"
	"github.com/tupyy/dispatch-agent/internal/store"
	"github.com/tupyy/dispatch-agent/pkg/dispatch"
)

var _ = Describe("ConfigService", func() {
	var (
		ctx context.Context
		st  *store.Store
		d   *dispatch.Dispatcher
		svc *services.ConfigService
		cfg config.Dispatch
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		st = store.NewStore(db)
		Expect(st.Migrate(ctx)).To(Succeed())

		cfg = config.Dispatch{
			TaskTimeout: 300 * time.Second, QueueTimeout: 600 * time.Second, MaxQueueSize: 100,
			EnablePriority: true, MaxRetries: 3, RetryDelay: 5 * time.Second,
			HealthCheckInterval: 30 * time.Second, InstanceTimeout: 10 * time.Second,
		}

		d = dispatch.New(queue.New(), pool.New(&fakeProber{}), &fakeExecutor{}, nil, dispatch.Config{
			TaskTimeout: cfg.TaskTimeout, QueueTimeout: cfg.QueueTimeout,
		})
		svc = services.NewConfigService(cfg, d, st)
	})

	AfterEach(func() {
		Expect(st.Close()).To(Succeed())
	})

	It("returns the initial configuration", func() {
		Expect(svc.Get()).To(Equal(cfg))
	})

	It("rejects an update that violates a bound", func() {
		next := cfg
		next.MaxRetries = -1
		Expect(svc.Update(ctx, next)).To(HaveOccurred())
		Expect(svc.Get()).To(Equal(cfg))
	})

	It("applies and persists a valid update", func() {
		next := cfg
		next.MaxRetries = 9
		Expect(svc.Update(ctx, next)).To(Succeed())
		Expect(svc.Get().MaxRetries).To(Equal(9))

		saved, err := st.Config().Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.MaxRetries).To(Equal(9))
	})
})
