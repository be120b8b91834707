package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/store"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

var _ = Describe("ConfigStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		s = store.NewStore(db)
		Expect(s.Migrate(ctx)).To(Succeed())
	})

	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
	})

	Context("Load", func() {
		It("falls back to defaults when nothing has been saved", func() {
			d, err := s.Config().Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.TaskTimeout).To(Equal(300 * time.Second))
			Expect(d.MaxRetries).To(Equal(3))
		})

		It("returns a previously saved value", func() {
			saved := config.Dispatch{
				TaskTimeout:         120 * time.Second,
				QueueTimeout:        600 * time.Second,
				MaxQueueSize:        50,
				EnablePriority:      false,
				MaxRetries:          5,
				RetryDelay:          2 * time.Second,
				HealthCheckInterval: 15 * time.Second,
				InstanceTimeout:     5 * time.Second,
			}
			Expect(s.Config().Save(ctx, saved)).To(Succeed())

			loaded, err := s.Config().Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(saved))
		})
	})

	Context("Save", func() {
		It("upserts rather than duplicating rows across saves", func() {
			first := config.Dispatch{MaxRetries: 1, TaskTimeout: 30 * time.Second, QueueTimeout: 60 * time.Second,
				MaxQueueSize: 1, RetryDelay: time.Second, HealthCheckInterval: 5 * time.Second, InstanceTimeout: time.Second}
			second := first
			second.MaxRetries = 9

			Expect(s.Config().Save(ctx, first)).To(Succeed())
			Expect(s.Config().Save(ctx, second)).To(Succeed())

			loaded, err := s.Config().Load(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MaxRetries).To(Equal(9))
		})
	})
})

var _ = Describe("WorkerStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		s = store.NewStore(db)
		Expect(s.Migrate(ctx)).To(Succeed())
	})

	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
	})

	It("round-trips a worker registration", func() {
		w := &models.Worker{ID: "w1", Name: "worker-1", URL: "http://w1", Backend: "pipeline", Enabled: true, CreatedAt: time.Now().UTC().Truncate(time.Second)}
		Expect(s.Worker().Upsert(ctx, w)).To(Succeed())

		got, err := s.Worker().Get(ctx, "w1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("worker-1"))
		Expect(got.Enabled).To(BeTrue())
	})

	It("lists workers in insertion order", func() {
		w1 := &models.Worker{ID: "w1", Name: "a", URL: "http://a", Backend: "pipeline", Enabled: true, CreatedAt: time.Now().UTC()}
		w2 := &models.Worker{ID: "w2", Name: "b", URL: "http://b", Backend: "pipeline", Enabled: true, CreatedAt: time.Now().UTC().Add(time.Second)}
		Expect(s.Worker().Upsert(ctx, w1)).To(Succeed())
		Expect(s.Worker().Upsert(ctx, w2)).To(Succeed())

		list, err := s.Worker().List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(list).To(HaveLen(2))
		Expect(list[0].ID).To(Equal("w1"))
	})

	It("deletes a worker", func() {
		w := &models.Worker{ID: "w1", Name: "a", URL: "http://a", Backend: "pipeline", CreatedAt: time.Now().UTC()}
		Expect(s.Worker().Upsert(ctx, w)).To(Succeed())
		Expect(s.Worker().Delete(ctx, "w1")).To(Succeed())

		_, err := s.Worker().Get(ctx, "w1")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("JobStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		s = store.NewStore(db)
		Expect(s.Migrate(ctx)).To(Succeed())
	})

	AfterEach(func() {
		Expect(s.Close()).To(Succeed())
	})

	newJob := func(id, status string, priority int, createdAt time.Time) *models.Job {
		return &models.Job{
			ID:        id,
			Status:    models.JobStatus(status),
			Priority:  priority,
			Payload:   models.Payload{"file_base64": "Zm9v", "backend": "pipeline"},
			FileName:  "doc.pdf",
			CreatedAt: createdAt,
		}
	}

	It("round-trips a job including payload", func() {
		j := newJob("j1", string(models.JobPending), 5, time.Now().UTC().Truncate(time.Second))
		Expect(s.Job().Upsert(ctx, j)).To(Succeed())

		got, err := s.Job().Get(ctx, "j1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.FileName).To(Equal("doc.pdf"))
		Expect(got.Payload["backend"]).To(Equal("pipeline"))
	})

	It("persists a result once set", func() {
		j := newJob("j1", string(models.JobCompleted), 5, time.Now().UTC())
		j.Result = map[string]any{"text": "hello"}
		Expect(s.Job().Upsert(ctx, j)).To(Succeed())

		got, err := s.Job().Get(ctx, "j1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Result["text"]).To(Equal("hello"))
	})

	It("returns ResourceNotFoundError for an unknown job", func() {
		_, err := s.Job().Get(ctx, "missing")
		Expect(err).To(HaveOccurred())
	})

	It("filters by status and orders newest first", func() {
		now := time.Now().UTC()
		Expect(s.Job().Upsert(ctx, newJob("j1", string(models.JobFailed), 5, now))).To(Succeed())
		Expect(s.Job().Upsert(ctx, newJob("j2", string(models.JobFailed), 5, now.Add(time.Minute)))).To(Succeed())
		Expect(s.Job().Upsert(ctx, newJob("j3", string(models.JobCompleted), 5, now.Add(2*time.Minute)))).To(Succeed())

		failed, err := s.Job().List(ctx, store.ByStatus(string(models.JobFailed)), store.WithNewestFirst())
		Expect(err).NotTo(HaveOccurred())
		Expect(failed).To(HaveLen(2))
		Expect(failed[0].ID).To(Equal("j2"))
	})

	It("counts matching rows without loading them", func() {
		now := time.Now().UTC()
		Expect(s.Job().Upsert(ctx, newJob("j1", string(models.JobFailed), 5, now))).To(Succeed())
		Expect(s.Job().Upsert(ctx, newJob("j2", string(models.JobCompleted), 5, now))).To(Succeed())

		n, err := s.Job().Count(ctx, store.ByStatus(string(models.JobFailed)))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
	})

	It("paginates with limit and offset", func() {
		now := time.Now().UTC()
		for i := 0; i < 5; i++ {
			Expect(s.Job().Upsert(ctx, newJob(string(rune('a'+i)), string(models.JobCompleted), 5, now.Add(time.Duration(i)*time.Minute)))).To(Succeed())
		}

		page, err := s.Job().List(ctx, store.WithNewestFirst(), store.WithLimit(2), store.WithOffset(1))
		Expect(err).NotTo(HaveOccurred())
		Expect(page).To(HaveLen(2))
	})
})
