package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/dispatch-agent/internal/config"
	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/pool"
	"github.com/tupyy/dispatch-agent/internal/queue"
	"github.com/tupyy/dispatch-agent/internal/services"
	"github.com/tupyy/dispatch-agent/internal/store"
	"github.com/tupyy/dispatch-agent/pkg/dispatch"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
)

func TestServices(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Services Suite")
}

type fakeExecutor struct {
	fn func(ctx context.Context, w *models.Worker, p models.Payload, fileName string) (map[string]any, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, w *models.Worker, p models.Payload, fileName string) (map[string]any, error) {
	if f.fn != nil {
		return f.fn(ctx, w, p, fileName)
	}
	return map[string]any{"text": "ok"}, nil
}

type storingNotifier struct{ st *store.Store }

func (n *storingNotifier) OnTerminal(job *models.Job) {
	n.st.Job().Upsert(context.Background(), job)
}

var _ = Describe("JobService", func() {
	var (
		ctx  context.Context
		db   *sql.DB
		st   *store.Store
		q    *queue.Queue
		p    *pool.Pool
		d    *dispatch.Dispatcher
		svc  *services.JobService
		exec *fakeExecutor
		cfg  config.Dispatch
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		st = store.NewStore(db)
		Expect(st.Migrate(ctx)).To(Succeed())

		q = queue.New()
		p = pool.New(&fakeProber{})
		exec = &fakeExecutor{}

		cfg = config.Dispatch{
			TaskTimeout:         time.Second,
			QueueTimeout:        time.Hour,
			MaxQueueSize:        2,
			EnablePriority:      true,
			MaxRetries:          1,
			RetryDelay:          10 * time.Millisecond,
			HealthCheckInterval: time.Minute,
			InstanceTimeout:     time.Second,
		}

		d = dispatch.New(q, p, exec, &storingNotifier{st: st}, dispatch.Config{
			TaskTimeout:  cfg.TaskTimeout,
			QueueTimeout: cfg.QueueTimeout,
			MaxRetries:   cfg.MaxRetries,
			RetryDelay:   cfg.RetryDelay,
		})
		d.Start(ctx)
		DeferCleanup(d.Stop)

		svc = services.NewJobService(q, d, st, func() config.Dispatch { return cfg })
	})

	AfterEach(func() {
		Expect(st.Close()).To(Succeed())
	})

	It("rejects submission once the queue is full", func() {
		w := p.Add("http://w1", "w1", "pipeline")
		p.Disable(w.ID)

		_, _, err := svc.Submit(ctx, services.SubmitParams{Payload: models.Payload{"file_base64": "Zm9v"}, Async: true})
		Expect(err).NotTo(HaveOccurred())
		_, _, err = svc.Submit(ctx, services.SubmitParams{Payload: models.Payload{"file_base64": "Zm9v"}, Async: true})
		Expect(err).NotTo(HaveOccurred())

		_, _, err = svc.Submit(ctx, services.SubmitParams{Payload: models.Payload{"file_base64": "Zm9v"}, Async: true})
		Expect(err).To(HaveOccurred())
		Expect(dispatcherrors.IsQueueFullError(err)).To(BeTrue())
	})

	It("forces priority to 5 when EnablePriority is disabled", func() {
		cfg.EnablePriority = false
		job, _, err := svc.Submit(ctx, services.SubmitParams{
			Payload:  models.Payload{"file_base64": "Zm9v"},
			Priority: 9,
			Async:    true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(job.Priority).To(Equal(5))
	})

	It("runs a synchronous submission to completion", func() {
		w := p.Add("http://w1", "w1", "pipeline")
		Expect(w).NotTo(BeNil())
		p.SetStatus(w.ID, models.WorkerIdle)

		job, _, err := svc.Submit(ctx, services.SubmitParams{Payload: models.Payload{"file_base64": "Zm9v"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(job.Status).To(Equal(models.JobCompleted))
	})

	It("finds a pending job via Get and reports its queue position", func() {
		w := p.Add("http://w1", "w1", "pipeline")
		p.Disable(w.ID)

		job, _, err := svc.Submit(ctx, services.SubmitParams{Payload: models.Payload{"file_base64": "Zm9v"}, Async: true})
		Expect(err).NotTo(HaveOccurred())

		got, position, err := svc.Get(ctx, job.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ID).To(Equal(job.ID))
		Expect(position).To(Equal(1))
	})

	It("returns ResourceNotFoundError for an unknown job", func() {
		_, _, err := svc.Get(ctx, "missing")
		Expect(err).To(HaveOccurred())
	})

	It("lists failed jobs from history", func() {
		exec.fn = func(ctx context.Context, w *models.Worker, pl models.Payload, fileName string) (map[string]any, error) {
			return nil, dispatcherrors.NewRemoteError(500, "boom")
		}
		w := p.Add("http://w1", "w1", "pipeline")
		p.SetStatus(w.ID, models.WorkerIdle)

		job, _, err := svc.Submit(ctx, services.SubmitParams{Payload: models.Payload{"file_base64": "Zm9v"}, Async: true})
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() ([]*models.Job, error) {
			return svc.ListFailed(ctx)
		}, 2*time.Second).Should(ContainElement(WithTransform(func(j *models.Job) string { return j.ID }, Equal(job.ID))))
	})

	It("retries a failed job", func() {
		attempt := 0
		exec.fn = func(ctx context.Context, w *models.Worker, pl models.Payload, fileName string) (map[string]any, error) {
			attempt++
			if attempt <= 2 {
				return nil, dispatcherrors.NewRemoteError(500, "boom")
			}
			return map[string]any{"ok": true}, nil
		}
		w := p.Add("http://w1", "w1", "pipeline")
		p.SetStatus(w.ID, models.WorkerIdle)

		job, _, err := svc.Submit(ctx, services.SubmitParams{Payload: models.Payload{"file_base64": "Zm9v"}, Async: true})
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() (models.JobStatus, error) {
			j, err := st.Job().Get(ctx, job.ID)
			if err != nil {
				return "", err
			}
			return j.Status, nil
		}, 2*time.Second).Should(Equal(models.JobFailed))

		ok, err := svc.Retry(ctx, job.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		Eventually(func() (models.JobStatus, error) {
			j, err := st.Job().Get(ctx, job.ID)
			if err != nil {
				return "", err
			}
			return j.Status, nil
		}, time.Second).Should(Equal(models.JobCompleted))
	})
})

type fakeProber struct{}

func (fakeProber) Probe(ctx context.Context, w *models.Worker) error { return nil }
