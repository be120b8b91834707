package pool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/internal/pool"
)

func TestPool(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pool Suite")
}

// fakeProber returns a scripted outcome per worker id, defaulting to success.
type fakeProber struct {
	fail map[string]error
}

func (f *fakeProber) Probe(_ context.Context, w *models.Worker) error {
	if f.fail == nil {
		return nil
	}
	return f.fail[w.ID]
}

var _ = Describe("Pool", func() {
	var p *pool.Pool
	var prober *fakeProber

	BeforeEach(func() {
		prober = &fakeProber{fail: map[string]error{}}
		p = pool.New(prober)
	})

	Describe("Add/Remove", func() {
		It("registers a worker offline and enabled", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			Expect(w.Status).To(Equal(models.WorkerOffline))
			Expect(w.Enabled).To(BeTrue())
			Expect(p.Get(w.ID)).NotTo(BeNil())
		})

		It("refuses to remove a worker carrying a job", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetCurrentJob(w.ID, "job-1")

			err := p.Remove(w.ID)
			Expect(pool.IsBusy(err)).To(BeTrue())
		})

		It("removes an idle worker", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			Expect(p.Remove(w.ID)).To(Succeed())
			Expect(p.Get(w.ID)).To(BeNil())
		})
	})

	Describe("Update", func() {
		It("refuses a url change while busy", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.TryBind(w.ID, "job-1") // idle -> busy requires first being idle
			// TryBind refuses an offline worker, so force idle directly.
			p.SetStatus(w.ID, models.WorkerIdle)
			Expect(p.TryBind(w.ID, "job-1")).To(BeTrue())

			newURL := "http://w1-new:8000"
			_, err := p.Update(w.ID, pool.UpdateFields{URL: &newURL})
			Expect(pool.IsBusy(err)).To(BeTrue())
		})

		It("allows a name change while busy", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetStatus(w.ID, models.WorkerIdle)
			Expect(p.TryBind(w.ID, "job-1")).To(BeTrue())

			newName := "renamed"
			updated, err := p.Update(w.ID, pool.UpdateFields{Name: &newName})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("renamed"))
		})
	})

	Describe("Enable/Disable", func() {
		It("disable forces status to disabled regardless of current state", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetStatus(w.ID, models.WorkerIdle)
			Expect(p.Disable(w.ID)).To(Succeed())

			got := p.Get(w.ID)
			Expect(got.Enabled).To(BeFalse())
			Expect(got.Status).To(Equal(models.WorkerDisabled))
		})

		It("enable marks idle, pending the next probe", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			Expect(p.Enable(w.ID)).To(Succeed())
			Expect(p.Get(w.ID).Status).To(Equal(models.WorkerIdle))
		})
	})

	Describe("SelectIdle", func() {
		It("returns the first enabled, idle worker in insertion order", func() {
			w1 := p.Add("http://w1:8000", "w1", "pipeline")
			w2 := p.Add("http://w2:8000", "w2", "pipeline")
			p.SetStatus(w1.ID, models.WorkerBusy)
			p.SetStatus(w2.ID, models.WorkerIdle)

			Expect(p.SelectIdle().ID).To(Equal(w2.ID))
		})

		It("skips disabled workers even if marked idle", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetStatus(w.ID, models.WorkerIdle)
			_ = p.Disable(w.ID)

			Expect(p.SelectIdle()).To(BeNil())
		})

		It("returns nil when no worker is eligible", func() {
			Expect(p.SelectIdle()).To(BeNil())
		})
	})

	Describe("TryBind/Release", func() {
		It("binds only an idle, enabled worker and rejects a second bind", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetStatus(w.ID, models.WorkerIdle)

			Expect(p.TryBind(w.ID, "job-1")).To(BeTrue())
			Expect(p.TryBind(w.ID, "job-2")).To(BeFalse())
		})

		It("release returns an enabled worker to idle and clears the job id", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetStatus(w.ID, models.WorkerIdle)
			_ = p.TryBind(w.ID, "job-1")

			p.Release(w.ID)
			got := p.Get(w.ID)
			Expect(got.Status).To(Equal(models.WorkerIdle))
			Expect(got.CurrentJobID).To(BeEmpty())
		})

		It("release on a disabled worker leaves it disabled", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetStatus(w.ID, models.WorkerIdle)
			_ = p.TryBind(w.ID, "job-1")
			_ = p.Disable(w.ID)

			p.Release(w.ID)
			Expect(p.Get(w.ID).Status).To(Equal(models.WorkerDisabled))
		})
	})

	Describe("HealthCheck", func() {
		It("promotes an offline worker to idle on a successful probe", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")

			p.HealthCheck(context.Background(), time.Second)
			Eventually(func() models.WorkerStatus {
				return p.Get(w.ID).Status
			}).Should(Equal(models.WorkerIdle))
		})

		It("demotes an idle worker with no job to offline on a failed probe", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetStatus(w.ID, models.WorkerIdle)
			prober.fail[w.ID] = errors.New("boom")

			p.HealthCheck(context.Background(), time.Second)
			Eventually(func() models.WorkerStatus {
				return p.Get(w.ID).Status
			}).Should(Equal(models.WorkerOffline))
		})

		It("never overwrites the status of a worker carrying a job", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			p.SetStatus(w.ID, models.WorkerBusy)
			p.SetCurrentJob(w.ID, "job-1")
			prober.fail[w.ID] = errors.New("boom")

			p.HealthCheck(context.Background(), time.Second)
			Consistently(func() models.WorkerStatus {
				return p.Get(w.ID).Status
			}).Should(Equal(models.WorkerBusy))
		})

		It("skips disabled workers entirely", func() {
			w := p.Add("http://w1:8000", "w1", "pipeline")
			_ = p.Disable(w.ID)

			p.HealthCheck(context.Background(), time.Second)
			Consistently(func() models.WorkerStatus {
				return p.Get(w.ID).Status
			}).Should(Equal(models.WorkerDisabled))
		})
	})
})
