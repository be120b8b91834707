package workerclient_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/dispatch-agent/internal/models"
	"github.com/tupyy/dispatch-agent/pkg/dispatcherrors"
	"github.com/tupyy/dispatch-agent/pkg/workerclient"
)

func TestWorkerClient(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "WorkerClient Suite")
}

func payloadWithFile(backend string) models.Payload {
	return models.Payload{
		"file_base64": base64.StdEncoding.EncodeToString([]byte("pdf-bytes")),
		"file_name":   "doc.pdf",
		"backend":     backend,
		"lang":        "en",
	}
}

var _ = Describe("Client.Execute", func() {
	var worker *models.Worker
	var client *workerclient.Client

	BeforeEach(func() {
		client = workerclient.NewClient(nil)
	})

	It("posts a multipart request and decodes a 2xx JSON result", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/file_parse"))
			Expect(r.Header.Get("Content-Type")).To(ContainSubstring("multipart/form-data"))

			Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
			Expect(r.FormValue("backend")).To(Equal("pipeline"))
			Expect(r.FormValue("lang")).To(Equal("en"))

			f, _, err := r.FormFile("files")
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(map[string]any{"markdown": "ok"})
		}))
		defer srv.Close()

		worker = &models.Worker{ID: "w1", URL: srv.URL, Backend: "pipeline"}
		result, err := client.Execute(context.Background(), worker, payloadWithFile("auto"), "doc.pdf")
		Expect(err).NotTo(HaveOccurred())
		Expect(result["markdown"]).To(Equal("ok"))
	})

	It("substitutes the worker's backend when payload requests the empty string", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.ParseMultipartForm(1 << 20)).To(Succeed())
			Expect(r.FormValue("backend")).To(Equal("vlm"))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		worker = &models.Worker{ID: "w1", URL: srv.URL, Backend: "vlm"}
		payload := payloadWithFile("")
		_, err := client.Execute(context.Background(), worker, payload, "doc.pdf")
		Expect(err).NotTo(HaveOccurred())
	})

	It("classifies a non-2xx response as a RemoteError", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}))
		defer srv.Close()

		worker = &models.Worker{ID: "w1", URL: srv.URL, Backend: "pipeline"}
		_, err := client.Execute(context.Background(), worker, payloadWithFile("auto"), "doc.pdf")
		Expect(dispatcherrors.IsRemoteError(err)).To(BeTrue())
	})

	It("classifies a deadline exceeded transport failure as ExecutionTimeoutError", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(50 * time.Millisecond)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		worker = &models.Worker{ID: "w1", URL: srv.URL, Backend: "pipeline"}
		_, err := client.Execute(ctx, worker, payloadWithFile("auto"), "doc.pdf")
		Expect(dispatcherrors.IsExecutionTimeoutError(err)).To(BeTrue())
	})
})

var _ = Describe("Client.HealthCheck", func() {
	It("returns nil on a 200 response", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/health"))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := workerclient.NewClient(nil)
		worker := &models.Worker{ID: "w1", URL: srv.URL}
		Expect(client.HealthCheck(context.Background(), worker)).To(Succeed())
	})

	It("returns a RemoteError on a non-200 response", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		client := workerclient.NewClient(nil)
		worker := &models.Worker{ID: "w1", URL: srv.URL}
		err := client.HealthCheck(context.Background(), worker)
		Expect(dispatcherrors.IsRemoteError(err)).To(BeTrue())
	})
})
