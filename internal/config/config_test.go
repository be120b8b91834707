package config_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tupyy/dispatch-agent/internal/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("ApplyDefaults", func() {
	It("fills every Dispatch field with its documented default", func() {
		cfg, err := config.NewConfigurationWithOptionsAndDefaults()
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Dispatch.TaskTimeout).To(Equal(300 * time.Second))
		Expect(cfg.Dispatch.QueueTimeout).To(Equal(600 * time.Second))
		Expect(cfg.Dispatch.MaxQueueSize).To(Equal(100))
		Expect(cfg.Dispatch.EnablePriority).To(BeTrue())
		Expect(cfg.Dispatch.MaxRetries).To(Equal(3))
		Expect(cfg.Dispatch.RetryDelay).To(Equal(5 * time.Second))
		Expect(cfg.Dispatch.HealthCheckInterval).To(Equal(30 * time.Second))
		Expect(cfg.Dispatch.InstanceTimeout).To(Equal(10 * time.Second))
	})

	It("lets options override defaults", func() {
		cfg, err := config.NewConfigurationWithOptionsAndDefaults(
			config.WithLogLevel("debug"),
			config.WithServer(config.Server{ServerMode: "prod", HTTPPort: 9090}),
		)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.LogLevel).To(Equal("debug"))
		Expect(cfg.Server.ServerMode).To(Equal("prod"))
		Expect(cfg.Server.HTTPPort).To(Equal(9090))
	})
})

var _ = Describe("Validate", func() {
	var cfg config.Configuration

	BeforeEach(func() {
		var err error
		cfg, err = config.NewConfigurationWithOptionsAndDefaults()
		Expect(err).NotTo(HaveOccurred())
	})

	It("accepts the documented defaults", func() {
		Expect(config.Validate(&cfg)).To(Succeed())
	})

	DescribeTable("rejects out-of-bound fields",
		func(mutate func(*config.Configuration), field string) {
			mutate(&cfg)
			err := config.Validate(&cfg)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(field))
		},
		Entry("task_timeout below 10s", func(c *config.Configuration) { c.Dispatch.TaskTimeout = 5 * time.Second }, "task_timeout"),
		Entry("queue_timeout below 60s", func(c *config.Configuration) { c.Dispatch.QueueTimeout = 30 * time.Second }, "queue_timeout"),
		Entry("max_queue_size below 1", func(c *config.Configuration) { c.Dispatch.MaxQueueSize = 0 }, "max_queue_size"),
		Entry("max_retries negative", func(c *config.Configuration) { c.Dispatch.MaxRetries = -1 }, "max_retries"),
		Entry("retry_delay below 1s", func(c *config.Configuration) { c.Dispatch.RetryDelay = 500 * time.Millisecond }, "retry_delay"),
		Entry("health_check_interval below 5s", func(c *config.Configuration) { c.Dispatch.HealthCheckInterval = time.Second }, "health_check_interval"),
		Entry("instance_timeout below 1s", func(c *config.Configuration) { c.Dispatch.InstanceTimeout = 500 * time.Millisecond }, "instance_timeout"),
	)
})

var _ = Describe("DebugMap", func() {
	It("never includes the JWT secret", func() {
		cfg, _ := config.NewConfigurationWithOptionsAndDefaults()
		cfg.Auth.JWTSecret = "super-secret"

		m := cfg.DebugMap()
		authSection, ok := m["auth"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(authSection).NotTo(HaveKey("jwt_secret"))
	})
})
