package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/angeloszaimis/lvs-monitor/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

const validConfig = `
virtual:
  address: "10.0.0.1"

backends:
  - "10.1.1.2"
  - "10.1.1.3"

services:
  tcp: ["80", "443", "11000-12000"]
  udp: ["442", "55665"]

monitor:
  loss_threshold: 5
  window_samples: 60
  interval: "1s"
  probe_timeout: "1s"
  scheduler: "rr"
  driver: "sequential"

server:
  address: ":8080"
  environment: "dev"

logging:
  level: "info"
`

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	writeConfig := func(content string) {
		configPath := filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(configPath, []byte(content), 0644)).To(Succeed())
		Expect(os.Chdir(tempDir)).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		viper.Reset()
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("with a valid config file", func() {
			BeforeEach(func() {
				writeConfig(validConfig)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).NotTo(BeNil())
			})

			It("should parse the backend list", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Backends).To(Equal([]string{"10.1.1.2", "10.1.1.3"}))
			})

			It("should parse the port specifications", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Services.TCP).To(Equal([]string{"80", "443", "11000-12000"}))
				Expect(cfg.Services.UDP).To(Equal([]string{"442", "55665"}))
			})

			It("should parse the monitor settings", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Monitor.LossThreshold).To(Equal(5))
				Expect(cfg.Monitor.WindowSamples).To(Equal(60))
				Expect(cfg.Monitor.Driver).To(Equal("sequential"))
			})

			It("should fall back to ipvsadm defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Ipvsadm.Path).To(Equal("ipvsadm"))
				Expect(cfg.Ipvsadm.Retries).To(Equal(1))
			})
		})

		Context("with an invalid config file", func() {
			It("should reject an empty backend list", func() {
				writeConfig(`
virtual:
  address: "10.0.0.1"
backends: []
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a malformed port token", func() {
				writeConfig(`
virtual:
  address: "10.0.0.1"
backends: ["10.1.1.2"]
services:
  tcp: ["80", "not-a-port"]
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a missing virtual address", func() {
				writeConfig(`
backends: ["10.1.1.2"]
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject a bad probe interval", func() {
				writeConfig(`
virtual:
  address: "10.0.0.1"
backends: ["10.1.1.2"]
monitor:
  interval: "fast"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject an unknown scheduler", func() {
				writeConfig(`
virtual:
  address: "10.0.0.1"
backends: ["10.1.1.2"]
monitor:
  scheduler: "fifo"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject an unknown driver", func() {
				writeConfig(`
virtual:
  address: "10.0.0.1"
backends: ["10.1.1.2"]
monitor:
  driver: "eager"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})

		Context("without a config file", func() {
			BeforeEach(func() {
				Expect(os.Chdir(tempDir)).To(Succeed())
			})

			It("should fail: the backend list cannot be defaulted", func() {
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
