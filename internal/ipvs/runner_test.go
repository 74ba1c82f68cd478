package ipvs

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CmdRunner", func() {
	var (
		runner   *CmdRunner
		commands [][]string
		fail     int
	)

	BeforeEach(func() {
		commands = nil
		fail = 0

		runner = NewCmdRunner("ipvsadm", 3, slog.New(slog.NewTextHandler(os.Stdout, nil)))
		runner.retryDelay = time.Millisecond
		runner.run = func(ctx context.Context, name string, args ...string) error {
			commands = append(commands, append([]string{name}, args...))
			if fail > 0 {
				fail--
				return errors.New("device or resource busy")
			}
			return nil
		}
	})

	It("should build the create-service command", func() {
		err := runner.CreateService(context.Background(), TCP, "10.0.0.1", 80, RoundRobin)
		Expect(err).NotTo(HaveOccurred())

		Expect(commands).To(HaveLen(1))
		Expect(commands[0]).To(Equal([]string{
			"ipvsadm", "-A", "-t", "10.0.0.1:80", "-s", "rr",
		}))
	})

	It("should build the add-destination command with masquerade forwarding", func() {
		err := runner.AddDestination(context.Background(), UDP, "10.0.0.1", 442, "10.1.1.2", 442)
		Expect(err).NotTo(HaveOccurred())

		Expect(commands).To(HaveLen(1))
		Expect(commands[0]).To(Equal([]string{
			"ipvsadm", "-a", "-u", "10.0.0.1:442", "-r", "10.1.1.2:442", "-m",
		}))
	})

	It("should build the remove-destination command", func() {
		err := runner.RemoveDestination(context.Background(), TCP, "10.0.0.1", 80, "10.1.1.3", 80)
		Expect(err).NotTo(HaveOccurred())

		Expect(commands).To(HaveLen(1))
		Expect(commands[0]).To(Equal([]string{
			"ipvsadm", "-d", "-t", "10.0.0.1:80", "-r", "10.1.1.3:80",
		}))
	})

	It("should retry transient failures up to the attempt limit", func() {
		fail = 2

		err := runner.CreateService(context.Background(), TCP, "10.0.0.1", 80, RoundRobin)
		Expect(err).NotTo(HaveOccurred())
		Expect(commands).To(HaveLen(3))
	})

	It("should surface the error once attempts are exhausted", func() {
		fail = 5

		err := runner.CreateService(context.Background(), TCP, "10.0.0.1", 80, RoundRobin)
		Expect(err).To(HaveOccurred())
		Expect(commands).To(HaveLen(3))
	})

	It("should make exactly one attempt when configured fire-and-forget", func() {
		single := NewCmdRunner("ipvsadm", 1, slog.New(slog.NewTextHandler(os.Stdout, nil)))
		single.run = runner.run
		fail = 1

		err := single.CreateService(context.Background(), TCP, "10.0.0.1", 80, RoundRobin)
		Expect(err).To(HaveOccurred())
		Expect(commands).To(HaveLen(1))
	})
})
