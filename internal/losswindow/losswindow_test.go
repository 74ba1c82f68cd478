package losswindow_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/lvs-monitor/internal/losswindow"
)

func TestLossWindow(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LossWindow Suite")
}

var _ = Describe("History", func() {
	It("should never exceed its capacity", func() {
		h := losswindow.NewHistory(3)

		for i := 0; i < 10; i++ {
			h.Record(i * 10)
			Expect(h.Len()).To(BeNumerically("<=", 3))
		}
	})

	It("should evict the oldest sample first", func() {
		h := losswindow.NewHistory(3)

		h.Record(10)
		h.Record(20)
		h.Record(30)
		h.Record(40)

		Expect(h.Samples()).To(Equal([]int{20, 30, 40}))
	})

	It("should retain exactly the most recent samples", func() {
		h := losswindow.NewHistory(5)

		for i := 1; i <= 20; i++ {
			h.Record(i)
		}

		Expect(h.Samples()).To(Equal([]int{16, 17, 18, 19, 20}))
	})

	It("should average an empty window to zero", func() {
		h := losswindow.NewHistory(60)
		Expect(h.Average()).To(Equal(0))
	})

	It("should truncate the mean toward zero", func() {
		h := losswindow.NewHistory(3)

		h.Record(0)
		h.Record(0)
		h.Record(100)

		// 100/3 = 33.33 truncates to 33
		Expect(h.Average()).To(Equal(33))
	})

	It("should clamp samples to the valid range", func() {
		h := losswindow.NewHistory(2)

		h.Record(-5)
		h.Record(250)

		Expect(h.Samples()).To(Equal([]int{0, 100}))
	})

	It("should treat a capacity below one as one", func() {
		h := losswindow.NewHistory(0)

		h.Record(40)
		h.Record(60)

		Expect(h.Samples()).To(Equal([]int{60}))
	})

	DescribeTable("averages",
		func(samples []int, want int) {
			h := losswindow.NewHistory(len(samples))
			for _, s := range samples {
				h.Record(s)
			}
			Expect(h.Average()).To(Equal(want))
		},
		Entry("all zero", []int{0, 0, 0}, 0),
		Entry("all lost", []int{100, 100, 100}, 100),
		Entry("mixed", []int{0, 100, 100}, 66),
		Entry("single sample", []int{7}, 7),
	)
})
