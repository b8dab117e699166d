package bidsync_test

import (
	"errors"

	. "github.com/Sokpao/Agent-TAC/bidsync"
	"github.com/Sokpao/Agent-TAC/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type fakePlacer struct {
	submitted []types.Bid
	replaced  []types.Bid
	err       error
}

func (f *fakePlacer) SubmitBid(bid types.Bid) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, bid)
	return nil
}

func (f *fakePlacer) ReplaceBid(old *types.Bid, bid types.Bid) error {
	if f.err != nil {
		return f.err
	}
	f.replaced = append(f.replaced, bid)
	return nil
}

var _ = Describe("Synchronizer", func() {
	var (
		sync   *Synchronizer
		points types.BidPoints
	)

	activeWith := func(pts ...types.BidPoint) *types.Bid {
		bid := types.NewBid(7)
		bid.ID = "bid-1"
		bid.Points = pts
		return &bid
	}

	BeforeEach(func() {
		sync = New(3)
		points = types.BidPoints{{Quantity: 2, Price: 150}}
	})

	Context("without an active bid", func() {
		It("submits", func() {
			action := sync.Reconcile(7, points, nil)
			Ω(action.Kind).Should(Equal(Submit))
			Ω(action.Auction).Should(Equal(7))
			Ω(action.Bid.Auction).Should(Equal(7))
			Ω(action.Bid.Points).Should(Equal(points))
			Ω(action.Previous).Should(BeNil())
		})

		It("never submits twice while the first submission is pending", func() {
			sync.Reconcile(7, points, nil)
			Ω(sync.Pending(7)).Should(BeTrue())
			Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Noop))
		})

		It("submits again once the status report is overdue", func() {
			Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Submit))
			for i := 0; i < 3; i++ {
				Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Noop))
			}
			Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Submit))
			Ω(sync.Stats().Submitted).Should(Equal(2))
			Ω(sync.Stats().Expired).Should(Equal(1))
			Ω(sync.Pending(7)).Should(BeTrue())
		})

		It("keeps waiting after a resubmission", func() {
			sync = New(1)
			Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Submit))
			Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Noop))
			Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Submit))
			Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Noop))
		})

		It("submits again once the pending bid is forgotten", func() {
			sync.Reconcile(7, points, nil)
			sync.Forget(7)
			Ω(sync.Reconcile(7, points, nil).Kind).Should(Equal(Submit))
		})

		It("does nothing when there is nothing to bid for", func() {
			Ω(sync.Reconcile(7, nil, nil).Kind).Should(Equal(Noop))
			Ω(sync.Reconcile(7, types.BidPoints{{Quantity: 0, Price: 10}}, nil).Kind).Should(Equal(Noop))
		})

		It("copies the points", func() {
			action := sync.Reconcile(7, points, nil)
			points[0].Price = 999
			Ω(action.Bid.Points[0].Price).Should(Equal(150.0))
		})
	})

	Context("with an active bid", func() {
		It("does nothing when the points match", func() {
			active := activeWith(types.BidPoint{Quantity: 2, Price: 150})
			Ω(sync.Reconcile(7, points, active).Kind).Should(Equal(Noop))
		})

		It("replaces when the quantity differs", func() {
			active := activeWith(types.BidPoint{Quantity: 3, Price: 150})
			action := sync.Reconcile(7, points, active)
			Ω(action.Kind).Should(Equal(Replace))
			Ω(action.Previous).Should(Equal(active))
			Ω(action.Bid.Quantity()).Should(Equal(2))
		})

		It("replaces when only the price moved", func() {
			active := activeWith(types.BidPoint{Quantity: 2, Price: 120})
			Ω(sync.Reconcile(7, points, active).Kind).Should(Equal(Replace))
		})

		It("clears the pending mark", func() {
			sync.Reconcile(7, points, nil)
			sync.Reconcile(7, points, activeWith(types.BidPoint{Quantity: 2, Price: 150}))
			Ω(sync.Pending(7)).Should(BeFalse())
		})

		It("reflects a zeroed target rather than the previous one", func() {
			active := activeWith(types.BidPoint{Quantity: 2, Price: 300})
			action := sync.Reconcile(7, nil, active)
			Ω(action.Kind).Should(Equal(Replace))
			Ω(action.Bid.Quantity()).Should(Equal(0))
		})
	})

	Describe("Keep", func() {
		It("leaves a correctly sized bid alone", func() {
			active := activeWith(types.BidPoint{Quantity: 2, Price: 250})
			Ω(sync.Keep(7, 2, 300, active).Kind).Should(Equal(Noop))
		})

		It("resizes at the given price", func() {
			active := activeWith(types.BidPoint{Quantity: 2, Price: 250})
			action := sync.Keep(7, 1, 250, active)
			Ω(action.Kind).Should(Equal(Replace))
			Ω(action.Bid.Points).Should(Equal(types.BidPoints{{Quantity: 1, Price: 250}}))
		})

		It("never starts a bid", func() {
			Ω(sync.Keep(7, 2, 250, nil).Kind).Should(Equal(Noop))
		})
	})

	Describe("Withdraw", func() {
		It("zeroes a live bid", func() {
			action := sync.Withdraw(7, activeWith(types.BidPoint{Quantity: 1, Price: 700}))
			Ω(action.Kind).Should(Equal(Replace))
			Ω(action.Bid.Points).Should(Equal(types.BidPoints{{Quantity: 0, Price: 0}}))
		})

		It("is a no-op without one", func() {
			Ω(sync.Withdraw(7, nil).Kind).Should(Equal(Noop))
			Ω(sync.Withdraw(7, activeWith(types.BidPoint{Quantity: 0, Price: 0})).Kind).Should(Equal(Noop))
		})
	})

	Describe("Apply", func() {
		var placer *fakePlacer

		BeforeEach(func() {
			placer = &fakePlacer{}
		})

		It("submits and replaces through the placer", func() {
			Ω(sync.Apply(placer, sync.Reconcile(7, points, nil))).Should(Succeed())
			Ω(placer.submitted).Should(HaveLen(1))

			active := activeWith(types.BidPoint{Quantity: 1, Price: 100})
			Ω(sync.Apply(placer, sync.Reconcile(7, points, active))).Should(Succeed())
			Ω(placer.replaced).Should(HaveLen(1))
		})

		It("forgets a submission the placer refused", func() {
			placer.err = errors.New("boom")
			err := sync.Apply(placer, sync.Reconcile(7, points, nil))
			Ω(err).Should(MatchError(ContainSubstring("boom")))
			Ω(errors.Is(err, placer.err)).Should(BeTrue())
			Ω(sync.Pending(7)).Should(BeFalse())
		})

		It("ignores noops", func() {
			Ω(sync.Apply(placer, Action{Kind: Noop, Auction: 7})).Should(Succeed())
			Ω(placer.submitted).Should(BeEmpty())
		})
	})

	It("counts what it decided", func() {
		sync.Reconcile(7, points, nil)
		sync.Reconcile(7, points, nil)
		sync.Reconcile(8, points, activeWith(types.BidPoint{Quantity: 1, Price: 1}))
		Ω(sync.Stats()).Should(Equal(Stats{Submitted: 1, Replaced: 1, Noops: 1}))

		sync.Reset()
		Ω(sync.Stats()).Should(Equal(Stats{}))
		Ω(sync.Pending(7)).Should(BeFalse())
	})
})
