package rebalancer_test

import (
	"time"

	"github.com/Sokpao/Agent-TAC/config"
	. "github.com/Sokpao/Agent-TAC/rebalancer"
	"github.com/Sokpao/Agent-TAC/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type fakeMarket struct {
	quotes map[int]types.Quote
	own    map[int]int
}

func (m *fakeMarket) Quote(auction int) (types.Quote, bool) {
	q, ok := m.quotes[auction]
	return q, ok
}

func (m *fakeMarket) Own(auction int) int {
	return m.own[auction]
}

var _ = Describe("Rebalancer", func() {
	var (
		rules      config.Rules
		catalog    *types.Catalog
		rebalancer *Rebalancer
		market     *fakeMarket
		alloc      types.Allocation
		clients    []types.Preferences
	)

	late := 60 * time.Second

	id := func(category types.Category, typ types.AuctionType, day int) int {
		auctionID, ok := catalog.AuctionFor(category, typ, day)
		Ω(ok).Should(BeTrue())
		return auctionID
	}

	auction := func(category types.Category, typ types.AuctionType, day int) types.Auction {
		a, _ := catalog.Auction(id(category, typ, day))
		return a
	}

	ask := func(auctionID int, price float64) {
		market.quotes[auctionID] = types.Quote{Auction: auctionID, AskPrice: price}
	}

	BeforeEach(func() {
		rules = config.DefaultRules.Copy()
		catalog = types.StandardCatalog(rules.Days)
		market = &fakeMarket{quotes: map[int]types.Quote{}, own: map[int]int{}}
		alloc = types.Allocation{}
		clients = []types.Preferences{
			{Arrival: 2, Departure: 4, HotelValue: 90},
			{Arrival: 2, Departure: 5, HotelValue: 60},
			{Arrival: 3, Departure: 5, HotelValue: 80},
			{Arrival: 1, Departure: 4, HotelValue: 50},
		}
	})

	JustBeforeEach(func() {
		var err error
		rebalancer, err = New(rules, catalog, clients)
		Ω(err).ShouldNot(HaveOccurred())
	})

	Context("an inbound flight much dearer than the next day's", func() {
		var (
			day2, day3           int
			goodNight, cheapNight int
		)

		BeforeEach(func() {
			day2 = id(types.CategoryFlight, types.TypeInflight, 2)
			day3 = id(types.CategoryFlight, types.TypeInflight, 3)
			goodNight = id(types.CategoryHotel, types.TypeGoodHotel, 2)
			cheapNight = id(types.CategoryHotel, types.TypeCheapHotel, 2)

			ask(day2, 500)
			ask(day3, 350)
			alloc[day2] = 2
			alloc[day3] = 1
			alloc[goodNight] = 1
			alloc[cheapNight] = 3
		})

		It("moves the need to the next day and releases the vacated night, good rooms first", func() {
			result := rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market)

			Ω(result.Migrated).Should(BeTrue())
			Ω(result.From).Should(Equal(day2))
			Ω(result.To).Should(Equal(day3))
			Ω(result.Quantity).Should(Equal(2))
			Ω(result.Changed).Should(Equal([]int{day2, day3, goodNight, cheapNight}))

			Ω(alloc[day2]).Should(Equal(0))
			Ω(alloc[day3]).Should(Equal(3))
			Ω(alloc[goodNight]).Should(Equal(0))
			Ω(alloc[cheapNight]).Should(Equal(2))
		})

		It("only moves the outstanding need", func() {
			market.own[day2] = 1
			alloc[day2] = 3
			rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market)
			Ω(alloc[day2]).Should(Equal(1))
			Ω(alloc[day3]).Should(Equal(3))
		})

		It("never releases rooms that are already owned", func() {
			market.own[goodNight] = 1
			rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market)
			Ω(alloc[goodNight]).Should(Equal(1))
			Ω(alloc[cheapNight]).Should(Equal(1))
		})

		It("leaves everything alone when the saving only matches the penalty", func() {
			ask(day3, 400)
			before := alloc.Copy()
			result := rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market)
			Ω(result.Considered).Should(BeTrue())
			Ω(result.Migrated).Should(BeFalse())
			Ω(result.To).Should(Equal(day2))
			Ω(alloc).Should(Equal(before))
		})

		It("does not look before the time threshold", func() {
			result := rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, 3*time.Minute, alloc, market)
			Ω(result.Considered).Should(BeFalse())
			Ω(alloc[day2]).Should(Equal(2))
		})

		It("does not move to a closed auction", func() {
			market.quotes[day3] = types.Quote{Auction: day3, AskPrice: 350, Closed: true}
			Ω(rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market).Migrated).Should(BeFalse())
		})

		It("does not move without a quote for the adjacent day", func() {
			delete(market.quotes, day3)
			Ω(rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market).Migrated).Should(BeFalse())
		})

		Context("when fewer clients can move than tickets are needed", func() {
			BeforeEach(func() {
				clients = clients[:1]
			})

			It("moves nothing", func() {
				before := alloc.Copy()
				result := rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market)
				Ω(result.Considered).Should(BeTrue())
				Ω(result.Migrated).Should(BeFalse())
				Ω(alloc).Should(Equal(before))
			})
		})

		Context("when a client would be left without a night", func() {
			BeforeEach(func() {
				clients = []types.Preferences{
					{Arrival: 2, Departure: 3, HotelValue: 90},
				}
				alloc[day2] = 1
			})

			It("stays put", func() {
				Ω(rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 1, late, alloc, market).Migrated).Should(BeFalse())
				Ω(alloc[day2]).Should(Equal(1))
			})
		})

		Context("with a single two night stay", func() {
			BeforeEach(func() {
				clients = []types.Preferences{
					{Arrival: 2, Departure: 4, HotelValue: 90},
				}
				alloc[day2] = 1
				alloc[day3] = 0
			})

			It("moves it once and then refuses to shorten it again", func() {
				Ω(rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 1, late, alloc, market).Migrated).Should(BeTrue())
				Ω(alloc[day3]).Should(Equal(1))

				day4 := id(types.CategoryFlight, types.TypeInflight, 4)
				ask(day3, 700)
				ask(day4, 200)
				result := rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 3), 1, late, alloc, market)
				Ω(result.Migrated).Should(BeFalse())
				Ω(alloc[day3]).Should(Equal(1))
				Ω(alloc[day4]).Should(Equal(0))
			})
		})

		Context("when the adjacent day is protected", func() {
			BeforeEach(func() {
				rules.Rebalance.ProtectedDays = []int{3}
			})

			It("stays put", func() {
				Ω(rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market).Migrated).Should(BeFalse())
				Ω(alloc[day2]).Should(Equal(2))
			})
		})

		Context("draining one room at a time", func() {
			BeforeEach(func() {
				rules.Rebalance.DrainOrder = []config.DrainStep{
					{Hotel: "cheap", Strategy: config.DrainOne},
					{Hotel: "good", Strategy: config.DrainAll},
				}
			})

			It("follows the configured order and strategy", func() {
				rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 2), 2, late, alloc, market)
				Ω(alloc[cheapNight]).Should(Equal(2))
				Ω(alloc[goodNight]).Should(Equal(0))
			})
		})
	})

	It("moves departures a day earlier and releases the night before", func() {
		day4 := id(types.CategoryFlight, types.TypeOutflight, 4)
		day3 := id(types.CategoryFlight, types.TypeOutflight, 3)
		night := id(types.CategoryHotel, types.TypeCheapHotel, 3)
		ask(day4, 700)
		ask(day3, 300)
		alloc[day4] = 1
		alloc[night] = 1

		result := rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeOutflight, 4), 1, late, alloc, market)
		Ω(result.Migrated).Should(BeTrue())
		Ω(alloc[day4]).Should(Equal(0))
		Ω(alloc[day3]).Should(Equal(1))
		Ω(alloc[night]).Should(Equal(0))
	})

	It("never moves an arrival onto the last day", func() {
		day4 := id(types.CategoryFlight, types.TypeInflight, 4)
		ask(day4, 900)
		alloc[day4] = 1
		Ω(rebalancer.Rebalance(auction(types.CategoryFlight, types.TypeInflight, 4), 1, late, alloc, market).Migrated).Should(BeFalse())
	})

	It("ignores hotels and entertainment", func() {
		hotel := auction(types.CategoryHotel, types.TypeGoodHotel, 2)
		Ω(rebalancer.Applies(hotel, 1, late)).Should(BeFalse())
	})
})
