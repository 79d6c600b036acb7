package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zhuiying-client/internal/models"
	"github.com/zhuiying-client/internal/types"
)

// coinOp is one randomly generated ledger operation; positive amounts earn,
// negative amounts spend, zero adjusts through UpdateCoins.
type coinOp struct {
	Amount int
}

func genCoinOps() gopter.Gen {
	return gen.SliceOf(gen.IntRange(-50, 50).Map(func(v int) coinOp { return coinOp{Amount: v} }))
}

func TestUserStoreProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("balance never goes negative", prop.ForAll(
		func(initial int, ops []coinOp) bool {
			s := loggedInStore(initial)
			for _, op := range ops {
				switch {
				case op.Amount > 0:
					s.EarnCoins(op.Amount, "earn")
				case op.Amount < 0:
					s.SpendCoins(-op.Amount, "spend")
				default:
					s.UpdateCoins(-initial)
				}
				if s.UserCoins() < 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		genCoinOps(),
	))

	properties.Property("spend succeeds exactly when affordable", prop.ForAll(
		func(balance, amount int) bool {
			s := loggedInStore(balance)
			ok := s.SpendCoins(amount, "spend")
			if ok {
				return s.UserCoins() == balance-amount && len(s.State().CoinTransactions) == 1
			}
			return s.UserCoins() == balance && len(s.State().CoinTransactions) == 0
		},
		gen.IntRange(0, 200),
		gen.IntRange(1, 200),
	))

	properties.Property("ledger never exceeds the cap", prop.ForAll(
		func(n int) bool {
			s := loggedInStore(1000)
			for i := 0; i < n; i++ {
				if i%2 == 0 {
					s.EarnCoins(1, "earn")
				} else {
					s.SpendCoins(1, "spend")
				}
			}
			return len(s.State().CoinTransactions) == min(n, MaxLedgerEntries)
		},
		gen.IntRange(0, 250),
	))

	properties.Property("earn then spend restores the balance", prop.ForAll(
		func(balance, amount int) bool {
			s := loggedInStore(balance)
			s.EarnCoins(amount, "earn")
			return s.SpendCoins(amount, "spend") && s.UserCoins() == balance
		},
		gen.IntRange(0, 1000),
		gen.IntRange(1, 1000),
	))

	properties.Property("ad reward is unavailable until the cooldown passes", prop.ForAll(
		func(cooldownMinutes int) bool {
			clock := newFakeClock()
			s := loggedInStore(0, WithClock(clock.Now))
			s.SetAdReward(&models.AdReward{Coins: 10, Available: true})
			next := clock.now.Add(time.Duration(cooldownMinutes) * time.Minute)
			if !s.WatchAdForReward(10, &next) || s.CanWatchAd() {
				return false
			}
			clock.Advance(time.Duration(cooldownMinutes)*time.Minute - time.Second)
			if s.CanWatchAd() {
				return false
			}
			clock.Advance(time.Second)
			return s.CanWatchAd()
		},
		gen.IntRange(1, 24*60),
	))

	properties.TestingRun(t)
}

func TestTrackerStoreProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("batch start counts match", prop.ForAll(
		func(statuses []bool, pick []bool) bool {
			s := NewTrackerStore()
			list := make([]models.Tracker, len(statuses))
			for i, active := range statuses {
				status := types.StatusStopped
				if active {
					status = types.StatusActive
				}
				list[i] = sampleTracker(fmt.Sprintf("t%d", i), status)
			}
			s.SetList(list)

			var ids []string
			newlyActive := 0
			for i := range list {
				if i < len(pick) && pick[i] {
					ids = append(ids, list[i].ID)
					if !statuses[i] {
						newlyActive++
					}
				}
			}
			before := s.Stats()
			s.BatchStart(ids)
			after := s.Stats()

			return after.Total == before.Total &&
				after.Active == before.Active+newlyActive &&
				after.Active+after.Stopped == after.Total
		},
		gen.SliceOf(gen.Bool()),
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("unknown ids leave the list unchanged", prop.ForAll(
		func(n int, id string) bool {
			s := NewTrackerStore()
			list := make([]models.Tracker, n)
			for i := range list {
				list[i] = sampleTracker(fmt.Sprintf("t%d", i), types.StatusActive)
			}
			s.SetList(list)
			before := s.State().List

			unknown := "unknown-" + id
			s.StopTracker(unknown)
			s.RemoveTracker(unknown)
			s.BatchStop([]string{unknown})
			s.BatchRemove([]string{unknown})

			after := s.State().List
			if len(after) != len(before) {
				return false
			}
			for i := range after {
				if after[i] != before[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 20),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
