package qtm

import (
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBroadcast(t *testing.T) {
	Convey("Given a broadcast with two subscribers", t, func() {
		b := NewBroadcast()
		all := b.Subscribe("all", 16)
		even := b.Subscribe("even", 16, EveryNth(2))

		Convey("A run should reach each subscriber through its filters", func() {
			m := mustMachine(flipBits, 2)
			_, err := m.Execute([]int{0, 0}, 0, 4, b)
			So(err, ShouldBeNil)
			b.Close()

			var allSteps, evenSteps []int
			for s := range all {
				allSteps = append(allSteps, s.Step)
			}
			for s := range even {
				evenSteps = append(evenSteps, s.Step)
			}

			So(allSteps, ShouldResemble, []int{1, 2, 3, 4})
			So(evenSteps, ShouldResemble, []int{2, 4})

			metrics := b.Metrics()
			So(metrics.Delivered, ShouldEqual, int64(6))
			So(metrics.Filtered, ShouldEqual, int64(2))
			So(metrics.Dropped, ShouldEqual, int64(0))
			So(metrics.Subscribers, ShouldEqual, 0)
		})

		Convey("A full subscriber should not block the machine", func() {
			slow := b.Subscribe("slow", 1)

			m := mustMachine(flipBits, 2)
			_, err := m.Execute([]int{0, 0}, 0, 3, b)
			So(err, ShouldBeNil)

			So(len(slow), ShouldEqual, 1)
			So(b.Metrics().Dropped, ShouldEqual, int64(2))
		})

		Convey("Unsubscribing should close the channel", func() {
			b.Unsubscribe("all")
			_, open := <-all
			So(open, ShouldBeFalse)
			So(b.Metrics().Subscribers, ShouldEqual, 1)
		})

		Convey("Resubscribing under the same id should replace the channel", func() {
			replacement := b.Subscribe("all", 1)
			_, open := <-all
			So(open, ShouldBeFalse)
			So(b.Metrics().Subscribers, ShouldEqual, 2)

			b.OnStep(Snapshot{Step: 1})
			So(len(replacement), ShouldEqual, 1)
		})

		Convey("A closed broadcast should hand out closed channels", func() {
			b.Close()
			b.OnStep(Snapshot{Step: 1})

			_, open := <-b.Subscribe("late", 1)
			So(open, ShouldBeFalse)
		})
	})

	Convey("Given a subscriber that only wants halting snapshots", t, func() {
		b := NewBroadcast()
		done := b.Subscribe("done", 4, HaltingOnly)

		Convey("A consumer goroutine should receive the halting step only", func() {
			var (
				wg   sync.WaitGroup
				seen []Snapshot
			)

			wg.Add(1)
			go func() {
				defer wg.Done()
				for s := range done {
					seen = append(seen, s)
				}
			}()

			m := mustMachine(writeAndHalt, 2)
			outcome, err := m.Execute([]int{0, Blank}, 0, 10, b)
			So(err, ShouldBeNil)
			b.Close()
			wg.Wait()

			So(seen, ShouldHaveLength, 1)
			So(seen[0].Halting, ShouldBeTrue)
			So(seen[0].Step, ShouldEqual, outcome.Steps)
		})
	})
}
