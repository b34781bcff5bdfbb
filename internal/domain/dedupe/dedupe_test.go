package dedupe_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdplot/internal/domain/dedupe"
)

func TestDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is recorded twice", func() {
			first := d.SeenAndRecord(ctx, "radar_chart_Grace")
			second := d.SeenAndRecord(ctx, "radar_chart_Grace")

			Convey("Then only the second call reports it as seen", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
			})
		})

		Convey("When keys differ only in case", func() {
			So(d.SeenAndRecord(ctx, "/tmp/A.png"), ShouldBeFalse)

			Convey("Then they are distinct", func() {
				So(d.SeenAndRecord(ctx, "/tmp/a.png"), ShouldBeFalse)
			})
		})

		Convey("When many keys are recorded", func() {
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, strconv.Itoa(i))
			}

			Convey("Then none are forgotten", func() {
				So(d.SeenAndRecord(ctx, "0"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "999"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "1000"), ShouldBeFalse)
			})
		})
	})

	Convey("Given concurrent callers racing for the same keys", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins = map[string]int{}
		)
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					k := strconv.Itoa(i)
					if !d.SeenAndRecord(ctx, k) {
						mu.Lock()
						wins[k]++
						mu.Unlock()
					}
				}
			}()
		}
		wg.Wait()

		Convey("Then every key is claimed exactly once", func() {
			So(len(wins), ShouldEqual, 50)
			for _, n := range wins {
				So(n, ShouldEqual, 1)
			}
		})
	})
}
