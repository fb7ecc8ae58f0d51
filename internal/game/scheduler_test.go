package game

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestManualScheduler_Advance(t *testing.T) {
	ctx := context.Background()
	s := NewManualScheduler(testStart)

	var fired []string
	record := func(name string) Handler {
		return func(context.Context) {
			fired = append(fired, name+"@"+s.Now().Sub(testStart).String())
		}
	}

	s.Schedule("late", 30*time.Second, record("late"))
	s.Schedule("early", 10*time.Second, record("early"))
	s.Schedule("tie-1", 20*time.Second, record("tie-1"))
	s.Schedule("tie-2", 20*time.Second, record("tie-2"))
	s.Schedule("gone", 5*time.Second, record("gone"))
	testutil.AssertEqual(t, "cancel", s.Cancel("gone"), true)

	s.Advance(ctx, 25*time.Second)
	testutil.AssertEqual(t, "fired", strings.Join(fired, " "), "early@10s tie-1@20s tie-2@20s")
	testutil.AssertEqual(t, "clock", s.Now().Equal(testStart.Add(25*time.Second)), true)
	testutil.AssertEqual(t, "late pending", s.Pending("late"), true)

	s.Advance(ctx, 5*time.Second)
	testutil.AssertEqual(t, "fired", strings.Join(fired, " "), "early@10s tie-1@20s tie-2@20s late@30s")
	testutil.AssertEqual(t, "late pending", s.Pending("late"), false)
}

func TestManualScheduler_Replace(t *testing.T) {
	ctx := context.Background()
	s := NewManualScheduler(testStart)

	count := 0
	s.Schedule("job", time.Second, func(context.Context) { count += 100 })
	s.Schedule("job", 2*time.Second, func(context.Context) { count++ })

	s.Advance(ctx, time.Second)
	testutil.AssertEqual(t, "replaced task skipped", count, 0)

	s.Advance(ctx, time.Second)
	testutil.AssertEqual(t, "replacement ran", count, 1)
}

func TestManualScheduler_TaskSchedulesTask(t *testing.T) {
	ctx := context.Background()
	s := NewManualScheduler(testStart)

	var fired []string
	s.Schedule("first", time.Second, func(context.Context) {
		fired = append(fired, "first")
		s.Schedule("second", time.Second, func(context.Context) {
			fired = append(fired, "second")
		})
	})

	s.Advance(ctx, 3*time.Second)
	testutil.AssertEqual(t, "fired", strings.Join(fired, ","), "first,second")
}
