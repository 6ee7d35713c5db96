package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/famomatic/playparse/internal/types"
)

func goFan(task func()) error {
	go task()
	return nil
}

func TestRaceEmptyFieldFailsImmediately(t *testing.T) {
	var wins atomic.Int32
	err := Race(context.Background(), goFan, nil, func(*types.Result) { wins.Add(1) })
	if !errors.Is(err, types.ErrEmptyAggregate) {
		t.Fatalf("Race() error = %v, want ErrEmptyAggregate", err)
	}
	if wins.Load() != 0 {
		t.Fatalf("onWin called for empty field")
	}
}

func TestRaceSingleWinnerAmongSeveralSuccesses(t *testing.T) {
	var wins atomic.Int32
	var winner atomic.Value
	succeed := func(name string, delay time.Duration) Candidate {
		return Candidate{Name: name, Run: func(ctx context.Context, done func(*types.Result, error)) {
			time.Sleep(delay)
			done(&types.Result{URL: "http://cdn/" + name, SourceName: name}, nil)
		}}
	}
	err := Race(context.Background(), goFan, []Candidate{
		succeed("slow", 60*time.Millisecond),
		succeed("fast", 0),
		succeed("mid", 30*time.Millisecond),
	}, func(res *types.Result) {
		wins.Add(1)
		winner.Store(res.SourceName)
	})
	if err != nil {
		t.Fatalf("Race() error = %v", err)
	}
	if wins.Load() != 1 {
		t.Fatalf("wins = %d, want 1", wins.Load())
	}
	if winner.Load() != "fast" {
		t.Fatalf("winner = %v, want fast", winner.Load())
	}
}

func TestRaceWaitsForAllBeforeFailing(t *testing.T) {
	var finished atomic.Int32
	fail := func(name string, delay time.Duration) Candidate {
		return Candidate{Name: name, Run: func(ctx context.Context, done func(*types.Result, error)) {
			time.Sleep(delay)
			finished.Add(1)
			done(nil, errors.New(name+" failed"))
		}}
	}
	err := Race(context.Background(), goFan, []Candidate{
		fail("a", 0), fail("b", 40*time.Millisecond), fail("c", 20*time.Millisecond),
	}, func(*types.Result) { t.Errorf("unexpected win") })

	var all *AllResolversFailedError
	if !errors.As(err, &all) {
		t.Fatalf("Race() error = %v, want AllResolversFailedError", err)
	}
	if len(all.Attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(all.Attempts))
	}
	if finished.Load() != 3 {
		t.Fatalf("finished = %d, want all 3 before failure", finished.Load())
	}
}

func TestRaceSuccessAfterFailuresStillWins(t *testing.T) {
	var wins atomic.Int32
	err := Race(context.Background(), goFan, []Candidate{
		{Name: "bad", Run: func(ctx context.Context, done func(*types.Result, error)) { done(nil, errors.New("x")) }},
		{Name: "empty", Run: func(ctx context.Context, done func(*types.Result, error)) { done(nil, nil) }},
		{Name: "late", Run: func(ctx context.Context, done func(*types.Result, error)) {
			time.Sleep(20 * time.Millisecond)
			done(&types.Result{URL: "u"}, nil)
		}},
	}, func(*types.Result) { wins.Add(1) })
	if err != nil {
		t.Fatalf("Race() error = %v", err)
	}
	if wins.Load() != 1 {
		t.Fatalf("wins = %d, want 1", wins.Load())
	}
}

func TestRaceAsyncCompletionAndDuplicateDone(t *testing.T) {
	err := Race(context.Background(), goFan, []Candidate{
		{Name: "async", Run: func(ctx context.Context, done func(*types.Result, error)) {
			go func() {
				time.Sleep(10 * time.Millisecond)
				done(nil, errors.New("first"))
				done(&types.Result{URL: "ignored"}, nil)
			}()
		}},
	}, func(*types.Result) { t.Errorf("duplicate done must be ignored") })
	var all *AllResolversFailedError
	if !errors.As(err, &all) || len(all.Attempts) != 1 {
		t.Fatalf("Race() error = %v, want one failed attempt", err)
	}
}

func TestRaceRecoversPanicsAndFanErrors(t *testing.T) {
	calls := 0
	fan := func(task func()) error {
		calls++
		if calls == 2 {
			return errors.New("pool closed")
		}
		go task()
		return nil
	}
	err := Race(context.Background(), fan, []Candidate{
		{Name: "panics", Run: func(ctx context.Context, done func(*types.Result, error)) { panic("boom") }},
		{Name: "rejected", Run: func(ctx context.Context, done func(*types.Result, error)) {
			t.Errorf("rejected candidate must not run")
		}},
	}, func(*types.Result) {})

	var all *AllResolversFailedError
	if !errors.As(err, &all) || len(all.Attempts) != 2 {
		t.Fatalf("Race() error = %v, want two failed attempts", err)
	}
	var pe *PanicError
	found := false
	for _, a := range all.Attempts {
		if errors.As(a.Err, &pe) {
			found = true
		}
	}
	if !found {
		t.Fatalf("attempts = %v, want a PanicError", all.Attempts)
	}
}

func TestRaceStopsWaitingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := Race(ctx, goFan, []Candidate{
		{Name: "never", Run: func(ctx context.Context, done func(*types.Result, error)) {}},
	}, func(*types.Result) {})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Race() error = %v, want context.Canceled", err)
	}
}

func TestRacePassesResolverName(t *testing.T) {
	err := Race(context.Background(), goFan, []Candidate{
		{Name: "named", Run: func(ctx context.Context, done func(*types.Result, error)) {
			name, _ := types.ResolverNameFromContext(ctx)
			if name != "named" {
				t.Errorf("resolver name = %q", name)
			}
			done(&types.Result{URL: "u"}, nil)
		}},
	}, func(*types.Result) {})
	if err != nil {
		t.Fatalf("Race() error = %v", err)
	}
}
