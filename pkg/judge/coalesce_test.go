package judge

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type slowJudge struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
}

func (s *slowJudge) Judge(ctx context.Context, req *Request) (*Verdict, error) {
	if s.calls.Add(1) == 1 {
		close(s.entered)
	}
	<-s.release
	if err := ctx.Err(); err != nil {
		s.ctxErr.Store(err)
		return nil, err
	}
	return &Verdict{Accepted: true, Explanation: req.UserAnswer}, nil
}

func TestCoalesce_SharesInFlightCall(t *testing.T) {
	slow := &slowJudge{entered: make(chan struct{}), release: make(chan struct{})}
	j := Coalesce(slow)
	req := &Request{UserAnswer: "pretty", CorrectAnswer: "beautiful"}

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Verdict, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := j.Judge(context.Background(), req)
			if err != nil {
				t.Errorf("Judge: %v", err)
				return
			}
			results[i] = v
		}()
	}
	<-slow.entered
	time.Sleep(50 * time.Millisecond)
	close(slow.release)
	wg.Wait()

	if c := slow.calls.Load(); c >= n {
		t.Errorf("calls = %d, want fewer than %d", c, n)
	}
	for i, v := range results {
		if v == nil || !v.Accepted || v.Explanation != "pretty" {
			t.Errorf("result[%d] = %+v", i, v)
		}
	}
	results[0].Explanation = "mutated"
	if results[1].Explanation != "pretty" {
		t.Error("callers share one Verdict value")
	}
}

func TestCoalesce_DistinctRequests(t *testing.T) {
	slow := &slowJudge{entered: make(chan struct{}), release: make(chan struct{})}
	close(slow.release)
	j := Coalesce(slow)

	j.Judge(context.Background(), &Request{UserAnswer: "a", CorrectAnswer: "b"})
	j.Judge(context.Background(), &Request{UserAnswer: "a", CorrectAnswer: "c"})
	if c := slow.calls.Load(); c != 2 {
		t.Errorf("calls = %d, want 2", c)
	}
}

func TestCoalesce_FirstCallerCancels(t *testing.T) {
	slow := &slowJudge{entered: make(chan struct{}), release: make(chan struct{})}
	j := Coalesce(slow)
	req := &Request{UserAnswer: "pretty", CorrectAnswer: "beautiful"}

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := j.Judge(leaderCtx, req)
		leaderErr <- err
	}()
	<-slow.entered

	type result struct {
		v   *Verdict
		err error
	}
	follower := make(chan result, 1)
	go func() {
		v, err := j.Judge(context.Background(), req)
		follower <- result{v, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Errorf("leader err = %v, want context.Canceled", err)
	}
	close(slow.release)

	got := <-follower
	if got.err != nil || got.v == nil || !got.v.Accepted {
		t.Errorf("follower = %+v, %v; want the shared verdict", got.v, got.err)
	}
	if err := slow.ctxErr.Load(); err != nil {
		t.Errorf("shared call saw %v after the first caller left", err)
	}
}

func TestCoalesce_KeepsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	j := Coalesce(judgeFunc(func(ctx context.Context, _ *Request) (*Verdict, error) {
		deadline, ok = ctx.Deadline()
		return &Verdict{}, nil
	}))
	want := time.Now().Add(time.Minute)
	ctx, cancel := context.WithDeadline(context.Background(), want)
	defer cancel()
	if _, err := j.Judge(ctx, &Request{UserAnswer: "a"}); err != nil {
		t.Fatalf("Judge: %v", err)
	}
	if !ok || !deadline.Equal(want) {
		t.Errorf("deadline = %v (%v), want %v", deadline, ok, want)
	}
}

func TestCoalesce_NilVerdict(t *testing.T) {
	j := Coalesce(judgeFunc(func(context.Context, *Request) (*Verdict, error) { return nil, nil }))
	if _, err := j.Judge(context.Background(), &Request{}); !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

type judgeFunc func(context.Context, *Request) (*Verdict, error)

func (f judgeFunc) Judge(ctx context.Context, req *Request) (*Verdict, error) { return f(ctx, req) }
