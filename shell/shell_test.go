package shell

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"ai_content_optimizer/form"
	"ai_content_optimizer/generator"
	"ai_content_optimizer/options"
)

type stubGenerator struct {
	mu      sync.Mutex
	calls   int
	lastReq generator.Request
	res     generator.Result
	err     error
	block   chan struct{}
	started chan struct{}
}

func (g *stubGenerator) Generate(_ context.Context, req generator.Request) (generator.Result, error) {
	g.mu.Lock()
	g.calls++
	g.lastReq = req
	g.mu.Unlock()

	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
	return g.res, g.err
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleResult() generator.Result {
	return generator.Result{
		Summaries: map[options.Length]string{options.Words80: "short"},
		Titles:    []string{"T1", "T2", "T3", "T4", "T5"},
		Tags:      []string{"#a", "b"},
	}
}

func newShellWithURL(gen Generator) *Shell {
	s := New(gen, testLogger())
	f := s.Form()
	f.URL = "https://example.com/a"
	s.SetForm(f)
	return s
}

func TestInitialState(t *testing.T) {
	s := New(&stubGenerator{}, nil)
	if _, ok := s.State().(Idle); !ok {
		t.Fatalf("expected Idle, got %T", s.State())
	}
	if s.Form() != form.Default() {
		t.Fatalf("expected default form")
	}
}

func TestSubmitSuccess(t *testing.T) {
	gen := &stubGenerator{res: sampleResult()}
	s := newShellWithURL(gen)

	st, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, isSuccess := st.(Success)
	if !isSuccess {
		t.Fatalf("expected Success, got %T", st)
	}
	if ok.Result.Titles[0] != "T1" {
		t.Fatalf("unexpected result: %+v", ok.Result)
	}
	if len(gen.lastReq.Lengths) != 4 {
		t.Fatalf("expected default lengths to be requested, got %v", gen.lastReq.Lengths)
	}
}

func TestSubmitWithoutLengthsNeverCallsGenerator(t *testing.T) {
	gen := &stubGenerator{res: sampleResult()}
	s := newShellWithURL(gen)
	for _, l := range options.Lengths() {
		s.ToggleLength(l)
	}

	st, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failed, ok := st.(Failed)
	if !ok {
		t.Fatalf("expected Failed, got %T", st)
	}
	if failed.Message != "Please select at least one summary length." || failed.Kind != FailureValidation {
		t.Fatalf("unexpected failure: %+v", failed)
	}
	if gen.callCount() != 0 {
		t.Fatalf("generator must not be called")
	}
}

func TestSubmitWithoutURLNeverCallsGenerator(t *testing.T) {
	gen := &stubGenerator{}
	s := New(gen, testLogger())

	st, _ := s.Submit(context.Background())
	if failed, ok := st.(Failed); !ok || failed.Message != form.ErrURLRequired.Error() {
		t.Fatalf("unexpected state: %#v", st)
	}
	if gen.callCount() != 0 {
		t.Fatalf("generator must not be called")
	}
}

func TestSubmitProviderFailure(t *testing.T) {
	gen := &stubGenerator{err: &generator.ProviderError{Cause: errors.New("quota exceeded")}}
	s := newShellWithURL(gen)

	st, _ := s.Submit(context.Background())
	failed, ok := st.(Failed)
	if !ok {
		t.Fatalf("expected Failed, got %T", st)
	}
	if failed.Message != "Failed to generate content: quota exceeded" || failed.Kind != FailureProvider {
		t.Fatalf("unexpected failure: %+v", failed)
	}
}

func TestFailedResubmissionClearsStaleResult(t *testing.T) {
	gen := &stubGenerator{res: sampleResult()}
	s := newShellWithURL(gen)

	if _, err := s.Submit(context.Background()); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	gen.err = errors.New("boom")
	st, _ := s.Submit(context.Background())
	if failed, ok := st.(Failed); !ok || failed.Message != MsgUnexpected || failed.Kind != FailureUnknown {
		t.Fatalf("expected Failed with unexpected message, got %#v", st)
	}
	if _, ok := s.State().(Success); ok {
		t.Fatalf("stale result kept after failure")
	}
}

func TestSubmitWhileLoadingIsBusy(t *testing.T) {
	gen := &stubGenerator{
		res:     sampleResult(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := newShellWithURL(gen)

	done := make(chan State, 1)
	go func() {
		st, _ := s.Submit(context.Background())
		done <- st
	}()
	<-gen.started

	if !s.Loading() {
		t.Fatalf("expected Loading while request is in flight")
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(gen.block)
	select {
	case st := <-done:
		if _, ok := st.(Success); !ok {
			t.Fatalf("expected Success, got %T", st)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("submit did not finish")
	}
	if gen.callCount() != 1 {
		t.Fatalf("expected one call, got %d", gen.callCount())
	}
}

func TestResetDropsInFlightOutcome(t *testing.T) {
	gen := &stubGenerator{
		res:     sampleResult(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := newShellWithURL(gen)

	done := make(chan State, 1)
	go func() {
		st, _ := s.Submit(context.Background())
		done <- st
	}()
	<-gen.started

	s.Reset()
	close(gen.block)
	<-done

	if _, ok := s.State().(Idle); !ok {
		t.Fatalf("expected Idle after reset, got %T", s.State())
	}
}

func TestResetWhileInFlightKeepsSubmitBusy(t *testing.T) {
	gen := &stubGenerator{
		res:     sampleResult(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := newShellWithURL(gen)

	done := make(chan State, 1)
	go func() {
		st, _ := s.Submit(context.Background())
		done <- st
	}()
	<-gen.started

	s.Reset()
	if _, ok := s.State().(Idle); !ok {
		t.Fatalf("expected Idle after reset, got %T", s.State())
	}
	if !s.Loading() {
		t.Fatalf("abandoned call should still count as in flight")
	}
	if _, err := s.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy after reset, got %v", err)
	}
	if gen.callCount() != 1 {
		t.Fatalf("expected one provider call in flight, got %d", gen.callCount())
	}

	close(gen.block)
	<-done

	if s.Loading() {
		t.Fatalf("expected no call in flight after it returned")
	}
	gen.block = nil
	gen.started = nil
	st, err := s.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit after abandoned call: %v", err)
	}
	if _, ok := st.(Success); !ok {
		t.Fatalf("expected Success, got %T", st)
	}
	if gen.callCount() != 2 {
		t.Fatalf("expected two calls in total, got %d", gen.callCount())
	}
}

func TestSubmitFormWhileBusyKeepsRunningForm(t *testing.T) {
	gen := &stubGenerator{
		res:     sampleResult(),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	s := New(gen, testLogger())
	first := form.Default()
	first.URL = "https://example.com/first"

	done := make(chan State, 1)
	go func() {
		st, _ := s.SubmitForm(context.Background(), first)
		done <- st
	}()
	<-gen.started

	second := form.Default()
	second.URL = "https://example.com/second"
	if _, err := s.SubmitForm(context.Background(), second); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if s.Form().URL != first.URL {
		t.Fatalf("busy submit replaced the form: %q", s.Form().URL)
	}

	close(gen.block)
	st := <-done
	done2, ok := st.(Success)
	if !ok {
		t.Fatalf("expected Success, got %T", st)
	}
	if done2.Request.URL != first.URL {
		t.Fatalf("unexpected request url: %q", done2.Request.URL)
	}
}

func TestStateReturnsCopy(t *testing.T) {
	gen := &stubGenerator{res: sampleResult()}
	s := newShellWithURL(gen)
	_, _ = s.Submit(context.Background())

	st := s.State().(Success)
	st.Result.Titles[0] = "mutated"

	if s.State().(Success).Result.Titles[0] != "T1" {
		t.Fatalf("state shares memory with caller")
	}
}

func TestMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&generator.ValidationError{Cause: generator.ErrNoLengths}, "Please select at least one summary length."},
		{&generator.ProviderError{Cause: errors.New("x")}, "Failed to generate content: x"},
		{errors.New("anything"), MsgUnexpected},
	}
	for _, tc := range cases {
		if got := Message(tc.err); got != tc.want {
			t.Fatalf("Message(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestLastUsedAdvances(t *testing.T) {
	s := New(&stubGenerator{}, testLogger())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.ToggleLength(options.Words80)
	if !s.LastUsed().Equal(now) {
		t.Fatalf("expected last used to be updated")
	}
}
