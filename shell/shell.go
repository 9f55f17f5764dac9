// Package shell is the application state machine shared by the web and terminal
// front ends. It owns the form and the current Idle/Loading/Success/Failed state.
package shell

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"ai_content_optimizer/form"
	"ai_content_optimizer/generator"
	"ai_content_optimizer/options"
)

// MsgUnexpected is shown for failures that are neither validation nor provider errors.
const MsgUnexpected = "An unexpected error occurred."

// ErrBusy is returned by Submit while a request is already in flight.
var ErrBusy = errors.New("a generation request is already in progress")

// Generator produces content for a request. *generator.Agent implements it.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) (generator.Result, error)
}

// State is one of Idle, Loading, Success or Failed.
type State interface {
	isState()
}

type Idle struct{}

type Loading struct{}

type Success struct {
	Request generator.Request
	Result  generator.Result
}

// FailureKind tells a validation failure from a provider failure.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureValidation
	FailureProvider
)

type Failed struct {
	Kind    FailureKind
	Message string
}

func failure(err error) Failed {
	f := Failed{Kind: FailureUnknown, Message: Message(err)}
	var ve *generator.ValidationError
	var pe *generator.ProviderError
	switch {
	case errors.As(err, &ve):
		f.Kind = FailureValidation
	case errors.As(err, &pe):
		f.Kind = FailureProvider
	}
	return f
}

func (Idle) isState()    {}
func (Loading) isState() {}
func (Success) isState() {}
func (Failed) isState()  {}

// Shell is safe for concurrent use. The provider call runs without holding the lock.
type Shell struct {
	gen Generator
	log *slog.Logger
	now func() time.Time

	mu       sync.Mutex
	form     form.Form
	state    State
	inflight bool
	seq      uint64
	lastUsed time.Time
}

func New(gen Generator, log *slog.Logger) *Shell {
	if log == nil {
		log = slog.Default()
	}
	s := &Shell{
		gen:   gen,
		log:   log,
		now:   time.Now,
		form:  form.Default(),
		state: Idle{},
	}
	s.lastUsed = s.now()
	return s
}

// Submit validates the form, enters Loading, calls the generator and stores the
// outcome. It returns the settled state. A guard failure settles to Failed without
// calling the generator. Only one generator call runs at a time, even across Reset.
func (s *Shell) Submit(ctx context.Context) (State, error) {
	return s.submit(ctx, nil)
}

// SubmitForm replaces the form and submits it in one step. While busy the form is
// left untouched.
func (s *Shell) SubmitForm(ctx context.Context, f form.Form) (State, error) {
	return s.submit(ctx, &f)
}

func (s *Shell) submit(ctx context.Context, next *form.Form) (State, error) {
	s.mu.Lock()
	if s.inflight {
		s.mu.Unlock()
		return Loading{}, ErrBusy
	}
	s.lastUsed = s.now()
	if next != nil {
		s.form = *next
	}

	f := s.form
	if err := guard(f); err != nil {
		s.state = failure(err)
		st := s.state
		s.mu.Unlock()
		return st, nil
	}

	// previous result and error are dropped before the new request starts
	s.state = Loading{}
	s.inflight = true
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	req := f.Request()
	start := s.now()
	res, err := s.gen.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight = false
	if s.seq != seq {
		// reset while in flight
		return s.state, nil
	}
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to generate content",
			"error", err,
			"url", req.URL,
			"lengths", req.Lengths)

		s.state = failure(err)
		return s.state, nil
	}

	s.log.InfoContext(ctx, "Generated content",
		"url", req.URL,
		"lengths", req.Lengths,
		"titles", len(res.Titles),
		"tags", len(res.Tags),
		"duration", s.now().Sub(start))

	s.state = Success{Request: req, Result: res.Clone()}
	return s.snapshot(), nil
}

func guard(f form.Form) error {
	if f.Lengths.Len() == 0 {
		return &generator.ValidationError{Cause: generator.ErrNoLengths}
	}
	if err := f.Validate(); err != nil {
		return &generator.ValidationError{Cause: err}
	}
	return nil
}

// Message turns any error into the single line shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve *generator.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var pe *generator.ProviderError
	if errors.As(err, &pe) {
		return pe.Error()
	}
	return MsgUnexpected
}

// State returns the current state. A Success carries a copy of the result.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Shell) snapshot() State {
	if st, ok := s.state.(Success); ok {
		st.Request.Lengths = slices.Clone(st.Request.Lengths)
		st.Result = st.Result.Clone()
		return st
	}
	return s.state
}

// Loading reports whether a generator call is in flight. It stays true after a
// Reset until the abandoned call returns.
func (s *Shell) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

func (s *Shell) Form() form.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetForm replaces the form. The current state is kept.
func (s *Shell) SetForm(f form.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
	s.lastUsed = s.now()
}

// ToggleLength flips one length bucket and returns the new form.
func (s *Shell) ToggleLength(l options.Length) form.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Lengths.Toggle(l)
	s.lastUsed = s.now()
	return s.form
}

// Reset returns to Idle. A request still in flight is abandoned and its outcome
// dropped; new submissions stay busy until it returns.
func (s *Shell) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Idle{}
	s.seq++
	s.lastUsed = s.now()
}

// LastUsed is the time of the most recent mutating call.
func (s *Shell) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}
