package wheel

import (
	"errors"
	"sync"
	"time"

	"spinwheel/pkg/realtime"
)

const (
	// DefaultDuration matches the page's rotate transition.
	DefaultDuration = 4000 * time.Millisecond
	// DefaultExtraTurns is added to every spin so it always looks like a spin.
	DefaultExtraTurns = 5
	// MinSpinOptions is the fewest options a spin accepts.
	MinSpinOptions = 2
)

var (
	// ErrTooFewOptions rejects a spin with fewer than MinSpinOptions options.
	ErrTooFewOptions = errors.New("at least two options are required to spin")
	// ErrSpinning rejects edits while a spin is in flight.
	ErrSpinning = errors.New("wheel is spinning")
)

// State is the controller's state machine position.
type State string

const (
	StateIdle     State = "idle"
	StateSpinning State = "spinning"
)

// Status is what the result area shows.
type Status string

const (
	StatusReady    Status = "ready"
	StatusThinking Status = "thinking"
	StatusWinner   Status = "winner"
)

// Intner is the slice of math/rand the controller needs.
type Intner interface {
	Intn(n int) int
}

// Settings configures a Controller.
type Settings struct {
	Duration    time.Duration
	ExtraTurns  int
	Placeholder [2]string
}

func (s Settings) withDefaults() Settings {
	if s.Duration <= 0 {
		s.Duration = DefaultDuration
	}
	if s.ExtraTurns <= 0 {
		s.ExtraTurns = DefaultExtraTurns
	}
	return s
}

// Spin describes one accepted spin.
type Spin struct {
	ExtraDegrees int
	TotalDegrees int
	Rotation     int64
	Options      Options
	StartedAt    time.Time
	EndsAt       time.Time
}

// Result is a settled spin.
type Result struct {
	Spin           Spin
	ActualRotation int
	PointerAngle   float64
	Index          int
	Winner         string
	SettledAt      time.Time
}

// Controller owns one wheel: its options, the spinning flag, the cumulative
// rotation and the pending settle deadline. All mutation goes through its
// methods so the list is never empty and the flag is honoured.
type Controller struct {
	mu        sync.Mutex
	settings  Settings
	rng       Intner
	text      string
	options   Options
	revision  int
	state     State
	status    Status
	rotation  int64
	countdown realtime.Countdown
	current   Spin
	last      *Result
	onSettle  func(Result)
}

// NewController builds an idle controller showing text.
func NewController(settings Settings, rng Intner, text string) *Controller {
	settings = settings.withDefaults()
	return &Controller{
		settings:  settings,
		rng:       rng,
		text:      text,
		options:   Parse(text, settings.Placeholder),
		revision:  1,
		state:     StateIdle,
		status:    StatusReady,
		countdown: realtime.Countdown{Duration: settings.Duration},
	}
}

// Settings returns the effective settings.
func (c *Controller) Settings() Settings {
	return c.settings
}

// OnSettle registers fn to run once per settled spin, whichever call settles
// it. fn runs with the controller locked and must not call back into it.
func (c *Controller) OnSettle(fn func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSettle = fn
}

// SetText reparses the options. Edits are rejected while spinning.
func (c *Controller) SetText(raw string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateSpinning {
		return ErrSpinning
	}
	c.text = raw
	next := Parse(raw, c.settings.Placeholder)
	if !next.Equal(c.options) {
		c.revision++
	}
	c.options = next
	return nil
}

// Spin starts a spin at now. With fewer than two options it fails with
// ErrTooFewOptions and changes nothing. While a spin is in flight it returns
// that spin with started false.
func (c *Controller) Spin(now time.Time) (Spin, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceIfNeededLocked(now)
	if len(c.options) < MinSpinOptions {
		return Spin{}, false, ErrTooFewOptions
	}
	if c.state == StateSpinning {
		return c.current, false, nil
	}

	extra := c.rng.Intn(int(FullTurn))
	total := c.settings.ExtraTurns*int(FullTurn) + extra
	c.rotation += int64(total)
	c.state = StateSpinning
	c.status = StatusThinking
	c.last = nil
	c.countdown.Start(now)
	c.current = Spin{
		ExtraDegrees: extra,
		TotalDegrees: total,
		Rotation:     c.rotation,
		Options:      append(Options(nil), c.options...),
		StartedAt:    now,
		EndsAt:       c.countdown.Deadline(),
	}
	return c.current, true, nil
}

// AdvanceIfNeeded settles the in-flight spin once its deadline has passed.
// It reports the result only on the call that settles it.
func (c *Controller) AdvanceIfNeeded(now time.Time) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advanceIfNeededLocked(now)
}

func (c *Controller) advanceIfNeededLocked(now time.Time) (Result, bool) {
	if c.state != StateSpinning || !c.countdown.Expired(now) {
		return Result{}, false
	}
	actual := int(c.rotation % int64(FullTurn))
	idx := WinnerIndex(float64(actual), len(c.current.Options))
	res := Result{
		Spin:           c.current,
		ActualRotation: actual,
		PointerAngle:   EffectivePointerAngle(float64(actual)),
		Index:          idx,
		Winner:         c.current.Options[idx],
		SettledAt:      now,
	}
	c.last = &res
	c.state = StateIdle
	c.status = StatusWinner
	c.countdown.Clear()
	if c.onSettle != nil {
		c.onSettle(res)
	}
	return res, true
}

// NextTimer returns when the pending spin should settle.
func (c *Controller) NextTimer(now time.Time) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSpinning {
		return time.Time{}, false
	}
	return c.countdown.NextWake(now)
}

// Snapshot is a consistent read of the controller.
type Snapshot struct {
	State        State
	Status       Status
	Text         string
	Options      Options
	Revision     int
	Rotation     int64
	Duration     time.Duration
	InputsLocked bool
	Spin         Spin
	Remaining    time.Duration
	HasWinner    bool
	WinnerIndex  int
	Winner       string
}

// Snapshot settles an overdue spin and returns the current view.
func (c *Controller) Snapshot(now time.Time) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advanceIfNeededLocked(now)
	snap := Snapshot{
		State:        c.state,
		Status:       c.status,
		Text:         c.text,
		Options:      append(Options(nil), c.options...),
		Revision:     c.revision,
		Rotation:     c.rotation,
		Duration:     c.settings.Duration,
		InputsLocked: c.state == StateSpinning,
		Remaining:    c.countdown.Remaining(now),
	}
	if c.state == StateSpinning {
		snap.Spin = c.current
	}
	if c.last != nil {
		snap.HasWinner = true
		snap.WinnerIndex = c.last.Index
		snap.Winner = c.last.Winner
	}
	return snap
}
