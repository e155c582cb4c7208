// Package session holds the state of one password generator instance: the
// chosen length and character classes, the current password, its strength,
// the show/hide mask and the copy acknowledgment.
//
// Every mutation recomputes the password and strength synchronously and then
// notifies subscribed observers with a Snapshot.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/oneminute/oneminute-go/internal/clipboard"
	"github.com/oneminute/oneminute-go/internal/crypto"
)

// DefaultAckDelay is how long the copied flag stays set after a copy.
const DefaultAckDelay = 2 * time.Second

// Option names accepted by ToggleOption.
const (
	OptionUppercase = "uppercase"
	OptionLowercase = "lowercase"
	OptionNumbers   = "numbers"
	OptionSymbols   = "symbols"
)

var ErrUnknownOption = errors.New("unknown character option")

// Snapshot is a consistent copy of a session's observable state.
// Version increases with every change so observers can drop stale snapshots.
type Snapshot struct {
	ID       string          `json:"id"`
	Version  uint64          `json:"version"`
	Length   int             `json:"length"`
	Options  crypto.Options  `json:"options"`
	Password string          `json:"password"`
	Visible  bool            `json:"visible"`
	Copied   bool            `json:"copied"`
	Strength crypto.Strength `json:"strength"`
}

// Observer receives snapshots after state changes. Observers run on the
// goroutine that made the change and must not block.
type Observer func(Snapshot)

// Config configures a new Session. Zero values select the defaults.
type Config struct {
	Length    int
	Options   *crypto.Options
	Clipboard clipboard.Writer
	AckDelay  time.Duration
	Logger    *slog.Logger
}

// Session is the owned state of one generator instance. It is safe for
// concurrent use.
type Session struct {
	id       string
	clip     clipboard.Writer
	ackDelay time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	version  uint64
	length   int
	opts     crypto.Options
	password string
	strength crypto.Strength
	visible  bool
	copied   bool
	ackGen   uint64
	ackTimer *time.Timer

	obsMu     sync.Mutex
	observers []observerEntry
	nextObs   int

	done      chan struct{}
	closeOnce sync.Once
}

type observerEntry struct {
	id int
	fn Observer
}

// New creates a session and generates its first password.
func New(id string, cfg Config) *Session {
	s := &Session{
		id:       id,
		clip:     cfg.Clipboard,
		ackDelay: cfg.AckDelay,
		log:      cfg.Logger,
		length:   clampLength(cfg.Length),
		opts:     crypto.DefaultOptions(),
		visible:  true,
		done:     make(chan struct{}),
	}
	if cfg.Length == 0 {
		s.length = crypto.DefaultLength
	}
	if cfg.Options != nil {
		s.opts = *cfg.Options
	}
	if s.clip == nil {
		s.clip = clipboard.Unavailable{}
	}
	if s.ackDelay <= 0 {
		s.ackDelay = DefaultAckDelay
	}
	if s.log == nil {
		s.log = slog.Default()
	}

	s.recomputeLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetLength changes the password length, clamped to the length control's
// range, and regenerates when the value changes.
func (s *Session) SetLength(n int) Snapshot {
	n = clampLength(n)
	return s.update(func() bool {
		if n == s.length {
			return false
		}
		s.length = n
		s.recomputeLocked()
		return true
	})
}

// SetOptions replaces the character class selection and regenerates when it changes.
func (s *Session) SetOptions(opts crypto.Options) Snapshot {
	return s.UpdateOptions(func(o *crypto.Options) { *o = opts })
}

// UpdateOptions edits the character class selection in place under the state
// lock and regenerates when the result differs.
func (s *Session) UpdateOptions(edit func(*crypto.Options)) Snapshot {
	return s.update(func() bool {
		next := s.opts
		edit(&next)
		if next == s.opts {
			return false
		}
		s.opts = next
		s.recomputeLocked()
		return true
	})
}

// ToggleOption flips one character class by name.
func (s *Session) ToggleOption(name string) (Snapshot, error) {
	var flip func(*crypto.Options)
	switch name {
	case OptionUppercase:
		flip = func(o *crypto.Options) { o.Uppercase = !o.Uppercase }
	case OptionLowercase:
		flip = func(o *crypto.Options) { o.Lowercase = !o.Lowercase }
	case OptionNumbers:
		flip = func(o *crypto.Options) { o.Numbers = !o.Numbers }
	case OptionSymbols:
		flip = func(o *crypto.Options) { o.Symbols = !o.Symbols }
	default:
		return s.Snapshot(), ErrUnknownOption
	}

	return s.UpdateOptions(flip), nil
}

// Regenerate draws a new password with the current settings.
func (s *Session) Regenerate() Snapshot {
	return s.update(func() bool {
		s.recomputeLocked()
		return true
	})
}

// ToggleVisibility flips the show/hide mask. The password is unchanged.
func (s *Session) ToggleVisibility() Snapshot {
	return s.update(func() bool {
		s.visible = !s.visible
		return true
	})
}

// Copy writes the current password to the clipboard. On success the copied
// flag is set and cleared again after the acknowledgment delay; a later copy
// restarts the delay. Failures are logged and otherwise ignored.
func (s *Session) Copy(ctx context.Context) bool {
	s.mu.Lock()
	password := s.password
	s.mu.Unlock()

	if err := s.clip.WriteText(ctx, password); err != nil {
		s.log.Warn("copy to clipboard failed", "session_id", s.id, "error", err)
		return false
	}

	s.update(func() bool {
		s.copied = true
		s.ackGen++
		gen := s.ackGen
		if s.ackTimer != nil {
			s.ackTimer.Stop()
		}
		s.ackTimer = time.AfterFunc(s.ackDelay, func() { s.clearCopied(gen) })
		return true
	})
	return true
}

// Subscribe registers an observer and returns a function that removes it.
// Observers are called in subscription order.
func (s *Session) Subscribe(fn Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers = append(s.observers, observerEntry{id: id, fn: fn})
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			s.observers = slices.DeleteFunc(s.observers, func(e observerEntry) bool { return e.id == id })
			s.obsMu.Unlock()
		})
	}
}

// Observers returns the number of subscribed observers.
func (s *Session) Observers() int {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	return len(s.observers)
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close stops the acknowledgment timer, drops all observers and closes Done.
// It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.ackTimer != nil {
		s.ackTimer.Stop()
		s.ackTimer = nil
	}
	s.mu.Unlock()

	s.obsMu.Lock()
	s.observers = nil
	s.obsMu.Unlock()

	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) clearCopied(gen uint64) {
	s.update(func() bool {
		if gen != s.ackGen || !s.copied {
			return false
		}
		s.copied = false
		s.ackTimer = nil
		return true
	})
}

// update applies fn under the state lock and, when fn reports a change,
// notifies observers after the lock is released.
func (s *Session) update(fn func() bool) Snapshot {
	s.mu.Lock()
	changed := fn()
	if changed {
		s.version++
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	return snap
}

func (s *Session) notify(snap Snapshot) {
	s.obsMu.Lock()
	observers := slices.Clone(s.observers)
	s.obsMu.Unlock()

	for _, e := range observers {
		e.fn(snap)
	}
}

func (s *Session) recomputeLocked() {
	s.password = crypto.Generate(s.length, s.opts)
	s.strength = crypto.ScoreStrength(s.length, s.opts)
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:       s.id,
		Version:  s.version,
		Length:   s.length,
		Options:  s.opts,
		Password: s.password,
		Visible:  s.visible,
		Copied:   s.copied,
		Strength: s.strength,
	}
}

func clampLength(n int) int {
	return min(max(n, crypto.MinLength), crypto.MaxLength)
}
