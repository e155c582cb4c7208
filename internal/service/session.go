package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oneminute/oneminute-go/internal/clipboard"
	"github.com/oneminute/oneminute-go/internal/crypto"
	"github.com/oneminute/oneminute-go/internal/metrics"
	"github.com/oneminute/oneminute-go/internal/model"
	"github.com/oneminute/oneminute-go/internal/repository"
	"github.com/oneminute/oneminute-go/internal/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownOption   = session.ErrUnknownOption
)

// PreferenceStore persists session settings between restarts.
type PreferenceStore interface {
	Save(ctx context.Context, p model.Preferences) error
	Get(ctx context.Context, sessionID string) (model.Preferences, error)
	Delete(ctx context.Context, sessionID string) error
}

// SessionConfig configures a SessionService.
type SessionConfig struct {
	Clipboard   clipboard.Writer
	AckDelay    time.Duration
	TokenSecret string
	TokenExpiry time.Duration
	Defaults    Defaults
}

// SessionService handles generator session business logic.
type SessionService struct {
	registry *session.Registry
	store    PreferenceStore
	cfg      SessionConfig
}

// NewSessionService creates a new SessionService. store may be nil, in which
// case sessions live in memory only.
func NewSessionService(registry *session.Registry, store PreferenceStore, cfg SessionConfig) *SessionService {
	if cfg.Defaults.Length == 0 {
		cfg.Defaults = BuiltinDefaults()
	}
	return &SessionService{registry: registry, store: store, cfg: cfg}
}

// Create starts a new session and returns a token that addresses it.
func (s *SessionService) Create(ctx context.Context, req model.CreateSessionRequest) (model.CreateSessionResponse, error) {
	length := req.Length
	if length == 0 {
		length = s.cfg.Defaults.Length
	}
	if err := validateLength(length); err != nil {
		return model.CreateSessionResponse{}, err
	}
	opts := crypto.Options{
		Uppercase: boolOrDefault(req.Uppercase, s.cfg.Defaults.Options.Uppercase),
		Lowercase: boolOrDefault(req.Lowercase, s.cfg.Defaults.Options.Lowercase),
		Numbers:   boolOrDefault(req.Numbers, s.cfg.Defaults.Options.Numbers),
		Symbols:   boolOrDefault(req.Symbols, s.cfg.Defaults.Options.Symbols),
	}

	id, err := session.NewID(time.Now())
	if err != nil {
		return model.CreateSessionResponse{}, err
	}

	token, err := crypto.GenerateSessionToken(id, s.cfg.TokenSecret, s.cfg.TokenExpiry)
	if err != nil {
		return model.CreateSessionResponse{}, err
	}

	sess := s.newSession(id, length, opts)
	s.registry.Add(sess)
	snap := sess.Snapshot()
	metrics.ObserveGenerated("session", snap.Strength)
	s.persist(ctx, snap)

	return model.CreateSessionResponse{
		Token:   token,
		Session: model.NewSessionResponse(snap),
	}, nil
}

// Get returns the snapshot of a session.
func (s *SessionService) Get(ctx context.Context, id string) (model.SessionResponse, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return model.SessionResponse{}, err
	}
	return model.NewSessionResponse(sess.Snapshot()), nil
}

// SetLength changes a session's password length.
func (s *SessionService) SetLength(ctx context.Context, id string, req model.SetLengthRequest) (model.SessionResponse, error) {
	if err := validateLength(req.Length); err != nil {
		return model.SessionResponse{}, err
	}
	return s.mutate(ctx, id, true, func(sess *session.Session) (session.Snapshot, error) {
		return sess.SetLength(req.Length), nil
	})
}

// SetOptions changes a session's character classes. Fields left out keep their value.
func (s *SessionService) SetOptions(ctx context.Context, id string, req model.SetOptionsRequest) (model.SessionResponse, error) {
	return s.mutate(ctx, id, true, func(sess *session.Session) (session.Snapshot, error) {
		return sess.UpdateOptions(func(o *crypto.Options) {
			o.Uppercase = boolOrDefault(req.Uppercase, o.Uppercase)
			o.Lowercase = boolOrDefault(req.Lowercase, o.Lowercase)
			o.Numbers = boolOrDefault(req.Numbers, o.Numbers)
			o.Symbols = boolOrDefault(req.Symbols, o.Symbols)
		}), nil
	})
}

// ToggleOption flips one character class of a session by name.
func (s *SessionService) ToggleOption(ctx context.Context, id, option string) (model.SessionResponse, error) {
	return s.mutate(ctx, id, true, func(sess *session.Session) (session.Snapshot, error) {
		return sess.ToggleOption(option)
	})
}

// Regenerate draws a new password for a session.
func (s *SessionService) Regenerate(ctx context.Context, id string) (model.SessionResponse, error) {
	return s.mutate(ctx, id, false, func(sess *session.Session) (session.Snapshot, error) {
		return sess.Regenerate(), nil
	})
}

// ToggleVisibility flips the show/hide mask of a session.
func (s *SessionService) ToggleVisibility(ctx context.Context, id string) (model.SessionResponse, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return model.SessionResponse{}, err
	}
	return model.NewSessionResponse(sess.ToggleVisibility()), nil
}

// Copy puts a session's password on the clipboard. A clipboard failure is not
// an error; the response simply does not show the acknowledgment.
func (s *SessionService) Copy(ctx context.Context, id string) (model.SessionResponse, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return model.SessionResponse{}, err
	}
	metrics.ObserveCopy(sess.Copy(ctx))
	return model.NewSessionResponse(sess.Snapshot()), nil
}

// Delete ends a session and forgets its preferences. It returns
// ErrSessionNotFound when the session is neither live nor stored.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	found := s.registry.Remove(id)

	if s.store != nil {
		err := s.store.Delete(ctx, id)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, repository.ErrPreferencesNotFound):
			return err
		}
	}

	if !found {
		return ErrSessionNotFound
	}
	return nil
}

// Subscription is a live feed of one session's changes.
type Subscription struct {
	// Current is the snapshot at the time of subscribing.
	Current model.SessionResponse
	// Done is closed when the session is deleted or expires.
	Done <-chan struct{}

	unsubscribe func()
}

// Close stops the feed. It is safe to call more than once.
func (sub *Subscription) Close() {
	sub.unsubscribe()
}

// Subscribe registers fn for every change of a session.
func (s *SessionService) Subscribe(ctx context.Context, id string, fn func(model.SessionResponse)) (*Subscription, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	unsubscribe := sess.Subscribe(func(snap session.Snapshot) {
		fn(model.NewSessionResponse(snap))
	})
	return &Subscription{
		Current:     model.NewSessionResponse(sess.Snapshot()),
		Done:        sess.Done(),
		unsubscribe: unsubscribe,
	}, nil
}

// mutate applies fn to a session, records regenerated passwords and, when
// settings may have changed, saves the preferences.
func (s *SessionService) mutate(ctx context.Context, id string, settings bool, fn func(*session.Session) (session.Snapshot, error)) (model.SessionResponse, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return model.SessionResponse{}, err
	}

	before := sess.Snapshot().Version
	snap, err := fn(sess)
	if err != nil {
		return model.SessionResponse{}, err
	}

	if snap.Version != before {
		metrics.ObserveGenerated("session", snap.Strength)
		if settings {
			s.persist(ctx, snap)
		}
	}
	return model.NewSessionResponse(snap), nil
}

// lookup finds a live session or restores it from stored preferences.
func (s *SessionService) lookup(ctx context.Context, id string) (*session.Session, error) {
	if sess, ok := s.registry.Get(id); ok {
		return sess, nil
	}
	if s.store == nil {
		return nil, ErrSessionNotFound
	}

	prefs, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPreferencesNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	sess, loaded := s.registry.GetOrAdd(id, func() *session.Session {
		return s.newSession(id, prefs.Length, prefs.Options)
	})
	if !loaded {
		slog.Info("session restored from preferences", "session_id", id)
	}
	return sess, nil
}

func (s *SessionService) newSession(id string, length int, opts crypto.Options) *session.Session {
	return session.New(id, session.Config{
		Length:    length,
		Options:   &opts,
		Clipboard: s.cfg.Clipboard,
		AckDelay:  s.cfg.AckDelay,
	})
}

// persist saves settings on a best-effort basis; the session keeps working without them.
func (s *SessionService) persist(ctx context.Context, snap session.Snapshot) {
	if s.store == nil {
		return
	}
	err := s.store.Save(ctx, model.Preferences{
		SessionID: snap.ID,
		Length:    snap.Length,
		Options:   snap.Options,
	})
	if err != nil {
		slog.Warn("saving session preferences failed", "session_id", snap.ID, "error", err)
	}
}
