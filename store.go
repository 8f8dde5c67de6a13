package sessionstore

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/sessionstore/cache"
	"github.com/unkn0wn-root/sessionstore/codec"
	"github.com/unkn0wn-root/sessionstore/internal/keys"
)

type sessions struct {
	cache cache.Client
	codec codec.Codec
	log   Logger
	hooks Hooks

	ttl         time.Duration
	lockTTL     time.Duration
	lockPoll    time.Duration
	lockMaxWait time.Duration
	noreply     bool

	version *versionManager
}

var _ Sessions = (*sessions)(nil)

func newSessions(opts Options) (*sessions, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("sessionstore: cache client is required")
	}

	policy := opts.ResetOnReload
	switch policy {
	case "":
		policy = ResetInvalidate
	case resetOn:
		policy = ResetInvalidate // legacy spelling
	case ResetOff, ResetInvalidate, ResetFlush:
	default:
		return nil, fmt.Errorf("sessionstore: unknown reset_on_reload policy %q", opts.ResetOnReload)
	}

	s := &sessions{
		cache:       opts.Cache,
		ttl:         opts.TTL,
		lockTTL:     opts.LockTTL,
		noreply:     opts.Noreply,
		version:     newVersionManager(policy, opts.Version),
		lockPoll:    coalesce(opts.LockPollTime, 100*time.Millisecond),
		lockMaxWait: coalesce(opts.LockMaxWaitTime, 5*time.Second),
	}
	s.codec = opts.Codec
	if s.codec == nil {
		s.codec = codec.Msgpack{}
	}
	s.log = coalesce[Logger](opts.Logger, NopLogger{})
	s.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	// the reset policy applies once at construction, then on every Reload
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *sessions) Create(ctx context.Context, sessionID, secureToken string) (Session, error) {
	record, err := s.codec.Encode(codec.Record{
		Version: s.version.current(),
		Token:   secureToken,
	})
	if err != nil {
		return Session{}, &StorageError{Op: "create", SessionID: sessionID, Err: err}
	}

	entries := map[string][]byte{
		keys.Counter:  keys.FormatCounter(0),
		keys.Session:  record,
		keys.State(0): {},
	}
	if err := s.cache.SetMulti(ctx, keys.Prefix(sessionID), entries, s.ttl, s.noreply); err != nil {
		return Session{}, &StorageError{Op: "create", SessionID: sessionID, Err: err}
	}
	if s.noreply {
		s.hooks.NoreplyWrite("create", sessionID)
	}

	lock, err := s.GetLock(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	return Session{ID: sessionID, StateID: 0, Token: secureToken, Lock: lock}, nil
}

func (s *sessions) Fetch(ctx context.Context, sessionID string, stateID uint64) (Snapshot, error) {
	stateKey := keys.State(stateID)
	got, err := s.cache.GetMulti(ctx, keys.Prefix(sessionID), []string{keys.Counter, keys.Session, stateKey})
	if err != nil {
		// a transport failure must not look like an expired session
		return Snapshot{}, &StorageError{Op: "fetch", SessionID: sessionID, Err: err}
	}
	if len(got) != 3 {
		s.hooks.SessionMissing(sessionID, len(got))
		return Snapshot{}, &ExpirationError{SessionID: sessionID, Reason: reasonNotFound}
	}

	latest, err := keys.ParseCounter(got[keys.Counter])
	if err != nil {
		// corrupt counter; the session is unusable either way
		s.log.Warn("corrupt session counter", Fields{"session": sessionID, "err": err})
		return Snapshot{}, &ExpirationError{SessionID: sessionID, Reason: reasonNotFound}
	}
	record, err := s.codec.Decode(got[keys.Session])
	if err != nil {
		s.log.Warn("corrupt session record", Fields{"session": sessionID, "err": err})
		return Snapshot{}, &ExpirationError{SessionID: sessionID, Reason: reasonNotFound}
	}

	if current := s.version.current(); record.Version != current {
		s.hooks.VersionMismatch(sessionID, record.Version, current)
		return Snapshot{}, &ExpirationError{SessionID: sessionID, Reason: reasonStaleVersion}
	}

	return Snapshot{
		LatestStateID: latest,
		Token:         record.Token,
		SessionData:   record.Session,
		StateData:     got[stateKey],
	}, nil
}

func (s *sessions) Store(ctx context.Context, sessionID string, stateID uint64, secureToken string, useSameState bool, sessionData, stateData []byte) (uint64, error) {
	if !useSameState {
		n, ok, err := s.cache.Incr(ctx, keys.Prefix(sessionID)+keys.Counter, s.noreply)
		switch {
		case err != nil:
			return 0, &StorageError{Op: "increment", SessionID: sessionID, Err: err}
		case ok && n > 0:
			stateID = n
		case s.noreply:
			// no confirmation possible; advance locally
			s.hooks.NoreplyWrite("increment", sessionID)
			stateID++
		default:
			s.hooks.CounterMissing(sessionID)
			return 0, &StorageError{Op: "increment", SessionID: sessionID, Err: errCounterMissing}
		}
	}

	record, err := s.codec.Encode(codec.Record{
		Version: s.version.current(),
		Token:   secureToken,
		Session: sessionData,
	})
	if err != nil {
		return 0, &StorageError{Op: "store", SessionID: sessionID, Err: err}
	}

	entries := map[string][]byte{
		keys.Session:        record,
		keys.State(stateID): stateData,
	}
	if err := s.cache.SetMulti(ctx, keys.Prefix(sessionID), entries, s.ttl, s.noreply); err != nil {
		return 0, &StorageError{Op: "store", SessionID: sessionID, Err: err}
	}
	if s.noreply {
		s.hooks.NoreplyWrite("store", sessionID)
	}
	return stateID, nil
}

func (s *sessions) Delete(ctx context.Context, sessionID string) error {
	// only the record key; orphaned snapshots are unreachable and expire
	// via TTL on their own
	if err := s.cache.Delete(ctx, keys.Prefix(sessionID)+keys.Session, s.noreply); err != nil {
		return &StorageError{Op: "delete", SessionID: sessionID, Err: err}
	}
	if s.noreply {
		s.hooks.NoreplyWrite("delete", sessionID)
	}
	return nil
}

func (s *sessions) GetLock(ctx context.Context, sessionID string) (cache.Lock, error) {
	return s.cache.AcquireLock(ctx, keys.Lock(sessionID), cache.LockOptions{
		TTL:          s.lockTTL,
		PollInterval: s.lockPoll,
		MaxWait:      s.lockMaxWait,
		Noreply:      s.noreply,
	})
}

func (s *sessions) FlushAll(ctx context.Context) error {
	if err := s.cache.FlushAll(ctx); err != nil {
		return &StorageError{Op: "flush", SessionID: "*", Err: err}
	}
	return nil
}

func (s *sessions) Reload(ctx context.Context) error {
	if flush := s.version.reload(); flush {
		s.log.Info("deleting all the sessions", nil)
		return s.FlushAll(ctx)
	}
	if s.version.policy == ResetInvalidate {
		s.log.Info("sessions version", Fields{"version": s.version.current()})
	}
	return nil
}

func (s *sessions) Version() string { return s.version.current() }

func (s *sessions) Close(ctx context.Context) error {
	return s.cache.Close(ctx)
}
