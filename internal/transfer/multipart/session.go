package multipart

import (
	"fmt"
	"sort"
	"sync"

	"github.com/input-output-hk/catalyst-forge-libs/objstore/internal/rest"
)

// State is the lifecycle phase of a multipart upload session.
type State int

const (
	// StateCreated is the initial state before any remote call.
	StateCreated State = iota
	// StateInitiating means the initiate call is in flight.
	StateInitiating
	// StateUploading means parts are being sent.
	StateUploading
	// StateCompleting means the complete call is in flight.
	StateCompleting
	// StateDone means the object exists and the session is finished.
	StateDone
	// StateAborting means the abort call is in flight.
	StateAborting
	// StateAborted means the remote upload was confirmed discarded.
	StateAborted
	// StateFailed means the session failed and any remote state is
	// unconfirmed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitiating:
		return "initiating"
	case StateUploading:
		return "uploading"
	case StateCompleting:
		return "completing"
	case StateDone:
		return "done"
	case StateAborting:
		return "aborting"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// partOutcome records what happened to one part.
type partOutcome struct {
	inFlight  bool
	committed bool
	etag      string
	size      int64
	err       error
}

// Session serializes the lifecycle of one multipart upload. All state
// lives behind one mutex so racing workers observe a single consistent
// story: one initiate, one complete, first error wins.
type Session struct {
	mu       sync.Mutex
	state    State
	bucket   string
	key      string
	uploadID string
	parts    map[int]*partOutcome
	sent     int64
	err      error
}

// NewSession creates a session in the created state.
func NewSession(bucket, key string) *Session {
	return &Session{
		bucket: bucket,
		key:    key,
		parts:  make(map[int]*partOutcome),
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// UploadID returns the remote upload ID, empty until initiate is
// confirmed.
func (s *Session) UploadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadID
}

// Err returns the first recorded failure.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// BytesSent returns the bytes committed so far.
func (s *Session) BytesSent() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Fail records err as the session failure. The first error wins; later
// ones are dropped so racing workers cannot overwrite the cause.
func (s *Session) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// BeginInitiate moves the session into the initiating state. It fails if
// an initiate was already attempted.
func (s *Session) BeginInitiate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCreated {
		return fmt.Errorf("initiate in state %s", s.state)
	}
	s.state = StateInitiating
	return nil
}

// ConfirmInitiate records the upload ID and opens the session for parts.
func (s *Session) ConfirmInitiate(uploadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadID = uploadID
	s.state = StateUploading
}

// MarkInFlight records that a part upload started.
func (s *Session) MarkInFlight(number int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts[number] = &partOutcome{inFlight: true}
}

// Commit records a part as uploaded with its entity tag.
func (s *Session) Commit(number int, etag string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts[number] = &partOutcome{committed: true, etag: etag, size: size}
	s.sent += size
}

// MarkFailed records a part failure and the session's first error.
func (s *Session) MarkFailed(number int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts[number] = &partOutcome{err: err}
	if s.err == nil {
		s.err = err
	}
}

// BeginComplete verifies every part committed and moves the session into
// the completing state, returning the parts sorted by ascending part
// number. A session completes at most once.
func (s *Session) BeginComplete(expected int) ([]rest.CompletedPart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUploading {
		return nil, fmt.Errorf("complete in state %s", s.state)
	}
	if s.err != nil {
		return nil, s.err
	}

	completed := make([]rest.CompletedPart, 0, len(s.parts))
	for number, outcome := range s.parts {
		if !outcome.committed {
			return nil, fmt.Errorf("part %d never committed", number)
		}
		completed = append(completed, rest.CompletedPart{PartNumber: number, ETag: outcome.etag})
	}
	if len(completed) != expected {
		return nil, fmt.Errorf("committed %d of %d parts", len(completed), expected)
	}
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].PartNumber < completed[j].PartNumber
	})

	s.state = StateCompleting
	return completed, nil
}

// ConfirmComplete marks the session done.
func (s *Session) ConfirmComplete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDone
}

// BeginAbort moves a failed session toward abort. It returns the upload
// ID to abort, or false when no remote upload exists; in that case the
// session goes straight to failed.
func (s *Session) BeginAbort() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadID == "" || (s.state != StateUploading && s.state != StateCompleting) {
		s.state = StateFailed
		return "", false
	}
	s.state = StateAborting
	return s.uploadID, true
}

// ConfirmAbort finishes the abort: aborted when the service confirmed it,
// failed when the abort itself errored and parts may remain remotely.
func (s *Session) ConfirmAbort(abortErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if abortErr != nil {
		s.state = StateFailed
		return
	}
	s.state = StateAborted
}
