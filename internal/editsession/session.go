// Package editsession reconciles a submitted candidate form against the
// record it was opened from.
package editsession

import (
	"errors"
	"fmt"
	"time"

	"iisa-recruitment-backend/internal/domain"
)

var ErrWindowExpired = errors.New("edit window has expired")

// WindowExpiredError carries the deadline that was missed.
type WindowExpiredError struct {
	Deadline time.Time
}

func (e *WindowExpiredError) Error() string {
	return fmt.Sprintf("the edit window closed on %s", e.Deadline.Format("2006-01-02 15:04"))
}

func (e *WindowExpiredError) Is(target error) bool {
	return target == ErrWindowExpired
}

type Outcome int

const (
	// NoChange means nothing needs to be written.
	NoChange Outcome = iota
	// Apply means Patch must be sent to the repository.
	Apply
)

// Decision is the result of a submission.
type Decision struct {
	Outcome Outcome
	Patch   domain.Patch
	// Changed lists the form fields that differ from the baseline.
	Changed []string
}

// AttachImage layers a freshly uploaded profile image onto the patch.
func (d *Decision) AttachImage(url string) {
	if d.Outcome != Apply || url == "" {
		return
	}
	d.Patch[domain.FieldProfileImageURL] = url
}

// Session holds the baseline captured when a record was opened for editing.
type Session struct {
	candidateID string
	baseline    domain.Snapshot
	registered  domain.Timestamp
	window      domain.EditWindow
	clock       domain.Clock
}

// Open captures the baseline of c. It must be called with a record loaded
// in the same request, before any working value is read.
func Open(c domain.Candidate, window domain.EditWindow, clock domain.Clock) *Session {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Session{
		candidateID: c.ID,
		baseline:    domain.SnapshotOf(c),
		registered:  domain.RegistrationTimestamp(c),
		window:      window,
		clock:       clock,
	}
}

func (s *Session) CandidateID() string {
	return s.candidateID
}

func (s *Session) Baseline() domain.Snapshot {
	return s.baseline
}

func (s *Session) Deadline() (time.Time, bool) {
	return s.window.Deadline(s.registered)
}

func (s *Session) Editable() bool {
	return s.window.IsEditable(s.registered, s.clock.Now())
}

// Submit decides what to persist for the working form state. An expired
// window refuses the submission outright. An empty diff without a new image
// is a no-op; otherwise the patch carries the changed fields plus lastUpdated.
func (s *Session) Submit(working domain.CandidateInput, hasNewImage bool) (*Decision, error) {
	now := s.clock.Now()
	if !s.window.IsEditable(s.registered, now) {
		deadline, _ := s.window.Deadline(s.registered)
		return nil, &WindowExpiredError{Deadline: deadline}
	}

	patch := domain.Diff(s.baseline, domain.NewSnapshot(working.Fields()))
	changed := patch.Keys()
	if patch.IsEmpty() && !hasNewImage {
		return &Decision{Outcome: NoChange, Changed: changed}, nil
	}

	patch[domain.FieldLastUpdated] = now
	return &Decision{Outcome: Apply, Patch: patch, Changed: changed}, nil
}
