package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/formflowhq/formflow/internal/models"
)

// Session states. Loading and NotFound live outside the session: a session
// only exists once a published form has been resolved.
type State string

const (
	StateWelcome   State = "welcome"
	StateStepping  State = "stepping"
	StateSubmitted State = "submitted"
)

var (
	ErrNotStepping  = errors.New("session is not at a question")
	ErrAlreadyDone  = errors.New("session already submitted")
	ErrNoReset      = errors.New("form does not allow multiple submissions")
	ErrNotSubmitted = errors.New("session has not been submitted")
	ErrNotAtWelcome = errors.New("session is not at the welcome screen")
	ErrNoFields     = errors.New("form has no fields")
)

// SubmitFunc persists the completed answer set and returns the new
// submission's ID. The session invokes it exactly once per pass through the
// wizard, when the last field validates.
type SubmitFunc func(ctx context.Context, form *models.Form, fields []models.FormField, answers map[string]Value) (string, error)

// Session walks one respondent through a form's fields in order_index
// order, holding answers across navigation. Safe for concurrent use.
type Session struct {
	mu sync.Mutex

	ID     string
	Form   *models.Form
	Fields []models.FormField

	state   State
	index   int
	answers map[string]Value
	errs    map[string]string

	submissionID string
	touched      time.Time
}

// NewSession starts a flow for a resolved published form. Fields must
// already be in ascending order_index order.
func NewSession(id string, form *models.Form, fields []models.FormField) *Session {
	s := &Session{
		ID:      id,
		Form:    form,
		Fields:  fields,
		state:   StateStepping,
		answers: make(map[string]Value),
		errs:    make(map[string]string),
		touched: time.Now(),
	}
	if form.HasWelcome() {
		s.state = StateWelcome
	}
	return s
}

// Snapshot is the externally visible session state.
type Snapshot struct {
	ID           string            `json:"id"`
	State        State             `json:"state"`
	Index        int               `json:"index"`
	FieldCount   int               `json:"fieldCount"`
	Field        *models.FormField `json:"field,omitempty"`
	Answers      map[string]Value  `json:"answers"`
	Errors       map[string]string `json:"errors,omitempty"`
	Progress     float64           `json:"progress"`
	SubmissionID string            `json:"submissionId,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:           s.ID,
		State:        s.state,
		Index:        s.index,
		FieldCount:   len(s.Fields),
		Answers:      s.answers,
		Errors:       s.errs,
		SubmissionID: s.submissionID,
	}
	if s.state == StateStepping && s.index < len(s.Fields) {
		f := s.Fields[s.index]
		snap.Field = &f
		snap.Progress = float64(s.index+1) / float64(len(s.Fields)) * 100
	}
	if s.state == StateSubmitted {
		snap.Progress = 100
	}
	return snap
}

// Start acknowledges the welcome screen and moves to the first question.
func (s *Session) Start() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateWelcome {
		return s.snapshotLocked(), ErrNotAtWelcome
	}
	s.state = StateStepping
	s.index = 0
	s.touch()
	return s.snapshotLocked(), nil
}

// Next records the answer for the current field and validates it. A failed
// validation keeps the index and surfaces the field error; a passing answer
// advances, or runs submit when the current field is the last one. The
// submit result is reported, but a dispatch failure downstream of submit
// never rolls the session back.
func (s *Session) Next(ctx context.Context, value Value, submit SubmitFunc) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSubmitted:
		return s.snapshotLocked(), ErrAlreadyDone
	case StateStepping:
	default:
		return s.snapshotLocked(), ErrNotStepping
	}
	if len(s.Fields) == 0 {
		return s.snapshotLocked(), ErrNoFields
	}

	field := s.Fields[s.index]
	s.answers[field.ID] = value

	if msg := ValidateField(field, value); msg != "" {
		s.errs = map[string]string{field.ID: msg}
		s.touch()
		return s.snapshotLocked(), nil
	}
	s.errs = map[string]string{}

	if s.index+1 < len(s.Fields) {
		s.index++
		s.touch()
		return s.snapshotLocked(), nil
	}

	// Last field answered: the whole form must validate before persisting.
	if errs := ValidateAll(s.Fields, s.answers); len(errs) > 0 {
		s.errs = errs
		s.touch()
		return s.snapshotLocked(), nil
	}

	submissionID, err := submit(ctx, s.Form, s.Fields, s.answers)
	if err != nil {
		s.touch()
		return s.snapshotLocked(), err
	}
	s.submissionID = submissionID
	s.state = StateSubmitted
	s.touch()
	return s.snapshotLocked(), nil
}

// Previous moves back one question. Answers persist across navigation.
func (s *Session) Previous() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateStepping {
		return s.snapshotLocked(), ErrNotStepping
	}
	if s.index > 0 {
		s.index--
		s.errs = map[string]string{}
	}
	s.touch()
	return s.snapshotLocked(), nil
}

// Reset clears answers and errors and returns to the first question. Only
// valid after submission, and only for forms that allow multiple responses.
func (s *Session) Reset() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitted {
		return s.snapshotLocked(), ErrNotSubmitted
	}
	if !s.Form.AllowMultipleSubmissions {
		return s.snapshotLocked(), ErrNoReset
	}
	s.state = StateStepping
	s.index = 0
	s.answers = make(map[string]Value)
	s.errs = make(map[string]string)
	s.submissionID = ""
	s.touch()
	return s.snapshotLocked(), nil
}

func (s *Session) touch() {
	s.touched = time.Now()
}

func (s *Session) lastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
