// Package sections models the section manager screen: the section list, an
// independent create form, a single-row inline editor and delete with
// confirmation, all talking to a Backend.
package sections

import (
	"context"
	"errors"
	"sync"

	"schooladmin/internal/application/validation"
	"schooladmin/internal/domain/section"
)

var (
	ErrSubmitInFlight = errors.New("a request for this form is already in progress")
	ErrEditInProgress = errors.New("another section is being edited")
	ErrNotEditing     = errors.New("no section is being edited")
	ErrUnknownSection = errors.New("section is not in the list")
	ErrCancelled      = errors.New("cancelled by the user")
)

// Backend performs the section requests.
type Backend interface {
	ListSections(ctx context.Context) ([]section.Section, []section.GradeLevel, error)
	CreateSection(ctx context.Context, name string, gradeLevelID int64) (section.Section, error)
	UpdateSection(ctx context.Context, id int64, name string, gradeLevelID int64) (section.Section, error)
	DeleteSection(ctx context.Context, id int64) error
}

// Confirmer asks the admin to confirm an action.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// Manager is the section manager screen state.
type Manager struct {
	backend Backend
	confirm Confirmer

	mu          sync.Mutex
	sections    []section.Section
	gradeLevels []section.GradeLevel
	create      CreateSlot
	edit        *EditSlot
	creating    bool
	updating    bool
	deleting    map[int64]bool
	feedback    []Feedback
	needsReload bool
}

// NewManager creates an empty manager; call Load to fetch the list.
func NewManager(backend Backend, confirm Confirmer) *Manager {
	return &Manager{backend: backend, confirm: confirm, deleting: make(map[int64]bool)}
}

// Load fetches sections and grade levels, replacing the current list. It is
// the full-page reload after a successful mutation.
func (m *Manager) Load(ctx context.Context) error {
	secs, levels, err := m.backend.ListSections(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sections, m.gradeLevels = secs, levels
	m.needsReload = false
	if m.edit != nil && m.indexOf(m.edit.SectionID) < 0 {
		m.edit = nil
	}
	return nil
}

// Sections returns the listed sections.
func (m *Manager) Sections() []section.Section {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]section.Section(nil), m.sections...)
}

// GradeLevels returns the grade level choices.
func (m *Manager) GradeLevels() []section.GradeLevel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]section.GradeLevel(nil), m.gradeLevels...)
}

// NeedsReload reports whether a mutation succeeded since the last Load.
func (m *Manager) NeedsReload() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.needsReload
}

// TakeFeedback returns and clears pending feedback.
func (m *Manager) TakeFeedback() []Feedback {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.feedback
	m.feedback = nil
	return out
}

func (m *Manager) indexOf(id int64) int {
	for i, s := range m.sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) notify(kind FeedbackKind, level Level, msg string) {
	m.feedback = append(m.feedback, Feedback{Kind: kind, Level: level, Message: msg})
}

// --- create ---

// CreateSlot returns a copy of the create form.
func (m *Manager) CreateSlot() CreateSlot {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.create
	c.Errors = cloneErrors(c.Errors)
	return c
}

// SetCreateName updates the create form's name input.
func (m *Manager) SetCreateName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.create.Name = name
}

// SetCreateGradeLevel updates the create form's grade level select.
func (m *Manager) SetCreateGradeLevel(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.create.GradeLevelID = id
}

// CreateDisabled reports whether the create submit control is disabled.
func (m *Manager) CreateDisabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creating
}

// SubmitCreate confirms and sends the create form once.
// POST: on success the create slot is cleared unless it was edited meanwhile,
// a success toast is queued and
// a reload is requested; on a validation failure the slot keeps its values
// and carries the field errors; other failures queue an error dialog
func (m *Manager) SubmitCreate(ctx context.Context) error {
	m.mu.Lock()
	if m.creating {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	draft := m.create.Draft
	if fe := draft.check(); fe != nil {
		m.create.Errors = fe
		m.mu.Unlock()
		return fe
	}
	m.creating = true
	m.create.Errors = nil
	m.mu.Unlock()

	err := m.runCreate(ctx, draft)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.creating = false
	switch {
	case err == nil:
		// Input typed while the request was pending is kept.
		if m.create.Draft == draft {
			m.create = CreateSlot{}
		}
		m.notify(Toast, LevelSuccess, MsgCreated)
		m.needsReload = true
	case errors.Is(err, ErrCancelled):
	default:
		if fe, ok := validation.AsFieldErrors(err); ok {
			m.create.Errors = fe
		} else {
			m.notify(Dialog, LevelError, MsgCreateFailed)
		}
	}
	return err
}

func (m *Manager) runCreate(ctx context.Context, d Draft) error {
	if !m.confirm.Confirm(ctx, Prompt{
		Title:   "Create section?",
		Text:    "Add section \"" + d.Name + "\"?",
		Level:   LevelWarning,
		Confirm: "Yes, create it",
	}) {
		return ErrCancelled
	}
	_, err := m.backend.CreateSection(ctx, d.Name, d.GradeLevelID)
	return err
}

// --- edit ---

// BeginEdit switches a row into edit mode with its current values. Only one
// row can be edited at a time; re-entering the same row keeps its buffer.
func (m *Manager) BeginEdit(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edit != nil {
		if m.edit.SectionID == id {
			return nil
		}
		return ErrEditInProgress
	}
	i := m.indexOf(id)
	if i < 0 {
		return ErrUnknownSection
	}
	s := m.sections[i]
	m.edit = &EditSlot{SectionID: id, Draft: Draft{Name: s.Name, GradeLevelID: s.GradeLevelID}}
	return nil
}

// Editing returns the edit slot, if a row is in edit mode.
func (m *Manager) Editing() (EditSlot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edit == nil {
		return EditSlot{}, false
	}
	e := *m.edit
	e.Errors = cloneErrors(e.Errors)
	return e, true
}

// SetEditName updates the inline editor's name input.
func (m *Manager) SetEditName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edit == nil {
		return ErrNotEditing
	}
	m.edit.Name = name
	return nil
}

// SetEditGradeLevel updates the inline editor's grade level select.
func (m *Manager) SetEditGradeLevel(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edit == nil {
		return ErrNotEditing
	}
	m.edit.GradeLevelID = id
	return nil
}

// CancelEdit discards the edit slot without a request.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.updating {
		m.edit = nil
	}
}

// SubmitEdit sends the inline editor's values.
// POST: on success edit mode ends, a success toast is queued and a reload is
// requested; on failure an error dialog is queued and edit mode stays
func (m *Manager) SubmitEdit(ctx context.Context) error {
	m.mu.Lock()
	if m.edit == nil {
		m.mu.Unlock()
		return ErrNotEditing
	}
	if m.updating {
		m.mu.Unlock()
		return ErrSubmitInFlight
	}
	id, draft := m.edit.SectionID, m.edit.Draft
	if fe := draft.check(); fe != nil {
		m.edit.Errors = fe
		m.mu.Unlock()
		return fe
	}
	m.updating = true
	m.edit.Errors = nil
	m.mu.Unlock()

	_, err := m.backend.UpdateSection(ctx, id, draft.Name, draft.GradeLevelID)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.updating = false
	if err == nil {
		m.edit = nil
		m.notify(Toast, LevelSuccess, MsgUpdated)
		m.needsReload = true
		return nil
	}
	if fe, ok := validation.AsFieldErrors(err); ok && m.edit != nil {
		m.edit.Errors = fe
	}
	m.notify(Dialog, LevelError, MsgUpdateFailed)
	return err
}

// --- delete ---

// DeleteOutcome classifies how a delete attempt ended.
type DeleteOutcome int

const (
	DeleteCancelled DeleteOutcome = iota
	DeleteSucceeded
	DeleteClientError
	DeleteServerError
	DeleteNetworkFailure
)

func (o DeleteOutcome) String() string {
	switch o {
	case DeleteCancelled:
		return "cancelled"
	case DeleteSucceeded:
		return "success"
	case DeleteClientError:
		return "client_error"
	case DeleteServerError:
		return "server_error"
	case DeleteNetworkFailure:
		return "network_failure"
	}
	return "unknown"
}

// statusCoder is implemented by HTTP status errors.
type statusCoder interface {
	StatusCode() int
}

// ClassifyDelete maps a delete call's error to an outcome. Only a 2xx status
// succeeds; errors without an HTTP status are treated as network failures.
func ClassifyDelete(err error) DeleteOutcome {
	if err == nil {
		return DeleteSucceeded
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		switch code := sc.StatusCode(); {
		case code >= 500:
			return DeleteServerError
		case code >= 200 && code < 300:
			return DeleteSucceeded
		default:
			return DeleteClientError
		}
	}
	return DeleteNetworkFailure
}

// Delete asks for confirmation and deletes the section. Only a successful
// response requests a reload; every other outcome queues its own dialog.
func (m *Manager) Delete(ctx context.Context, id int64) (DeleteOutcome, error) {
	m.mu.Lock()
	if m.deleting[id] {
		m.mu.Unlock()
		return DeleteCancelled, ErrSubmitInFlight
	}
	name := ""
	if i := m.indexOf(id); i >= 0 {
		name = m.sections[i].Name
	}
	m.deleting[id] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.deleting, id)
		m.mu.Unlock()
	}()

	if !m.confirm.Confirm(ctx, Prompt{
		Title:   "Are you sure?",
		Text:    "Section \"" + name + "\" will be permanently deleted. This cannot be undone.",
		Level:   LevelWarning,
		Confirm: "Yes, delete it",
	}) {
		return DeleteCancelled, nil
	}

	err := m.backend.DeleteSection(ctx, id)
	outcome := ClassifyDelete(err)

	m.mu.Lock()
	defer m.mu.Unlock()
	switch outcome {
	case DeleteSucceeded:
		m.notify(Dialog, LevelSuccess, MsgDeleted)
		m.needsReload = true
		if m.edit != nil && m.edit.SectionID == id && !m.updating {
			m.edit = nil
		}
	case DeleteClientError:
		m.notify(Dialog, LevelWarning, MsgDeleteRejected)
	case DeleteServerError:
		m.notify(Dialog, LevelError, MsgDeleteServer)
	case DeleteNetworkFailure:
		m.notify(Dialog, LevelError, MsgDeleteNetwork)
	}
	return outcome, err
}
