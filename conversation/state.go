package conversation

import "github.com/google/uuid"

// State is the position of a chat inside the capture flow.
type State int

const (
	// StateIdle means no input is expected. A session in StateIdle may
	// still carry a pinned tag so the edit menu on the last rendered
	// announcement keeps working.
	StateIdle State = iota
	StateAwaitingLink
	StateAwaitingGenres
	StateAwaitingYear
	StateAwaitingCountry
	StateAwaitingEditValue
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingLink:
		return "awaiting_link"
	case StateAwaitingGenres:
		return "awaiting_genres"
	case StateAwaitingYear:
		return "awaiting_year"
	case StateAwaitingCountry:
		return "awaiting_country"
	case StateAwaitingEditValue:
		return "awaiting_edit_value"
	}
	return "unknown"
}

// EditField names the single record field an edit sub-flow targets.
type EditField string

const (
	FieldTag     EditField = "tag"
	FieldTitle   EditField = "title"
	FieldArtist  EditField = "artist"
	FieldYear    EditField = "year"
	FieldCountry EditField = "country"
	FieldGenres  EditField = "genres"
)

// EditFields lists every editable field, in menu order.
var EditFields = []EditField{FieldTag, FieldTitle, FieldArtist, FieldYear, FieldCountry, FieldGenres}

// Session is the transient per-chat conversation state. It is never
// persisted; restarting the bot drops all sessions.
type Session struct {
	ID    string // correlation id for logs
	State State

	// Tag is pinned when the record is created and reused for every later
	// store access in the same flow; it is never recomputed from list
	// length.
	Tag    int
	HasTag bool

	// Field is only meaningful in StateAwaitingEditValue.
	Field EditField
}

func newSession() *Session {
	return &Session{ID: uuid.New().String(), State: StateIdle}
}
