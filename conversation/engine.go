package conversation

import (
	"context"
	"net/url"
	"strconv"
	"sync"

	"albumbot/config"
	"albumbot/logger"
	"albumbot/model"
	"albumbot/resolver"
	"albumbot/store"
)

// Reply is what the engine wants said back to the user. When Record is set
// the transport renders the full announcement (cover, caption, action
// buttons); otherwise only Text is sent. A zero Reply means stay silent.
type Reply struct {
	Text   string
	Record *model.Record
}

// Engine drives the per-chat capture state machine. It is transport
// agnostic: the Telegram layer feeds it user identifiers and raw text and
// sends whatever Reply comes back. One inbound message per chat is processed
// at a time.
type Engine struct {
	store    store.RecordStore
	resolver resolver.Resolver
	fallback config.FallbackPolicy

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates an engine on top of the given store and resolver.
func New(st store.RecordStore, r resolver.Resolver, fallback config.FallbackPolicy) *Engine {
	return &Engine{
		store:    st,
		resolver: r,
		fallback: fallback,
		sessions: make(map[string]*Session),
	}
}

// session returns the user's session, creating an idle one if needed.
func (e *Engine) session(userID string) *Session {
	sess, ok := e.sessions[userID]
	if !ok {
		sess = newSession()
		e.sessions[userID] = sess
	}
	return sess
}

// StartNew begins the capture flow, superseding any session in progress.
func (e *Engine) StartNew(userID string) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := newSession()
	sess.State = StateAwaitingLink
	e.sessions[userID] = sess

	logger.Info("capture flow started",
		logger.String("user", userID),
		logger.String("session", sess.ID))
	return Reply{Text: MsgAskLink}
}

// Cancel ends the session with an acknowledgement. Already-persisted partial
// records stay in the ledger as-is; there is no rollback.
func (e *Engine) Cancel(userID string) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sess, ok := e.sessions[userID]; ok {
		logger.Info("session cancelled",
			logger.String("user", userID),
			logger.String("session", sess.ID),
			logger.String("state", sess.State.String()))
	}
	delete(e.sessions, userID)
	return Reply{Text: MsgCancelled}
}

// Confirm finalizes the current record and destroys the session.
func (e *Engine) Confirm(userID string) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.sessions, userID)
	return Reply{Text: MsgDone}
}

// BeginEdit enters the edit sub-flow for one field of the record pinned in
// the session. Only one field is editable per invocation; the menu has to be
// reopened for a second edit.
func (e *Engine) BeginEdit(userID string, field EditField) Reply {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.session(userID)
	if !sess.HasTag {
		return Reply{Text: MsgNoRecord}
	}

	sess.State = StateAwaitingEditValue
	sess.Field = field
	logger.Info("edit sub-flow started",
		logger.String("user", userID),
		logger.String("session", sess.ID),
		logger.String("field", string(field)),
		logger.Int("tag", sess.Tag))
	return Reply{Text: editPrompts[field]}
}

// HandleText advances the state machine with one free-text input. The
// returned error means a persistence failure; validation and lookup problems
// are expressed as conversational replies.
func (e *Engine) HandleText(ctx context.Context, userID, text string) (Reply, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.session(userID)
	switch sess.State {
	case StateAwaitingLink:
		return e.handleLink(ctx, userID, sess, text)
	case StateAwaitingGenres:
		return e.handleGenres(userID, sess, text)
	case StateAwaitingYear:
		return e.handleYear(userID, sess, text)
	case StateAwaitingCountry:
		return e.handleCountry(userID, sess, text)
	case StateAwaitingEditValue:
		return e.handleEditValue(userID, sess, text)
	}
	// No conversation in progress; free text outside a flow is ignored.
	return Reply{}, nil
}

// isURL is a syntactic check only, reachability is the resolver's problem.
func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (e *Engine) handleLink(ctx context.Context, userID string, sess *Session, text string) (Reply, error) {
	if !isURL(text) {
		return Reply{Text: MsgBadLink}, nil
	}

	var rec *model.Record
	res, err := e.resolver.Resolve(ctx, text)
	if err != nil {
		logger.Warn("link resolution failed",
			logger.String("user", userID),
			logger.String("session", sess.ID),
			logger.String("url", text),
			logger.ErrorField(err))
		if e.fallback == config.FallbackReject {
			return Reply{Text: MsgUnresolvable}, nil
		}
		rec = model.NewPlaceholderRecord(text)
	} else {
		rec = &model.Record{URL: res.PageURL, Data: res.Entity}
	}

	tag, err := e.store.Append(userID, rec)
	if err != nil {
		return Reply{}, err
	}
	sess.Tag = tag
	sess.HasTag = true
	sess.State = StateAwaitingGenres

	logger.Info("record created",
		logger.String("user", userID),
		logger.String("session", sess.ID),
		logger.Int("tag", tag),
		logger.String("title", rec.Data.Title))
	return Reply{Text: MsgAskGenres}, nil
}

func (e *Engine) handleGenres(userID string, sess *Session, text string) (Reply, error) {
	_, err := e.store.Update(userID, sess.Tag, func(rec *model.Record) error {
		rec.Genres = model.SplitGenres(text)
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	sess.State = StateAwaitingYear
	return Reply{Text: MsgAskYear}, nil
}

func (e *Engine) handleYear(userID string, sess *Session, text string) (Reply, error) {
	if !model.IsYear(text) {
		return Reply{Text: MsgBadYear}, nil
	}
	_, err := e.store.Update(userID, sess.Tag, func(rec *model.Record) error {
		rec.Year = text
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	sess.State = StateAwaitingCountry
	return Reply{Text: MsgAskCountry}, nil
}

func (e *Engine) handleCountry(userID string, sess *Session, text string) (Reply, error) {
	rec, err := e.store.Update(userID, sess.Tag, func(rec *model.Record) error {
		rec.Country = text
		return nil
	})
	if err != nil {
		return Reply{}, err
	}
	// The flow is complete; the pinned tag stays so the announcement's edit
	// menu keeps resolving this record.
	sess.State = StateIdle

	logger.Info("record captured",
		logger.String("user", userID),
		logger.String("session", sess.ID),
		logger.Int("tag", rec.Tag))
	return Reply{Record: rec}, nil
}

func (e *Engine) handleEditValue(userID string, sess *Session, text string) (Reply, error) {
	var apply func(*model.Record) error

	switch sess.Field {
	case FieldTag:
		newTag, err := strconv.Atoi(text)
		if err != nil {
			return Reply{Text: MsgBadTag}, nil
		}
		// Tags identify records; moving onto another record's tag would
		// make later edits ambiguous.
		if newTag != sess.Tag {
			if _, err := e.store.Get(userID, newTag); err == nil {
				return Reply{Text: MsgTagTaken}, nil
			}
		}
		apply = func(rec *model.Record) error {
			rec.Tag = newTag
			return nil
		}
	case FieldTitle:
		apply = func(rec *model.Record) error {
			rec.Data.Title = text
			return nil
		}
	case FieldArtist:
		apply = func(rec *model.Record) error {
			rec.Data.ArtistName = text
			return nil
		}
	case FieldYear:
		// Edits go through the same digit check as the capture flow.
		if !model.IsYear(text) {
			return Reply{Text: MsgBadYear}, nil
		}
		apply = func(rec *model.Record) error {
			rec.Year = text
			return nil
		}
	case FieldCountry:
		apply = func(rec *model.Record) error {
			rec.Country = text
			return nil
		}
	case FieldGenres:
		apply = func(rec *model.Record) error {
			rec.Genres = model.SplitGenres(text)
			return nil
		}
	default:
		sess.State = StateIdle
		return Reply{}, nil
	}

	rec, err := e.store.Update(userID, sess.Tag, apply)
	if err != nil {
		return Reply{}, err
	}

	logger.Info("record edited",
		logger.String("user", userID),
		logger.String("session", sess.ID),
		logger.String("field", string(sess.Field)),
		logger.Int("tag", rec.Tag))

	// A tag edit moves the record; keep the pin on it.
	sess.Tag = rec.Tag
	sess.State = StateIdle
	sess.Field = ""
	return Reply{Record: rec}, nil
}
