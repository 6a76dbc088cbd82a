package bot

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"albumbot/conversation"
	"albumbot/logger"
	"albumbot/model"
	"albumbot/render"
	"albumbot/store"
)

// handleTimeout bounds the external calls made while handling one update
// (lookup, thumbnail fetch). The update blocks until they return or time out.
const handleTimeout = 45 * time.Second

// Bot wires the conversation engine to the Telegram transport. All domain
// decisions live in the engine; this layer only translates updates and
// replies.
type Bot struct {
	tb     *tele.Bot
	engine *conversation.Engine
	store  store.RecordStore
	thumbs *render.Thumbnailer
}

// New creates the bot and registers all handlers. An invalid token surfaces
// here, from telebot's initial getMe call.
func New(token string, engine *conversation.Engine, st store.RecordStore) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("update handling failed", logger.ErrorField(err))
		},
	})
	if err != nil {
		return nil, err
	}

	b := &Bot{
		tb:     tb,
		engine: engine,
		store:  st,
		thumbs: render.NewThumbnailer(),
	}
	b.registerHandlers()
	return b, nil
}

// Start runs the long-polling loop. It blocks until Stop is called.
func (b *Bot) Start() {
	logger.Info("bot started", logger.String("username", b.tb.Me.Username))
	b.tb.Start()
}

// Stop terminates the long-polling loop.
func (b *Bot) Stop() {
	b.tb.Stop()
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/start", b.onStart)
	b.tb.Handle("/help", b.onHelp)
	b.tb.Handle("/new", b.onNew)
	b.tb.Handle("/cancel", b.onCancel)
	b.tb.Handle(tele.OnText, b.onText)

	b.tb.Handle(&btnOpenEdit, b.onOpenEdit)
	b.tb.Handle(&btnBack, b.onBack)
	b.tb.Handle(&btnCancel, b.onCancelButton)
	b.tb.Handle(&btnDone, b.onDone)

	for field, btn := range fieldButtons {
		field := field
		btn := btn
		b.tb.Handle(&btn, func(c tele.Context) error {
			if err := c.Respond(); err != nil {
				return err
			}
			return b.deliver(c, b.engine.BeginEdit(userID(c), field))
		})
	}
}

// userID is the ledger key for a sender.
func userID(c tele.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

func displayName(u *tele.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (b *Bot) onStart(c tele.Context) error {
	id := userID(c)
	created, err := b.store.EnsureUser(id)
	if err != nil {
		logger.Error("failed to register user", logger.String("user", id), logger.ErrorField(err))
		return c.Send(conversation.MsgStoreError)
	}
	logger.Info("user connected",
		logger.String("user", id),
		logger.String("name", displayName(c.Sender())),
		logger.Bool("new", created))
	return c.Send(conversation.Greeting(displayName(c.Sender())))
}

func (b *Bot) onHelp(c tele.Context) error {
	return c.Send(conversation.MsgHelp)
}

func (b *Bot) onNew(c tele.Context) error {
	return b.deliver(c, b.engine.StartNew(userID(c)))
}

func (b *Bot) onCancel(c tele.Context) error {
	return b.deliver(c, b.engine.Cancel(userID(c)))
}

func (b *Bot) onText(c tele.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	reply, err := b.engine.HandleText(ctx, userID(c), c.Text())
	if err != nil {
		logger.Error("failed to handle message",
			logger.String("user", userID(c)),
			logger.ErrorField(err))
		return c.Send(conversation.MsgStoreError)
	}
	return b.deliver(c, reply)
}

func (b *Bot) onOpenEdit(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit(editMenu())
}

func (b *Bot) onBack(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	return c.Edit(mainMenu())
}

func (b *Bot) onCancelButton(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	return b.deliver(c, b.engine.Cancel(userID(c)))
}

func (b *Bot) onDone(c tele.Context) error {
	if err := c.Respond(); err != nil {
		return err
	}
	return b.deliver(c, b.engine.Confirm(userID(c)))
}

// deliver sends an engine reply: a full announcement when a record is
// attached, plain text otherwise, silence when the reply is empty.
func (b *Bot) deliver(c tele.Context, reply conversation.Reply) error {
	if reply.Record != nil {
		return b.sendAnnouncement(c, reply.Record)
	}
	if reply.Text != "" {
		return c.Send(reply.Text)
	}
	return nil
}

// sendAnnouncement renders the record with its cover and action menu. When
// the cover cannot be fetched (placeholder records have no thumbnail) the
// caption is sent as a plain message instead.
func (b *Bot) sendAnnouncement(c tele.Context, rec *model.Record) error {
	caption := render.Caption(rec)

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if rec.Data.ThumbnailURL != "" {
		data, err := b.thumbs.Fetch(ctx, rec.Data.ThumbnailURL)
		if err == nil {
			photo := &tele.Photo{
				File:    tele.FromReader(bytes.NewReader(data)),
				Caption: caption,
			}
			return c.Send(photo, mainMenu(), tele.ModeHTML)
		}
		logger.Warn("cover fetch failed, sending caption only",
			logger.String("url", rec.Data.ThumbnailURL),
			logger.ErrorField(err))
	}
	return c.Send(caption, mainMenu(), tele.ModeHTML)
}
