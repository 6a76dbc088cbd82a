package bot

import (
	tele "gopkg.in/telebot.v3"

	"albumbot/conversation"
)

// Callback buttons are declared once so every handler is registered against
// a fixed unique. No string-compare dispatch on callback data.
var (
	markup = &tele.ReplyMarkup{}

	btnOpenEdit = markup.Data("✏ Edit", "open_edit")
	btnCancel   = markup.Data("❌ Cancel", "cancel")
	btnDone     = markup.Data("✅ Confirm", "done")
	btnBack     = markup.Data("⬅️ Back", "back")

	fieldButtons = map[conversation.EditField]tele.Btn{
		conversation.FieldTag:     markup.Data("✏ Tag", "edit_tag"),
		conversation.FieldTitle:   markup.Data("✏ Title", "edit_title"),
		conversation.FieldArtist:  markup.Data("✏ Artist", "edit_artist"),
		conversation.FieldYear:    markup.Data("✏ Year", "edit_year"),
		conversation.FieldCountry: markup.Data("✏ Country", "edit_country"),
		conversation.FieldGenres:  markup.Data("✏ Genres", "edit_genres"),
	}
)

// mainMenu is the action row under a rendered announcement.
func mainMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	m.Inline(
		m.Row(btnOpenEdit, btnCancel),
		m.Row(btnDone),
	)
	return m
}

// editMenu is the per-field selector opened from the main menu.
func editMenu() *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(conversation.EditFields)+1)
	for _, field := range conversation.EditFields {
		rows = append(rows, m.Row(fieldButtons[field]))
	}
	rows = append(rows, m.Row(btnBack))
	m.Inline(rows...)
	return m
}
