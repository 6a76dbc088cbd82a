package conversation

import "fmt"

// User-facing conversation texts. Kept in one place so the tone stays
// consistent across the flow.
const (
	MsgHelp         = "To register a new release hit /new."
	MsgAskLink      = "Send a link to the release."
	MsgBadLink      = "That doesn't look like a link. Send it again."
	MsgUnresolvable = "Couldn't find that release on the configured platform. Send another link."
	MsgAskGenres    = "Send the genres, comma separated."
	MsgAskYear      = "Send the release year."
	MsgBadYear      = "The year must be digits only. Send it again."
	MsgAskCountry   = "Send the country."
	MsgBadTag       = "The tag must be a number. Send it again."
	MsgTagTaken     = "That tag already belongs to another record. Send a different one."
	MsgCancelled    = "Cancelled."
	MsgDone         = "Saved. Bye!"
	MsgNoRecord     = "There is no record to edit. Hit /new to register a release."
	MsgStoreError   = "Something went wrong while saving. Try again."
)

// Greeting returns the /start reply for the given display name.
func Greeting(name string) string {
	return fmt.Sprintf("Hi %s! To register a new release hit /new.", name)
}

// editPrompts maps each editable field to its replacement-value prompt.
var editPrompts = map[EditField]string{
	FieldTag:     "Send the new tag.",
	FieldTitle:   "Send the new title.",
	FieldArtist:  "Send the new artist.",
	FieldYear:    "Send the new year.",
	FieldCountry: "Send the new country.",
	FieldGenres:  "Send the new genres, comma separated.",
}
