package sections

// FeedbackKind distinguishes transient toasts from blocking dialogs.
type FeedbackKind string

const (
	Toast  FeedbackKind = "toast"
	Dialog FeedbackKind = "dialog"
)

// Level is the severity shown with feedback and prompts.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Feedback is one message for the admin.
type Feedback struct {
	Kind    FeedbackKind
	Level   Level
	Message string
}

// Prompt is a confirmation question.
type Prompt struct {
	Title   string
	Text    string
	Level   Level
	Confirm string // confirm button caption
}

// User-facing messages.
const (
	MsgCreated        = "Section created successfully."
	MsgCreateFailed   = "Failed to create section. Please try again."
	MsgUpdated        = "Section updated successfully."
	MsgUpdateFailed   = "Failed to update section. Please try again."
	MsgDeleted        = "Section deleted successfully."
	MsgDeleteRejected = "The section could not be deleted. It may have already been removed."
	MsgDeleteServer   = "The server failed to delete the section. Please try again later."
	MsgDeleteNetwork  = "Could not reach the server. Check your connection and try again."
)
