package models

// Source labels attached to text pieces. Email attachments carry a dynamic
// label naming the enclosing message.
const (
	SourceFileContent = "file content"
	SourceEmailBody   = "email body"
)

// ReportPiece is the normalized unit fed to request assembly. Pieces keep the
// order they were admitted in: documents appear in upload order and an email
// body precedes its own attachments.
type ReportPiece struct {
	Type     ResultType `json:"type"`
	Filename string     `json:"filename"`
	Content  string     `json:"content,omitempty"`
	Source   string     `json:"source,omitempty"`
	Path     string     `json:"path,omitempty"`
	MimeType string     `json:"mime_type,omitempty"`
	Message  string     `json:"message,omitempty"`
}

// NoticeLevel distinguishes user-visible warnings from errors.
type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a user-visible message produced while processing an upload batch.
type Notice struct {
	Level   NoticeLevel
	Message string
}
