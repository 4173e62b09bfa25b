package models

// ResultType tags the outcome of processing one uploaded file.
type ResultType string

const (
	TypeText        ResultType = "text"
	TypeVision      ResultType = "vision"
	TypeUnsupported ResultType = "unsupported"
	TypeError       ResultType = "error"
	TypeEmail       ResultType = "email"
)

// ExtractionResult is the uniform output of processing one file. Which fields
// are meaningful depends on Type:
//
//	text        Content
//	vision      Path, MimeType
//	unsupported Message
//	error       Message
//	email       Content (body text, possibly empty) and Attachments
//
// Filename is always set; the extractor falls back to the original file name
// when a decoder leaves it empty.
type ExtractionResult struct {
	Type        ResultType
	Filename    string
	Content     string
	Path        string
	MimeType    string
	Message     string
	Attachments []ExtractionResult
}

// TextResult builds a text extraction result.
func TextResult(filename, content string) ExtractionResult {
	return ExtractionResult{Type: TypeText, Filename: filename, Content: content}
}

// VisionResult builds a result whose content is handed opaquely to the
// remote service.
func VisionResult(filename, path, mimeType string) ExtractionResult {
	return ExtractionResult{Type: TypeVision, Filename: filename, Path: path, MimeType: mimeType}
}

// UnsupportedResult builds a result for a file type the system does not handle.
func UnsupportedResult(filename, message string) ExtractionResult {
	return ExtractionResult{Type: TypeUnsupported, Filename: filename, Message: message}
}

// ErrorResult builds a result for a file that failed to process.
func ErrorResult(filename, message string) ExtractionResult {
	return ExtractionResult{Type: TypeError, Filename: filename, Message: message}
}
