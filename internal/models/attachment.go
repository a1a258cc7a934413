package models

// AttachmentMeta describes a stored document without its content.
// UploadedAt is milliseconds since the Unix epoch.
type AttachmentMeta struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Filename   string `json:"filename"`
	MIME       string `json:"mime"`
	Size       int64  `json:"size"`
	UploadedAt int64  `json:"uploadedAt"`
}

// Attachment is a stored binary document, e.g. a resume.
type Attachment struct {
	AttachmentMeta
	Content []byte `json:"-"`
}
