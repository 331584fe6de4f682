package entity

// ReceiptFile is a user-selected receipt: the file handle staged by the
// new-bill form until it is uploaded together with the record.
type ReceiptFile struct {
	FileName string
	MimeType string // declared content kind
	Content  []byte
	Size     int64
}

// NewReceiptFile creates a receipt file handle from its content
func NewReceiptFile(fileName, mimeType string, content []byte) *ReceiptFile {
	return &ReceiptFile{
		FileName: fileName,
		MimeType: mimeType,
		Content:  content,
		Size:     int64(len(content)),
	}
}

// Session identifies the current submitter. It is passed explicitly to the
// workflows and store clients.
type Session struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

// IsAdmin reports whether the session belongs to an administrator
func (s Session) IsAdmin() bool {
	return s.Type == UserTypeAdmin
}
