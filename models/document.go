package models

import "time"

// Document identifies one uploaded file. It is created by the backend on
// upload and is immutable on this side; every downstream artifact references
// it through DocumentID.
type Document struct {
	// ID is the backend-assigned UUID for the document.
	ID string `json:"id"`

	// Filename is the original name of the uploaded file.
	Filename string `json:"filename"`

	// FileType is the file extension without the leading dot (e.g. "pdf", "docx").
	FileType string `json:"file_type"`

	// UploadedAt records when the backend accepted the upload.
	UploadedAt time.Time `json:"uploaded_at"`
}
