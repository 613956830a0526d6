package models

// Upload states of an export copy.
const (
	UploadPending   = "pending"
	UploadCompleted = "completed"
)

// ExportUpload tracks the object storage copy of an export file.
type ExportUpload struct {
	LocalPath    string
	Filename     string
	ContentType  string
	UploadStatus string
	URL          string
}
