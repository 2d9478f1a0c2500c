package domain

import "fmt"

// DocumentsStatus gates traffic while the index is reloaded.
type DocumentsStatus string

const (
	// StatusBusy blocks all document-serving traffic.
	StatusBusy DocumentsStatus = "busy"
	// StatusReady admits traffic.
	StatusReady DocumentsStatus = "ready"
)

// ControlRecordID is the fixed id of the status record in the control index.
const ControlRecordID = "1"

// ParseDocumentsStatus accepts only busy and ready.
func ParseDocumentsStatus(s string) (DocumentsStatus, error) {
	switch DocumentsStatus(s) {
	case StatusBusy, StatusReady:
		return DocumentsStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// ControlRecord is the document stored under ControlRecordID.
type ControlRecord struct {
	Status  DocumentsStatus `json:"status"`
	Created string          `json:"created"`
}

// ControlTimeLayout formats ControlRecord.Created in local time.
const ControlTimeLayout = "2006-01-02 15:04:05"
