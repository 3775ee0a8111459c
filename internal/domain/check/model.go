// Package check holds the plagiarism check request, its validation rules and
// the submission state machine.
package check

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Mode selects which server endpoint a check goes to.
type Mode string

const (
	ModeInternet Mode = "internet"
	ModeCompare  Mode = "compare"
)

// MaxFileMB is the per-file upload cap in mebibytes.
const MaxFileMB = 10

// MaxFileSize is MaxFileMB in bytes.
const MaxFileSize = MaxFileMB * 1024 * 1024

// AllowedExtensions is the upload whitelist, in display order.
var AllowedExtensions = []string{".txt", ".pdf", ".docx", ".py", ".java", ".c", ".cpp", ".js"}

// User-visible validation messages.
const (
	MsgSelectFile      = "Please select a file."
	MsgSelectBothFiles = "Please select both files."
)

// MsgInvalidFile names the whitelist and the size cap.
var MsgInvalidFile = fmt.Sprintf("Allowed: %s. Max %dMB.", strings.Join(AllowedExtensions, ", "), MaxFileMB)

// ParseMode accepts "internet" or "compare", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeInternet:
		return ModeInternet, nil
	case ModeCompare:
		return ModeCompare, nil
	default:
		return "", fmt.Errorf("unknown check mode %q (want internet or compare)", s)
	}
}

// File is one document chosen for upload.
type File struct {
	Name string
	Size int64
	Data []byte
}

// NewFile wraps bytes read from disk or a form.
func NewFile(name string, data []byte) *File {
	return &File{Name: name, Size: int64(len(data)), Data: data}
}

// Allowed reports whether the file passes the extension and size rules.
// PRE: f is non-nil
// POST: true iff extension is whitelisted (case-insensitive) and Size <= MaxFileSize
func (f *File) Allowed() bool {
	if f.Size < 0 || f.Size > MaxFileSize {
		return false
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// Request is the input to the submission pipeline.
// INVARIANT: File2 is only consulted when Mode == ModeCompare.
type Request struct {
	Mode  Mode
	File1 *File
	File2 *File
}

// ValidationError is a client-side rejection that never reaches the network.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks presence and file rules for the selected mode.
// PRE: none
// POST: Returns nil if the request may be sent, *ValidationError otherwise
func (r Request) Validate() error {
	switch r.Mode {
	case ModeInternet:
		if r.File1 == nil {
			return &ValidationError{Message: MsgSelectFile}
		}
		if !r.File1.Allowed() {
			return &ValidationError{Message: MsgInvalidFile}
		}
	case ModeCompare:
		if r.File1 == nil || r.File2 == nil {
			return &ValidationError{Message: MsgSelectBothFiles}
		}
		if !r.File1.Allowed() || !r.File2.Allowed() {
			return &ValidationError{Message: MsgInvalidFile}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("Unknown check mode %q.", r.Mode)}
	}
	return nil
}

// Files returns the files that will be uploaded for the mode.
func (r Request) Files() []*File {
	if r.Mode == ModeCompare {
		return []*File{r.File1, r.File2}
	}
	return []*File{r.File1}
}
