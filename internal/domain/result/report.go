package result

import "fmt"

// Report is a server-generated PDF for one result.
type Report struct {
	Filename string
	Data     []byte
}

// ReportFilename is the name a downloaded report is saved under.
func ReportFilename(id ID) string {
	return fmt.Sprintf("plagiarism-report-%s.pdf", id)
}
