package errors

import "fmt"

// WarningKind classifies a non-fatal pipeline problem.
type WarningKind string

const (
	// WarnParse marks a source unit that failed to parse and was skipped.
	WarnParse WarningKind = "parse"
	// WarnCallScan marks a function whose call list could not be scanned.
	WarnCallScan WarningKind = "call-scan"
	// WarnLayout marks a cluster that fell back to grid placement.
	WarnLayout WarningKind = "layout"
	// WarnTool marks diagnostic output from the structural graph tool.
	WarnTool WarningKind = "tool"
)

// Warning is a recoverable problem reported alongside a successful result.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Subject string      `json:"subject"`
	Message string      `json:"message"`
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.Subject, w.Message)
}

// Warnf builds a Warning with a formatted message.
func Warnf(kind WarningKind, subject, format string, args ...any) Warning {
	return Warning{Kind: kind, Subject: subject, Message: fmt.Sprintf(format, args...)}
}
