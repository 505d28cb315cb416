package model

// Log is the append-only error and warning log carried through a run.
// Error and Warn return a new Log; the receiver is left untouched and the
// returned slices never share a backing array with it.
type Log struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewLog returns an empty log with non-nil slices.
func NewLog() Log {
	return Log{Errors: []string{}, Warnings: []string{}}
}

// Error returns a copy of l with msg appended to the error log.
func (l Log) Error(msg string) Log {
	return Log{Errors: appendCopy(l.Errors, msg), Warnings: l.Warnings}
}

// Warn returns a copy of l with msg appended to the warning log.
func (l Log) Warn(msg string) Log {
	return Log{Errors: l.Errors, Warnings: appendCopy(l.Warnings, msg)}
}

// HasErrors reports whether any error has been recorded.
func (l Log) HasErrors() bool {
	return len(l.Errors) > 0
}

func appendCopy(s []string, msg string) []string {
	out := make([]string, len(s), len(s)+1)
	copy(out, s)
	return append(out, msg)
}
