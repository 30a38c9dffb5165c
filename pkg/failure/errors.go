package failure

type Severity int

// conversion control flow
const (
	// SeverityFatal aborts the document being converted. No partial
	// document may be emitted once a fatal error surfaces.
	SeverityFatal Severity = iota
	// SeverityRecoverable is handled locally with an audit trail and
	// never interrupts the conversion.
	SeverityRecoverable
)

type ClassifiedError interface {
	error
	Severity() Severity
}
