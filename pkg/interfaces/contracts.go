package interfaces

import (
	"context"
	"io"
)

// Mailer delivers messages over an outbound channel (SMTP, ...).
// A delivery failure never invalidates a ranking that was already computed.
type Mailer interface {
	// Send delivers the message. It blocks until the remote side accepts it or ctx ends.
	Send(ctx context.Context, msg Message) error
}

// TableParser parses raw tabular content into a Table.
// Used for both file-based input and uploaded forms.
type TableParser interface {
	// Parse reads a table from r.
	Parse(ctx context.Context, r io.Reader) (*Table, error)

	// ParseFile reads a table file from disk and parses it.
	ParseFile(ctx context.Context, path string) (*Table, error)
}

// Formatter writes a report to a writer.
type Formatter interface {
	Format(w io.Writer, report *Report) error
}
