package corpus

import (
	"fmt"
	"unicode/utf8"
)

// Document is a unit of analysis identified by a caller supplied id.
type Document struct {
	ID   string
	Text string
	// Err carries an upstream failure, for example text extraction, recorded as a failed entry.
	Err error
}

// Validate checks the document is analyzable.
func (d *Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty document id", ErrInput)
	}
	if d.Err != nil {
		return fmt.Errorf("%w: %v", ErrInput, d.Err)
	}
	if !utf8.ValidString(d.Text) {
		return fmt.Errorf("%w: %v is not valid UTF-8", ErrInput, d.ID)
	}
	return nil
}
