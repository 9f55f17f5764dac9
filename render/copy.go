package render

import "time"

// CopiedDuration is how long a copy control shows its acknowledgment.
const CopiedDuration = 2 * time.Second

const (
	LabelCopy   = "Copy"
	LabelCopied = "Copied"
)

// Clipboard is write-only access to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// CopyIndicator tracks the transient "Copied" state of one copy control.
// The zero value shows "Copy".
type CopyIndicator struct {
	at time.Time
}

// Copy writes text verbatim. The indicator only flips when the write succeeds;
// the error is for the caller to log.
func (c *CopyIndicator) Copy(text string, cb Clipboard, now time.Time) error {
	if err := cb.WriteAll(text); err != nil {
		return err
	}
	c.at = now
	return nil
}

// Copied reports whether the acknowledgment is still showing at now.
func (c CopyIndicator) Copied(now time.Time) bool {
	if c.at.IsZero() {
		return false
	}
	return now.Sub(c.at) < CopiedDuration
}

func (c CopyIndicator) Label(now time.Time) string {
	if c.Copied(now) {
		return LabelCopied
	}
	return LabelCopy
}
