package repository

// Slot is the content of a single named key together with its version token.
// Versions are opaque to callers and only compared for equality.
type Slot struct {
	Data    []byte
	Version string
}
