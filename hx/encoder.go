package hx

import "github.com/pthm/shipform/lib/encoding"

// Encoder signs or seals props tokens.
type Encoder = encoding.Encoder

// NewEncoder creates an Encoder from key.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}
