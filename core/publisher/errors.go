package publisher

import "errors"

// ErrNotConnected is returned when the transport lost its connection and the
// schedule could not be handed over.
var ErrNotConnected = errors.New("publisher not connected")
