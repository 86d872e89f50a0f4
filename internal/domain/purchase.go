package domain

import (
	"encoding/json"
	"time"
)

// Purchase is a recorded sale. Items is stored as-is; its structure belongs
// to the client.
type Purchase struct {
	ID    int
	Items json.RawMessage
	Date  time.Time
}
