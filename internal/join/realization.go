package join

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// newRealizationID tags the log lines of one realization. UUIDv7 ids sort
// by start time.
func newRealizationID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequentialIDs returns realization ids prefix-1, prefix-2, ... for use
// with WithIDs in tests and reproducible logs.
func SequentialIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string {
		return prefix + "-" + strconv.FormatInt(n.Add(1), 10)
	}
}
