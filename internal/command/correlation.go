package command

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewCorrelationID returns a request id of the form req_<unix-millis>_<suffix>.
// The suffix is the first eight hex digits of a random UUID.
func NewCorrelationID() string {
	return newCorrelationID(time.Now())
}

func newCorrelationID(now time.Time) string {
	return fmt.Sprintf("req_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}
