package broadcast

import (
	"fmt"
	"strconv"
	"time"

	"tc.com/index-collector/pkg/index"
)

// FormatResult renders one index result in the canonical wire format:
//
//	INDEX: <name> | TIMESTAMP: <RFC3339> | VALUE: <decimal>
func FormatResult(r index.Result) string {
	return fmt.Sprintf("INDEX: %s | TIMESTAMP: %s | VALUE: %s",
		r.Name,
		r.Timestamp.Format(time.RFC3339),
		strconv.FormatFloat(r.Value, 'f', -1, 64))
}
