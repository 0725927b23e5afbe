package sale

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// generateReceiptNumber creates a human-readable receipt number:
// RCP-YYYYMMDD-XXXXXX. The short random suffix can collide under
// concurrent load; the unique index on receipts.number is the actual
// uniqueness guarantee, and the engine regenerates on a violation.
func generateReceiptNumber(now time.Time) string {
	date := now.UTC().Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("RCP-%s-%s", date, suffix)
}
