package export

import (
	"encoding/csv"
	"io"
	"time"

	"flytz/internal/types"
)

// WaitlistFilename is the suggested download name for the waitlist backup.
const WaitlistFilename = "flytz_waitlist_backup.csv"

// WaitlistCSV writes the waitlist backup with a Date,Email header. Dates are
// RFC 3339 in UTC.
func WaitlistCSV(entries []types.WaitlistEntry, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Email"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Date.UTC().Format(time.RFC3339), e.Email}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
