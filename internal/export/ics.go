// Package export renders deals and local records into files other tools open:
// iCalendar events for calendar apps and CSV for spreadsheets.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"flytz/internal/types"
)

// ErrNoSegments is returned for deals without any flight segment.
var ErrNoSegments = errors.New("deal has no segments")

const icsLineLimit = 75

// DealICS builds an iCalendar file with a single event spanning the deal from
// first departure to last arrival. Times are the provider's local times,
// written as floating date-times.
func DealICS(deal types.FlightDeal, now time.Time) ([]byte, error) {
	if len(deal.Segments) == 0 {
		return nil, ErrNoSegments
	}
	first := deal.Segments[0]
	last := deal.Segments[len(deal.Segments)-1]

	summary := fmt.Sprintf("✈️ %s to %s - %s %s", first.Departure.IATACode, last.Arrival.IATACode, deal.Price.Currency, deal.Price.Total)

	desc := []string{
		"Flight Deal found via Flytz.",
		fmt.Sprintf("Price: %s %s", deal.Price.Currency, deal.Price.Total),
		fmt.Sprintf("Airlines: %s", strings.Join(deal.Airlines, ", ")),
		fmt.Sprintf("Duration: %s", deal.Duration),
		"",
		"Itinerary:",
	}
	for i, s := range deal.Segments {
		desc = append(desc,
			fmt.Sprintf("Leg %d: %s%s (%s -> %s)", i+1, s.CarrierCode, s.Number, s.Departure.IATACode, s.Arrival.IATACode),
			fmt.Sprintf("   Dep: %s", strings.Replace(s.Departure.At, "T", " ", 1)),
			fmt.Sprintf("   Arr: %s", strings.Replace(s.Arrival.At, "T", " ", 1)),
		)
	}

	utc := now.UTC()
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Flytz//Travel Strategy//EN",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s-%d@flytz.app", deal.ID, utc.UnixMilli()),
		"DTSTAMP:" + utc.Format("20060102T150405") + "Z",
		"DTSTART:" + icsDate(first.Departure.At),
		"DTEND:" + icsDate(last.Arrival.At),
		"SUMMARY:" + escapeText(summary),
		"DESCRIPTION:" + escapeText(strings.Join(desc, "\n")),
		"LOCATION:" + escapeText(first.Departure.IATACode+" Airport"),
		"END:VEVENT",
		"END:VCALENDAR",
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(fold(l))
		b.WriteString("\r\n")
	}
	return []byte(b.String()), nil
}

// icsDate turns "2025-05-10T18:00" or "2025-05-10T18:00:00.000" into
// "20250510T180000".
func icsDate(iso string) string {
	clean := strings.NewReplacer("-", "", ":", "").Replace(iso)
	clean, _, _ = strings.Cut(clean, ".")
	if len(clean) == len("20060102T1504") {
		clean += "00"
	}
	return clean
}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// fold splits a content line into 75-octet chunks joined by CRLF and a space,
// never cutting a UTF-8 sequence.
func fold(line string) string {
	if len(line) <= icsLineLimit {
		return line
	}
	var b strings.Builder
	limit := icsLineLimit
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			// no rune start in reach: invalid UTF-8, cut at the octet limit
			cut = limit
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// continuation lines lose one octet to the leading space
		limit = icsLineLimit - 1
	}
	b.WriteString(line)
	return b.String()
}

// ICSFilename is the suggested download name for a deal's calendar file.
func ICSFilename(dealID string) string {
	return fmt.Sprintf("flytz_flight_%s.ics", dealID)
}
