// Package ical renders RFC 5545 iCalendar feeds of item bookings.
package ical

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sakif/shareit/internal/model"
)

// maxLineOctets is the RFC 5545 limit for a content line, excluding CRLF.
const maxLineOctets = 75

// Event is one VEVENT.
type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Status      string // TENTATIVE, CONFIRMED, CANCELLED
	Stamp       time.Time
}

// Feed holds metadata for the VCALENDAR wrapper.
type Feed struct {
	Name string
	TTL  time.Duration
}

// BookingEvents turns the bookings of item into events. Approved bookings
// are CONFIRMED, waiting ones TENTATIVE and rejected ones CANCELLED.
func BookingEvents(item model.Item, bookings []model.Booking, stamp time.Time) []Event {
	events := make([]Event, 0, len(bookings))
	for _, b := range bookings {
		events = append(events, Event{
			UID:         fmt.Sprintf("booking-%d@shareit", b.ID),
			Summary:     fmt.Sprintf("%s booked by %s", item.Name, b.Booker.Name),
			Description: fmt.Sprintf("Booking %d of item %d is %s.", b.ID, item.ID, b.Status),
			Start:       b.Start,
			End:         b.End,
			Status:      eventStatus(b.Status),
			Stamp:       stamp,
		})
	}
	return events
}

func eventStatus(s model.BookingStatus) string {
	switch s {
	case model.StatusApproved:
		return "CONFIRMED"
	case model.StatusRejected:
		return "CANCELLED"
	default:
		return "TENTATIVE"
	}
}

// Generate produces a complete iCalendar document from a feed and its events.
func Generate(feed Feed, events []Event) string {
	var b strings.Builder

	b.WriteString("BEGIN:VCALENDAR\r\n")
	b.WriteString("VERSION:2.0\r\n")
	b.WriteString("PRODID:-//shareit//bookings//EN\r\n")
	b.WriteString("METHOD:PUBLISH\r\n")
	b.WriteString("CALSCALE:GREGORIAN\r\n")

	writeProp(&b, "X-WR-CALNAME", escapeText(feed.Name))
	if feed.TTL > 0 {
		dur := formatDuration(feed.TTL)
		writeProp(&b, "REFRESH-INTERVAL;VALUE=DURATION", dur)
		writeProp(&b, "X-PUBLISHED-TTL", dur)
	}

	for _, e := range events {
		writeEvent(&b, e)
	}

	b.WriteString("END:VCALENDAR\r\n")
	return b.String()
}

func writeEvent(b *strings.Builder, e Event) {
	b.WriteString("BEGIN:VEVENT\r\n")
	writeProp(b, "UID", e.UID)
	writeProp(b, "DTSTAMP", formatDateTime(e.Stamp))
	writeProp(b, "DTSTART", formatDateTime(e.Start))
	writeProp(b, "DTEND", formatDateTime(e.End))
	writeProp(b, "SUMMARY", escapeText(e.Summary))
	if e.Description != "" {
		writeProp(b, "DESCRIPTION", escapeText(e.Description))
	}
	if e.Status != "" {
		writeProp(b, "STATUS", e.Status)
	}
	b.WriteString("END:VEVENT\r\n")
}

// writeProp folds lines longer than 75 octets. Folds never split a UTF-8
// sequence; continuation lines start with a space, which counts toward
// their length.
func writeProp(b *strings.Builder, name, value string) {
	line := name + ":" + value
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// formatDuration converts a duration to an iCal DURATION value (PT1H, PT30M, P1D).
func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour {
		return fmt.Sprintf("P%dD", int(d/(24*time.Hour)))
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("PT%dH%dM", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("PT%dH", hours)
	default:
		return fmt.Sprintf("PT%dM", minutes)
	}
}

// escapeText escapes special characters per RFC 5545 section 3.3.11.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, ";", `\;`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "\r\n", `\n`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
