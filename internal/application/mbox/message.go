// Package mbox converts maildir folders to mbox files.
package mbox

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// AsctimeLayout is the date format of an mbox "From " separator line.
const AsctimeLayout = "Mon Jan _2 15:04:05 2006"

// DefaultSender is used when a message has no parseable From address.
const DefaultSender = "MAILER-DAEMON"

var (
	angleAddr = regexp.MustCompile(`<([^<>\s]+@[^<>\s]+)>`)
	bareAddr  = regexp.MustCompile(`([^\s<>"]+@[^\s<>"]+)`)
)

// Header is the envelope data an mbox separator needs.
type Header struct {
	From string
	Date string // raw Date header, empty when absent
}

// UnfoldHeaders returns the header lines of a message with continuation
// lines joined by a single space. Headers end at the first empty line.
func UnfoldHeaders(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		if (line[0] == ' ' || line[0] == '\t') && len(out) > 0 {
			out[len(out)-1] += " " + strings.TrimSpace(line)
			continue
		}
		out = append(out, line)
	}
	return out
}

// ParseHeader extracts the sender address and date from a raw message.
func ParseHeader(content string) Header {
	var h Header
	for _, line := range UnfoldHeaders(content) {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(name) {
		case "from":
			if h.From == "" {
				h.From = ExtractAddress(value)
			}
		case "date":
			if h.Date == "" {
				h.Date = strings.TrimSpace(value)
			}
		}
	}
	return h
}

// ExtractAddress returns the <x@y> address in a From value, else the first
// bare x@y, else "".
func ExtractAddress(value string) string {
	if m := angleAddr.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	if m := bareAddr.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return ""
}

// ConvertDate reformats an RFC 2822 date to asctime. Unparseable input is
// returned unchanged.
func ConvertDate(raw string) string {
	t, err := mail.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(AsctimeLayout)
}

// Separator builds the "From " line that opens a message in an mbox. A
// missing date falls back to mtime.
func Separator(h Header, mtime time.Time) string {
	from := h.From
	if from == "" {
		from = DefaultSender
	}
	date := mtime.Format(AsctimeLayout)
	if h.Date != "" {
		date = ConvertDate(h.Date)
	}
	return "From " + from + "  " + date + "\n"
}
