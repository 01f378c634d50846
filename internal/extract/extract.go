package extract

import (
	"strings"

	"github.com/pbxtools/pbxray/internal/record"
)

// Message markers that gate secondary extraction. The SIP and registration
// checks are mutually exclusive and evaluated in this order; the CDR and
// system event checks run independently of them.
const (
	markSipTransmit = "Transmitting SIP"
	markSipReceive  = "Received SIP"
	markCDRInsert   = "INSERT INTO cdr"

	levelError   = "ERROR"
	levelWarning = "WARNING"
)

// Extractor classifies log lines and extracts typed records from them.
// It holds no mutable state, so a single instance may serve any number of
// goroutines.
type Extractor struct {
	pats Patterns
}

// New returns an Extractor using the given pattern set.
func New(pats Patterns) *Extractor {
	return &Extractor{pats: pats}
}

// ExtractLine parses one trimmed, non-empty line and appends every record
// it yields to b. A line that does not match the generic log-line pattern
// contributes nothing; malformed content within a matching line yields
// nothing for the affected record type and never aborts the line.
func (e *Extractor) ExtractLine(line string, b *record.Bundle) {
	entry, ok := e.parseEntry(line)
	if !ok {
		return
	}
	b.Entries = append(b.Entries, entry)

	msg := entry.Message
	lower := strings.ToLower(msg)

	if strings.Contains(msg, markCDRInsert) {
		if cr, ok := e.callRecord(msg); ok {
			b.Calls = append(b.Calls, cr)
		}
	}

	switch {
	case strings.Contains(msg, markSipTransmit):
		if m, ok := e.sipMessage(entry, record.DirectionTransmit); ok {
			b.SipMessages = append(b.SipMessages, m)
		}
	case strings.Contains(msg, markSipReceive):
		if m, ok := e.sipMessage(entry, record.DirectionReceive); ok {
			b.SipMessages = append(b.SipMessages, m)
		}
	case strings.Contains(lower, "register"):
		b.Registrations = append(b.Registrations, e.registrationEvent(entry, lower))
	}

	if entry.Level == levelError || entry.Level == levelWarning {
		b.SystemEvents = append(b.SystemEvents, e.systemEvent(entry, lower))
	}
}

// parseEntry matches the generic log-line pattern and classifies the
// message. The pattern guarantees digit strings for the thread and line
// number groups.
func (e *Extractor) parseEntry(line string) (record.LogEntry, bool) {
	m := e.pats.Entry.FindStringSubmatch(line)
	if m == nil {
		return record.LogEntry{}, false
	}
	msg := m[6]
	return record.LogEntry{
		Timestamp:  m[1],
		Level:      m[2],
		ThreadID:   int(digitsOrZero(m[3])),
		Module:     m[4],
		LineNumber: int(digitsOrZero(m[5])),
		Message:    msg,
		LogType:    e.classify(msg),
	}, true
}

// classify walks the class ladder and returns the first matching type.
func (e *Extractor) classify(msg string) record.LogType {
	lower := strings.ToLower(msg)
	for _, rule := range e.pats.Classes {
		haystack := msg
		if rule.Fold {
			haystack = lower
		}
		if strings.Contains(haystack, rule.Keyword) {
			return rule.Type
		}
	}
	return record.TypeGeneral
}

// sipMessage extracts one SIP wire event. The first capture group is the
// SIP method, which the record format does not keep.
func (e *Extractor) sipMessage(entry record.LogEntry, dir record.Direction) (record.SipMessage, bool) {
	pat := e.pats.SipTransmit
	if dir == record.DirectionReceive {
		pat = e.pats.SipReceive
	}
	m := pat.FindStringSubmatch(entry.Message)
	if m == nil {
		return record.SipMessage{}, false
	}
	return record.SipMessage{
		Timestamp:  entry.Timestamp,
		Direction:  dir,
		SizeBytes:  int(digitsOrZero(m[2])),
		RemoteHost: m[3],
		RemotePort: int(digitsOrZero(m[4])),
	}, true
}

// registrationEvent classifies a registration line. Explicit phrases are
// checked first, then generic success/failure keywords; anything else is
// an attempt. lower is the pre-lowercased message.
func (e *Extractor) registrationEvent(entry record.LogEntry, lower string) record.RegistrationEvent {
	var typ record.RegistrationType
	switch {
	case strings.Contains(lower, "register attempt"):
		typ = record.RegAttempt
	case strings.Contains(lower, "register response"):
		typ = record.RegResponse
	case strings.Contains(lower, "registration successful"):
		typ = record.RegSuccess
	case strings.Contains(lower, "registration failed"):
		typ = record.RegFailure
	case containsAny(lower, "success", "ok", "200"):
		typ = record.RegSuccess
	case containsAny(lower, "fail", "error", "timeout", "unauthorized"):
		typ = record.RegFailure
	default:
		typ = record.RegAttempt
	}

	var serverURI, clientURI string
	if m := e.pats.ServerURI.FindString(entry.Message); m != "" {
		serverURI = m
	}
	if m := e.pats.ClientURI.FindString(entry.Message); m != "" {
		clientURI = m
	}
	return record.RegistrationEvent{
		Timestamp: entry.Timestamp,
		EventType: typ,
		ServerURI: serverURI,
		ClientURI: clientURI,
	}
}

// systemEvent builds the WARNING/ERROR record for an entry. lower is the
// pre-lowercased message.
func (e *Extractor) systemEvent(entry record.LogEntry, lower string) record.SystemEvent {
	category := record.TypeGeneral
	for _, rule := range e.pats.Categories {
		if containsAny(lower, rule.Keywords...) {
			category = rule.Category
			break
		}
	}

	var code *int32
	if m := e.pats.ErrorCode.FindStringSubmatch(lower); m != nil {
		n := int32(digitsOrZero(m[1]))
		code = &n
	}
	return record.SystemEvent{
		Timestamp:   entry.Timestamp,
		EventType:   entry.Level,
		Category:    category,
		Description: entry.Message,
		ErrorCode:   code,
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
