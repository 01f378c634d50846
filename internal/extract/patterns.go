// Package extract turns raw PBX log lines into typed records. Extraction
// is pure: the same line always yields the same records, and nothing here
// touches the store or any other shared state.
package extract

import (
	"regexp"

	"github.com/pbxtools/pbxray/internal/record"
)

// Patterns holds every compiled pattern and keyword ladder the extractor
// consults. A Patterns value is immutable after construction and safe to
// share across goroutines; tests may inject alternate sets.
type Patterns struct {
	// Entry matches the generic log-line shape
	// "[timestamp] LEVEL[thread] module:lineno message", anchored at the
	// start of the line.
	Entry *regexp.Regexp

	// SipTransmit and SipReceive capture method, byte size, remote host
	// and remote port of a SIP wire event.
	SipTransmit *regexp.Regexp
	SipReceive  *regexp.Regexp

	// CDRInsert captures the embedded value list of a call-detail insert
	// statement.
	CDRInsert *regexp.Regexp

	// ServerURI and ClientURI locate SIP URIs in registration lines. The
	// server form allows a bare host, the client form requires user@host.
	ServerURI *regexp.Regexp
	ClientURI *regexp.Regexp

	// ErrorCode captures a numeric code from an "error: N" style
	// substring; applied to the lowercased message.
	ErrorCode *regexp.Regexp

	// Classes is the coarse classification ladder, checked in order.
	// The first matching rule wins; no rule matching means GENERAL.
	Classes []ClassRule

	// Categories assigns system event categories, checked in order
	// against the lowercased message; no match means GENERAL.
	Categories []CategoryRule
}

// ClassRule classifies a message by substring. Fold matches against the
// lowercased message, so folded keywords must be given in lowercase.
type ClassRule struct {
	Keyword string
	Fold    bool
	Type    record.LogType
}

// CategoryRule assigns a category when any of its keywords occurs in the
// lowercased message.
type CategoryRule struct {
	Keywords []string
	Category record.LogType
}

// DefaultPatterns returns the standard PBX log pattern set.
func DefaultPatterns() Patterns {
	return Patterns{
		Entry:       regexp.MustCompile(`^\[([^\]]+)\] ([A-Z]+)\[(\d+)\] ([^:]+):(\d+) (.*)`),
		SipTransmit: regexp.MustCompile(`Transmitting SIP (\w+) \((\d+) bytes\) to ([^:]+):(\d+)`),
		SipReceive:  regexp.MustCompile(`Received SIP (\w+) \((\d+) bytes\) from ([^:]+):(\d+)`),
		CDRInsert:   regexp.MustCompile(`INSERT INTO cdr.*VALUES \((.*)\)`),
		ServerURI:   regexp.MustCompile(`sip:([^@]+@)?([^:;]+):(\d+)`),
		ClientURI:   regexp.MustCompile(`sip:([^@]+@[^:;]+):(\d+)`),
		ErrorCode:   regexp.MustCompile(`error[:\s]*(\d+)`),
		Classes: []ClassRule{
			{Keyword: "SIP", Type: record.TypeSIP},
			{Keyword: "cdr", Fold: true, Type: record.TypeCDR},
			{Keyword: "REGISTER", Type: record.TypeRegistration},
			{Keyword: "MySQL", Type: record.TypeDatabase},
			{Keyword: "threadpool", Type: record.TypeSystem},
			{Keyword: "config", Fold: true, Type: record.TypeConfig},
		},
		Categories: []CategoryRule{
			{Keywords: []string{"mysql", "database"}, Category: record.TypeDatabase},
			{Keywords: []string{"sip"}, Category: record.TypeSIP},
			{Keywords: []string{"config"}, Category: record.TypeConfig},
			{Keywords: []string{"thread"}, Category: record.TypeSystem},
		},
	}
}
