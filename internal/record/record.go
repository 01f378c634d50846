// Package record defines the typed records extracted from PBX log lines
// and the bundle/totals containers the ingestion pipeline moves them in.
//
// All records are immutable values: extraction produces them fully
// populated, nothing mutates them afterwards, and the store appends each
// exactly once.
package record

// LogType is the coarse classification assigned to every parsed log line.
type LogType string

const (
	TypeSIP          LogType = "SIP"
	TypeCDR          LogType = "CDR"
	TypeRegistration LogType = "REGISTRATION"
	TypeDatabase     LogType = "DATABASE"
	TypeSystem       LogType = "SYSTEM"
	TypeConfig       LogType = "CONFIG"
	TypeGeneral      LogType = "GENERAL"
)

// Direction marks which way a SIP message travelled.
type Direction string

const (
	DirectionTransmit Direction = "TRANSMIT"
	DirectionReceive  Direction = "RECEIVE"
)

// RegistrationType is the outcome class of a registration log line.
type RegistrationType string

const (
	RegAttempt  RegistrationType = "ATTEMPT"
	RegResponse RegistrationType = "RESPONSE"
	RegSuccess  RegistrationType = "SUCCESS"
	RegFailure  RegistrationType = "FAILURE"
)

// LogEntry is one parsed raw log line. Every line that matches the generic
// log-line pattern yields exactly one LogEntry; lines that do not match
// yield nothing.
type LogEntry struct {
	Timestamp  string
	Level      string
	ThreadID   int
	Module     string
	LineNumber int
	Message    string
	LogType    LogType
}

// CallRecord is one completed call detail record recovered from a CDR
// insert statement embedded in a log line. RawValues keeps the full
// positional value vector verbatim so fields the mapping does not name
// survive round trips.
type CallRecord struct {
	CallDatetime       string
	TimestampUnix      int64
	UID                string
	CallerID           string
	SourceNumber       string
	SourceName         string
	DestinationNumber  string
	DestinationName    string
	Context            string
	Channel            string
	DestinationChannel string
	Trunk              string
	LastApp            string
	LastData           string
	Duration           int
	RingDuration       int
	TalkDuration       int
	Disposition        string
	CallType           string
	UniqueID           string
	RawValues          []string
}

// SipMessage is one SIP transmit or receive event.
type SipMessage struct {
	Timestamp  string
	Direction  Direction
	SizeBytes  int
	RemoteHost string
	RemotePort int
}

// RegistrationEvent is one registration attempt, response or outcome.
// ServerURI and ClientURI are empty when the line carried no matching URI;
// the store persists empty as NULL.
type RegistrationEvent struct {
	Timestamp string
	EventType RegistrationType
	ServerURI string
	ClientURI string
}

// SystemEvent is one WARNING or ERROR level occurrence. EventType carries
// the originating level. Category reuses the coarse LogType values
// (DATABASE, SIP, CONFIG, SYSTEM, GENERAL). ErrorCode is nil when the
// message carried no numeric code.
type SystemEvent struct {
	Timestamp   string
	EventType   string
	Category    LogType
	Description string
	ErrorCode   *int32
}

// Bundle is the full extraction output of one chunk: the chunk's starting
// global line index plus five ordered per-type sequences. Slices stay nil
// when a chunk produced no records of that type; an all-empty bundle still
// signals chunk completion to the writer.
type Bundle struct {
	Start         int
	Entries       []LogEntry
	Calls         []CallRecord
	SipMessages   []SipMessage
	Registrations []RegistrationEvent
	SystemEvents  []SystemEvent
}

// Empty reports whether the bundle carries no records of any type.
func (b *Bundle) Empty() bool {
	return len(b.Entries) == 0 && len(b.Calls) == 0 && len(b.SipMessages) == 0 &&
		len(b.Registrations) == 0 && len(b.SystemEvents) == 0
}

// Totals accumulates per-type persisted record counts across a run. Only
// records whose batch committed are counted.
type Totals struct {
	LogEntries         int64 `json:"log_entries"`
	CallRecords        int64 `json:"call_records"`
	SipMessages        int64 `json:"sip_messages"`
	RegistrationEvents int64 `json:"registration_events"`
	SystemEvents       int64 `json:"system_events"`
}

// Sum returns the count of all persisted records across the five types.
func (t Totals) Sum() int64 {
	return t.LogEntries + t.CallRecords + t.SipMessages + t.RegistrationEvents + t.SystemEvents
}
