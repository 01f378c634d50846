package extract

import (
	"strconv"
	"strings"

	"github.com/pbxtools/pbxray/internal/record"
)

// minCDRValues is the number of positional values a call-detail insert
// must carry before a CallRecord is produced.
const minCDRValues = 20

// callRecord parses a call-detail insert statement out of msg. The value
// list is split on commas outside single-quoted spans and mapped
// positionally; index 18 is intentionally unmapped, matching the CDR wire
// format. Fewer than minCDRValues values yields nothing, silently.
func (e *Extractor) callRecord(msg string) (record.CallRecord, bool) {
	m := e.pats.CDRInsert.FindStringSubmatch(msg)
	if m == nil {
		return record.CallRecord{}, false
	}

	values := splitQuoted(m[1])
	if len(values) < minCDRValues {
		return record.CallRecord{}, false
	}

	cr := record.CallRecord{
		CallDatetime:       values[0],
		TimestampUnix:      digitsOrZero(values[1]),
		UID:                values[2],
		CallerID:           values[3],
		SourceNumber:       values[4],
		SourceName:         values[5],
		DestinationNumber:  values[6],
		DestinationName:    values[7],
		Context:            values[8],
		Channel:            values[9],
		DestinationChannel: values[10],
		Trunk:              values[11],
		LastApp:            values[12],
		LastData:           values[13],
		Duration:           int(digitsOrZero(values[14])),
		RingDuration:       int(digitsOrZero(values[15])),
		TalkDuration:       int(digitsOrZero(values[16])),
		Disposition:        values[17],
		CallType:           values[19],
		RawValues:          values,
	}
	if len(values) > 20 {
		cr.UniqueID = values[20]
	}
	return cr, true
}

// splitQuoted splits a SQL-style value list on commas that sit outside
// single-quoted spans. Each value is trimmed of surrounding whitespace and
// quotes. A trailing value is kept only when characters follow the final
// comma.
func splitQuoted(s string) []string {
	var values []string
	var b strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '\'':
			inQuotes = !inQuotes
			b.WriteRune(r)
		case r == ',' && !inQuotes:
			values = append(values, trimValue(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		values = append(values, trimValue(b.String()))
	}
	return values
}

func trimValue(v string) string {
	return strings.Trim(strings.TrimSpace(v), "'")
}

// digitsOrZero is the numeric fallback policy for loosely typed log
// fields: a string composed entirely of ASCII digits parses as its value,
// anything else (empty, signed, mixed, overflowing) is zero.
func digitsOrZero(s string) int64 {
	if s == "" {
		return 0
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
