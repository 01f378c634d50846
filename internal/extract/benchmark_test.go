package extract

import (
	"testing"

	"github.com/pbxtools/pbxray/internal/record"
)

// Benchmark inputs cover the line shapes the extractor sees most: plain
// entries dominate real logs, with SIP and CDR lines the expensive cases.
var (
	benchPlain    = "[2024-01-15 09:30:01] INFO[2048] pjsip:114 Endpoint 101 is now reachable"
	benchSip      = "[2024-01-15 09:30:02] DEBUG[301] sip:88 Transmitting SIP REGISTER (512 bytes) to 10.0.0.5:5060"
	benchRegister = "[2024-01-15 09:30:03] INFO[301] sip:91 REGISTER attempt for sip:100@pbx.local:5060"
	benchError    = "[2024-01-15 09:30:04] ERROR[9] db:4 MySQL server has gone away, error: 2006"
	benchCDR      = "[2024-01-15 09:35:02] INFO[4] cdr:3 INSERT INTO cdr cols VALUES ('2024-01-15 09:35:02','1705310102','u9','300','300','Carol','400','Dave','ctx','c1','c2','t1','Dial','d','10','2','8','ANSWERED','','out','uid9','[]')"
	benchNoMatch  = "stack trace continuation line without a timestamp prefix"
)

// BenchmarkExtractLine runs every line shape through the extractor.
// ExtractLine is called once per log line, so this is the hot path of the
// whole pipeline.
func BenchmarkExtractLine(b *testing.B) {
	tests := []struct {
		name string
		line string
	}{
		{"plain", benchPlain},
		{"sip", benchSip},
		{"register", benchRegister},
		{"error", benchError},
		{"cdr", benchCDR},
		{"no_match", benchNoMatch},
	}

	e := New(DefaultPatterns())

	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				bundle := record.Bundle{}
				e.ExtractLine(tt.line, &bundle)
			}
		})
	}
}

// BenchmarkExtractLine_Chunk approximates one worker's share: a mixed
// chunk reusing a single bundle the way extractChunk does.
func BenchmarkExtractLine_Chunk(b *testing.B) {
	lines := make([]string, 0, 600)
	for i := 0; i < 100; i++ {
		lines = append(lines, benchPlain, benchPlain, benchPlain, benchSip, benchError, benchNoMatch)
	}

	e := New(DefaultPatterns())

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		bundle := record.Bundle{}
		for _, line := range lines {
			e.ExtractLine(line, &bundle)
		}
	}
}

// BenchmarkExtractLineParallel checks the extractor scales across
// goroutines the way the worker pool uses it.
func BenchmarkExtractLineParallel(b *testing.B) {
	e := New(DefaultPatterns())

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			bundle := record.Bundle{}
			e.ExtractLine(benchSip, &bundle)
		}
	})
}

// BenchmarkClassify benchmarks the keyword ladder on its own.
func BenchmarkClassify(b *testing.B) {
	msgs := []string{
		"Endpoint 101 is now reachable",
		"SIP endpoint timeout",
		"writing CDR row",
		"MySQL connection lost",
	}

	e := New(DefaultPatterns())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, msg := range msgs {
			e.classify(msg)
		}
	}
}

// BenchmarkSplitQuoted benchmarks CDR value-list splitting.
func BenchmarkSplitQuoted(b *testing.B) {
	const values = "'2024-01-01 10:00:00','1700000000','u1','100','100','Alice','200','Bob','ctx','ch1','ch2','trunk1','Dial','data','30','5','25','ANSWERED','','normal','id1','[]'"

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		splitQuoted(values)
	}
}
