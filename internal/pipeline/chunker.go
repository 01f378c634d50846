package pipeline

// Chunk is a contiguous run of input lines tagged with the global index of
// its first line. The tag serves progress reporting only; nothing
// downstream depends on chunk order.
type Chunk struct {
	Start int
	Lines []string
}

// SplitLines partitions lines into contiguous chunks of at most size
// lines. Sizes below one are treated as one. Chunks share the backing
// array of lines and are read-only from here on.
func SplitLines(lines []string, size int) []Chunk {
	if size < 1 {
		size = 1
	}
	if len(lines) == 0 {
		return nil
	}
	chunks := make([]Chunk, 0, (len(lines)+size-1)/size)
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		chunks = append(chunks, Chunk{Start: start, Lines: lines[start:end]})
	}
	return chunks
}
