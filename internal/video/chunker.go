package video

// Chunk splits items into consecutive slices of at most size elements.
// The chunks share items' backing array.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		chunks = append(chunks, items[i:min(i+size, len(items))])
	}
	return chunks
}
