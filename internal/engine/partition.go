package engine

// Partition splits an ordered slice into contiguous batches of at most size
// elements, preserving input order. Batches are subslices of the input, so
// partitioning is cheap and re-partitioning the same input always yields
// identical batches. A non-positive size yields a single batch.
func Partition[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
