package trace

import "fmt"

// Fragment describes one contiguous cycle range of a full trace, the
// unit the fragment API hands out so independent goroutines can
// generate disjoint pieces of a long trace in parallel and have them
// stitched back together by row index (DESIGN NOTES §9's blocked
// allocation guidance, applied to row ranges instead of memory arenas).
type Fragment struct {
	StartRow int
	EndRow   int // exclusive
	Rows     []Row
}

// Plan splits a trace of totalRows rows into at most n roughly-equal
// fragments. Returns fewer than n fragments if totalRows < n.
func Plan(totalRows, n int) []Fragment {
	if n <= 0 {
		n = 1
	}
	if totalRows <= 0 {
		return nil
	}
	if n > totalRows {
		n = totalRows
	}
	base := totalRows / n
	rem := totalRows % n
	fragments := make([]Fragment, 0, n)
	start := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		fragments = append(fragments, Fragment{StartRow: start, EndRow: start + size})
		start += size
	}
	return fragments
}

// Stitch reassembles fragments (each already filled with its Rows slice)
// back into one contiguous row slice, verifying there are no gaps or
// overlaps.
func Stitch(fragments []Fragment) ([]Row, error) {
	total := 0
	for _, f := range fragments {
		total += f.EndRow - f.StartRow
	}
	out := make([]Row, total)
	for _, f := range fragments {
		if f.EndRow-f.StartRow != len(f.Rows) {
			return nil, fmt.Errorf("trace: fragment [%d,%d) has %d rows, expected %d", f.StartRow, f.EndRow, len(f.Rows), f.EndRow-f.StartRow)
		}
		if f.StartRow < 0 || f.EndRow > len(out) {
			return nil, fmt.Errorf("trace: fragment [%d,%d) out of range for %d total rows", f.StartRow, f.EndRow, len(out))
		}
		copy(out[f.StartRow:f.EndRow], f.Rows)
	}
	return out, nil
}
