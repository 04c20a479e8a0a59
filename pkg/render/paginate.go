package render

import "fmt"

// PageSize is the number of iterations shown per page.
const PageSize = 5

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + PageSize - 1) / PageSize
}

// Bounds returns the half-open item range [start, end) of page p.
func Bounds(n, p int) (start, end int, err error) {
	if p < 0 || p >= TotalPages(n) {
		return 0, 0, fmt.Errorf("page %d out of range (%d pages)", p, TotalPages(n))
	}
	start = p * PageSize
	end = min(start+PageSize, n)
	return start, end, nil
}

// Page returns a fresh copy of items[5p : min(5p+5, n)].
func Page[T any](items []T, p int) ([]T, error) {
	start, end, err := Bounds(len(items), p)
	if err != nil {
		return nil, err
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, nil
}
