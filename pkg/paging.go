package pkg

import "math"

// PageOffset returns the row offset of a 1-based page. ok is false when page
// or size is below 1 or the offset does not fit in an int.
func PageOffset(page, size int) (offset int, ok bool) {
	if page < 1 || size < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/size {
		return 0, false
	}
	return (page - 1) * size, true
}
