package pkg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageOffset(t *testing.T) {
	cases := []struct {
		name       string
		page, size int
		offset     int
		ok         bool
	}{
		{name: "first", page: 1, size: 20, offset: 0, ok: true},
		{name: "third", page: 3, size: 20, offset: 40, ok: true},
		{name: "zero page", page: 0, size: 20},
		{name: "zero size", page: 2, size: 0},
		{name: "last that fits", page: math.MaxInt/2 + 1, size: 2, offset: math.MaxInt - 1, ok: true},
		{name: "overflow", page: math.MaxInt/2 + 2, size: 2},
		{name: "huge page", page: 4611686018427387905, size: 2},
		{name: "max page", page: math.MaxInt, size: 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, ok := PageOffset(tc.page, tc.size)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.offset, offset)
		})
	}
}
