package paginate

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNumPages(t *testing.T) {
	assert.Equal(t, 1, New(0, 5).NumPages())
	assert.Equal(t, 1, New(5, 5).NumPages())
	assert.Equal(t, 2, New(6, 5).NumPages())
	assert.Equal(t, 3, New(12, 5).NumPages())
}

func TestNewDefaults(t *testing.T) {
	p := New(-3, 0)
	assert.Equal(t, 0, p.Count)
	assert.Equal(t, DefaultPerPage, p.PerPage)
}

func TestPageResolution(t *testing.T) {
	p := New(12, 5)

	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"2.5", 1},
		{"1", 1},
		{" 2 ", 2},
		{"3", 3},
		{"4", 3},
		{"999", 3},
		{"0", 3},
		{"-1", 3},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Page(tt.raw).Number)
		})
	}
}

func TestPageBounds(t *testing.T) {
	p := New(12, 5)

	first := p.Page("1")
	assert.Equal(t, 0, first.Offset())
	assert.Equal(t, 5, first.Limit())
	assert.Equal(t, 1, first.StartIndex())
	assert.Equal(t, 5, first.EndIndex())
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.Equal(t, 2, first.NextNumber())

	last := p.Page("3")
	assert.Equal(t, 10, last.Offset())
	assert.Equal(t, 11, last.StartIndex())
	assert.Equal(t, 12, last.EndIndex())
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrevious())
	assert.Equal(t, 2, last.PreviousNumber())
}

func TestEmptyPage(t *testing.T) {
	pg := New(0, 5).Page("7")
	assert.Equal(t, 1, pg.Number)
	assert.Equal(t, 0, pg.StartIndex())
	assert.Equal(t, 0, pg.EndIndex())
	assert.False(t, pg.HasOtherPages())
}

func TestPageProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("page never holds more than PerPage items", prop.ForAll(
		func(count, perPage, n int) bool {
			pg := New(count, perPage).Page(strconv.Itoa(n))
			size := pg.EndIndex() - pg.StartIndex() + 1
			if pg.Count == 0 {
				size = 0
			}
			return size >= 0 && size <= pg.PerPage
		},
		gen.IntRange(0, 500),
		gen.IntRange(1, 20),
		gen.IntRange(-5, 120),
	))

	properties.Property("consecutive pages are contiguous", prop.ForAll(
		func(count, perPage int) bool {
			p := New(count, perPage)
			for n := 1; n < p.NumPages(); n++ {
				cur := p.Page(strconv.Itoa(n))
				next := p.Page(strconv.Itoa(n + 1))
				if next.StartIndex() != cur.EndIndex()+1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 500),
		gen.IntRange(1, 20),
	))

	properties.Property("resolved page is always in range", prop.ForAll(
		func(count, n int) bool {
			p := New(count, DefaultPerPage)
			pg := p.Page(strconv.Itoa(n))
			return pg.Number >= 1 && pg.Number <= p.NumPages()
		},
		gen.IntRange(0, 500),
		gen.Int(),
	))

	properties.TestingRun(t)
}
