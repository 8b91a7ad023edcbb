package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCategoryNamesContiguousRun(t *testing.T) {
	got := FormatCategoryNames([]string{"c0", "c1", "c2"})
	assert.Equal(t, "c0.c2", got)
}

func TestFormatCategoryNamesScattered(t *testing.T) {
	got := FormatCategoryNames([]string{"c0", "c5"})
	assert.Equal(t, "c0,c5", got)
}

func TestFormatCategoryNamesSingle(t *testing.T) {
	got := FormatCategoryNames([]string{"c3"})
	assert.Equal(t, "c3", got)
}

func TestFormatCategoryNamesEmpty(t *testing.T) {
	assert.Empty(t, FormatCategoryNames(nil))
}

func TestRangeContainsAndOverlaps(t *testing.T) {
	low := NewLevel(ID(0))
	high := NewLevel(ID(1))
	outer := Range{Low: low, High: high}
	inner := Range{Low: low, High: low}

	assert.True(t, outer.Contains(inner))
	assert.True(t, outer.Overlaps(inner))
	assert.False(t, inner.Contains(outer))
}
