package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortFieldRoundTrip(t *testing.T) {
	fields := []PoolSortField{
		SortDefault, SortLiquidity,
		SortVolume24h, SortVolume7d, SortVolume30d,
		SortFee24h, SortFee7d, SortFee30d,
		SortApr24h, SortApr7d, SortApr30d,
	}

	for _, field := range fields {
		parsed, ok := ParseSortField(field.String())
		assert.True(t, ok, field.String())
		assert.Equal(t, field, parsed)
	}
}

func TestParseSortFieldUnknown(t *testing.T) {
	parsed, ok := ParseSortField("volume1y")
	assert.False(t, ok)
	assert.Equal(t, SortDefault, parsed)
}
