package api

// PoolSortField selects the catalog's server-side ranking for pool listings.
type PoolSortField int

const (
	SortDefault PoolSortField = iota
	SortLiquidity
	SortVolume24h
	SortVolume7d
	SortVolume30d
	SortFee24h
	SortFee7d
	SortFee30d
	SortApr24h
	SortApr7d
	SortApr30d
)

// ParseSortField maps a sort-field name onto PoolSortField. Unknown names
// fall back to the catalog default ordering.
func ParseSortField(s string) (PoolSortField, bool) {
	fields := []PoolSortField{
		SortDefault, SortLiquidity,
		SortVolume24h, SortVolume7d, SortVolume30d,
		SortFee24h, SortFee7d, SortFee30d,
		SortApr24h, SortApr7d, SortApr30d,
	}
	for _, f := range fields {
		if f.String() == s {
			return f, true
		}
	}
	return SortDefault, false
}

func (f PoolSortField) String() string {
	switch f {
	case SortLiquidity:
		return "liquidity"
	case SortVolume24h:
		return "volume24h"
	case SortVolume7d:
		return "volume7d"
	case SortVolume30d:
		return "volume30d"
	case SortFee24h:
		return "fee24h"
	case SortFee7d:
		return "fee7d"
	case SortFee30d:
		return "fee30d"
	case SortApr24h:
		return "apr24h"
	case SortApr7d:
		return "apr7d"
	case SortApr30d:
		return "apr30d"
	default:
		return "default"
	}
}
