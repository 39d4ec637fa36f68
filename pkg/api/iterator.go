package api

import "context"

// PoolIterator walks a pool listing page by page. It is not safe for
// concurrent use and cannot be restarted; create a new one per listing.
type PoolIterator struct {
	client   *Client
	mintA    string
	mintB    string
	poolType string
	sort     string
	sortType string
	pageSize int

	page    int
	buf     []PoolInfo
	hasNext bool
	err     error
}

// Next returns the next pool summary, fetching the next page when the
// current one is exhausted. It returns (nil, nil) when the listing ends.
func (it *PoolIterator) Next(ctx context.Context) (*PoolInfo, error) {
	if it.err != nil {
		return nil, it.err
	}

	for len(it.buf) == 0 {
		if !it.hasNext {
			return nil, nil
		}

		page, err := it.client.fetchPoolPage(ctx, it.mintA, it.mintB, it.poolType, it.sort, it.sortType, it.pageSize, it.page)
		if err != nil {
			it.err = err
			return nil, err
		}

		it.buf = page.Data
		it.hasNext = page.HasNextPage
		it.page++
	}

	pool := it.buf[0]
	it.buf = it.buf[1:]
	return &pool, nil
}

// Collect drains the iterator into a slice, bounded by limit when
// limit > 0.
func (it *PoolIterator) Collect(ctx context.Context, limit int) ([]PoolInfo, error) {
	var pools []PoolInfo
	for {
		pool, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if pool == nil {
			return pools, nil
		}
		pools = append(pools, *pool)
		if limit > 0 && len(pools) >= limit {
			return pools, nil
		}
	}
}
