package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rayswap/pkg"
)

// DefaultBaseURL is the public Raydium v3 catalog.
const DefaultBaseURL = "https://api-v3.raydium.io"

const defaultPageSize = 100

// Client queries the off-chain pool catalog. It performs no caching; every
// call is an independent network read.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a catalog client. baseURL may be empty for the public
// endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &pkg.DiscoveryError{Endpoint: path, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &pkg.DiscoveryError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &pkg.DiscoveryError{
			Endpoint: path,
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("unexpected status"),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &pkg.DiscoveryError{Endpoint: path, Err: fmt.Errorf("malformed response: %w", err)}
	}

	return nil
}

// FetchOpts tunes a FetchPoolsByMints listing.
type FetchOpts struct {
	SortField PoolSortField
	Ascending bool
	PageSize  int // per-request page size, defaults to 100
}

// FetchPoolsByMints lists pools trading the given mint pair, ranked by the
// catalog's ordering. The returned iterator fetches pages lazily and cannot
// be restarted. An empty result set yields an iterator that is immediately
// exhausted, not an error.
func (c *Client) FetchPoolsByMints(ctx context.Context, mintA, mintB string, poolType pkg.PoolType, opts FetchOpts) *PoolIterator {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	sortType := "desc"
	if opts.Ascending {
		sortType = "asc"
	}

	return &PoolIterator{
		client:   c,
		mintA:    mintA,
		mintB:    mintB,
		poolType: poolType.String(),
		sort:     opts.SortField.String(),
		sortType: sortType,
		pageSize: pageSize,
		page:     1,
		hasNext:  true,
	}
}

func (c *Client) fetchPoolPage(ctx context.Context, mintA, mintB, poolType, sortField, sortType string, pageSize, page int) (*poolPage, error) {
	query := url.Values{}
	query.Set("mint1", mintA)
	query.Set("mint2", mintB)
	query.Set("poolType", poolType)
	query.Set("poolSortField", sortField)
	query.Set("sortType", sortType)
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("page", strconv.Itoa(page))

	var resp envelope[poolPage]
	if err := c.get(ctx, "/pools/info/mint", query, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &pkg.DiscoveryError{Endpoint: "/pools/info/mint", Err: fmt.Errorf("api error: %s", resp.Msg)}
	}

	return &resp.Data, nil
}

// FetchPoolKeysByID fetches the on-chain key set for one pool.
func (c *Client) FetchPoolKeysByID(ctx context.Context, id string) (*PoolKeys, error) {
	query := url.Values{}
	query.Set("ids", id)

	var resp envelope[[]PoolKeys]
	if err := c.get(ctx, "/pools/key/ids", query, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &pkg.DiscoveryError{Endpoint: "/pools/key/ids", Err: fmt.Errorf("api error: %s", resp.Msg)}
	}
	if len(resp.Data) == 0 {
		return nil, &pkg.DiscoveryError{Endpoint: "/pools/key/ids", Err: fmt.Errorf("pool %s not found", id)}
	}

	return &resp.Data[0], nil
}

// FetchPoolInfoByID fetches pool metadata (price, reserves, TVL, stats).
func (c *Client) FetchPoolInfoByID(ctx context.Context, id string) (*PoolInfo, error) {
	query := url.Values{}
	query.Set("ids", id)

	var resp envelope[[]PoolInfo]
	if err := c.get(ctx, "/pools/info/ids", query, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &pkg.DiscoveryError{Endpoint: "/pools/info/ids", Err: fmt.Errorf("api error: %s", resp.Msg)}
	}
	if len(resp.Data) == 0 {
		return nil, &pkg.DiscoveryError{Endpoint: "/pools/info/ids", Err: fmt.Errorf("pool %s not found", id)}
	}

	return &resp.Data[0], nil
}
