package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayswap/pkg"
)

func TestFetchPoolsByMintsPagination(t *testing.T) {
	var requestedPages []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pools/info/mint", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "mintX", q.Get("mint1"))
		assert.Equal(t, "mintY", q.Get("mint2"))
		assert.Equal(t, "standard", q.Get("poolType"))
		assert.Equal(t, "liquidity", q.Get("poolSortField"))
		assert.Equal(t, "desc", q.Get("sortType"))

		page, err := strconv.Atoi(q.Get("page"))
		require.NoError(t, err)
		requestedPages = append(requestedPages, page)

		w.Header().Set("Content-Type", "application/json")
		switch page {
		case 1:
			fmt.Fprint(w, `{"id":"1","success":true,"data":{"count":3,"hasNextPage":true,"data":[{"id":"pool-1","tvl":300},{"id":"pool-2","tvl":200}]}}`)
		default:
			fmt.Fprint(w, `{"id":"2","success":true,"data":{"count":3,"hasNextPage":false,"data":[{"id":"pool-3","tvl":100}]}}`)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	it := client.FetchPoolsByMints(context.Background(), "mintX", "mintY", pkg.PoolTypeStandard, FetchOpts{
		SortField: SortLiquidity,
	})

	var ids []string
	for {
		pool, err := it.Next(context.Background())
		require.NoError(t, err)
		if pool == nil {
			break
		}
		ids = append(ids, pool.ID)
	}

	assert.Equal(t, []string{"pool-1", "pool-2", "pool-3"}, ids)
	assert.Equal(t, []int{1, 2}, requestedPages)
}

func TestFetchPoolsByMintsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"1","success":true,"data":{"count":0,"hasNextPage":false,"data":[]}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	it := client.FetchPoolsByMints(context.Background(), "a", "b", pkg.PoolTypeConcentrated, FetchOpts{})

	pool, err := it.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pool)

	// Exhausted iterators stay exhausted.
	pool, err = it.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pool)
}

func TestFetchPoolsByMintsCollectLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"1","success":true,"data":{"count":3,"hasNextPage":false,"data":[{"id":"pool-1"},{"id":"pool-2"},{"id":"pool-3"}]}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	it := client.FetchPoolsByMints(context.Background(), "a", "b", pkg.PoolTypeStandard, FetchOpts{})

	pools, err := it.Collect(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, pools, 2)
}

func TestFetchPoolsByMintsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	it := client.FetchPoolsByMints(context.Background(), "a", "b", pkg.PoolTypeStandard, FetchOpts{})

	_, err := it.Next(context.Background())
	require.Error(t, err)

	var discoveryErr *pkg.DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
	assert.Equal(t, http.StatusInternalServerError, discoveryErr.Status)

	// The failure is sticky.
	_, err = it.Next(context.Background())
	assert.Error(t, err)
}

func TestFetchPoolsByMintsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"1","success":`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	it := client.FetchPoolsByMints(context.Background(), "a", "b", pkg.PoolTypeStandard, FetchOpts{})

	_, err := it.Next(context.Background())
	var discoveryErr *pkg.DiscoveryError
	require.ErrorAs(t, err, &discoveryErr)
	assert.Zero(t, discoveryErr.Status)
}

func TestFetchPoolsByMintsAPIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"1","success":false,"msg":"rate limited","data":null}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	it := client.FetchPoolsByMints(context.Background(), "a", "b", pkg.PoolTypeStandard, FetchOpts{})

	_, err := it.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFetchPoolKeysByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pools/key/ids", r.URL.Path)
		assert.Equal(t, "pool-1", r.URL.Query().Get("ids"))
		fmt.Fprint(w, `{"id":"1","success":true,"data":[{"programId":"prog","id":"pool-1","vault":{"A":"va","B":"vb"},"observationId":"obs"}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	keys, err := client.FetchPoolKeysByID(context.Background(), "pool-1")
	require.NoError(t, err)

	assert.Equal(t, "pool-1", keys.ID)
	assert.Equal(t, "va", keys.Vault.A)
	assert.Equal(t, "obs", keys.ObservationID)
}

func TestFetchPoolKeysByIDNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"1","success":true,"data":[]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.FetchPoolKeysByID(context.Background(), "missing")

	var discoveryErr *pkg.DiscoveryError
	assert.True(t, errors.As(err, &discoveryErr))
}

func TestFetchPoolInfoByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pools/info/ids", r.URL.Path)
		fmt.Fprint(w, `{"id":"1","success":true,"data":[{"id":"pool-1","price":142.5,"tvl":1000000}]}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	info, err := client.FetchPoolInfoByID(context.Background(), "pool-1")
	require.NoError(t, err)

	assert.Equal(t, "pool-1", info.ID)
	assert.Equal(t, 142.5, info.Price)
}

func TestNewClientDefaultBaseURL(t *testing.T) {
	client := NewClient("")
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}
