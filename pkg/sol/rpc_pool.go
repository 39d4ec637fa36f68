package sol

import (
	"context"
	"fmt"
	"sync/atomic"
)

// RPCPool distributes reads across several RPC endpoints round-robin. Each
// endpoint keeps its own rate limiter, so the pool's aggregate throughput
// scales with the endpoint count.
type RPCPool struct {
	clients []*Client
	index   uint64
}

// NewRPCPool creates one rate-limited client per endpoint. Every client
// shares the same Jito endpoint for bundle submission.
func NewRPCPool(ctx context.Context, endpoints []string, jitoRpc string, reqLimitPerSecond int) (*RPCPool, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("no RPC endpoints configured")
	}

	pool := &RPCPool{
		clients: make([]*Client, 0, len(endpoints)),
	}
	for _, endpoint := range endpoints {
		client, err := NewClient(ctx, endpoint, jitoRpc, reqLimitPerSecond)
		if err != nil {
			return nil, err
		}
		pool.clients = append(pool.clients, client)
	}

	return pool, nil
}

// Next returns the next client round-robin.
func (p *RPCPool) Next() *Client {
	if len(p.clients) == 1 {
		return p.clients[0]
	}
	idx := atomic.AddUint64(&p.index, 1) % uint64(len(p.clients))
	return p.clients[idx]
}

// Clients returns every client in the pool.
func (p *RPCPool) Clients() []*Client { return p.clients }

// Size returns the number of endpoints.
func (p *RPCPool) Size() int { return len(p.clients) }
