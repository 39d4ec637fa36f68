// Package subscription keeps pool state snapshots fresh over the Solana
// websocket API. The cache it maintains is caller-owned: the quote and swap
// paths never read it implicitly.
package subscription

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/websocket"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// AccountUpdateHandler receives the decoded account data for every
// notification.
type AccountUpdateHandler func(account solana.PublicKey, data []byte, slot uint64)

// WSClient is a JSON-RPC websocket client for accountSubscribe. It
// reconnects and resubscribes on connection loss.
type WSClient struct {
	url            string
	conn           *websocket.Conn
	mu             sync.RWMutex
	subscriptions  map[uint64]*accountSubscription
	nextID         uint64
	reconnectDelay time.Duration
	ctx            context.Context
	cancel         context.CancelFunc
	connected      bool
	logger         *zap.Logger
}

type accountSubscription struct {
	id      uint64
	account solana.PublicKey
	subID   uint64 // server-assigned subscription ID
	handler AccountUpdateHandler
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type notificationMessage struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  struct {
		Result struct {
			Context struct {
				Slot uint64 `json:"slot"`
			} `json:"context"`
			Value struct {
				Data     []interface{} `json:"data"` // [data, encoding]
				Lamports uint64        `json:"lamports"`
				Owner    string        `json:"owner"`
			} `json:"value"`
		} `json:"result"`
		Subscription uint64 `json:"subscription"`
	} `json:"params"`
}

// NewWSClient connects to the websocket endpoint and starts the read and
// reconnect loops.
func NewWSClient(ctx context.Context, wsURL string, logger *zap.Logger) (*WSClient, error) {
	clientCtx, cancel := context.WithCancel(ctx)

	client := &WSClient{
		url:            wsURL,
		subscriptions:  make(map[uint64]*accountSubscription),
		reconnectDelay: 5 * time.Second,
		ctx:            clientCtx,
		cancel:         cancel,
		nextID:         1,
		logger:         logger.With(zap.String("ws", wsURL)),
	}

	if err := client.connect(); err != nil {
		cancel()
		return nil, err
	}

	go client.readMessages()
	go client.reconnectLoop()

	return client, nil
}

func (c *WSClient) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect websocket: %w", err)
	}

	c.conn = conn
	c.connected = true
	c.logger.Info("websocket connected")
	return nil
}

// SubscribeAccount subscribes to base64-encoded confirmed-commitment updates
// for the account. The returned ID feeds Unsubscribe.
func (c *WSClient) SubscribeAccount(account solana.PublicKey, handler AccountUpdateHandler) (uint64, error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscriptions[id] = &accountSubscription{
		id:      id,
		account: account,
		handler: handler,
	}
	c.mu.Unlock()

	if err := c.sendSubscribe(id, account); err != nil {
		c.mu.Lock()
		delete(c.subscriptions, id)
		c.mu.Unlock()
		return 0, err
	}
	return id, nil
}

func (c *WSClient) sendSubscribe(id uint64, account solana.PublicKey) error {
	return c.sendRequest(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "accountSubscribe",
		Params: []interface{}{
			account.String(),
			map[string]interface{}{
				"encoding":   "base64",
				"commitment": "confirmed",
			},
		},
	})
}

// Unsubscribe cancels an account subscription.
func (c *WSClient) Unsubscribe(id uint64) error {
	c.mu.Lock()
	sub, exists := c.subscriptions[id]
	if !exists {
		c.mu.Unlock()
		return fmt.Errorf("subscription %d not found", id)
	}
	serverID := sub.subID
	delete(c.subscriptions, id)
	c.mu.Unlock()

	if serverID == 0 {
		// Never confirmed by the server, nothing to cancel remotely.
		return nil
	}

	return c.sendRequest(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "accountUnsubscribe",
		Params:  []interface{}{serverID},
	})
}

func (c *WSClient) sendRequest(req rpcRequest) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WSClient) readMessages() {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		if conn == nil {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			c.logger.Warn("websocket read failed", zap.Error(err))
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			time.Sleep(100 * time.Millisecond)
			continue
		}

		c.handleMessage(message)
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var notification notificationMessage
	if err := json.Unmarshal(data, &notification); err == nil && notification.Method == "accountNotification" {
		c.handleNotification(&notification)
		return
	}

	var response rpcResponse
	if err := json.Unmarshal(data, &response); err != nil {
		c.logger.Warn("unparseable websocket message", zap.Error(err))
		return
	}
	c.handleResponse(&response)
}

func (c *WSClient) handleResponse(response *rpcResponse) {
	if response.Error != nil {
		c.logger.Warn("subscription rejected",
			zap.Uint64("id", response.ID),
			zap.String("message", response.Error.Message))
		return
	}

	var serverID uint64
	if err := json.Unmarshal(response.Result, &serverID); err != nil {
		return
	}

	c.mu.Lock()
	if sub, exists := c.subscriptions[response.ID]; exists {
		sub.subID = serverID
	}
	c.mu.Unlock()
}

func (c *WSClient) handleNotification(notification *notificationMessage) {
	c.mu.RLock()
	var sub *accountSubscription
	for _, candidate := range c.subscriptions {
		if candidate.subID == notification.Params.Subscription {
			sub = candidate
			break
		}
	}
	c.mu.RUnlock()

	if sub == nil || sub.handler == nil {
		return
	}

	data, err := decodeAccountData(notification.Params.Result.Value.Data)
	if err != nil {
		c.logger.Warn("failed to decode account data",
			zap.String("account", sub.account.String()),
			zap.Error(err))
		return
	}

	sub.handler(sub.account, data, notification.Params.Result.Context.Slot)
}

// decodeAccountData unpacks the [data, encoding] pair of an account
// notification.
func decodeAccountData(raw []interface{}) ([]byte, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("empty data field")
	}
	payload, ok := raw[0].(string)
	if !ok {
		return nil, fmt.Errorf("unexpected data payload type %T", raw[0])
	}

	encoding := "base64"
	if len(raw) > 1 {
		if s, ok := raw[1].(string); ok {
			encoding = s
		}
	}

	switch encoding {
	case "base64":
		return base64.StdEncoding.DecodeString(payload)
	case "base58":
		return base58.Decode(payload)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func (c *WSClient) reconnectLoop() {
	ticker := time.NewTicker(c.reconnectDelay)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			connected := c.connected
			c.mu.RUnlock()
			if connected {
				continue
			}

			if err := c.reconnect(); err != nil {
				c.logger.Warn("reconnect failed", zap.Error(err))
			} else {
				c.logger.Info("websocket reconnected")
			}
		}
	}
}

func (c *WSClient) reconnect() error {
	if err := c.connect(); err != nil {
		return err
	}

	c.mu.Lock()
	subs := make([]*accountSubscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		sub.subID = 0
		subs = append(subs, sub)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		if err := c.sendSubscribe(sub.id, sub.account); err != nil {
			c.logger.Warn("resubscribe failed",
				zap.String("account", sub.account.String()),
				zap.Error(err))
		}
	}
	return nil
}

// IsConnected reports the connection state.
func (c *WSClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Close cancels all loops and closes the connection.
func (c *WSClient) Close() error {
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
