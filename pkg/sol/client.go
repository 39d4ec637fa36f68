package sol

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	jitorpc "github.com/jito-labs/jito-go-rpc"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"rayswap/pkg"
)

// Client wraps a single Solana RPC endpoint with client-side rate limiting
// and an optional Jito block-engine path for bundle submission.
type Client struct {
	endpoint   string
	rpcClient  *rpc.Client
	jitoClient *jitorpc.JitoJsonRpcClient
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates a client for the given endpoint. jitoRpc may be empty,
// in which case SendBundle is unavailable. reqLimitPerSecond bounds the
// request rate against the endpoint.
func NewClient(ctx context.Context, endpoint, jitoRpc string, reqLimitPerSecond int) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("empty RPC endpoint")
	}
	if reqLimitPerSecond <= 0 {
		reqLimitPerSecond = 10
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c := &Client{
		endpoint:  endpoint,
		rpcClient: rpc.New(endpoint),
		limiter:   rate.NewLimiter(rate.Limit(reqLimitPerSecond), reqLimitPerSecond),
		logger:    logger.With(zap.String("endpoint", endpoint)),
	}

	if jitoRpc != "" {
		c.jitoClient = jitorpc.NewJitoJsonRpcClient(jitoRpc, "")
	}

	return c, nil
}

// Endpoint returns the RPC endpoint URL this client targets.
func (c *Client) Endpoint() string { return c.endpoint }

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// GetAccountInfoWithOpts fetches a single account at confirmed commitment.
func (c *Client) GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
}

// GetMultipleAccountsWithOpts fetches a batch of accounts in one request.
// Missing accounts come back as nil entries, not errors.
func (c *Client) GetMultipleAccountsWithOpts(ctx context.Context, accounts []solana.PublicKey) (*rpc.GetMultipleAccountsResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.rpcClient.GetMultipleAccountsWithOpts(ctx, accounts, &rpc.GetMultipleAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: rpc.CommitmentConfirmed,
	})
}

// GetProgramAccountsWithOpts lists accounts owned by a program, filtered by
// the given opts.
func (c *Client) GetProgramAccountsWithOpts(ctx context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.rpcClient.GetProgramAccountsWithOpts(ctx, program, opts)
}

// AccountExists reports whether the account is present on chain.
func (c *Client) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	result, err := c.GetAccountInfoWithOpts(ctx, account)
	if err != nil {
		if err == rpc.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return result != nil && result.Value != nil, nil
}

// GetLatestBlockhash returns a recent blockhash for transaction assembly.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Hash{}, err
	}
	result, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return result.Value.Blockhash, nil
}

// SendTransaction submits a signed transaction, skipping preflight. A
// rejected transaction is reported as a *pkg.SubmissionError.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := c.wait(ctx); err != nil {
		return solana.Signature{}, err
	}
	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, &pkg.SubmissionError{Err: err}
	}
	c.logger.Info("transaction submitted", zap.String("signature", sig.String()))
	return sig, nil
}

// SendBundle submits signed transactions as a single Jito bundle. The
// transactions land atomically in order or not at all.
func (c *Client) SendBundle(ctx context.Context, txs []*solana.Transaction) (string, error) {
	if c.jitoClient == nil {
		return "", &pkg.SubmissionError{Err: fmt.Errorf("no jito endpoint configured")}
	}

	encoded := make([]string, 0, len(txs))
	for _, tx := range txs {
		raw, err := tx.MarshalBinary()
		if err != nil {
			return "", &pkg.SubmissionError{Err: fmt.Errorf("failed to serialize transaction: %w", err)}
		}
		encoded = append(encoded, base58.Encode(raw))
	}

	result, err := c.jitoClient.SendBundle([][]string{encoded})
	if err != nil {
		return "", &pkg.SubmissionError{Err: fmt.Errorf("bundle submission failed: %w", err)}
	}

	bundleID := string(result)
	c.logger.Info("bundle submitted",
		zap.Int("transactions", len(txs)),
		zap.String("bundleId", bundleID))
	return bundleID, nil
}
