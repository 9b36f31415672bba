package solana

import (
	"context"
	"time"

	"solana-deposit-engine/pkg/apperror"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Client implements ports.ChainClient against a Solana JSON-RPC endpoint.
type Client struct {
	rpc     *rpc.Client
	timeout time.Duration
}

// NewClient creates a chain client for the given RPC endpoint. timeout
// bounds each individual request; the observer's poll interval is
// handled by the caller.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		rpc:     rpc.New(endpoint),
		timeout: timeout,
	}
}

// GetBalance returns the finalized balance of the address in lamports.
func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, apperror.ErrInvalidAddress(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.rpc.GetBalance(ctx, pub, rpc.CommitmentFinalized)
	if err != nil {
		return 0, apperror.ErrChainUnavailable(err)
	}
	return out.Value, nil
}

// Ping checks RPC connectivity. Implements ports.HealthChecker.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.rpc.GetHealth(ctx); err != nil {
		return apperror.ErrChainUnavailable(err)
	}
	return nil
}

// Name returns the dependency name.
func (c *Client) Name() string {
	return "solana-rpc"
}
