package ledger

import (
	"context"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// RPCHeight reads the height from an Ethereum JSON-RPC node.
type RPCHeight struct {
	client *ethclient.Client
}

func NewRPCHeight(cli *ethclient.Client) *RPCHeight { return &RPCHeight{client: cli} }

// DialHeight connects to the node at url.
func DialHeight(ctx context.Context, url string) (*RPCHeight, error) {
	cli, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "ledger: dialing %s", url)
	}
	return NewRPCHeight(cli), nil
}

func (r *RPCHeight) Height(ctx context.Context) (uint64, error) {
	n, err := r.client.BlockNumber(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "ledger: eth_blockNumber")
	}
	return n, nil
}

func (r *RPCHeight) Close() { r.client.Close() }
