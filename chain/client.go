package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/abstract-foundation/agw-session-keys/metrics"
	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks github.com/abstract-foundation/agw-session-keys/chain WalletClient,ETHClient,RPCCaller

// WalletClient is the wallet infrastructure the sessions are registered
// with and used through.
type WalletClient interface {
	// ChainID returns the chain ID reported by the node.
	ChainID(ctx context.Context) (*big.Int, error)
	// CreateSession registers the session for the account, and returns the
	// session as registered on-chain.
	CreateSession(ctx context.Context, account common.Address, cfg session.Config) (session.Config, error)
	// SessionStatus returns the on-chain status of the session.
	SessionStatus(ctx context.Context, account common.Address, sessionHash common.Hash) (session.Status, error)
	// SendTransaction executes the call on behalf of the account, signed
	// with the session signer.
	SendTransaction(ctx context.Context, cred session.Credential, call session.Call) (common.Hash, error)
	// RevokeSession closes the session on-chain.
	RevokeSession(ctx context.Context, account common.Address, sessionHash common.Hash) (common.Hash, error)
}

type ETHClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// RPCCaller sends raw JSON-RPC requests, for the methods the ethclient does
// not cover.
type RPCCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

type transactionArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data"`
}

type sessionTransactionArgs struct {
	Account     common.Address `json:"account"`
	Signer      common.Address `json:"signer"`
	Validator   common.Address `json:"validator"`
	Session     hexutil.Bytes  `json:"session"`
	SessionHash common.Hash    `json:"sessionHash"`
	To          common.Address `json:"to"`
	Value       *hexutil.Big   `json:"value"`
	Data        hexutil.Bytes  `json:"data"`
	Signature   hexutil.Bytes  `json:"signature"`
}

// Client talks to the session key validator through a JSON-RPC node.
// Read-only requests are retried, transactions are sent once.
type Client struct {
	log *zap.Logger

	eth ETHClient
	rpc RPCCaller

	validator common.Address
	retries   uint64
	config    Config

	closeFn func()
}

func NewClient(log *zap.Logger, eth ETHClient, rpcCaller RPCCaller, validator common.Address, retries uint64, config Config) *Client {
	return &Client{
		log:       log,
		eth:       eth,
		rpc:       rpcCaller,
		validator: validator,
		retries:   retries,
		config:    config.WithDefaults(),
		closeFn:   func() {},
	}
}

// Dial connects to the node at the given address.
func Dial(ctx context.Context, log *zap.Logger, address string, validator common.Address, retries uint64, config Config) (*Client, error) {
	if address == "" {
		return nil, ErrRPCAddressIsRequired
	}

	rpcClient, err := rpc.DialContext(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("could not connect to the node at %s: %w", address, err)
	}

	client := NewClient(log.With(zap.String("host", address)), ethclient.NewClient(rpcClient), rpcClient, validator, retries, config)
	client.closeFn = rpcClient.Close
	return client, nil
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	defer metrics.StartChainRequest("eth_chainId")()

	var chainID *big.Int
	if err := c.retry(ctx, func() error {
		id, err := c.eth.ChainID(ctx)
		if err != nil {
			c.log.Debug("could not get the chain ID", zap.Error(err))
			return err
		}
		chainID = id
		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not get the chain ID: %w", err)
	}

	c.log.Debug("response from ChainID", zap.String("chain-id", chainID.String()))
	return chainID, nil
}

func (c *Client) SessionStatus(ctx context.Context, account common.Address, sessionHash common.Hash) (session.Status, error) {
	defer metrics.StartChainRequest("eth_call")()

	data, err := validatorABI.Pack(sessionStatusMethod, account, sessionHash)
	if err != nil {
		return 0, fmt.Errorf("could not encode the status query: %w", err)
	}

	var out []byte
	if err := c.retry(ctx, func() error {
		requestTime := time.Now()
		res, err := c.eth.CallContract(ctx, ethereum.CallMsg{
			To:   &c.validator,
			Data: data,
		}, nil)
		if err != nil {
			c.log.Debug("could not query the session status",
				zap.String("account", account.Hex()),
				zap.String("session-hash", sessionHash.Hex()),
				zap.Error(err),
			)
			return err
		}
		c.log.Debug("response from SessionStatus",
			zap.String("account", account.Hex()),
			zap.String("session-hash", sessionHash.Hex()),
			zap.Time("request-time", requestTime),
		)
		out = res
		return nil
	}); err != nil {
		return 0, fmt.Errorf("could not query the session status: %w", err)
	}

	values, err := validatorABI.Unpack(sessionStatusMethod, out)
	if err != nil {
		return 0, fmt.Errorf("could not decode the session status: %w", err)
	}
	if len(values) != 1 {
		return 0, ErrUnexpectedStatusOutput
	}
	raw, ok := values[0].(uint8)
	if !ok {
		return 0, ErrUnexpectedStatusOutput
	}

	return session.ParseStatus(raw)
}

func (c *Client) CreateSession(ctx context.Context, account common.Address, cfg session.Config) (session.Config, error) {
	sessionHash, err := cfg.Hash()
	if err != nil {
		return session.Config{}, err
	}

	data, err := validatorABI.Pack(createSessionMethod, cfg.ABI())
	if err != nil {
		return session.Config{}, fmt.Errorf("could not encode the session creation: %w", err)
	}

	receipt, err := c.transact(ctx, account, data)
	if err != nil {
		return session.Config{}, fmt.Errorf("could not register the session: %w", err)
	}

	registered, err := c.findRegisteredSession(receipt, account, sessionHash)
	if err != nil {
		return session.Config{}, err
	}

	c.log.Info("session registered",
		zap.String("account", account.Hex()),
		zap.String("session-hash", sessionHash.Hex()),
		zap.String("tx-hash", receipt.TxHash.Hex()),
	)
	return registered, nil
}

func (c *Client) RevokeSession(ctx context.Context, account common.Address, sessionHash common.Hash) (common.Hash, error) {
	data, err := validatorABI.Pack(revokeKeyMethod, sessionHash)
	if err != nil {
		return common.Hash{}, fmt.Errorf("could not encode the session revocation: %w", err)
	}

	receipt, err := c.transact(ctx, account, data)
	if err != nil {
		return common.Hash{}, fmt.Errorf("could not revoke the session: %w", err)
	}

	c.log.Info("session revoked",
		zap.String("account", account.Hex()),
		zap.String("session-hash", sessionHash.Hex()),
		zap.String("tx-hash", receipt.TxHash.Hex()),
	)
	return receipt.TxHash, nil
}

func (c *Client) SendTransaction(ctx context.Context, cred session.Credential, call session.Call) (common.Hash, error) {
	defer metrics.StartChainRequest(c.config.SessionTransactionMethod)()

	key, err := cred.PrivateKey()
	if err != nil {
		return common.Hash{}, err
	}

	encodedSession, err := cred.Config.Encode()
	if err != nil {
		return common.Hash{}, err
	}
	sessionHash := crypto.Keccak256Hash(encodedSession)

	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}

	signature, err := crypto.Sign(SessionTransactionDigest(cred.Account, sessionHash, call).Bytes(), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("could not sign the transaction: %w", err)
	}

	args := sessionTransactionArgs{
		Account:     cred.Account,
		Signer:      cred.Config.Signer,
		Validator:   c.validator,
		Session:     encodedSession,
		SessionHash: sessionHash,
		To:          call.To,
		Value:       (*hexutil.Big)(value),
		Data:        call.Data,
		Signature:   signature,
	}

	var txHash common.Hash
	if err := c.rpc.CallContext(ctx, &txHash, c.config.SessionTransactionMethod, args); err != nil {
		c.log.Error("could not send the session transaction",
			zap.String("account", cred.Account.Hex()),
			zap.String("session-hash", sessionHash.Hex()),
			zap.Error(err),
		)
		return common.Hash{}, fmt.Errorf("could not send the session transaction: %w", err)
	}

	c.log.Debug("session transaction sent",
		zap.String("account", cred.Account.Hex()),
		zap.String("tx-hash", txHash.Hex()),
	)
	return txHash, nil
}

func (c *Client) Close() {
	c.closeFn()
}

// SessionTransactionDigest returns the digest signed by the session signer
// to authorise a call: the keccak256 of the concatenation of the account,
// the session hash, the target, the value as a 32-byte word and the data.
func SessionTransactionDigest(account common.Address, sessionHash common.Hash, call session.Call) common.Hash {
	value := call.Value
	if value == nil {
		value = big.NewInt(0)
	}
	return crypto.Keccak256Hash(
		account.Bytes(),
		sessionHash.Bytes(),
		call.To.Bytes(),
		common.LeftPadBytes(value.Bytes(), 32),
		call.Data,
	)
}

// transact sends a transaction from the account to the validator, and
// waits for its receipt. The wallet behind the node signs it.
func (c *Client) transact(ctx context.Context, account common.Address, data []byte) (*types.Receipt, error) {
	done := metrics.StartChainRequest("eth_sendTransaction")

	var txHash common.Hash
	err := c.rpc.CallContext(ctx, &txHash, "eth_sendTransaction", transactionArgs{
		From: account,
		To:   &c.validator,
		Data: data,
	})
	done()
	if err != nil {
		c.log.Error("could not send the transaction",
			zap.String("account", account.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	c.log.Debug("transaction sent, waiting for its receipt",
		zap.String("account", account.Hex()),
		zap.String("tx-hash", txHash.Hex()),
	)

	receipt, err := c.waitForReceipt(ctx, txHash)
	if err != nil {
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, TransactionRevertedError{Hash: txHash}
	}
	return receipt, nil
}

func (c *Client) waitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	defer metrics.StartChainRequest("eth_getTransactionReceipt")()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.ReceiptPollInterval.Get()
	bo.MaxElapsedTime = c.config.ReceiptTimeout.Get()

	var receipt *types.Receipt
	err := backoff.Retry(func() error {
		r, err := c.eth.TransactionReceipt(ctx, txHash)
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				c.log.Debug("could not get the transaction receipt",
					zap.String("tx-hash", txHash.Hex()),
					zap.Error(err),
				)
			}
			return err
		}
		receipt = r
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("could not get the receipt of the transaction %s: %w", txHash.Hex(), err)
	}
	return receipt, nil
}

func (c *Client) findRegisteredSession(receipt *types.Receipt, account common.Address, sessionHash common.Hash) (session.Config, error) {
	event := validatorABI.Events[sessionCreatedEvent]

	for _, l := range receipt.Logs {
		if l.Address != c.validator || len(l.Topics) != 3 || l.Topics[0] != event.ID {
			continue
		}
		if l.Topics[1] != common.BytesToHash(account.Bytes()) || l.Topics[2] != sessionHash {
			continue
		}

		out := struct {
			SessionSpec session.ABISessionSpec
		}{}
		if err := validatorABI.UnpackIntoInterface(&out, sessionCreatedEvent, l.Data); err != nil {
			return session.Config{}, fmt.Errorf("could not decode the session creation event: %w", err)
		}

		registered, err := session.ParseConfig(out.SessionSpec)
		if err != nil {
			return session.Config{}, err
		}

		registeredHash, err := registered.Hash()
		if err != nil {
			return session.Config{}, err
		}
		if registeredHash != sessionHash {
			return session.Config{}, ErrRegisteredSessionMismatch
		}

		return registered, nil
	}

	return session.Config{}, ErrSessionCreatedEventNotFound
}

func (c *Client) retry(ctx context.Context, o backoff.Operation) error {
	return backoff.Retry(o, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx))
}
