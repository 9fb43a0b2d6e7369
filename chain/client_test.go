package chain_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/abstract-foundation/agw-session-keys/chain"
	"github.com/abstract-foundation/agw-session-keys/chain/mocks"
	"github.com/abstract-foundation/agw-session-keys/libs/encoding"
	"github.com/abstract-foundation/agw-session-keys/network"
	"github.com/abstract-foundation/agw-session-keys/session"
	"github.com/abstract-foundation/agw-session-keys/session/sessiontest"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var validatorAddress = common.HexToAddress(network.DefaultValidatorAddress)

func TestClient(t *testing.T) {
	t.Run("Getting the chain ID is retried", testGettingChainIDIsRetried)
	t.Run("Querying the session status succeeds", testQueryingSessionStatusSucceeds)
	t.Run("Querying an unknown session status fails", testQueryingUnknownSessionStatusFails)
	t.Run("Querying the session status fails when the node fails", testQueryingSessionStatusFailsWhenNodeFails)
	t.Run("Creating a session succeeds", testCreatingSessionSucceeds)
	t.Run("Creating a session waits for the receipt", testCreatingSessionWaitsForReceipt)
	t.Run("Creating a session fails when the transaction is reverted", testCreatingSessionFailsWhenTransactionIsReverted)
	t.Run("Creating a session fails without creation event", testCreatingSessionFailsWithoutCreationEvent)
	t.Run("Creating a session fails when the node rejects it", testCreatingSessionFailsWhenNodeRejectsIt)
	t.Run("Creating an invalid session fails", testCreatingInvalidSessionFails)
	t.Run("Revoking a session succeeds", testRevokingSessionSucceeds)
	t.Run("Sending a transaction signs it with the session signer", testSendingTransactionSignsItWithSessionSigner)
	t.Run("Waiting for a receipt without configuration gives up", testWaitingForReceiptWithoutConfigurationGivesUp)
}

type testClient struct {
	*chain.Client
	eth *mocks.MockETHClient
	rpc *mocks.MockRPCCaller
}

func newTestClient(t *testing.T, retries uint64) *testClient {
	t.Helper()

	ctrl := gomock.NewController(t)
	eth := mocks.NewMockETHClient(ctrl)
	rpcCaller := mocks.NewMockRPCCaller(ctrl)

	config := chain.NewDefaultConfig()
	config.ReceiptPollInterval = encoding.Duration{Duration: time.Millisecond}
	config.ReceiptTimeout = encoding.Duration{Duration: time.Second}

	return &testClient{
		Client: chain.NewClient(zap.NewNop(), eth, rpcCaller, validatorAddress, retries, config),
		eth:    eth,
		rpc:    rpcCaller,
	}
}

func testGettingChainIDIsRetried(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 1)

	// setup
	gomock.InOrder(
		client.eth.EXPECT().ChainID(ctx).Times(1).Return(nil, errors.New("connection reset")),
		client.eth.EXPECT().ChainID(ctx).Times(1).Return(big.NewInt(11124), nil),
	)

	// when
	chainID, err := client.ChainID(ctx)

	// then
	require.NoError(t, err)
	assert.Equal(t, int64(11124), chainID.Int64())
}

func testQueryingSessionStatusSucceeds(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	account := sessiontest.RandomAddress(t)
	sessionHash := crypto.Keccak256Hash([]byte("session"))
	expectedData, err := chain.ValidatorABI().Pack("sessionStatus", account, sessionHash)
	require.NoError(t, err)

	// setup
	client.eth.EXPECT().CallContract(ctx, gomock.Any(), nil).Times(1).DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
		assert.Equal(t, &validatorAddress, msg.To)
		assert.Equal(t, expectedData, msg.Data)
		return encodedStatus(session.StatusActive), nil
	})

	// when
	status, err := client.SessionStatus(ctx, account, sessionHash)

	// then
	require.NoError(t, err)
	assert.Equal(t, session.StatusActive, status)
}

func testQueryingUnknownSessionStatusFails(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)

	// setup
	client.eth.EXPECT().CallContract(ctx, gomock.Any(), nil).Times(1).Return(encodedStatus(9), nil)

	// when
	_, err := client.SessionStatus(ctx, sessiontest.RandomAddress(t), common.Hash{1})

	// then
	var statusErr session.UnknownStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, uint8(9), statusErr.Value)
}

func testQueryingSessionStatusFailsWhenNodeFails(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	nodeErr := errors.New("node is down")

	// setup
	client.eth.EXPECT().CallContract(ctx, gomock.Any(), nil).Times(1).Return(nil, nodeErr)

	// when
	_, err := client.SessionStatus(ctx, sessiontest.RandomAddress(t), common.Hash{1})

	// then
	require.ErrorIs(t, err, nodeErr)
}

func testCreatingSessionSucceeds(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	account := sessiontest.RandomAddress(t)
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	txHash := common.Hash{0xaa}
	expectedData, err := chain.ValidatorABI().Pack("createSession", cfg.ABI())
	require.NoError(t, err)

	// setup
	client.rpc.EXPECT().CallContext(ctx, gomock.Any(), "eth_sendTransaction", gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, result interface{}, _ string, args ...interface{}) error {
			tx := decodeArgs(t, args[0])
			assert.Equal(t, account.Hex(), common.HexToAddress(tx["from"].(string)).Hex())
			assert.Equal(t, validatorAddress.Hex(), common.HexToAddress(tx["to"].(string)).Hex())
			assert.Equal(t, hexutil.Encode(expectedData), tx["data"])
			*(result.(*common.Hash)) = txHash
			return nil
		})
	client.eth.EXPECT().TransactionReceipt(ctx, txHash).Times(1).Return(successfulReceipt(t, txHash, account, cfg), nil)

	// when
	registered, err := client.CreateSession(ctx, account, cfg)

	// then
	require.NoError(t, err)
	sessiontest.AssertEqualConfig(t, cfg, registered)
}

func testCreatingSessionWaitsForReceipt(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	account := sessiontest.RandomAddress(t)
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	txHash := common.Hash{0xbb}

	// setup
	client.rpc.EXPECT().CallContext(ctx, gomock.Any(), "eth_sendTransaction", gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, result interface{}, _ string, _ ...interface{}) error {
			*(result.(*common.Hash)) = txHash
			return nil
		})
	gomock.InOrder(
		client.eth.EXPECT().TransactionReceipt(ctx, txHash).Times(2).Return(nil, ethereum.NotFound),
		client.eth.EXPECT().TransactionReceipt(ctx, txHash).Times(1).Return(successfulReceipt(t, txHash, account, cfg), nil),
	)

	// when
	registered, err := client.CreateSession(ctx, account, cfg)

	// then
	require.NoError(t, err)
	sessiontest.AssertEqualConfig(t, cfg, registered)
}

func testCreatingSessionFailsWhenTransactionIsReverted(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	account := sessiontest.RandomAddress(t)
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	txHash := common.Hash{0xcc}
	receipt := successfulReceipt(t, txHash, account, cfg)
	receipt.Status = types.ReceiptStatusFailed

	// setup
	client.rpc.EXPECT().CallContext(ctx, gomock.Any(), "eth_sendTransaction", gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, result interface{}, _ string, _ ...interface{}) error {
			*(result.(*common.Hash)) = txHash
			return nil
		})
	client.eth.EXPECT().TransactionReceipt(ctx, txHash).Times(1).Return(receipt, nil)

	// when
	_, err := client.CreateSession(ctx, account, cfg)

	// then
	var revertErr chain.TransactionRevertedError
	require.ErrorAs(t, err, &revertErr)
	assert.Equal(t, txHash, revertErr.Hash)
}

func testCreatingSessionFailsWithoutCreationEvent(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	account := sessiontest.RandomAddress(t)
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	txHash := common.Hash{0xdd}
	// The event is emitted for another account.
	receipt := successfulReceipt(t, txHash, sessiontest.RandomAddress(t), cfg)

	// setup
	client.rpc.EXPECT().CallContext(ctx, gomock.Any(), "eth_sendTransaction", gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, result interface{}, _ string, _ ...interface{}) error {
			*(result.(*common.Hash)) = txHash
			return nil
		})
	client.eth.EXPECT().TransactionReceipt(ctx, txHash).Times(1).Return(receipt, nil)

	// when
	_, err := client.CreateSession(ctx, account, cfg)

	// then
	require.ErrorIs(t, err, chain.ErrSessionCreatedEventNotFound)
}

func testCreatingSessionFailsWhenNodeRejectsIt(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	cfg := sessiontest.NewTemplate().Instantiate(sessiontest.RandomAddress(t), time.Now())
	rejection := errors.New("user rejected the request")

	// setup
	client.rpc.EXPECT().CallContext(ctx, gomock.Any(), "eth_sendTransaction", gomock.Any()).Times(1).Return(rejection)
	client.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Times(0)

	// when
	_, err := client.CreateSession(ctx, sessiontest.RandomAddress(t), cfg)

	// then
	require.ErrorIs(t, err, rejection)
}

func testCreatingInvalidSessionFails(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	cfg := sessiontest.NewTemplate().Instantiate(common.Address{}, time.Now())

	// setup
	client.rpc.EXPECT().CallContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// when
	_, err := client.CreateSession(ctx, sessiontest.RandomAddress(t), cfg)

	// then
	require.ErrorIs(t, err, session.ErrSignerIsRequired)
}

func testRevokingSessionSucceeds(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	account := sessiontest.RandomAddress(t)
	sessionHash := common.Hash{0x01}
	txHash := common.Hash{0xee}
	expectedData, err := chain.ValidatorABI().Pack("revokeKey", sessionHash)
	require.NoError(t, err)

	// setup
	client.rpc.EXPECT().CallContext(ctx, gomock.Any(), "eth_sendTransaction", gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, result interface{}, _ string, args ...interface{}) error {
			tx := decodeArgs(t, args[0])
			assert.Equal(t, hexutil.Encode(expectedData), tx["data"])
			*(result.(*common.Hash)) = txHash
			return nil
		})
	client.eth.EXPECT().TransactionReceipt(ctx, txHash).Times(1).Return(&types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: txHash,
	}, nil)

	// when
	revocationHash, err := client.RevokeSession(ctx, account, sessionHash)

	// then
	require.NoError(t, err)
	assert.Equal(t, txHash, revocationHash)
}

func testSendingTransactionSignsItWithSessionSigner(t *testing.T) {
	// given
	ctx := context.Background()
	client := newTestClient(t, 0)
	account := sessiontest.RandomAddress(t)
	cred := sessiontest.NewCredential(t, account, sessiontest.NewTemplate(), time.Now())
	call := session.Call{
		To:    sessiontest.RecipientAddress,
		Value: big.NewInt(42),
	}
	sessionHash, err := cred.Hash()
	require.NoError(t, err)
	txHash := common.Hash{0xff}

	// setup
	client.rpc.EXPECT().CallContext(ctx, gomock.Any(), chain.DefaultSessionTransactionMethod, gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, result interface{}, _ string, args ...interface{}) error {
			tx := decodeArgs(t, args[0])
			assert.Equal(t, sessionHash.Hex(), tx["sessionHash"])
			assert.Equal(t, "0x2a", tx["value"])

			signature, err := hexutil.Decode(tx["signature"].(string))
			require.NoError(t, err)
			pubKey, err := crypto.SigToPub(chain.SessionTransactionDigest(account, sessionHash, call).Bytes(), signature)
			require.NoError(t, err)
			assert.Equal(t, cred.Config.Signer, crypto.PubkeyToAddress(*pubKey))

			*(result.(*common.Hash)) = txHash
			return nil
		})

	// when
	sentHash, err := client.SendTransaction(ctx, cred, call)

	// then
	require.NoError(t, err)
	assert.Equal(t, txHash, sentHash)
}

func testWaitingForReceiptWithoutConfigurationGivesUp(t *testing.T) {
	// given
	ctrl := gomock.NewController(t)
	eth := mocks.NewMockETHClient(ctrl)
	rpcCaller := mocks.NewMockRPCCaller(ctrl)
	client := chain.NewClient(zap.NewNop(), eth, rpcCaller, validatorAddress, 0, chain.Config{})
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	account := sessiontest.RandomAddress(t)
	sessionHash := common.Hash{0x01}
	txHash := common.Hash{0xff}

	// setup
	rpcCaller.EXPECT().CallContext(gomock.Any(), gomock.Any(), "eth_sendTransaction", gomock.Any()).Times(1).DoAndReturn(
		func(_ context.Context, result interface{}, _ string, _ ...interface{}) error {
			*(result.(*common.Hash)) = txHash
			return nil
		})
	// the default poll interval spaces the attempts by about a second
	eth.EXPECT().TransactionReceipt(gomock.Any(), txHash).MinTimes(1).MaxTimes(3).Return(nil, ethereum.NotFound)

	// when
	_, err := client.RevokeSession(ctx, account, sessionHash)

	// then
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func encodedStatus(status session.Status) []byte {
	return common.LeftPadBytes([]byte{byte(status)}, 32)
}

func successfulReceipt(t *testing.T, txHash common.Hash, account common.Address, cfg session.Config) *types.Receipt {
	t.Helper()

	event := chain.ValidatorABI().Events["SessionCreated"]
	data, err := event.Inputs.NonIndexed().Pack(cfg.ABI())
	require.NoError(t, err)
	sessionHash, err := cfg.Hash()
	require.NoError(t, err)

	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		TxHash: txHash,
		Logs: []*types.Log{
			{
				Address: validatorAddress,
				Topics:  []common.Hash{event.ID, common.BytesToHash(account.Bytes()), sessionHash},
				Data:    data,
			},
		},
	}
}

func decodeArgs(t *testing.T, args interface{}) map[string]interface{} {
	t.Helper()

	buf, err := json.Marshal(args)
	require.NoError(t, err)
	decoded := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf, &decoded))
	return decoded
}
