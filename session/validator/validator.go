package validator

import (
	"context"
	"math/big"

	"github.com/abstract-foundation/agw-session-keys/metrics"
	"github.com/abstract-foundation/agw-session-keys/network"
	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// StatusReader reads the on-chain state of the sessions.
type StatusReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	SessionStatus(ctx context.Context, account common.Address, sessionHash common.Hash) (session.Status, error)
}

// Validator decides whether a stored session can still be used. Any failure
// to reach the chain is reported as an unusable session.
type Validator struct {
	log    *zap.Logger
	reader StatusReader
}

func NewValidator(log *zap.Logger, reader StatusReader) *Validator {
	return &Validator{
		log:    log,
		reader: reader,
	}
}

// CheckValidity returns true only when the chain confirms the session can
// be used by the account.
func (v *Validator) CheckValidity(ctx context.Context, address common.Address, sessionHash common.Hash) bool {
	log := v.log.With(
		zap.String("account", address.Hex()),
		zap.String("session-hash", sessionHash.Hex()),
	)

	chainID, err := v.reader.ChainID(ctx)
	if err != nil {
		log.Warn("could not get the chain ID, the session is considered invalid", zap.Error(err))
		metrics.ValidityChecked("unknown", false)
		return false
	}

	status, err := v.reader.SessionStatus(ctx, address, sessionHash)
	if err != nil {
		log.Warn("could not get the session status, the session is considered invalid", zap.Error(err))
		metrics.ValidityChecked("unknown", false)
		return false
	}

	usable := IsUsable(status, chainID)
	metrics.ValidityChecked(status.String(), usable)

	log.Debug("session status checked",
		zap.String("chain-id", chainID.String()),
		zap.String("status", status.String()),
		zap.Bool("usable", usable),
	)
	return usable
}

// IsUsable returns true if a session in the given status can be used on
// the chain. An active session is always usable. A session not initialised
// yet is only usable on the permissive network, where the first
// transaction initialises it.
func IsUsable(status session.Status, chainID *big.Int) bool {
	switch status {
	case session.StatusActive:
		return true
	case session.StatusNotInitialized:
		return network.IsPermissive(chainID)
	default:
		return false
	}
}
