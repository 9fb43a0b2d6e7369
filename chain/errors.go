package chain

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrSessionCreatedEventNotFound = errors.New("the transaction did not emit the session creation event")
	ErrRegisteredSessionMismatch   = errors.New("the registered session does not match the requested one")
	ErrUnexpectedStatusOutput      = errors.New("unexpected output from the session status query")
	ErrRPCAddressIsRequired        = errors.New("the RPC address is required")
)

type TransactionRevertedError struct {
	Hash common.Hash
}

func (e TransactionRevertedError) Error() string {
	return fmt.Sprintf("the transaction %s has been reverted", e.Hash.Hex())
}
