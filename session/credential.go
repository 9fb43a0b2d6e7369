package session

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Credential is a registered session: the delegated signer key of an
// account, and the policy attached to it on-chain.
type Credential struct {
	Account common.Address `json:"account"`
	// SignerKey is the hex encoded private key of the session signer. It
	// never leaves the local storage, and only ever in encrypted form.
	SignerKey string `json:"signerKey"`
	Config    Config `json:"session"`
}

// GenerateSignerKey generates a new session signer key, returned with its
// hex encoding.
func GenerateSignerKey() (*ecdsa.PrivateKey, string, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, "", fmt.Errorf("could not generate the signer key: %w", err)
	}
	return key, hexutil.Encode(crypto.FromECDSA(key)), nil
}

func (c Credential) PrivateKey() (*ecdsa.PrivateKey, error) {
	if c.SignerKey == "" {
		return nil, ErrSignerKeyIsRequired
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.SignerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse the signer key: %w", err)
	}
	return key, nil
}

// Hash returns the session hash. It only depends on the policy.
func (c Credential) Hash() (common.Hash, error) {
	return c.Config.Hash()
}

func (c Credential) Validate() error {
	if c.Account == (common.Address{}) {
		return ErrAccountIsRequired
	}

	key, err := c.PrivateKey()
	if err != nil {
		return err
	}

	if crypto.PubkeyToAddress(key.PublicKey) != c.Config.Signer {
		return ErrSignerKeyDoesNotMatch
	}

	return c.Config.Validate()
}
