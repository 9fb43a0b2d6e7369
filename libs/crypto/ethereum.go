// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.


package crypto

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidEthereumAddress = errors.New("invalid ethereum address")

// EthereumChecksumAddress returns the EIP-55 form of the hex encoded
// address.
func EthereumChecksumAddress(s string) string {
	return common.HexToAddress(s).Hex()
}

// EthereumIsValidAddress returns whether the given string is a valid ethereum address.
func EthereumIsValidAddress(s string) bool {
	return common.IsHexAddress(s)
}

// ParseEthereumAddress parses a hex encoded address, rejecting the zero
// address.
func ParseEthereumAddress(s string) (common.Address, error) {
	if !EthereumIsValidAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidEthereumAddress, s)
	}

	address := common.HexToAddress(s)
	if address == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: the zero address is not allowed", ErrInvalidEthereumAddress)
	}
	return address, nil
}
