package chain

import (
	"fmt"

	"github.com/abstract-foundation/agw-session-keys/session"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	createSessionMethod = "createSession"
	sessionStatusMethod = "sessionStatus"
	revokeKeyMethod     = "revokeKey"
	sessionCreatedEvent = "SessionCreated"
)

var validatorABI = mustValidatorABI()

// ValidatorABI returns the subset of the session key validator ABI used to
// manage sessions.
func ValidatorABI() abi.ABI {
	return validatorABI
}

func mustValidatorABI() abi.ABI {
	specType := mustNewType("tuple", "struct SessionLib.SessionSpec", session.SpecComponents)
	addressType := mustNewType("address", "", nil)
	bytes32Type := mustNewType("bytes32", "", nil)
	statusType := mustNewType("uint8", "enum SessionLib.Status", nil)

	return abi.ABI{
		Methods: map[string]abi.Method{
			createSessionMethod: abi.NewMethod(createSessionMethod, createSessionMethod, abi.Function, "nonpayable", false, false,
				abi.Arguments{{Name: "sessionSpec", Type: specType}},
				nil,
			),
			sessionStatusMethod: abi.NewMethod(sessionStatusMethod, sessionStatusMethod, abi.Function, "view", true, false,
				abi.Arguments{{Name: "account", Type: addressType}, {Name: "sessionHash", Type: bytes32Type}},
				abi.Arguments{{Name: "", Type: statusType}},
			),
			revokeKeyMethod: abi.NewMethod(revokeKeyMethod, revokeKeyMethod, abi.Function, "nonpayable", false, false,
				abi.Arguments{{Name: "sessionHash", Type: bytes32Type}},
				nil,
			),
		},
		Events: map[string]abi.Event{
			sessionCreatedEvent: abi.NewEvent(sessionCreatedEvent, sessionCreatedEvent, false, abi.Arguments{
				{Name: "account", Type: addressType, Indexed: true},
				{Name: "sessionHash", Type: bytes32Type, Indexed: true},
				{Name: "sessionSpec", Type: specType},
			}),
		},
	}
}

func mustNewType(t, internalType string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, internalType, components)
	if err != nil {
		panic(fmt.Errorf("invalid validator ABI definition: %w", err))
	}
	return typ
}
