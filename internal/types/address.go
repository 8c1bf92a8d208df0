package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte identifier rendered as a lowercased hex string for
// equality, hashing and map keys. The original case supplied by a caller is
// not retained; callers that must echo user-supplied casing should keep the
// raw string alongside the Address separately.
type Address string

// NilAddress is the sentinel for an unresolved/native-currency address.
const NilAddress Address = ""

// NewAddress validates and lowercases a hex address string.
func NewAddress(raw string) (Address, error) {
	if raw == "" {
		return NilAddress, nil
	}
	if !common.IsHexAddress(raw) {
		return NilAddress, fmt.Errorf("invalid address: %s", raw)
	}
	return Address(strings.ToLower(raw)), nil
}

// MustAddress panics on an invalid address; for use with compile-time constants.
func MustAddress(raw string) Address {
	addr, err := NewAddress(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

// Equal compares two addresses case-insensitively (both are already
// lowercased by construction, but defends against manual literals).
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(string(a), string(other))
}

func (a Address) IsNil() bool {
	return a == NilAddress
}

func (a Address) String() string {
	return string(a)
}

// UnmarshalJSON lowercases incoming address strings. Hex validation is the
// request boundary's job (NewAddress, internal/validate); values decoded
// here come from the engine's own encodings, e.g. cached routes.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Address(strings.ToLower(s))
	return nil
}
