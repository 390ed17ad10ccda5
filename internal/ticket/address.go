package ticket

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte account address with two wire representations:
// human-readable encodings (JSON, text) carry the 0x-prefixed lowercase
// hex string, the compact binary encoding (CBOR) carries the raw 20
// bytes. The serialization context selects the path by which marshal
// interface it invokes; nothing is threaded through call sites.
type Address [20]byte

// ParseAddress parses a 0x-prefixed hex address literal.
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return Address(common.HexToAddress(s)), nil
}

// String returns the canonical display form: 0x-prefixed lowercase hex.
// This is also the form used in the verification message.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Common converts to the go-ethereum address type.
func (a Address) Common() common.Address {
	return common.Address(a)
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalCBOR encodes the address as a 20-byte CBOR byte string.
func (a Address) MarshalCBOR() ([]byte, error) {
	return encMode.Marshal(a[:])
}

// UnmarshalCBOR decodes a CBOR byte string of exactly 20 bytes.
func (a *Address) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != len(a) {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAddress, len(raw), len(a))
	}
	copy(a[:], raw)
	return nil
}
