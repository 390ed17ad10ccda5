package ticket

import "errors"

// Failure modes of ticket decoding and verification. Every fallible step
// wraps exactly one of these, so callers can distinguish the cases with
// errors.Is. All of them mean "reject the ticket"; none is retryable.
var (
	// ErrInvalidEncoding reports a ticket string that is not valid
	// URL-safe base64 without padding.
	ErrInvalidEncoding = errors.New("invalid base64 (URL, nopad)")

	// ErrInvalidSignatureLength reports a decoded buffer too short to
	// contain the fixed-size trailing signature.
	ErrInvalidSignatureLength = errors.New("invalid signature length")

	// ErrInvalidPayload reports a payload portion that does not
	// deserialize into a Payload.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidAddress reports a malformed address literal in a
	// human-readable encoding.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrSignatureMismatch reports that the address recovered from the
	// signature does not equal the payload's claimed signer. This is the
	// single authenticity failure mode.
	ErrSignatureMismatch = errors.New("recovered signer does not match claim")
)
