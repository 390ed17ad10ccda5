package ticket

import (
	"encoding/base64"
	"fmt"
)

// Encode serializes and signs the payload: cbor(payload) || sig[65].
// No delimiter separates the two because the signature length is fixed
// and consumed from the tail on decode.
func (p *Payload) Encode(signer Signer) ([]byte, error) {
	buf, err := encMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	sig, err := p.Sign(signer)
	if err != nil {
		return nil, err
	}
	return append(buf, sig...), nil
}

// ToBase64 mints the wire-format ticket string: URL-safe base64 of
// Encode's output, no padding.
func (p *Payload) ToBase64(signer Signer) (string, error) {
	raw, err := p.Encode(signer)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// FromBase64 decodes and verifies a ticket string, returning the payload
// and its signature. Steps run in order and each failure short-circuits:
// base64 decode (ErrInvalidEncoding), signature extraction
// (ErrInvalidSignatureLength), payload deserialization (ErrInvalidPayload),
// signer recovery (ErrSignatureMismatch). Only on success may the payload
// be trusted for authorization decisions.
func FromBase64(s string) (*Payload, []byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if len(raw) < SignatureSize {
		return nil, nil, fmt.Errorf("%w: %d bytes cannot contain a signature",
			ErrInvalidSignatureLength, len(raw))
	}

	split := len(raw) - SignatureSize
	sig := raw[split:]

	var payload Payload
	if err := decMode.Unmarshal(raw[:split], &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if _, err := payload.Verify(sig); err != nil {
		return nil, nil, err
	}
	return &payload, sig, nil
}
