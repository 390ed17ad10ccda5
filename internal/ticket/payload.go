// Package ticket implements the subscription ticket protocol: a compact,
// self-contained bearer credential signed with an EIP-191 recoverable
// signature. A ticket is the CBOR-serialized payload with the 65-byte
// signature appended, base64url-encoded without padding.
package ticket

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/graphops/graph-subscriptions/internal/eip191"
)

// SignatureSize is the length of a recoverable ECDSA signature:
// 64 bytes R||S plus the recovery byte V.
const SignatureSize = 65

// Payload is the signed body of a ticket. It is a value: built once,
// signed, and never mutated afterward. Absent optional fields are omitted
// from the serialized form entirely, and field presence feeds directly
// into the verification message, so presence must survive serialization.
type Payload struct {
	// ChainID is the EIP-155 ID of the chain the subscriptions contract
	// is deployed on.
	ChainID uint64 `cbor:"chain_id" json:"chain_id"`
	// Contract is the address of the subscriptions contract.
	Contract Address `cbor:"contract" json:"contract"`
	// Signer is the address whose secret key signed the ticket.
	Signer Address `cbor:"signer" json:"signer"`
	// User is the subscription owner, set when the authorized signer is
	// not the subscriber itself. When omitted, the signer is implied to
	// equal the user.
	User *Address `cbor:"user,omitempty" json:"user,omitempty"`
	// Name is an optional nice name. It carries no authorization
	// semantics.
	Name *string `cbor:"name,omitempty" json:"name,omitempty"`
	// AllowedSubgraphs is a comma-separated list of subgraphs that may be
	// queried with this ticket. Absent means unrestricted. No escaping is
	// defined; values containing commas or newlines are unsupported.
	AllowedSubgraphs *string `cbor:"allowed_subgraphs,omitempty" json:"allowed_subgraphs,omitempty"`
	// AllowedDeployments is a comma-separated list of subgraph
	// deployments that may be queried with this ticket.
	AllowedDeployments *string `cbor:"allowed_deployments,omitempty" json:"allowed_deployments,omitempty"`
	// AllowedDomains is a comma-separated list of origin domains that may
	// send queries with this ticket.
	AllowedDomains *string `cbor:"allowed_domains,omitempty" json:"allowed_domains,omitempty"`
}

// UserOrSigner returns the subscription owner: the explicit user when
// present, otherwise the signer.
func (p *Payload) UserOrSigner() Address {
	if p.User != nil {
		return *p.User
	}
	return p.Signer
}

// VerificationMessage renders the canonical signing input: one
// "<field>: <value>" line per present field, in fixed alphabetical order
// by field name. Two payloads produce the same message iff they have the
// same present fields with the same values. Values are written verbatim;
// a value containing a newline corrupts the message and must be rejected
// upstream. The message is never parsed back.
func (p *Payload) VerificationMessage() string {
	var b strings.Builder
	if p.AllowedDeployments != nil {
		fmt.Fprintf(&b, "allowed_deployments: %s\n", *p.AllowedDeployments)
	}
	if p.AllowedDomains != nil {
		fmt.Fprintf(&b, "allowed_domains: %s\n", *p.AllowedDomains)
	}
	if p.AllowedSubgraphs != nil {
		fmt.Fprintf(&b, "allowed_subgraphs: %s\n", *p.AllowedSubgraphs)
	}
	fmt.Fprintf(&b, "chain_id: %d\n", p.ChainID)
	fmt.Fprintf(&b, "contract: %s\n", p.Contract)
	if p.Name != nil {
		fmt.Fprintf(&b, "name: %s\n", *p.Name)
	}
	fmt.Fprintf(&b, "signer: %s\n", p.Signer)
	if p.User != nil {
		fmt.Fprintf(&b, "user: %s\n", *p.User)
	}
	return b.String()
}

// Signer is the key-holding capability used to mint tickets: given a
// 32-byte digest it returns a 65-byte recoverable signature. The address
// is assumed correct for the held key. Implementations must tolerate
// concurrent independent calls.
type Signer interface {
	SignDigest(digest []byte) ([]byte, error)
	Address() Address
}

// KeySigner signs with an in-memory secp256k1 private key.
type KeySigner struct {
	key *ecdsa.PrivateKey
}

func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

func (s *KeySigner) Address() Address {
	return Address(crypto.PubkeyToAddress(s.key.PublicKey))
}

// SignDigest signs the digest and converts V to the 27/28 Ethereum
// convention, which is what goes on the wire.
func (s *KeySigner) SignDigest(digest []byte) ([]byte, error) {
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// Sign produces the ticket signature: the EIP-191 personal-message hash
// of the verification message, signed by the capability. The signer's
// address is not checked against p.Signer here; an issuer is trusted to
// sign for itself, and consistency is enforced at verification time.
func (p *Payload) Sign(signer Signer) ([]byte, error) {
	digest := eip191.HashMessage([]byte(p.VerificationMessage()))
	sig, err := signer.SignDigest(digest)
	if err != nil {
		return nil, fmt.Errorf("sign ticket: %w", err)
	}
	if len(sig) != SignatureSize {
		return nil, fmt.Errorf("%w: signer returned %d bytes", ErrInvalidSignatureLength, len(sig))
	}
	return sig, nil
}

// Verify recovers the address that produced sig over the verification
// message and requires it to equal the claimed signer. This is the sole
// authenticity gate; nothing else in the payload is cryptographically
// checked. Returns the signer address on success.
func (p *Payload) Verify(sig []byte) (Address, error) {
	if len(sig) != SignatureSize {
		return Address{}, fmt.Errorf("%w: got %d bytes", ErrInvalidSignatureLength, len(sig))
	}
	recovered, err := eip191.Recover([]byte(p.VerificationMessage()), sig)
	if err != nil {
		return Address{}, fmt.Errorf("recover signer: %w", err)
	}
	if Address(recovered) != p.Signer {
		return Address{}, fmt.Errorf("%w: recovered %s, claimed %s",
			ErrSignatureMismatch, Address(recovered), p.Signer)
	}
	return p.Signer, nil
}
