// Package txn provides the transaction pipeline: the two historical
// transaction shapes, bidirectional conversion between them, and the BCS
// encode/decode paths for signed transactions and their authenticators.
package txn

import (
	"crypto/ed25519"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// AddressLength is the byte length of an account address.
const AddressLength = 32

// Ed25519 fixed sizes and the single-key scheme identifier.
const (
	SchemeEd25519          uint8 = 0
	Ed25519PublicKeyLength       = 32
	Ed25519SignatureLength       = 64
)

// Ed25519AuthKeySuffix is appended to the public key before hashing to
// derive the authentication key for the single-key Ed25519 scheme.
const Ed25519AuthKeySuffix byte = 0x00

// AccountAddress is a 32-byte account address.
type AccountAddress [AddressLength]byte

// ParseAddress parses a 0x-prefixed hex address. Short-form addresses are
// left-padded to 32 bytes, matching how providers commonly abbreviate
// framework addresses such as 0x1.
func ParseAddress(s string) (AccountAddress, error) {
	var addr AccountAddress

	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	// hexutil rejects odd-length payloads; pad the nibble count up front.
	if len(s)%2 != 0 {
		s = "0x0" + s[2:]
	}

	b, err := hexutil.Decode(s)
	if err != nil {
		return addr, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "parsing address %q", s)
	}
	if len(b) > AddressLength {
		return addr, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "address %q exceeds %d bytes", s, AddressLength)
	}

	copy(addr[AddressLength-len(b):], b)
	return addr, nil
}

// String returns the full 0x-prefixed 64-nibble hex form.
func (a AccountAddress) String() string {
	return hexutil.Encode(a[:])
}

// IsZero returns true for the all-zero address.
func (a AccountAddress) IsZero() bool {
	return a == AccountAddress{}
}

// AuthKeyFromPublicKey derives the single-key Ed25519 authentication key:
// SHA3-256(publicKey || 0x00). For fresh accounts this is also the address.
func AuthKeyFromPublicKey(pub []byte) AccountAddress {
	h := sha3.New256()
	_, _ = h.Write(pub)
	_, _ = h.Write([]byte{Ed25519AuthKeySuffix})

	var addr AccountAddress
	copy(addr[:], h.Sum(nil))
	return addr
}

// ModuleID identifies a published module.
type ModuleID struct {
	Address AccountAddress
	Name    string
}

// String returns the "address::name" form.
func (m ModuleID) String() string {
	return m.Address.String() + "::" + m.Name
}

// EntryFunction is the structured entry-function call carried by the newer
// transaction shape.
type EntryFunction struct {
	Module   ModuleID
	Function string
	TypeArgs []TypeTag
	Args     [][]byte
}

// QualifiedName returns the "address::module::function" identifier.
func (e *EntryFunction) QualifiedName() string {
	return e.Module.String() + "::" + e.Function
}

// Payload is the older flat entry-function payload shape: a fully qualified
// function name, type arguments as strings, and pre-encoded argument bytes.
type Payload struct {
	Function      string
	TypeArguments []string
	Arguments     [][]byte
}

// EntryFunctionFromPayload converts the flat payload into the structured
// entry-function form, parsing the function identifier and type arguments.
func EntryFunctionFromPayload(p Payload) (*EntryFunction, error) {
	parts := strings.Split(p.Function, "::")
	if len(parts) != 3 {
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "function %q is not address::module::name", p.Function)
	}

	addr, err := ParseAddress(parts[0])
	if err != nil {
		return nil, err
	}

	tags := make([]TypeTag, 0, len(p.TypeArguments))
	for _, ta := range p.TypeArguments {
		tag, parseErr := ParseTypeTag(ta)
		if parseErr != nil {
			return nil, parseErr
		}
		tags = append(tags, tag)
	}

	args := make([][]byte, len(p.Arguments))
	copy(args, p.Arguments)

	return &EntryFunction{
		Module:   ModuleID{Address: addr, Name: parts[1]},
		Function: parts[2],
		TypeArgs: tags,
		Args:     args,
	}, nil
}

// ToPayload converts the structured form back to the flat payload shape.
func (e *EntryFunction) ToPayload() Payload {
	typeArgs := make([]string, 0, len(e.TypeArgs))
	for _, tag := range e.TypeArgs {
		typeArgs = append(typeArgs, tag.String())
	}

	args := make([][]byte, len(e.Args))
	copy(args, e.Args)

	return Payload{
		Function:      e.QualifiedName(),
		TypeArguments: typeArgs,
		Arguments:     args,
	}
}

// RawTransaction is the newer structured transaction shape.
type RawTransaction struct {
	Sender                  AccountAddress
	SequenceNumber          uint64
	Payload                 *EntryFunction
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
	ChainID                 uint8
}

// AccountAuthenticator binds an Ed25519 public key and signature to a
// transaction. Only the single-key Ed25519 scheme is supported.
type AccountAuthenticator struct {
	Scheme    uint8
	PublicKey []byte
	Signature []byte
}

// NewEd25519Authenticator constructs a single-key Ed25519 authenticator,
// enforcing the fixed 32-byte key and 64-byte signature sizes.
func NewEd25519Authenticator(pub, sig []byte) (*AccountAuthenticator, error) {
	if len(pub) != Ed25519PublicKeyLength {
		return nil, bridgeerr.Wrap(bridgeerr.ErrUnsupportedScheme,
			"public key is %d bytes, want %d", len(pub), Ed25519PublicKeyLength)
	}
	if len(sig) != Ed25519SignatureLength {
		return nil, bridgeerr.Wrap(bridgeerr.ErrUnsupportedScheme,
			"signature is %d bytes, want %d", len(sig), Ed25519SignatureLength)
	}

	return &AccountAuthenticator{
		Scheme:    SchemeEd25519,
		PublicKey: append([]byte(nil), pub...),
		Signature: append([]byte(nil), sig...),
	}, nil
}

// Verify checks the signature over message with the embedded public key.
func (a *AccountAuthenticator) Verify(message []byte) bool {
	if a.Scheme != SchemeEd25519 || len(a.PublicKey) != Ed25519PublicKeyLength {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(a.PublicKey), message, a.Signature)
}

// SignedTransaction is a raw transaction plus its sender authenticator.
type SignedTransaction struct {
	Raw           RawTransaction
	Authenticator AccountAuthenticator
}

// SignInput is the discriminated union of the two historical signing input
// shapes. Exactly two implementations exist: PayloadSignInput (older flat
// shape) and RawSignInput (newer structured shape).
type SignInput interface {
	isSignInput()
}

// PayloadSignInput is the older flat-payload signing input.
type PayloadSignInput struct {
	Payload Payload
	Options Options
}

func (PayloadSignInput) isSignInput() {}

// RawSignInput is the newer structured-transaction signing input.
type RawSignInput struct {
	Raw *RawTransaction
}

func (RawSignInput) isSignInput() {}

// MessageInput describes a message-signing request.
type MessageInput struct {
	Message string
	Nonce   string
}

// SignedMessage is a provider's response to a message-signing request.
type SignedMessage struct {
	Message     string
	Nonce       string
	FullMessage string
	Signature   []byte
	PublicKey   []byte
}

// Verify recomputes signature verification against the returned public key.
func (m SignedMessage) Verify() bool {
	if len(m.PublicKey) != Ed25519PublicKeyLength || len(m.Signature) != Ed25519SignatureLength {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(m.PublicKey), []byte(m.FullMessage), m.Signature)
}

// SubmissionResult is the chain-submission outcome: the pending transaction
// hash plus whatever output the provider or client returned.
type SubmissionResult struct {
	Hash   string
	Output map[string]any
}

// SubmitRequest is the input to signAndSubmitTransaction: the sender, the
// flat payload, and options, the shape both protocol generations accept at
// the orchestration boundary. Sender is filled by the orchestrator from the
// bound session account.
type SubmitRequest struct {
	Sender  AccountAddress
	Payload Payload
	Options Options
}

// SubmitInput is the input to submitTransaction: a signed transaction and
// any additional signer authenticators for multi-agent submission.
type SubmitInput struct {
	Signed                *SignedTransaction
	AdditionalSigners     []*AccountAuthenticator
	FeePayerAuthenticator *AccountAuthenticator
}

// HasAdditionalSigners reports whether multi-agent submission is required.
func (s SubmitInput) HasAdditionalSigners() bool {
	return len(s.AdditionalSigners) > 0 || s.FeePayerAuthenticator != nil
}

func (s SubmitInput) validate() error {
	if s.Signed == nil {
		return bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "submit input has no signed transaction")
	}
	return nil
}

// Validate checks structural completeness of the submit input.
func (s SubmitInput) Validate() error {
	if err := s.validate(); err != nil {
		return err
	}
	for i, auth := range s.AdditionalSigners {
		if auth == nil {
			return bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "additional signer %d is nil", i)
		}
	}
	return nil
}
