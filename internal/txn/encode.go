package txn

import (
	"golang.org/x/crypto/sha3"

	"github.com/halcyonlabs/walletbridge/internal/txn/bcs"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// Transaction payload variant indexes in the BCS enum.
const (
	payloadVariantScript        = 0
	payloadVariantModuleBundle  = 1
	payloadVariantEntryFunction = 2
	payloadVariantMultisig      = 3
)

// rawTransactionSalt is the signing-domain separator prefixed to the BCS
// bytes of a raw transaction before signing.
const rawTransactionSalt = "WBRIDGE::RawTransaction"

// MarshalBCS encodes the raw transaction.
func (r *RawTransaction) MarshalBCS() ([]byte, error) {
	if r.Payload == nil {
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "raw transaction has no payload")
	}

	s := bcs.NewSerializer()
	s.WriteFixedBytes(r.Sender[:])
	s.WriteU64(r.SequenceNumber)
	s.WriteULEB128(payloadVariantEntryFunction)
	encodeEntryFunction(s, r.Payload)
	s.WriteU64(r.MaxGasAmount)
	s.WriteU64(r.GasUnitPrice)
	s.WriteU64(r.ExpirationTimestampSecs)
	s.WriteU8(r.ChainID)
	return s.Bytes(), nil
}

// SigningMessage returns the bytes a signer actually signs: the domain salt
// hash followed by the BCS encoding of the raw transaction.
func (r *RawTransaction) SigningMessage() ([]byte, error) {
	raw, err := r.MarshalBCS()
	if err != nil {
		return nil, err
	}

	salt := sha3.Sum256([]byte(rawTransactionSalt))
	msg := make([]byte, 0, len(salt)+len(raw))
	msg = append(msg, salt[:]...)
	msg = append(msg, raw...)
	return msg, nil
}

// MarshalBCS encodes the signed transaction: the raw transaction followed by
// the Ed25519 transaction authenticator.
func (t *SignedTransaction) MarshalBCS() ([]byte, error) {
	raw, err := t.Raw.MarshalBCS()
	if err != nil {
		return nil, err
	}
	if t.Authenticator.Scheme != SchemeEd25519 {
		return nil, bridgeerr.Wrap(bridgeerr.ErrUnsupportedScheme,
			"cannot encode authenticator scheme %d", t.Authenticator.Scheme)
	}

	s := bcs.NewSerializer()
	s.WriteFixedBytes(raw)
	s.WriteULEB128(uint32(SchemeEd25519))
	s.WriteBytes(t.Authenticator.PublicKey)
	s.WriteBytes(t.Authenticator.Signature)
	return s.Bytes(), nil
}

func encodeEntryFunction(s *bcs.Serializer, e *EntryFunction) {
	s.WriteFixedBytes(e.Module.Address[:])
	s.WriteString(e.Module.Name)
	s.WriteString(e.Function)

	s.WriteULEB128(uint32(len(e.TypeArgs))) //nolint:gosec // G115: bounded input
	for i := range e.TypeArgs {
		encodeTypeTag(s, e.TypeArgs[i])
	}

	s.WriteULEB128(uint32(len(e.Args))) //nolint:gosec // G115: bounded input
	for _, arg := range e.Args {
		s.WriteBytes(arg)
	}
}

func encodeTypeTag(s *bcs.Serializer, t TypeTag) {
	s.WriteULEB128(uint32(t.Kind))
	switch t.Kind {
	case TypeTagVector:
		if t.Elem != nil {
			encodeTypeTag(s, *t.Elem)
		}
	case TypeTagStruct:
		if t.Struct != nil {
			st := t.Struct
			s.WriteFixedBytes(st.Address[:])
			s.WriteString(st.Module)
			s.WriteString(st.Name)
			s.WriteULEB128(uint32(len(st.TypeArgs))) //nolint:gosec // G115: bounded input
			for i := range st.TypeArgs {
				encodeTypeTag(s, st.TypeArgs[i])
			}
		}
	case TypeTagBool, TypeTagU8, TypeTagU64, TypeTagU128, TypeTagAddress, TypeTagSigner:
		// No payload beyond the variant index.
	}
}
