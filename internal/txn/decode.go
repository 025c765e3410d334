package txn

import (
	"github.com/halcyonlabs/walletbridge/internal/txn/bcs"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// DecodeSignedTransaction deserializes the legacy serialized signed
// transaction format: a BCS raw transaction followed by its transaction
// authenticator. Only entry-function payloads and the single-key Ed25519
// authenticator variant are supported; anything else is an explicit error,
// never a best-effort decode.
func DecodeSignedTransaction(b []byte) (*SignedTransaction, error) {
	d := bcs.NewDeserializer(b)

	raw, err := decodeRawTransaction(d)
	if err != nil {
		return nil, err
	}

	auth, err := decodeAuthenticator(d)
	if err != nil {
		return nil, err
	}

	if finishErr := d.Finish(); finishErr != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, finishErr)
	}

	return &SignedTransaction{Raw: *raw, Authenticator: *auth}, nil
}

// ExtractAuthenticator decodes a serialized signed transaction and
// reconstructs the modern single-key authenticator from the embedded public
// key and signature bytes.
func ExtractAuthenticator(b []byte) (*AccountAuthenticator, error) {
	signed, err := DecodeSignedTransaction(b)
	if err != nil {
		return nil, err
	}
	return NewEd25519Authenticator(signed.Authenticator.PublicKey, signed.Authenticator.Signature)
}

func decodeRawTransaction(d *bcs.Deserializer) (*RawTransaction, error) {
	senderBytes, err := d.ReadFixedBytes(AddressLength)
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	var sender AccountAddress
	copy(sender[:], senderBytes)

	seq, err := d.ReadU64()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}

	variant, err := d.ReadULEB128()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	if variant != payloadVariantEntryFunction {
		return nil, bridgeerr.Wrap(bridgeerr.ErrDecodeFailed, "unsupported payload variant %d", variant)
	}

	entry, err := decodeEntryFunction(d)
	if err != nil {
		return nil, err
	}

	maxGas, err := d.ReadU64()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	gasPrice, err := d.ReadU64()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	expiry, err := d.ReadU64()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	chainID, err := d.ReadU8()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}

	return &RawTransaction{
		Sender:                  sender,
		SequenceNumber:          seq,
		Payload:                 entry,
		MaxGasAmount:            maxGas,
		GasUnitPrice:            gasPrice,
		ExpirationTimestampSecs: expiry,
		ChainID:                 chainID,
	}, nil
}

func decodeEntryFunction(d *bcs.Deserializer) (*EntryFunction, error) {
	addrBytes, err := d.ReadFixedBytes(AddressLength)
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	var addr AccountAddress
	copy(addr[:], addrBytes)

	moduleName, err := d.ReadString()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	function, err := d.ReadString()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}

	tagCount, err := d.ReadULEB128()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	tags := make([]TypeTag, 0, tagCount)
	for i := uint32(0); i < tagCount; i++ {
		tag, tagErr := decodeTypeTag(d)
		if tagErr != nil {
			return nil, tagErr
		}
		tags = append(tags, tag)
	}

	argCount, err := d.ReadULEB128()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	args := make([][]byte, 0, argCount)
	for i := uint32(0); i < argCount; i++ {
		arg, argErr := d.ReadBytes()
		if argErr != nil {
			return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, argErr)
		}
		args = append(args, arg)
	}

	return &EntryFunction{
		Module:   ModuleID{Address: addr, Name: moduleName},
		Function: function,
		TypeArgs: tags,
		Args:     args,
	}, nil
}

func decodeTypeTag(d *bcs.Deserializer) (TypeTag, error) {
	variant, err := d.ReadULEB128()
	if err != nil {
		return TypeTag{}, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}

	kind := TypeTagKind(variant)
	switch kind {
	case TypeTagBool, TypeTagU8, TypeTagU64, TypeTagU128, TypeTagAddress, TypeTagSigner:
		return TypeTag{Kind: kind}, nil

	case TypeTagVector:
		elem, elemErr := decodeTypeTag(d)
		if elemErr != nil {
			return TypeTag{}, elemErr
		}
		return TypeTag{Kind: kind, Elem: &elem}, nil

	case TypeTagStruct:
		addrBytes, addrErr := d.ReadFixedBytes(AddressLength)
		if addrErr != nil {
			return TypeTag{}, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, addrErr)
		}
		var addr AccountAddress
		copy(addr[:], addrBytes)

		module, modErr := d.ReadString()
		if modErr != nil {
			return TypeTag{}, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, modErr)
		}
		name, nameErr := d.ReadString()
		if nameErr != nil {
			return TypeTag{}, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, nameErr)
		}

		count, countErr := d.ReadULEB128()
		if countErr != nil {
			return TypeTag{}, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, countErr)
		}
		st := &StructTag{Address: addr, Module: module, Name: name}
		for i := uint32(0); i < count; i++ {
			arg, argErr := decodeTypeTag(d)
			if argErr != nil {
				return TypeTag{}, argErr
			}
			st.TypeArgs = append(st.TypeArgs, arg)
		}
		return TypeTag{Kind: kind, Struct: st}, nil

	default:
		return TypeTag{}, bridgeerr.Wrap(bridgeerr.ErrDecodeFailed, "unknown type tag variant %d", variant)
	}
}

func decodeAuthenticator(d *bcs.Deserializer) (*AccountAuthenticator, error) {
	variant, err := d.ReadULEB128()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	if variant != uint32(SchemeEd25519) {
		return nil, bridgeerr.Wrap(bridgeerr.ErrUnsupportedScheme, "authenticator variant %d", variant)
	}

	pub, err := d.ReadBytes()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}
	sig, err := d.ReadBytes()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrDecodeFailed, err)
	}

	return NewEd25519Authenticator(pub, sig)
}
