package txn

import (
	"context"

	"github.com/halcyonlabs/walletbridge/internal/txn/bcs"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// Known entry-function identifiers with special handling.
const (
	// PublishPackageFunction is the package-publish entry function whose
	// combined argument is split before dispatch.
	PublishPackageFunction = "0x1::code::publish_package_txn"

	// maliciousRotateAuthKey silently rotates the account authentication
	// key, the classic wallet-draining call. Always rejected.
	maliciousRotateAuthKey = "0x1::account::rotate_authentication_key_call"
)

// maliciousEntryFunctions is the deny list checked before any dispatch.
var maliciousEntryFunctions = map[string]struct{}{
	maliciousRotateAuthKey: {},
}

// IsMaliciousEntryFunction reports whether fn is on the deny list.
func IsMaliciousEntryFunction(fn string) bool {
	_, ok := maliciousEntryFunctions[fn]
	return ok
}

// RawBuilder builds a structured raw transaction from sender, payload, and
// resolved options. The blockchain-client collaborator provides this.
type RawBuilder func(ctx context.Context, sender AccountAddress, p Payload, o ResolvedOptions) (*RawTransaction, error)

// BuildRaw converts an older flat payload into the newer structured shape by
// delegating raw-transaction construction to the client-provided builder.
func BuildRaw(ctx context.Context, build RawBuilder, sender AccountAddress, p Payload, o ResolvedOptions) (*RawTransaction, error) {
	if build == nil {
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "no raw transaction builder configured")
	}

	raw, err := build(ctx, sender, p, o)
	if err != nil {
		return nil, bridgeerr.Wrap(err, "building raw transaction for %s", p.Function)
	}
	if raw == nil || raw.Payload == nil {
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "builder returned an empty transaction")
	}
	return raw, nil
}

// RawToPayload converts a newer structured transaction into the older flat
// payload plus primary-field options, for legacy-only wallets.
func RawToPayload(raw *RawTransaction) (Payload, Options, error) {
	if raw == nil || raw.Payload == nil {
		return Payload{}, Options{}, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "transaction has no entry function payload")
	}
	return raw.Payload.ToPayload(), OptionsFromRaw(raw), nil
}

// RestructurePublishPayload splits the combined publish-package argument into
// the distinct metadata-bytes and byte-code arguments the entry function
// expects. Payloads already carrying two arguments pass through unchanged.
func RestructurePublishPayload(p Payload) (Payload, error) {
	if p.Function != PublishPackageFunction {
		return p, nil
	}
	if len(p.Arguments) != 1 {
		return p, nil
	}

	d := bcs.NewDeserializer(p.Arguments[0])

	metadata, err := d.ReadBytes()
	if err != nil {
		return Payload{}, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "publish payload metadata")
	}

	moduleCount, err := d.ReadULEB128()
	if err != nil {
		return Payload{}, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "publish payload module count")
	}
	modules := make([][]byte, 0, moduleCount)
	for i := uint32(0); i < moduleCount; i++ {
		mod, modErr := d.ReadBytes()
		if modErr != nil {
			return Payload{}, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "publish payload module %d", i)
		}
		modules = append(modules, mod)
	}
	if finishErr := d.Finish(); finishErr != nil {
		return Payload{}, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "publish payload has trailing bytes")
	}

	metaSer := bcs.NewSerializer()
	metaSer.WriteBytes(metadata)

	modSer := bcs.NewSerializer()
	modSer.WriteULEB128(moduleCount)
	for _, mod := range modules {
		modSer.WriteBytes(mod)
	}

	return Payload{
		Function:      p.Function,
		TypeArguments: p.TypeArguments,
		Arguments:     [][]byte{metaSer.Bytes(), modSer.Bytes()},
	}, nil
}
