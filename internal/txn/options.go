package txn

import "time"

// Default transaction option values applied when neither the primary field
// nor its legacy alias is supplied.
const (
	DefaultMaxGasAmount       uint64 = 200_000
	DefaultGasUnitPrice       uint64 = 100
	DefaultExpirationWindow          = 20 * time.Second
)

// Options carries the caller-supplied transaction options in both their
// current and legacy field spellings. Nil means "not supplied".
type Options struct {
	// Current field names.
	MaxGasAmount        *uint64
	GasUnitPrice        *uint64
	ExpirationTimestamp *uint64 // unix seconds

	// Legacy aliases. When both spellings are supplied, the current field
	// wins (it is applied last).
	MaxGas          *uint64
	GasPrice        *uint64
	ExpireTimestamp *uint64
}

// ResolvedOptions is the fully resolved option set used to build and sign a
// transaction. Both the atomic sign+submit path and the three-step fallback
// resolve options through the same Resolve call, so alias handling and
// defaults cannot diverge between them.
type ResolvedOptions struct {
	MaxGasAmount            uint64
	GasUnitPrice            uint64
	ExpirationTimestampSecs uint64
}

// Resolve merges aliases into the resolved option set, applying the legacy
// alias first and the current field last, then filling defaults. The
// expiration default is now plus DefaultExpirationWindow.
func (o Options) Resolve(now time.Time) ResolvedOptions {
	r := ResolvedOptions{
		MaxGasAmount: DefaultMaxGasAmount,
		GasUnitPrice: DefaultGasUnitPrice,
		//nolint:gosec // G115: unix seconds fit in uint64 for any realistic clock
		ExpirationTimestampSecs: uint64(now.Add(DefaultExpirationWindow).Unix()),
	}

	if o.MaxGas != nil {
		r.MaxGasAmount = *o.MaxGas
	}
	if o.MaxGasAmount != nil {
		r.MaxGasAmount = *o.MaxGasAmount
	}

	if o.GasPrice != nil {
		r.GasUnitPrice = *o.GasPrice
	}
	if o.GasUnitPrice != nil {
		r.GasUnitPrice = *o.GasUnitPrice
	}

	if o.ExpireTimestamp != nil {
		r.ExpirationTimestampSecs = *o.ExpireTimestamp
	}
	if o.ExpirationTimestamp != nil {
		r.ExpirationTimestampSecs = *o.ExpirationTimestamp
	}

	return r
}

// OptionsFromRaw reconstructs primary-field options from a structured
// transaction, for the conversion path toward legacy-only wallets.
func OptionsFromRaw(raw *RawTransaction) Options {
	maxGas := raw.MaxGasAmount
	gasPrice := raw.GasUnitPrice
	expiry := raw.ExpirationTimestampSecs
	return Options{
		MaxGasAmount:        &maxGas,
		GasUnitPrice:        &gasPrice,
		ExpirationTimestamp: &expiry,
	}
}

// Uint64 returns a pointer to v, a convenience for building Options.
func Uint64(v uint64) *uint64 {
	return &v
}
