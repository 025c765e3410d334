// Package registry aggregates wallet descriptors from the plugin list, the
// standard discovery channel, embedded SDK wallets, and the static catalog
// into one name-unique view.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// aliasNames maps known legacy name variants to their standard counterpart
// so both variants of the same wallet fold into a single entry.
var aliasNames = map[string]string{
	"Nightly Wallet": "Nightly",
}

// maxSuggestDistance bounds how far a name may be from an existing entry to
// still be offered as a suggestion.
const maxSuggestDistance = 3

// Sources holds the wallet descriptors contributed by each discovery
// channel at construction time.
type Sources struct {
	Plugin   []*wallet.Descriptor // directly referenced per-wallet plugins
	Standard []*wallet.Descriptor // capability-discovery protocol
	SDK      []*wallet.Descriptor // embedded in-process wallets
	Catalog  []*wallet.Descriptor // static known-wallets placeholders
}

// Registry is the merged, name-unique wallet collection. Discovery
// callbacks arrive on the discovery channel's goroutine, so lookups and
// mutations are guarded by a mutex.
type Registry struct {
	mu        sync.RWMutex
	order     []string
	wallets   map[string]*wallet.Descriptor
	allowList map[string]struct{} // empty means allow all
}

// New merges the sources into a registry, applying the dedup, alias, and
// allow-list rules. allowList may be nil for no filtering.
func New(src Sources, allowList []string) *Registry {
	r := &Registry{
		wallets:   make(map[string]*wallet.Descriptor),
		allowList: make(map[string]struct{}, len(allowList)),
	}
	for _, name := range allowList {
		r.allowList[name] = struct{}{}
	}

	// Catalog placeholders first so any actually-installed source wins,
	// then plugin, SDK, and standard entries in increasing preference.
	for _, d := range src.Catalog {
		r.add(d, false)
	}
	for _, d := range src.Plugin {
		r.add(d, true)
	}
	for _, d := range src.SDK {
		r.add(d, true)
	}
	for _, d := range src.Standard {
		r.add(d, true)
	}

	return r
}

// Add inserts a wallet discovered after construction (standard wallets
// registering dynamically). It returns the stored descriptor and true when
// the wallet passed the allow-list and was not already present in a
// preferred form.
func (r *Registry) Add(d *wallet.Descriptor) (*wallet.Descriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addLocked(d, true)
}

func (r *Registry) add(d *wallet.Descriptor, installed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.addLocked(d, installed)
}

func (r *Registry) addLocked(d *wallet.Descriptor, installed bool) (*wallet.Descriptor, bool) {
	if d == nil || d.Name == "" {
		return nil, false
	}

	name := normalizeName(d.Name, d.Generation)
	if !r.allowedLocked(name) {
		return nil, false
	}

	existing, ok := r.wallets[name]
	if !ok {
		stored := *d
		stored.Name = name
		r.wallets[name] = &stored
		r.order = append(r.order, name)
		return r.wallets[name], true
	}

	if !replaces(existing, d, installed) {
		return existing, false
	}

	stored := *d
	stored.Name = name
	r.wallets[name] = &stored
	return r.wallets[name], true
}

// replaces decides whether the candidate should displace the existing
// entry: installed/standard wallets win over catalog placeholders, and the
// standard variant wins over the legacy variant of the same name.
func replaces(existing, candidate *wallet.Descriptor, installed bool) bool {
	if existing.State() == wallet.ReadyStateNotDetected && installed {
		return true
	}
	if candidate.Generation == wallet.GenerationStandard && existing.Generation == wallet.GenerationLegacy {
		return true
	}
	return false
}

// normalizeName folds known legacy name variants into the standard name.
func normalizeName(name string, gen wallet.Generation) string {
	if gen != wallet.GenerationLegacy {
		return name
	}
	if standard, ok := aliasNames[name]; ok {
		return standard
	}
	return name
}

func (r *Registry) allowedLocked(name string) bool {
	if len(r.allowList) == 0 {
		return true
	}
	_, ok := r.allowList[name]
	return ok
}

// Allowed reports whether a wallet name passes the configured allow-list.
func (r *Registry) Allowed(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allowedLocked(name)
}

// Lookup returns the descriptor for name, if present.
func (r *Registry) Lookup(name string) (*wallet.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.wallets[name]
	return d, ok
}

// All returns every wallet in insertion order.
func (r *Registry) All() []*wallet.Descriptor {
	return r.filtered(func(*wallet.Descriptor) bool { return true })
}

// Plugin returns the legacy plugin-generation wallets.
func (r *Registry) Plugin() []*wallet.Descriptor {
	return r.filtered(func(d *wallet.Descriptor) bool { return d.Generation == wallet.GenerationLegacy })
}

// Standard returns the standard-generation wallets.
func (r *Registry) Standard() []*wallet.Descriptor {
	return r.filtered(func(d *wallet.Descriptor) bool { return d.Generation == wallet.GenerationStandard })
}

func (r *Registry) filtered(keep func(*wallet.Descriptor) bool) []*wallet.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*wallet.Descriptor, 0, len(r.order))
	for _, name := range r.order {
		if d := r.wallets[name]; d != nil && keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Suggest returns the registered name closest to the input, for "did you
// mean" hints. The empty string means nothing was close enough.
func (r *Registry) Suggest(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)

	best := ""
	bestDist := maxSuggestDistance + 1
	lower := strings.ToLower(name)
	for _, candidate := range names {
		dist := levenshtein.ComputeDistance(lower, strings.ToLower(candidate))
		if dist < bestDist {
			best = candidate
			bestDist = dist
		}
	}
	return best
}

// Len returns the number of registered wallets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}
