// Package namesvc resolves chain addresses to human-readable aliases via
// the name-service HTTP API. Only networks with a deployed name service
// (mainnet, testnet) can resolve; the bridge skips the lookup elsewhere.
package namesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/halcyonlabs/walletbridge/internal/client"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// defaultTimeout bounds one resolution request.
const defaultTimeout = 5 * time.Second

// maxResponseSize caps the response body read.
const maxResponseSize = 1 << 16

// Resolver is an HTTP name-service client.
type Resolver struct {
	httpClient *http.Client
	endpoints  map[wallet.Network]string
}

// Compile-time interface check.
var _ client.NameResolver = (*Resolver)(nil)

// New creates a resolver with per-network API endpoints. Networks missing
// from the map resolve to no alias.
func New(endpoints map[wallet.Network]string) *Resolver {
	eps := make(map[wallet.Network]string, len(endpoints))
	for k, v := range endpoints {
		eps[k] = v
	}
	return &Resolver{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoints:  eps,
	}
}

// nameResponse is the name-service API response shape.
type nameResponse struct {
	Name string `json:"name"`
}

// Resolve implements client.NameResolver. A missing registration returns an
// empty alias with a nil error.
func (r *Resolver) Resolve(ctx context.Context, address string, network wallet.Network) (string, error) {
	if !network.SupportsNameService() {
		return "", nil
	}
	base, ok := r.endpoints[network]
	if !ok || base == "" {
		return "", nil
	}

	url := fmt.Sprintf("%s/v1/primary-name/address/%s", base, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("building name lookup request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("name lookup for %s: %w", address, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("name lookup for %s: status %d", address, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("reading name lookup response: %w", err)
	}

	var parsed nameResponse
	if unmarshalErr := json.Unmarshal(body, &parsed); unmarshalErr != nil {
		return "", fmt.Errorf("parsing name lookup response: %w", unmarshalErr)
	}
	return parsed.Name, nil
}

// Static is a fixed-table resolver for tests and embedded use.
type Static struct {
	aliases map[string]string
}

// Compile-time interface check.
var _ client.NameResolver = (*Static)(nil)

// NewStatic creates a resolver over a fixed address-to-alias table.
func NewStatic(aliases map[string]string) *Static {
	table := make(map[string]string, len(aliases))
	for k, v := range aliases {
		table[k] = v
	}
	return &Static{aliases: table}
}

// Resolve implements client.NameResolver from the fixed table, honoring the
// per-network name-service support rule.
func (s *Static) Resolve(_ context.Context, address string, network wallet.Network) (string, error) {
	if !network.SupportsNameService() {
		return "", nil
	}
	return s.aliases[address], nil
}
