package decision

import (
	"sync"

	"github.com/stashbroker/broker/pkg/types"
)

// Provider supplies externally computed per-item sell decisions. The
// engine consults it before computing its own decision. Injecting an empty
// provider forces server-side computation.
type Provider interface {
	Decision(itemID string) (*types.ClientSellData, bool)
}

// ClientProvider is a Provider fed by the client upload endpoint. The
// uploaded map replaces the previous one wholesale.
type ClientProvider struct {
	mu   sync.RWMutex
	data map[string]types.ClientSellData
}

// NewClientProvider creates an empty client decision provider.
func NewClientProvider() *ClientProvider {
	return &ClientProvider{data: map[string]types.ClientSellData{}}
}

// Set replaces the stored decision map.
func (p *ClientProvider) Set(data map[string]types.ClientSellData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
}

// Decision returns the uploaded decision for an item, if present.
func (p *ClientProvider) Decision(itemID string) (*types.ClientSellData, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	d, ok := p.data[itemID]
	if !ok {
		return nil, false
	}
	return &d, true
}

// Len returns the number of stored decisions.
func (p *ClientProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.data)
}
