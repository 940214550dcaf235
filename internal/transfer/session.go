package transfer

import (
	"context"
	"sync"

	"github.com/Mohsinsiddi/w3dapp/internal/provider"
	"github.com/ethereum/go-ethereum/common"
)

// Session is the page's link to the wallet: the injected provider plus the
// account it was granted. It lives in memory only.
type Session struct {
	p provider.Provider

	mu        sync.RWMutex
	account   common.Address
	connected bool
}

// NewSession wraps an injected provider.
func NewSession(p provider.Provider) *Session {
	return &Session{p: p}
}

// Connect asks the wallet for account access and blocks until the user
// decides or ctx ends.
func (s *Session) Connect(ctx context.Context) (common.Address, error) {
	accounts, err := s.p.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	if len(accounts) == 0 {
		return common.Address{}, provider.ErrNoAccounts
	}

	s.mu.Lock()
	s.account = accounts[0]
	s.connected = true
	s.mu.Unlock()
	return accounts[0], nil
}

// Disconnect forgets the account. The wallet keeps its own permission list.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.account = common.Address{}
	s.connected = false
	s.mu.Unlock()
}

// Account returns the connected account, if any.
func (s *Session) Account() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, s.connected
}

// Provider returns the injected provider.
func (s *Session) Provider() provider.Provider {
	return s.p
}
