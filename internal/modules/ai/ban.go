package ai

import (
	"context"
	"sync"
	"time"
)

// BanList keeps providers that answered 402 or 429 out of rotation until their ban expires.
type BanList struct {
	Provider  []string
	ExpiredAt []time.Time
	Lock      *sync.Mutex
}

func NewBanList() *BanList {
	return &BanList{Lock: &sync.Mutex{}}
}

// Run tidies expired bans every interval until ctx is done.
func (b *BanList) Run(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				b.tidy()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Ban extends an existing ban, never shortens it.
func (b *BanList) Ban(provider string, d time.Duration) {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	until := time.Now().Add(d)
	for i, p := range b.Provider {
		if p == provider {
			if until.After(b.ExpiredAt[i]) {
				b.ExpiredAt[i] = until
			}
			return
		}
	}
	b.Provider = append(b.Provider, provider)
	b.ExpiredAt = append(b.ExpiredAt, until)
}

func (b *BanList) Banned(provider string) bool {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	for i, p := range b.Provider {
		if p == provider {
			return b.ExpiredAt[i].After(time.Now())
		}
	}
	return false
}

// Snapshot returns the providers currently banned and when each ban ends.
func (b *BanList) Snapshot() map[string]time.Time {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	now := time.Now()
	ret := make(map[string]time.Time, len(b.Provider))
	for i, p := range b.Provider {
		if b.ExpiredAt[i].After(now) {
			ret[p] = b.ExpiredAt[i]
		}
	}
	return ret
}

func (b *BanList) tidy() {
	b.Lock.Lock()
	defer b.Lock.Unlock()
	for i := len(b.ExpiredAt) - 1; i >= 0; i-- {
		if b.ExpiredAt[i].Before(time.Now()) {
			b.Provider = append(b.Provider[:i], b.Provider[i+1:]...)
			b.ExpiredAt = append(b.ExpiredAt[:i], b.ExpiredAt[i+1:]...)
		}
	}
}
