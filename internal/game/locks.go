package game

import "sync"

// playerLocks serializes read-modify-write sequences on one player's state.
type playerLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newPlayerLocks() *playerLocks {
	return &playerLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock blocks until the player's mutex is held and returns its release.
func (p *playerLocks) lock(playerID int64) func() {
	p.mu.Lock()
	m, ok := p.locks[playerID]
	if !ok {
		m = &sync.Mutex{}
		p.locks[playerID] = m
	}
	p.mu.Unlock()
	m.Lock()
	return m.Unlock
}
