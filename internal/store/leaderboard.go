package store

import (
	"sort"
	"sync"
)

// LeaderboardEntry is one player's cumulative win count.
type LeaderboardEntry struct {
	PlayerID    string
	DisplayName string
	Wins        int
}

// LeaderboardStore aggregates win counts for the process lifetime. Entries
// are created lazily and never deleted. It carries its own lock because the
// ranked view is read directly from transport goroutines.
type LeaderboardStore struct {
	mu      sync.RWMutex
	entries map[string]*LeaderboardEntry
	order   []string // player ids in first-win order, for stable tie-breaks
}

// NewLeaderboardStore builds an empty leaderboard.
func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{entries: make(map[string]*LeaderboardEntry)}
}

// RecordWin increments the win count for a player, creating the entry on the
// first win. Returns the new total.
func (lb *LeaderboardStore) RecordWin(playerID, displayName string) int {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	e, ok := lb.entries[playerID]
	if !ok {
		e = &LeaderboardEntry{PlayerID: playerID, DisplayName: displayName}
		lb.entries[playerID] = e
		lb.order = append(lb.order, playerID)
	}
	e.Wins++
	return e.Wins
}

// Wins returns the current win count for a player.
func (lb *LeaderboardStore) Wins(playerID string) int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	if e, ok := lb.entries[playerID]; ok {
		return e.Wins
	}
	return 0
}

// Top returns up to n entries sorted by wins descending. Ties keep
// first-recorded order.
func (lb *LeaderboardStore) Top(n int) []LeaderboardEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	ranked := make([]LeaderboardEntry, 0, len(lb.order))
	for _, id := range lb.order {
		ranked = append(ranked, *lb.entries[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Wins > ranked[j].Wins })
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
