package domain

import (
	"time"

	"github.com/samber/lo"
)

// Group is a named set of members. Membership here is the single source of
// truth for group delivery authorization; room subscriptions are derived
// from it and never persisted.
type Group struct {
	ID        string
	Name      string
	Members   []string
	CreatedBy string
	CreatedAt time.Time
}

func (g Group) IsMember(userID string) bool {
	return lo.Contains(g.Members, userID)
}
