package domain

import (
	"time"

	"github.com/google/uuid"
)

// Project groups tasks and automation rules under a single owner.
// Only the membership shape the authorization check needs is modeled here;
// full project management is outside this service.
type Project struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	MemberIDs []uuid.UUID `json:"member_ids"`
	CreatedAt time.Time   `json:"created_at"`
}

// IsOwner reports whether the given user owns the project.
func (p *Project) IsOwner(userID uuid.UUID) bool {
	return p.OwnerID == userID
}

// IsMember reports whether the given user is the owner or a member.
func (p *Project) IsMember(userID uuid.UUID) bool {
	if p.IsOwner(userID) {
		return true
	}
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
