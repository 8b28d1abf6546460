package enrollment

import (
	"context"
	"time"

	"lingua-app/internal/domain/access"
	"lingua-app/internal/domain/classes"
	"lingua-app/internal/domain/groups"
	"lingua-app/internal/domain/users"
)

// Collaborator interfaces the coordinator commits through. Implementations
// live in internal/storage (gorm), internal/cache (redis) and internal/chat;
// tests use in-memory fakes.

type ClassStore interface {
	// GetClass returns a fresh read of the class record, never from a cache.
	GetClass(ctx context.Context, id string) (*classes.Class, error)

	// AddMemberIfCapacity appends userID to the class member set only if it
	// is not already present and the member count is below available_spots,
	// as one atomic conditional update. added=false with full=false means
	// the user was already a member.
	AddMemberIfCapacity(ctx context.Context, classID string, userID uint) (added bool, full bool, err error)

	// UpdateAnchor writes back a rolled-forward class date/time. Used for
	// non-recurring rebooking flows only.
	UpdateAnchor(ctx context.Context, classID string, anchor time.Time) error
}

type GroupStore interface {
	GetGroup(ctx context.Context, id string) (*groups.Group, error)

	// AddMember appends userID to the group member set with set-union
	// semantics; adding an existing member is a no-op (added=false).
	AddMember(ctx context.Context, groupID string, userID uint) (added bool, err error)
}

type UserStore interface {
	// GetUser returns the user with subscriptions preloaded.
	GetUser(ctx context.Context, id uint) (*users.User, error)

	AppendEnrolledClass(ctx context.Context, userID uint, classID string) error
	AppendJoinedGroup(ctx context.Context, userID uint, groupID string) error

	// DeductCredits atomically subtracts n credits, refusing to go below
	// zero. ok=false means the balance was insufficient at commit time.
	DeductCredits(ctx context.Context, userID uint, n int) (ok bool, err error)

	// RefundCredits atomically adds n credits back (lost capacity race).
	RefundCredits(ctx context.Context, userID uint, n int) error
}

type TutorStore interface {
	// AddStudent records studentID on the tutor owned by tutorUserID.
	// A missing tutor record is skipped silently, not an error.
	AddStudent(ctx context.Context, tutorUserID uint, studentID uint) error
}

type ChannelService interface {
	AddMember(ctx context.Context, channelID string, userID uint, channelType, role string) error
}

// EntitlementStore is the injected session cache of a user's entitlement
// snapshot. The coordinator writes it only after a confirmed commit, never
// optimistically.
type EntitlementStore interface {
	Get(ctx context.Context, userID uint) (*access.Entitlements, error)
	Set(ctx context.Context, userID uint, e access.Entitlements) error
}
