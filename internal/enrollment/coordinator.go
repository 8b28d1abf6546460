package enrollment

import (
	"context"
	"log"
	"time"

	"lingua-app/internal/domain/access"
	"lingua-app/internal/domain/schedule"
)

type FundingMethod string

const (
	FundedNone         FundingMethod = "none" // standard content, nothing consumed
	FundedSubscription FundingMethod = "subscription"
	FundedCredits      FundingMethod = "credits"
	FundedFreeAccess   FundingMethod = "free_access"
)

// BookingResult is the success value of BookClass/JoinGroup. ChatJoinFailed
// is a warning layered on an otherwise successful commit: the booking stands,
// only the channel membership call failed.
type BookingResult struct {
	Slots          []time.Time   `json:"slots,omitempty"`
	CreditsCharged int           `json:"credits_charged"`
	FundedBy       FundingMethod `json:"funded_by"`
	ChatJoinFailed bool          `json:"chat_join_failed,omitempty"`
}

// Coordinator orchestrates the access engine and the recurrence scheduler
// against storage and the chat channel service. It is the only component
// with side effects in the enrollment flow; the engine and scheduler stay
// pure. No automatic retries anywhere; retries are user-initiated.
type Coordinator struct {
	classes ClassStore
	groups  GroupStore
	users   UserStore
	tutors  TutorStore
	chat    ChannelService
	cache   EntitlementStore

	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

func New(cs ClassStore, gs GroupStore, us UserStore, ts TutorStore, chat ChannelService, cache EntitlementStore) *Coordinator {
	return &Coordinator{
		classes: cs,
		groups:  gs,
		users:   us,
		tutors:  ts,
		chat:    chat,
		cache:   cache,
		Now:     time.Now,
	}
}

// BookClass runs the full capacity-checked, credit-adjusted booking commit:
//
//	eligibility -> fresh class read -> idempotence -> capacity -> slots ->
//	funding -> commit -> chat join (warning only) -> cache refresh
//
// Credit deduction happens before the atomic member append; if the capacity
// race is lost the credits are refunded. The class member set can therefore
// never exceed available_spots, even under concurrent bookings.
func (co *Coordinator) BookClass(ctx context.Context, userID uint, classID string) (*BookingResult, error) {
	now := co.Now()

	user, err := co.users.GetUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}

	// Always a fresh read, never from a cache.
	class, err := co.classes.GetClass(ctx, classID)
	if err != nil {
		return nil, storageErr(err)
	}

	// Non-premium classes always pass; premium ones go through the engine.
	fundedBy := FundedNone
	if class.IsPremium() {
		d := access.CheckAccess(now, user.Entitlements(), access.ContentFor(class.ClassTier()), class.ClassTier())
		if !d.Granted {
			return nil, notEligible(d.Reason)
		}
		switch d.Reason {
		case access.ReasonValidSubscription:
			fundedBy = FundedSubscription
		case access.ReasonAvailableCredits:
			fundedBy = FundedCredits
		default:
			// Step 1 gating should make this unreachable.
			return nil, internalErr("unexpected grant reason %q for premium class", d.Reason)
		}
	}

	if class.HasMember(userID) || user.IsEnrolledIn(classID) {
		return nil, &Error{Code: CodeAlreadyEnrolled}
	}
	if class.IsFull() {
		return nil, &Error{Code: CodeClassFull}
	}

	rec, ok := schedule.ParseRecurrence(class.RecurrenceType)
	if !ok {
		return nil, &Error{Code: CodeSchedulingFailed, cause: schedule.ErrUnknownRecurrence}
	}
	count := class.OccurrenceCount
	if count < 1 {
		count = 1
	}
	slots, err := schedule.ComputeSlots(class.ClassDateTime, rec, count, now)
	if err != nil || len(slots) == 0 {
		return nil, &Error{Code: CodeSchedulingFailed, cause: err}
	}

	// One credit per generated slot.
	creditsNeeded := 0
	if fundedBy == FundedCredits {
		creditsNeeded = len(slots)
		if user.Credits < creditsNeeded {
			return nil, &Error{Code: CodeInsufficientCredits}
		}
		ok, err := co.users.DeductCredits(ctx, userID, creditsNeeded)
		if err != nil {
			return nil, storageErr(err)
		}
		if !ok {
			return nil, &Error{Code: CodeInsufficientCredits}
		}
	}

	added, full, err := co.classes.AddMemberIfCapacity(ctx, classID, userID)
	if err != nil || !added {
		if creditsNeeded > 0 {
			if rerr := co.users.RefundCredits(ctx, userID, creditsNeeded); rerr != nil {
				log.Printf("enrollment: credit refund failed for user %d: %v", userID, rerr)
			}
		}
		if err != nil {
			return nil, storageErr(err)
		}
		if full {
			return nil, &Error{Code: CodeClassFull}
		}
		return nil, &Error{Code: CodeAlreadyEnrolled}
	}

	// Best-effort multi-record updates past this point; the member append
	// above is the authoritative commit.
	if err := co.users.AppendEnrolledClass(ctx, userID, classID); err != nil {
		log.Printf("enrollment: enrolled-list update failed for user %d class %s: %v", userID, classID, err)
	}
	if class.TutorID != nil {
		if err := co.tutors.AddStudent(ctx, *class.TutorID, userID); err != nil {
			log.Printf("enrollment: tutor student-list update failed for class %s: %v", classID, err)
		}
	}
	if !rec.IsRepeating() && !slots[0].Equal(class.ClassDateTime) {
		// Rebooked one-time class: write the rolled-forward date back.
		if err := co.classes.UpdateAnchor(ctx, classID, slots[0]); err != nil {
			log.Printf("enrollment: anchor update failed for class %s: %v", classID, err)
		}
	}

	res := &BookingResult{
		Slots:          slots,
		CreditsCharged: creditsNeeded,
		FundedBy:       fundedBy,
	}

	if class.ClassTier() == access.TierIndividualPremium && class.ChannelID != nil && co.chat != nil {
		if err := co.chat.AddMember(ctx, *class.ChannelID, userID, "class", "member"); err != nil {
			// Booking stands; chat membership failure is only a warning.
			res.ChatJoinFailed = true
			log.Printf("enrollment: chat join failed for class %s user %d: %v", classID, userID, err)
		}
	}

	co.refreshCache(ctx, userID)

	return res, nil
}

// JoinGroup mirrors BookClass on group membership. There is no credit path
// for groups: only a subscription or free access unlocks a premium group.
func (co *Coordinator) JoinGroup(ctx context.Context, userID uint, groupID string) (*BookingResult, error) {
	now := co.Now()

	user, err := co.users.GetUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	group, err := co.groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storageErr(err)
	}

	fundedBy := FundedNone
	if group.IsPremium {
		d := access.CheckAccess(now, user.Entitlements(), access.ContentPremiumGroup, access.TierGroupPremium)
		if !d.Granted {
			return nil, notEligible(d.Reason)
		}
		switch d.Reason {
		case access.ReasonFreeTrialAccess, access.ReasonFreeAccessEnabled:
			fundedBy = FundedFreeAccess
		case access.ReasonValidSubscription:
			fundedBy = FundedSubscription
		default:
			return nil, internalErr("unexpected grant reason %q for premium group", d.Reason)
		}
	}

	if group.HasMember(userID) || user.HasJoined(groupID) {
		return nil, &Error{Code: CodeAlreadyEnrolled}
	}

	added, err := co.groups.AddMember(ctx, groupID, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	if !added {
		return nil, &Error{Code: CodeAlreadyEnrolled}
	}

	if err := co.users.AppendJoinedGroup(ctx, userID, groupID); err != nil {
		log.Printf("enrollment: joined-list update failed for user %d group %s: %v", userID, groupID, err)
	}

	res := &BookingResult{FundedBy: fundedBy}

	if group.ChannelID != nil && co.chat != nil {
		if err := co.chat.AddMember(ctx, *group.ChannelID, userID, "group", "member"); err != nil {
			res.ChatJoinFailed = true
			log.Printf("enrollment: chat join failed for group %s user %d: %v", groupID, userID, err)
		}
	}

	co.refreshCache(ctx, userID)

	return res, nil
}

// refreshCache mirrors the post-commit entitlement snapshot into the session
// cache so same-session checks observe the new state without a re-fetch.
// Only called after a confirmed successful commit.
func (co *Coordinator) refreshCache(ctx context.Context, userID uint) {
	if co.cache == nil {
		return
	}
	user, err := co.users.GetUser(ctx, userID)
	if err != nil {
		log.Printf("enrollment: cache refresh read failed for user %d: %v", userID, err)
		return
	}
	if err := co.cache.Set(ctx, userID, user.Entitlements()); err != nil {
		log.Printf("enrollment: cache refresh write failed for user %d: %v", userID, err)
	}
}
