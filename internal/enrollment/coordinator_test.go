package enrollment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingua-app/internal/domain/access"
	"lingua-app/internal/domain/classes"
	"lingua-app/internal/domain/groups"
	"lingua-app/internal/domain/users"
)

// --- in-memory fakes ---------------------------------------------------------

type fakeClassStore struct {
	class *classes.Class

	// loseRace makes the next AddMemberIfCapacity report full even though
	// the pre-check saw a free spot (concurrent booking won it first).
	loseRace bool

	anchorWrites []time.Time
}

func (f *fakeClassStore) GetClass(_ context.Context, id string) (*classes.Class, error) {
	if f.class == nil || f.class.ID != id {
		return nil, errors.New("class not found")
	}
	cp := *f.class
	cp.MemberIDs = append(cp.MemberIDs[:0:0], f.class.MemberIDs...)
	return &cp, nil
}

func (f *fakeClassStore) AddMemberIfCapacity(_ context.Context, classID string, userID uint) (bool, bool, error) {
	if f.class == nil || f.class.ID != classID {
		return false, false, errors.New("class not found")
	}
	if f.loseRace {
		f.loseRace = false
		return false, true, nil
	}
	if f.class.HasMember(userID) {
		return false, false, nil
	}
	if f.class.IsFull() {
		return false, true, nil
	}
	f.class.MemberIDs = append(f.class.MemberIDs, int64(userID))
	return true, false, nil
}

func (f *fakeClassStore) UpdateAnchor(_ context.Context, classID string, anchor time.Time) error {
	f.anchorWrites = append(f.anchorWrites, anchor)
	f.class.ClassDateTime = anchor
	return nil
}

type fakeGroupStore struct {
	group *groups.Group
}

func (f *fakeGroupStore) GetGroup(_ context.Context, id string) (*groups.Group, error) {
	if f.group == nil || f.group.ID != id {
		return nil, errors.New("group not found")
	}
	cp := *f.group
	return &cp, nil
}

func (f *fakeGroupStore) AddMember(_ context.Context, groupID string, userID uint) (bool, error) {
	if f.group == nil || f.group.ID != groupID {
		return false, errors.New("group not found")
	}
	if f.group.HasMember(userID) {
		return false, nil
	}
	f.group.MemberIDs = append(f.group.MemberIDs, int64(userID))
	return true, nil
}

type fakeUserStore struct {
	user    *users.User
	refunds int
}

func (f *fakeUserStore) GetUser(_ context.Context, id uint) (*users.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, errors.New("user not found")
	}
	cp := *f.user
	return &cp, nil
}

func (f *fakeUserStore) AppendEnrolledClass(_ context.Context, _ uint, classID string) error {
	f.user.EnrolledClassIDs = append(f.user.EnrolledClassIDs, classID)
	return nil
}

func (f *fakeUserStore) AppendJoinedGroup(_ context.Context, _ uint, groupID string) error {
	f.user.JoinedGroupIDs = append(f.user.JoinedGroupIDs, groupID)
	return nil
}

func (f *fakeUserStore) DeductCredits(_ context.Context, _ uint, n int) (bool, error) {
	if f.user.Credits < n {
		return false, nil
	}
	f.user.Credits -= n
	return true, nil
}

func (f *fakeUserStore) RefundCredits(_ context.Context, _ uint, n int) error {
	f.user.Credits += n
	f.refunds++
	return nil
}

type fakeTutorStore struct {
	students map[uint][]uint
}

func (f *fakeTutorStore) AddStudent(_ context.Context, tutorUserID, studentID uint) error {
	if f.students == nil {
		f.students = map[uint][]uint{}
	}
	f.students[tutorUserID] = append(f.students[tutorUserID], studentID)
	return nil
}

type fakeChat struct {
	joined []string
	fail   bool
}

func (f *fakeChat) AddMember(_ context.Context, channelID string, _ uint, _, _ string) error {
	if f.fail {
		return errors.New("hub unavailable")
	}
	f.joined = append(f.joined, channelID)
	return nil
}

type fakeCache struct {
	snapshots map[uint]access.Entitlements
}

func (f *fakeCache) Get(_ context.Context, userID uint) (*access.Entitlements, error) {
	e, ok := f.snapshots[userID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeCache) Set(_ context.Context, userID uint, e access.Entitlements) error {
	if f.snapshots == nil {
		f.snapshots = map[uint]access.Entitlements{}
	}
	f.snapshots[userID] = e
	return nil
}

// --- fixtures ----------------------------------------------------------------

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC) // Tuesday

func newFixture(user *users.User, class *classes.Class, group *groups.Group) (*Coordinator, *fakeClassStore, *fakeUserStore, *fakeChat, *fakeCache) {
	cs := &fakeClassStore{class: class}
	gs := &fakeGroupStore{group: group}
	us := &fakeUserStore{user: user}
	ts := &fakeTutorStore{}
	chat := &fakeChat{}
	cache := &fakeCache{}
	co := New(cs, gs, us, ts, chat, cache)
	co.Now = func() time.Time { return testNow }
	return co, cs, us, chat, cache
}

func creditUser(credits int) *users.User {
	return &users.User{ID: 7, Email: "nina@example.com", Credits: credits}
}

func individualClass(spots int) *classes.Class {
	ch := "ch-1"
	tutor := uint(3)
	return &classes.Class{
		ID:              "cls-1",
		Title:           "Business Spanish 1:1",
		Tier:            string(access.TierIndividualPremium),
		ClassDateTime:   testNow.Add(48 * time.Hour),
		RecurrenceType:  "weekly",
		OccurrenceCount: 2,
		AvailableSpots:  spots,
		TutorID:         &tutor,
		ChannelID:       &ch,
	}
}

// --- BookClass ---------------------------------------------------------------

func TestBookClassCreditsOnePerSlot(t *testing.T) {
	user := creditUser(2)
	co, cs, us, chat, cache := newFixture(user, individualClass(1), nil)

	res, err := co.BookClass(context.Background(), 7, "cls-1")
	require.NoError(t, err)

	assert.Len(t, res.Slots, 2)
	assert.Equal(t, 2, res.CreditsCharged)
	assert.Equal(t, FundedCredits, res.FundedBy)
	assert.False(t, res.ChatJoinFailed)

	assert.Equal(t, 0, us.user.Credits)
	assert.True(t, cs.class.HasMember(7))
	assert.Equal(t, []string{"cls-1"}, []string(us.user.EnrolledClassIDs))
	assert.Equal(t, []string{"ch-1"}, chat.joined)

	snap, gerr := cache.Get(context.Background(), 7)
	require.NoError(t, gerr)
	require.NotNil(t, snap)
	assert.Equal(t, 0, snap.Credits)
	assert.Equal(t, []string{"cls-1"}, snap.EnrolledClassIDs)
}

func TestBookClassSubscriptionFundedKeepsCredits(t *testing.T) {
	user := creditUser(5)
	user.Subscriptions = []users.Subscription{{
		Kind:      string(access.KindUnlimitedCredits),
		StartDate: testNow.AddDate(0, -1, 0),
		EndDate:   testNow.AddDate(0, 1, 0),
	}}
	co, _, us, _, _ := newFixture(user, individualClass(1), nil)

	res, err := co.BookClass(context.Background(), 7, "cls-1")
	require.NoError(t, err)

	assert.Equal(t, FundedSubscription, res.FundedBy)
	assert.Equal(t, 0, res.CreditsCharged)
	assert.Equal(t, 5, us.user.Credits)
}

func TestBookClassIdempotent(t *testing.T) {
	user := creditUser(4)
	co, _, us, _, _ := newFixture(user, individualClass(2), nil)

	_, err := co.BookClass(context.Background(), 7, "cls-1")
	require.NoError(t, err)
	creditsAfterFirst := us.user.Credits

	_, err = co.BookClass(context.Background(), 7, "cls-1")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeAlreadyEnrolled, e.Code)
	assert.Equal(t, creditsAfterFirst, us.user.Credits)
	assert.Equal(t, []string{"cls-1"}, []string(us.user.EnrolledClassIDs))
}

func TestBookClassCapacityBoundary(t *testing.T) {
	class := individualClass(1)
	class.MemberIDs = []int64{99} // someone else took the last spot
	co, _, us, _, _ := newFixture(creditUser(2), class, nil)

	_, err := co.BookClass(context.Background(), 7, "cls-1")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeClassFull, e.Code)
	assert.Equal(t, 2, us.user.Credits)
	assert.False(t, class.HasMember(7))
}

func TestBookClassLostRaceRefundsCredits(t *testing.T) {
	co, cs, us, _, _ := newFixture(creditUser(2), individualClass(1), nil)
	cs.loseRace = true

	_, err := co.BookClass(context.Background(), 7, "cls-1")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeClassFull, e.Code)
	assert.Equal(t, 2, us.user.Credits)
	assert.Equal(t, 1, us.refunds)
	assert.Empty(t, us.user.EnrolledClassIDs)
}

func TestBookClassInsufficientCredits(t *testing.T) {
	co, _, us, _, _ := newFixture(creditUser(1), individualClass(1), nil)

	_, err := co.BookClass(context.Background(), 7, "cls-1")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeInsufficientCredits, e.Code)
	assert.True(t, e.Upsell())
	assert.Equal(t, 1, us.user.Credits)
}

func TestBookClassFreeTrialDeniedForIndividual(t *testing.T) {
	user := creditUser(0)
	user.FreeAccess = true
	co, _, _, _, _ := newFixture(user, individualClass(1), nil)

	_, err := co.BookClass(context.Background(), 7, "cls-1")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeNotEligible, e.Code)
	assert.Equal(t, access.ReasonFreeTrialExcludesIndividualClasses, e.Reason)
	assert.True(t, e.Upsell())
}

func TestBookClassStandardTierSkipsEngine(t *testing.T) {
	class := individualClass(3)
	class.Tier = string(access.TierGroupStandard)
	class.ChannelID = nil
	co, cs, us, _, _ := newFixture(creditUser(0), class, nil)

	res, err := co.BookClass(context.Background(), 7, "cls-1")
	require.NoError(t, err)
	assert.Equal(t, FundedNone, res.FundedBy)
	assert.Equal(t, 0, res.CreditsCharged)
	assert.Equal(t, 0, us.user.Credits)
	assert.True(t, cs.class.HasMember(7))
}

func TestBookClassOneTimeElapsedRollsForwardAndWritesBack(t *testing.T) {
	class := individualClass(1)
	class.RecurrenceType = "one_time"
	class.OccurrenceCount = 1
	class.ClassDateTime = time.Date(2026, time.March, 5, 17, 30, 0, 0, time.UTC)
	co, cs, _, _, _ := newFixture(creditUser(1), class, nil)

	res, err := co.BookClass(context.Background(), 7, "cls-1")
	require.NoError(t, err)

	want := time.Date(2026, time.March, 11, 17, 30, 0, 0, time.UTC)
	require.Len(t, res.Slots, 1)
	assert.Equal(t, want, res.Slots[0])
	require.Len(t, cs.anchorWrites, 1)
	assert.Equal(t, want, cs.anchorWrites[0])
}

func TestBookClassUnknownRecurrence(t *testing.T) {
	class := individualClass(1)
	class.RecurrenceType = "fortnightly"
	co, _, us, _, _ := newFixture(creditUser(2), class, nil)

	_, err := co.BookClass(context.Background(), 7, "cls-1")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeSchedulingFailed, e.Code)
	assert.Equal(t, 2, us.user.Credits)
}

func TestBookClassChatFailureIsWarningOnly(t *testing.T) {
	co, cs, us, chat, _ := newFixture(creditUser(2), individualClass(1), nil)
	chat.fail = true

	res, err := co.BookClass(context.Background(), 7, "cls-1")
	require.NoError(t, err)
	assert.True(t, res.ChatJoinFailed)
	assert.True(t, cs.class.HasMember(7))
	assert.Equal(t, 0, us.user.Credits)
}

func TestBookClassRecordsTutorStudent(t *testing.T) {
	co, _, _, _, _ := newFixture(creditUser(2), individualClass(1), nil)
	ts := co.tutors.(*fakeTutorStore)

	_, err := co.BookClass(context.Background(), 7, "cls-1")
	require.NoError(t, err)
	assert.Equal(t, []uint{7}, ts.students[3])
}

// --- JoinGroup ---------------------------------------------------------------

func premiumGroup() *groups.Group {
	ch := "gch-1"
	return &groups.Group{ID: "grp-1", Name: "Conversación B2", IsPremium: true, ChannelID: &ch}
}

func TestJoinGroupFreeTrialGrants(t *testing.T) {
	user := creditUser(0)
	user.FreeAccess = true
	co, _, us, chat, _ := newFixture(user, nil, premiumGroup())

	res, err := co.JoinGroup(context.Background(), 7, "grp-1")
	require.NoError(t, err)
	assert.Equal(t, FundedFreeAccess, res.FundedBy)
	assert.Equal(t, []string{"grp-1"}, []string(us.user.JoinedGroupIDs))
	assert.Equal(t, []string{"gch-1"}, chat.joined)
}

func TestJoinGroupDeniedWithoutEntitlement(t *testing.T) {
	co, _, _, _, _ := newFixture(creditUser(0), nil, premiumGroup())

	_, err := co.JoinGroup(context.Background(), 7, "grp-1")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeNotEligible, e.Code)
	assert.Equal(t, access.ReasonNoValidEntitlement, e.Reason)
	assert.True(t, e.Upsell())
}

func TestJoinGroupIdempotent(t *testing.T) {
	group := premiumGroup()
	group.IsPremium = false
	co, _, _, _, _ := newFixture(creditUser(0), nil, group)

	_, err := co.JoinGroup(context.Background(), 7, "grp-1")
	require.NoError(t, err)

	_, err = co.JoinGroup(context.Background(), 7, "grp-1")
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, CodeAlreadyEnrolled, e.Code)
}
