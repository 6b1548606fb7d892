package service

import (
	"context"
	"strings"
	"testing"

	"github.com/butecobot/challenge-api/src/domain"
	"github.com/butecobot/challenge-api/src/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *ChallengeService {
	return NewChallengeService(repository.NewMemoryChallengeRepository())
}

func strPtr(s string) *string {
	return &s
}

func TestCreateChallenge(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", strPtr("best of 5"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), challenge.ID)
	assert.Equal(t, "alice", challenge.ChallengerID)
	assert.Equal(t, "bob", challenge.ChallengedID)
	assert.Equal(t, "#arena", challenge.ChannelID)
	assert.Equal(t, domain.ChallengeStatusPending, challenge.Status)
	assert.Equal(t, 0, challenge.ChallengerScore)
	assert.Equal(t, 0, challenge.ChallengedScore)
	require.NotNil(t, challenge.Description)
	assert.Equal(t, "best of 5", *challenge.Description)
	assert.False(t, challenge.CreatedAt.IsZero())
	assert.False(t, challenge.UpdatedAt.IsZero())
	assert.Nil(t, challenge.CompletedAt)
}

func TestCreateChallenge_SelfChallenge(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateChallenge(context.Background(), "alice", "alice", "#arena", nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeParameterInvalid, domain.AsDomainError(err).Code())
	assert.Equal(t, "You cannot challenge yourself!", domain.AsDomainError(err).ClientMsg())
}

func TestCreateChallenge_MissingIdentifiers(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, tc := range [][3]string{
		{"", "bob", "#arena"},
		{"alice", "", "#arena"},
		{"alice", "bob", ""},
	} {
		_, err := svc.CreateChallenge(ctx, tc[0], tc[1], tc[2], nil)
		require.Error(t, err)
		assert.Equal(t, domain.ErrorCodeParameterInvalid, domain.AsDomainError(err).Code())
	}
}

func TestCreateChallenge_DescriptionTooLong(t *testing.T) {
	svc := newTestService()

	longDescription := strings.Repeat("x", domain.MaxDescriptionLength+1)
	_, err := svc.CreateChallenge(context.Background(), "alice", "bob", "#arena", &longDescription)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeParameterInvalid, domain.AsDomainError(err).Code())

	// Exactly at the limit is accepted.
	maxDescription := strings.Repeat("x", domain.MaxDescriptionLength)
	_, err = svc.CreateChallenge(context.Background(), "alice", "bob", "#arena", &maxDescription)
	require.NoError(t, err)
}

func TestCreateChallenge_ConflictWithActive(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)
	_, err = svc.AcceptChallenge(ctx, challenge.ID)
	require.NoError(t, err)

	// Same pair, either direction.
	_, err = svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeConflict, domain.AsDomainError(err).Code())

	_, err = svc.CreateChallenge(ctx, "bob", "alice", "#other", nil)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeConflict, domain.AsDomainError(err).Code())

	// A different pair is unaffected.
	_, err = svc.CreateChallenge(ctx, "alice", "carol", "#arena", nil)
	require.NoError(t, err)
}

func TestCreateChallenge_PendingDuplicatesAllowed(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)
	_, err = svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)
	_, err = svc.CreateChallenge(ctx, "bob", "alice", "#arena", nil)
	require.NoError(t, err)

	pending, err := svc.GetPendingChallengesForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestAcceptChallenge(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)

	accepted, err := svc.AcceptChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeStatusActive, accepted.Status)
	assert.Nil(t, accepted.CompletedAt)
	assert.False(t, accepted.UpdatedAt.Before(accepted.CreatedAt))
}

func TestAcceptChallenge_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.AcceptChallenge(context.Background(), 9999)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeResourceNotFound, domain.AsDomainError(err).Code())
}

func TestAcceptChallenge_RecheckedPairUniqueness(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// Two PENDING challenges between the same pair, opposite directions.
	first, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)
	second, err := svc.CreateChallenge(ctx, "bob", "alice", "#arena", nil)
	require.NoError(t, err)

	_, err = svc.AcceptChallenge(ctx, first.ID)
	require.NoError(t, err)

	// Accepting the second would create a second ACTIVE pair.
	_, err = svc.AcceptChallenge(ctx, second.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeConflict, domain.AsDomainError(err).Code())

	// The second challenge is untouched.
	current, err := svc.GetChallengeByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeStatusPending, current.Status)
}

func TestRejectChallenge_Terminal(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)

	rejected, err := svc.RejectChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeStatusRejected, rejected.Status)
	assert.Nil(t, rejected.CompletedAt)

	// No further transitions out of REJECTED.
	_, err = svc.AcceptChallenge(ctx, challenge.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidState, domain.AsDomainError(err).Code())

	_, err = svc.RejectChallenge(ctx, challenge.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidState, domain.AsDomainError(err).Code())

	_, err = svc.IncrementScore(ctx, challenge.ID, "alice")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidState, domain.AsDomainError(err).Code())

	_, err = svc.CloseChallenge(ctx, challenge.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidState, domain.AsDomainError(err).Code())

	current, err := svc.GetChallengeByID(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeStatusRejected, current.Status)
	assert.Equal(t, 0, current.ChallengerScore)
	assert.Equal(t, 0, current.ChallengedScore)
}

func TestIncrementScore(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)

	// Not allowed while PENDING.
	_, err = svc.IncrementScore(ctx, challenge.ID, "alice")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidState, domain.AsDomainError(err).Code())

	_, err = svc.AcceptChallenge(ctx, challenge.ID)
	require.NoError(t, err)

	updated, err := svc.IncrementScore(ctx, challenge.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ChallengerScore)
	assert.Equal(t, 0, updated.ChallengedScore)

	updated, err = svc.IncrementScore(ctx, challenge.ID, "bob")
	require.NoError(t, err)
	updated, err = svc.IncrementScore(ctx, challenge.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ChallengerScore)
	assert.Equal(t, 2, updated.ChallengedScore)
}

func TestIncrementScore_UnknownUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)
	_, err = svc.AcceptChallenge(ctx, challenge.ID)
	require.NoError(t, err)

	_, err = svc.IncrementScore(ctx, challenge.ID, "carol")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeParameterInvalid, domain.AsDomainError(err).Code())
	assert.Equal(t, "User is not part of this challenge!", domain.AsDomainError(err).ClientMsg())

	// Scores unchanged after the failed increment.
	current, err := svc.GetChallengeByID(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, current.ChallengerScore)
	assert.Equal(t, 0, current.ChallengedScore)
}

func TestCloseChallenge(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)
	_, err = svc.AcceptChallenge(ctx, challenge.ID)
	require.NoError(t, err)

	closed, err := svc.CloseChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeStatusCompleted, closed.Status)
	require.NotNil(t, closed.CompletedAt)
	assert.False(t, closed.CompletedAt.Before(closed.CreatedAt))

	// COMPLETED is terminal.
	_, err = svc.CloseChallenge(ctx, challenge.ID)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidState, domain.AsDomainError(err).Code())

	_, err = svc.IncrementScore(ctx, challenge.ID, "alice")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvalidState, domain.AsDomainError(err).Code())

	// The pair can start over once the challenge is closed.
	_, err = svc.CreateChallenge(ctx, "bob", "alice", "#arena", nil)
	require.NoError(t, err)
}

func TestCloseChallenge_CompletedAtOnlyWhenCompleted(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	pending, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)
	assert.Nil(t, pending.CompletedAt)

	active, err := svc.AcceptChallenge(ctx, pending.ID)
	require.NoError(t, err)
	assert.Nil(t, active.CompletedAt)

	rejectedChallenge, err := svc.CreateChallenge(ctx, "carol", "dave", "#arena", nil)
	require.NoError(t, err)
	rejected, err := svc.RejectChallenge(ctx, rejectedChallenge.ID)
	require.NoError(t, err)
	assert.Nil(t, rejected.CompletedAt)

	closed, err := svc.CloseChallenge(ctx, pending.ID)
	require.NoError(t, err)
	assert.NotNil(t, closed.CompletedAt)
}

func TestHappyPath(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	challenge, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", strPtr("best of 5"))
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeStatusPending, challenge.Status)

	_, err = svc.AcceptChallenge(ctx, challenge.ID)
	require.NoError(t, err)

	_, err = svc.IncrementScore(ctx, challenge.ID, "alice")
	require.NoError(t, err)
	_, err = svc.IncrementScore(ctx, challenge.ID, "bob")
	require.NoError(t, err)
	_, err = svc.IncrementScore(ctx, challenge.ID, "bob")
	require.NoError(t, err)

	closed, err := svc.CloseChallenge(ctx, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ChallengeStatusCompleted, closed.Status)
	assert.Equal(t, 1, closed.ChallengerScore)
	assert.Equal(t, 2, closed.ChallengedScore)
	assert.NotNil(t, closed.CompletedAt)
}

func TestQueries(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// alice-bob active in #arena, alice-carol pending, alice-dave completed.
	ab, err := svc.CreateChallenge(ctx, "alice", "bob", "#arena", nil)
	require.NoError(t, err)
	_, err = svc.AcceptChallenge(ctx, ab.ID)
	require.NoError(t, err)

	_, err = svc.CreateChallenge(ctx, "alice", "carol", "#arena", nil)
	require.NoError(t, err)

	ad, err := svc.CreateChallenge(ctx, "dave", "alice", "#lounge", nil)
	require.NoError(t, err)
	_, err = svc.AcceptChallenge(ctx, ad.ID)
	require.NoError(t, err)
	_, err = svc.CloseChallenge(ctx, ad.ID)
	require.NoError(t, err)

	active, err := svc.GetActiveChallengesForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, ab.ID, active[0].ID)

	pending, err := svc.GetPendingChallengesForUser(ctx, "carol")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	inChannel, err := svc.GetActiveChallengesInChannel(ctx, "#arena")
	require.NoError(t, err)
	require.Len(t, inChannel, 1)
	assert.Equal(t, ab.ID, inChannel[0].ID)

	all, err := svc.GetAllChallengesForUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i-1].CreatedAt.Before(all[i].CreatedAt))
	}

	// Queries for unknown users return empty lists, never errors.
	none, err := svc.GetActiveChallengesForUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
