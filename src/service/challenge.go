package service

import (
	"context"
	"errors"

	"github.com/butecobot/challenge-api/src/domain"
	"github.com/rs/zerolog"
)

// ChallengeRepository is the store contract the service mutates challenges
// through. UpdateByID must run the callback on the current record and
// persist the result atomically, and must reject a transition into ACTIVE
// that would leave two ACTIVE challenges for the same pair.
type ChallengeRepository interface {
	Insert(ctx context.Context, challenge *domain.Challenge) error
	FindByID(ctx context.Context, id int64) (*domain.Challenge, error)
	UpdateByID(ctx context.Context, id int64, mutate func(*domain.Challenge) error) (*domain.Challenge, error)
	FindByUserAndStatus(ctx context.Context, userID string, status domain.ChallengeStatus) ([]domain.Challenge, error)
	FindByChannelAndStatus(ctx context.Context, channelID string, status domain.ChallengeStatus) ([]domain.Challenge, error)
	FindActiveBetween(ctx context.Context, user1, user2 string) (*domain.Challenge, error)
	FindAllByUser(ctx context.Context, userID string) ([]domain.Challenge, error)
}

// ChallengeService owns the challenge lifecycle:
//
//	PENDING --accept--> ACTIVE --close--> COMPLETED
//	PENDING --reject--> REJECTED
//
// COMPLETED and REJECTED are terminal. Scores only move on ACTIVE
// challenges and only upward.
type ChallengeService struct {
	repo ChallengeRepository
}

func NewChallengeService(repo ChallengeRepository) *ChallengeService {
	return &ChallengeService{repo: repo}
}

// logger wraps the execution context with component info
func (s *ChallengeService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("service", "challenge").Logger()
	return &l
}

// CreateChallenge records a new PENDING challenge. Duplicate PENDING
// invitations between the same pair are allowed; an existing ACTIVE
// challenge between the pair is a conflict.
func (s *ChallengeService) CreateChallenge(ctx context.Context, challengerID, challengedID, channelID string, description *string) (*domain.Challenge, error) {
	if challengerID == "" || challengedID == "" || channelID == "" {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, errors.New("missing identifier"),
			domain.WithMsg("challengerId, challengedId and channelId are required"))
	}
	if challengerID == challengedID {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, errors.New("self challenge"),
			domain.WithMsg("You cannot challenge yourself!"))
	}
	if description != nil && len([]rune(*description)) > domain.MaxDescriptionLength {
		return nil, domain.NewError(domain.ErrorCodeParameterInvalid, errors.New("description too long"),
			domain.WithMsg("Description must be at most %d characters", domain.MaxDescriptionLength))
	}

	existing, err := s.repo.FindActiveBetween(ctx, challengerID, challengedID)
	if err != nil {
		s.logger(ctx).Error().Err(err).Msg("failed to check for an active challenge between the pair")
		return nil, err
	}
	if existing != nil {
		return nil, domain.NewError(domain.ErrorCodeConflict, errors.New("active challenge exists"),
			domain.WithMsg("There is already an active challenge between these users!"))
	}

	challenge := &domain.Challenge{
		ChallengerID: challengerID,
		ChallengedID: challengedID,
		ChannelID:    channelID,
		Status:       domain.ChallengeStatusPending,
		Description:  description,
	}

	if err := s.repo.Insert(ctx, challenge); err != nil {
		s.logger(ctx).Error().Err(err).Msg("failed to insert challenge")
		return nil, err
	}

	s.logger(ctx).Info().
		Int64("challenge_id", challenge.ID).
		Str("challenger_id", challengerID).
		Str("challenged_id", challengedID).
		Str("channel_id", channelID).
		Msg("challenge created")

	return challenge, nil
}

// AcceptChallenge moves a PENDING challenge to ACTIVE. The store re-verifies
// pair uniqueness on the transition, so accepting a second PENDING challenge
// between the same pair fails with a conflict.
func (s *ChallengeService) AcceptChallenge(ctx context.Context, id int64) (*domain.Challenge, error) {
	challenge, err := s.repo.UpdateByID(ctx, id, func(c *domain.Challenge) error {
		if c.Status != domain.ChallengeStatusPending {
			return domain.NewError(domain.ErrorCodeInvalidState, errors.New("challenge is not pending"),
				domain.WithMsg("Only pending challenges can be accepted!"))
		}
		c.Status = domain.ChallengeStatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger(ctx).Info().Int64("challenge_id", id).Msg("challenge accepted")
	return challenge, nil
}

// RejectChallenge moves a PENDING challenge to the terminal REJECTED state.
func (s *ChallengeService) RejectChallenge(ctx context.Context, id int64) (*domain.Challenge, error) {
	challenge, err := s.repo.UpdateByID(ctx, id, func(c *domain.Challenge) error {
		if c.Status != domain.ChallengeStatusPending {
			return domain.NewError(domain.ErrorCodeInvalidState, errors.New("challenge is not pending"),
				domain.WithMsg("Only pending challenges can be rejected!"))
		}
		c.Status = domain.ChallengeStatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger(ctx).Info().Int64("challenge_id", id).Msg("challenge rejected")
	return challenge, nil
}

// IncrementScore adds one point to the given participant of an ACTIVE
// challenge. Each call is a distinct increment.
func (s *ChallengeService) IncrementScore(ctx context.Context, id int64, userID string) (*domain.Challenge, error) {
	challenge, err := s.repo.UpdateByID(ctx, id, func(c *domain.Challenge) error {
		if c.Status != domain.ChallengeStatusActive {
			return domain.NewError(domain.ErrorCodeInvalidState, errors.New("challenge is not active"),
				domain.WithMsg("Only active challenges can have scores updated!"))
		}
		switch userID {
		case c.ChallengerID:
			c.ChallengerScore++
		case c.ChallengedID:
			c.ChallengedScore++
		default:
			return domain.NewError(domain.ErrorCodeParameterInvalid, errors.New("user is not a participant"),
				domain.WithMsg("User is not part of this challenge!"))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger(ctx).Info().
		Int64("challenge_id", id).
		Str("user_id", userID).
		Int("challenger_score", challenge.ChallengerScore).
		Int("challenged_score", challenge.ChallengedScore).
		Msg("score incremented")

	return challenge, nil
}

// CloseChallenge moves an ACTIVE challenge to the terminal COMPLETED state.
// The store stamps completedAt alongside the commit.
func (s *ChallengeService) CloseChallenge(ctx context.Context, id int64) (*domain.Challenge, error) {
	challenge, err := s.repo.UpdateByID(ctx, id, func(c *domain.Challenge) error {
		if c.Status != domain.ChallengeStatusActive {
			return domain.NewError(domain.ErrorCodeInvalidState, errors.New("challenge is not active"),
				domain.WithMsg("Only active challenges can be closed!"))
		}
		c.Status = domain.ChallengeStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger(ctx).Info().Int64("challenge_id", id).Msg("challenge closed")
	return challenge, nil
}

func (s *ChallengeService) GetChallengeByID(ctx context.Context, id int64) (*domain.Challenge, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ChallengeService) GetActiveChallengesForUser(ctx context.Context, userID string) ([]domain.Challenge, error) {
	return s.repo.FindByUserAndStatus(ctx, userID, domain.ChallengeStatusActive)
}

func (s *ChallengeService) GetPendingChallengesForUser(ctx context.Context, userID string) ([]domain.Challenge, error) {
	return s.repo.FindByUserAndStatus(ctx, userID, domain.ChallengeStatusPending)
}

func (s *ChallengeService) GetActiveChallengesInChannel(ctx context.Context, channelID string) ([]domain.Challenge, error) {
	return s.repo.FindByChannelAndStatus(ctx, channelID, domain.ChallengeStatusActive)
}

func (s *ChallengeService) GetAllChallengesForUser(ctx context.Context, userID string) ([]domain.Challenge, error) {
	return s.repo.FindAllByUser(ctx, userID)
}
