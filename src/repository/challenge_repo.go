package repository

import (
	"context"
	"errors"
	"time"

	"github.com/butecobot/challenge-api/src/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivePairConstraint is the partial unique index guarding the
// one-ACTIVE-challenge-per-pair invariant (see migrations).
const ActivePairConstraint = "ux_challenge_active_pair"

const pgUniqueViolation = "23505"

type ChallengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// Insert persists a new challenge. The database assigns the id and both
// creation timestamps.
func (r *ChallengeRepository) Insert(ctx context.Context, challenge *domain.Challenge) error {
	if err := r.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *ChallengeRepository) FindByID(ctx context.Context, id int64) (*domain.Challenge, error) {
	var challenge domain.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &challenge, nil
}

// UpdateByID runs mutate on the current row inside a transaction holding a
// row lock, so concurrent mutations of the same challenge serialize. A
// transition into ACTIVE that collides with an existing ACTIVE challenge for
// the same pair trips the partial unique index and surfaces as Conflict.
func (r *ChallengeRepository) UpdateByID(ctx context.Context, id int64, mutate func(*domain.Challenge) error) (*domain.Challenge, error) {
	var updated *domain.Challenge
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var challenge domain.Challenge
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&challenge, id).Error; err != nil {
			return translateError(err)
		}

		if err := mutate(&challenge); err != nil {
			return err
		}

		// completedAt is stamped at the persistence boundary so it lines up
		// with the committed updated_at.
		if challenge.Status == domain.ChallengeStatusCompleted && challenge.CompletedAt == nil {
			now := time.Now()
			challenge.CompletedAt = &now
		}

		if err := tx.Save(&challenge).Error; err != nil {
			return translateError(err)
		}

		updated = &challenge
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FindByUserAndStatus returns every challenge where the user is either
// participant and the status matches.
func (r *ChallengeRepository) FindByUserAndStatus(ctx context.Context, userID string, status domain.ChallengeStatus) ([]domain.Challenge, error) {
	var challenges []domain.Challenge
	err := r.db.WithContext(ctx).
		Where("(challenger_id = ? OR challenged_id = ?) AND status = ?", userID, userID, status).
		Find(&challenges).Error
	if err != nil {
		return nil, translateError(err)
	}
	return challenges, nil
}

func (r *ChallengeRepository) FindByChannelAndStatus(ctx context.Context, channelID string, status domain.ChallengeStatus) ([]domain.Challenge, error) {
	var challenges []domain.Challenge
	err := r.db.WithContext(ctx).
		Where("channel_id = ? AND status = ?", channelID, status).
		Find(&challenges).Error
	if err != nil {
		return nil, translateError(err)
	}
	return challenges, nil
}

// FindActiveBetween returns the ACTIVE challenge between the two users in
// either direction, or nil when there is none.
func (r *ChallengeRepository) FindActiveBetween(ctx context.Context, user1, user2 string) (*domain.Challenge, error) {
	var challenges []domain.Challenge
	err := r.db.WithContext(ctx).
		Where("((challenger_id = ? AND challenged_id = ?) OR (challenger_id = ? AND challenged_id = ?)) AND status = ?",
			user1, user2, user2, user1, domain.ChallengeStatusActive).
		Limit(1).
		Find(&challenges).Error
	if err != nil {
		return nil, translateError(err)
	}
	if len(challenges) == 0 {
		return nil, nil
	}
	return &challenges[0], nil
}

// FindAllByUser returns every challenge involving the user, newest first.
// The id tiebreak keeps the order stable when created_at collides at clock
// resolution.
func (r *ChallengeRepository) FindAllByUser(ctx context.Context, userID string) ([]domain.Challenge, error) {
	var challenges []domain.Challenge
	err := r.db.WithContext(ctx).
		Where("challenger_id = ? OR challenged_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, translateError(err)
	}
	return challenges, nil
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewError(domain.ErrorCodeResourceNotFound, err,
			domain.WithMsg("Challenge not found!"))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == ActivePairConstraint {
		return domain.NewError(domain.ErrorCodeConflict, err,
			domain.WithMsg("There is already an active challenge between these users!"))
	}

	return domain.NewError(domain.ErrorCodeInternalProcess, err,
		domain.WithMsg("Storage failure"))
}
