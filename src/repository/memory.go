package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/butecobot/challenge-api/src/domain"
)

// MemoryChallengeRepository is a mutex-guarded in-memory store with the same
// semantics as the Postgres repository: server-assigned monotonic ids,
// timestamps stamped on insert and update, and the ACTIVE pair uniqueness
// check applied on the transition into ACTIVE. It backs the service and
// handler tests and needs no database.
type MemoryChallengeRepository struct {
	mu         sync.Mutex
	nextID     int64
	challenges map[int64]*domain.Challenge
}

func NewMemoryChallengeRepository() *MemoryChallengeRepository {
	return &MemoryChallengeRepository{
		nextID:     1,
		challenges: make(map[int64]*domain.Challenge),
	}
}

func (r *MemoryChallengeRepository) Insert(_ context.Context, challenge *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	challenge.ID = r.nextID
	r.nextID++
	challenge.CreatedAt = now
	challenge.UpdatedAt = now

	r.challenges[challenge.ID] = cloneChallenge(challenge)
	return nil
}

func (r *MemoryChallengeRepository) FindByID(_ context.Context, id int64) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	challenge, ok := r.challenges[id]
	if !ok {
		return nil, notFoundError()
	}
	return cloneChallenge(challenge), nil
}

func (r *MemoryChallengeRepository) UpdateByID(_ context.Context, id int64, mutate func(*domain.Challenge) error) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.challenges[id]
	if !ok {
		return nil, notFoundError()
	}

	updated := cloneChallenge(current)
	if err := mutate(updated); err != nil {
		return nil, err
	}

	if updated.Status == domain.ChallengeStatusActive && current.Status != domain.ChallengeStatusActive {
		if r.activeBetweenLocked(updated.ChallengerID, updated.ChallengedID, id) != nil {
			return nil, domain.NewError(domain.ErrorCodeConflict, errors.New("active pair uniqueness violated"),
				domain.WithMsg("There is already an active challenge between these users!"))
		}
	}

	updated.UpdatedAt = time.Now()
	if updated.Status == domain.ChallengeStatusCompleted && updated.CompletedAt == nil {
		now := time.Now()
		updated.CompletedAt = &now
	}

	r.challenges[id] = cloneChallenge(updated)
	return updated, nil
}

func (r *MemoryChallengeRepository) FindByUserAndStatus(_ context.Context, userID string, status domain.ChallengeStatus) ([]domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Challenge
	for _, c := range r.challenges {
		if c.Status == status && c.HasParticipant(userID) {
			out = append(out, *cloneChallenge(c))
		}
	}
	return out, nil
}

func (r *MemoryChallengeRepository) FindByChannelAndStatus(_ context.Context, channelID string, status domain.ChallengeStatus) ([]domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Challenge
	for _, c := range r.challenges {
		if c.Status == status && c.ChannelID == channelID {
			out = append(out, *cloneChallenge(c))
		}
	}
	return out, nil
}

func (r *MemoryChallengeRepository) FindActiveBetween(_ context.Context, user1, user2 string) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c := r.activeBetweenLocked(user1, user2, 0); c != nil {
		return cloneChallenge(c), nil
	}
	return nil, nil
}

func (r *MemoryChallengeRepository) FindAllByUser(_ context.Context, userID string) ([]domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Challenge
	for _, c := range r.challenges {
		if c.HasParticipant(userID) {
			out = append(out, *cloneChallenge(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// activeBetweenLocked scans for an ACTIVE challenge between the pair in
// either direction, skipping excludeID. Caller must hold the mutex.
func (r *MemoryChallengeRepository) activeBetweenLocked(user1, user2 string, excludeID int64) *domain.Challenge {
	for _, c := range r.challenges {
		if c.ID == excludeID || c.Status != domain.ChallengeStatusActive {
			continue
		}
		if (c.ChallengerID == user1 && c.ChallengedID == user2) ||
			(c.ChallengerID == user2 && c.ChallengedID == user1) {
			return c
		}
	}
	return nil
}

func notFoundError() error {
	return domain.NewError(domain.ErrorCodeResourceNotFound, errors.New("record not found"),
		domain.WithMsg("Challenge not found!"))
}

func cloneChallenge(c *domain.Challenge) *domain.Challenge {
	clone := *c
	if c.Description != nil {
		desc := *c.Description
		clone.Description = &desc
	}
	if c.CompletedAt != nil {
		completed := *c.CompletedAt
		clone.CompletedAt = &completed
	}
	return &clone
}
