package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorHTTPStatus(t *testing.T) {
	cases := []struct {
		code   ErrorCode
		name   string
		status int
	}{
		{ErrorCodeParameterInvalid, "PARAMETER_INVALID", http.StatusBadRequest},
		{ErrorCodeInvalidState, "INVALID_STATE", http.StatusBadRequest},
		{ErrorCodeConflict, "CONFLICT", http.StatusBadRequest},
		{ErrorCodeResourceNotFound, "RESOURCE_NOT_FOUND", http.StatusNotFound},
		{ErrorCodeInternalProcess, "INTERNAL_PROCESS", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		err := NewError(tc.code, errors.New("cause"), WithMsg("message"))
		assert.Equal(t, tc.name, err.Name())
		assert.Equal(t, tc.status, err.HTTPStatus())
		assert.Equal(t, "message", err.ClientMsg())
	}
}

func TestAsDomainError(t *testing.T) {
	inner := NewError(ErrorCodeConflict, errors.New("boom"), WithMsg("conflict"))
	wrapped := fmt.Errorf("while accepting: %w", inner)

	extracted := AsDomainError(wrapped)
	assert.Equal(t, ErrorCodeConflict, extracted.Code())
	assert.Equal(t, "conflict", extracted.ClientMsg())

	// A non-domain error yields the safe zero value.
	unknown := AsDomainError(errors.New("plain"))
	assert.Equal(t, "UNKNOWN", unknown.Name())
	assert.Equal(t, http.StatusInternalServerError, unknown.HTTPStatus())
}

func TestChallengeStatus(t *testing.T) {
	assert.True(t, ChallengeStatusCompleted.IsTerminal())
	assert.True(t, ChallengeStatusRejected.IsTerminal())
	assert.False(t, ChallengeStatusPending.IsTerminal())
	assert.False(t, ChallengeStatusActive.IsTerminal())

	assert.True(t, ChallengeStatusPending.IsValid())
	assert.False(t, ChallengeStatus("CANCELLED").IsValid())
}

func TestChallengeHasParticipant(t *testing.T) {
	c := &Challenge{ChallengerID: "alice", ChallengedID: "bob"}
	assert.True(t, c.HasParticipant("alice"))
	assert.True(t, c.HasParticipant("bob"))
	assert.False(t, c.HasParticipant("carol"))
}
