package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_TransitionTable(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:    true,
		{StatusPending, StatusCancelled}:    true,
		{StatusConfirmed, StatusCheckedIn}:  true,
		{StatusConfirmed, StatusCancelled}:  true,
		{StatusCheckedIn, StatusCheckedOut}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)

			err := checkTransition(from, to)
			if want {
				assert.NoError(t, err)
				continue
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTransition))

			var terr *TransitionError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, from, terr.From)
			assert.Equal(t, to, terr.To)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCheckedOut.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusCheckedIn.IsTerminal())
}

func TestStatus_UnknownIsInvalid(t *testing.T) {
	assert.False(t, Status("archived").IsValid())
	assert.False(t, Status("archived").CanTransitionTo(StatusCancelled))
}

func TestErrors_KindMatching(t *testing.T) {
	verr := invalid("email", "is required")
	assert.ErrorIs(t, verr, ErrValidation)
	assert.NotErrorIs(t, verr, ErrNotFound)

	assert.Equal(t, "validation", errorKind(verr))
	assert.Equal(t, "not_found", errorKind(notFound("booking", 1)))
	assert.Equal(t, "invalid_transition", errorKind(&TransitionError{From: StatusPending, To: StatusCheckedIn}))
	assert.Equal(t, "persistence", errorKind(errors.New("disk full")))
}
