package waitlist

import (
	"testing"

	"icetea/internal/shared/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusWaiting, StatusSelected}:   true,
		{StatusWaiting, StatusCancelled}:  true,
		{StatusSelected, StatusAccepted}:  true,
		{StatusSelected, StatusDeclined}:  true,
		{StatusSelected, StatusCancelled}: true,
	}

	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)

			err := ValidateTransition(from, to)
			if want {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errs.ErrInvalidStatusTransition, "%s -> %s", from, to)
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, StatusWaiting.IsTerminal())
	assert.False(t, StatusSelected.IsTerminal())
	assert.True(t, StatusAccepted.IsTerminal())
	assert.True(t, StatusDeclined.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, Status("LOST").IsTerminal())
}

func TestReachable(t *testing.T) {
	assert.False(t, Reachable(StatusWaiting), "WAITING only comes from join")
	assert.True(t, Reachable(StatusSelected))
	assert.True(t, Reachable(StatusCancelled))
	assert.False(t, Reachable(Status("LOST")))
}

func TestCountsTowardCapacity(t *testing.T) {
	for _, s := range []Status{StatusWaiting, StatusSelected, StatusAccepted, StatusDeclined} {
		assert.True(t, s.CountsTowardCapacity(), s)
	}
	assert.False(t, StatusCancelled.CountsTowardCapacity())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" selected ")
	require.NoError(t, err)
	assert.Equal(t, StatusSelected, s)

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}
