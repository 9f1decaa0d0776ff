package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition_HappyPaths(t *testing.T) {
	paths := map[Kind][]Status{
		KindDineIn:   {StatusCooking, StatusReady, StatusServed, StatusCompleted},
		KindDelivery: {StatusCooking, StatusReady, StatusDelivering, StatusCompleted},
		KindPickup:   {StatusCooking, StatusReady, StatusCompleted},
	}
	for kind, path := range paths {
		t.Run(kind.String(), func(t *testing.T) {
			for i := 0; i+1 < len(path); i++ {
				assert.NoError(t, CanTransition(kind, path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
			}
		})
	}
}

func TestCanTransition_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		from, to Status
	}{
		{"skip ready", KindDineIn, StatusCooking, StatusServed},
		{"backwards", KindDineIn, StatusReady, StatusCooking},
		{"dine-in cannot deliver", KindDineIn, StatusReady, StatusDelivering},
		{"delivery cannot serve", KindDelivery, StatusReady, StatusServed},
		{"pickup cannot deliver", KindPickup, StatusReady, StatusDelivering},
		{"same status", KindDineIn, StatusCooking, StatusCooking},
		{"from completed", KindDineIn, StatusCompleted, StatusCooking},
		{"cancel completed", KindDelivery, StatusCompleted, StatusCancelled},
		{"cancel cancelled", KindDineIn, StatusCancelled, StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.kind, tt.from, tt.to)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.from, te.From)
		})
	}
}

func TestCanTransition_CancelFromAnyOpenState(t *testing.T) {
	for _, from := range []Status{StatusCooking, StatusReady, StatusServed, StatusDelivering} {
		assert.NoError(t, CanTransition(KindDineIn, from, StatusCancelled), from)
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("DELIVERING")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivering, st)

	_, err = ParseStatus("cooking")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionError_Message(t *testing.T) {
	assert.EqualError(t, &TransitionError{From: StatusCooking, To: StatusServed}, "cannot transition from COOKING to SERVED")
	assert.EqualError(t, &TransitionError{From: StatusCompleted, To: StatusReady}, "cannot transition from COMPLETED")
}
