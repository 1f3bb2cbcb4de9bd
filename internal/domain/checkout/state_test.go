package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStates = []State{
	StateIdle, StateReconciling, StateSubmitting, StateOrderCreated, StateCreatingPayment,
	StatePaymentPending, StatePaymentSucceeded, StatePaymentFailed, StatePaymentCanceled,
	StateDeferredPayment, StateError,
}

func TestState_IsValid(t *testing.T) {
	for _, s := range allStates {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, State("DONE").IsValid())
}

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     State
		to       State
		canTrans bool
	}{
		{StateIdle, StateReconciling, true},
		{StateIdle, StateSubmitting, false},
		{StateReconciling, StateSubmitting, true},
		{StateReconciling, StateError, true},
		{StateReconciling, StateOrderCreated, false},
		{StateSubmitting, StateOrderCreated, true},
		{StateSubmitting, StateError, true},
		{StateSubmitting, StateReconciling, false},
		{StateOrderCreated, StateCreatingPayment, true},
		{StateOrderCreated, StateError, false},
		{StateCreatingPayment, StatePaymentPending, true},
		{StateCreatingPayment, StateDeferredPayment, true},
		{StateCreatingPayment, StateError, false},
		{StatePaymentPending, StatePaymentSucceeded, true},
		{StatePaymentPending, StatePaymentFailed, true},
		{StatePaymentPending, StatePaymentCanceled, true},
		{StatePaymentPending, StateCreatingPayment, false},
		{StatePaymentFailed, StateCreatingPayment, true},
		{StatePaymentCanceled, StateCreatingPayment, true},
		{StateDeferredPayment, StateCreatingPayment, true},
		{StatePaymentSucceeded, StateCreatingPayment, false},
		{StatePaymentSucceeded, StateIdle, true},
		{StateError, StateReconciling, true},
		{StateError, StateSubmitting, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestState_OrderNeverResubmitted(t *testing.T) {
	for _, s := range allStates {
		if s.HasOrder() {
			assert.False(t, s.CanTransitionTo(StateSubmitting), s.String())
			assert.False(t, s.CanTransitionTo(StateReconciling), s.String())
		}
	}
}

func TestState_Classification(t *testing.T) {
	inFlight := map[State]bool{
		StateReconciling: true, StateSubmitting: true, StateOrderCreated: true, StateCreatingPayment: true,
	}
	for _, s := range allStates {
		assert.Equal(t, inFlight[s], s.IsInFlight(), s.String())
		if s.IsInFlight() {
			assert.False(t, s.IsSettled(), s.String())
		}
	}

	assert.True(t, StateError.IsSettled())
	assert.True(t, StatePaymentPending.IsSettled())
	assert.False(t, StateIdle.IsSettled())

	assert.True(t, StateDeferredPayment.CanRetryPayment())
	assert.False(t, StatePaymentPending.CanRetryPayment())
}
