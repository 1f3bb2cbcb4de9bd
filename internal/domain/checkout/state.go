// Package checkout holds the order and payment lifecycle rules of a storefront checkout.
package checkout

// State is a checkout lifecycle state
type State string

const (
	StateIdle             State = "IDLE"
	StateReconciling      State = "RECONCILING"
	StateSubmitting       State = "SUBMITTING"
	StateOrderCreated     State = "ORDER_CREATED"
	StateCreatingPayment  State = "CREATING_PAYMENT"
	StatePaymentPending   State = "PAYMENT_PENDING"
	StatePaymentSucceeded State = "PAYMENT_SUCCEEDED"
	StatePaymentFailed    State = "PAYMENT_FAILED"
	StatePaymentCanceled  State = "PAYMENT_CANCELED"
	StateDeferredPayment  State = "DEFERRED_PAYMENT"
	StateError            State = "ERROR"
)

// transitions lists every allowed move. A state missing from a value list cannot be reached from the key.
var transitions = map[State][]State{
	StateIdle: {
		StateReconciling,
		// restored by Resume from the correlation record
		StatePaymentPending,
		StatePaymentSucceeded,
		StatePaymentFailed,
		StatePaymentCanceled,
		StateDeferredPayment,
	},
	StateReconciling: {
		StateSubmitting,
		StateError,
	},
	StateSubmitting: {
		StateOrderCreated,
		StateError,
	},
	StateOrderCreated: {
		StateCreatingPayment,
	},
	StateCreatingPayment: {
		StatePaymentPending,
		StateDeferredPayment,
	},
	StatePaymentPending: {
		StatePaymentSucceeded,
		StatePaymentFailed,
		StatePaymentCanceled,
		StateIdle,
	},
	StatePaymentFailed: {
		StateCreatingPayment,
		StateIdle,
	},
	StatePaymentCanceled: {
		StateCreatingPayment,
		StateIdle,
	},
	StateDeferredPayment: {
		StateCreatingPayment,
		StateIdle,
	},
	StatePaymentSucceeded: {
		StateIdle,
	},
	StateError: {
		StateReconciling,
		StateIdle,
	},
}

// IsValid checks if the state is a known checkout state
func (s State) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// CanTransitionTo checks if the state can move to target
func (s State) CanTransitionTo(target State) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsInFlight reports whether a submission is running. A new submission is refused while in flight.
func (s State) IsInFlight() bool {
	switch s {
	case StateReconciling, StateSubmitting, StateOrderCreated, StateCreatingPayment:
		return true
	}
	return false
}

// IsSettled reports whether a new checkout may reset the state to Idle
func (s State) IsSettled() bool {
	return s.CanTransitionTo(StateIdle)
}

// CanRetryPayment reports whether a payment may be created again for the current order
func (s State) CanRetryPayment() bool {
	return s == StatePaymentFailed || s == StatePaymentCanceled || s == StateDeferredPayment
}

// HasOrder reports whether an order exists for the state
func (s State) HasOrder() bool {
	switch s {
	case StateOrderCreated, StateCreatingPayment, StatePaymentPending, StatePaymentSucceeded,
		StatePaymentFailed, StatePaymentCanceled, StateDeferredPayment:
		return true
	}
	return false
}
