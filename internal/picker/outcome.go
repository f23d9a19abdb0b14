package picker

const (
	// ReasonCancel is the reason of an explicit cancellation
	ReasonCancel = "cancel"
	// ReasonNothingSelected is the reason of a confirmation without a choice
	ReasonNothingSelected = "nothing selected"
)

// Outcome is the result of a picker session: either a confirmed value or a
// cancellation with its reason. A cancelled outcome must never trigger the
// mutation it guards.
type Outcome[T any] struct {
	value     T
	confirmed bool
	reason    string
}

// Confirmed returns a confirmed outcome carrying v
func Confirmed[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, confirmed: true}
}

// Cancelled returns a cancelled outcome
func Cancelled[T any](reason string) Outcome[T] {
	return Outcome[T]{reason: reason}
}

// OK reports whether the outcome is confirmed
func (o Outcome[T]) OK() bool {
	return o.confirmed
}

// Value returns the confirmed value and whether there is one
func (o Outcome[T]) Value() (T, bool) {
	return o.value, o.confirmed
}

// Reason returns the cancellation reason, "" when confirmed
func (o Outcome[T]) Reason() string {
	return o.reason
}

func (o Outcome[T]) String() string {
	if o.confirmed {
		return "confirmed"
	}
	return "cancelled: " + o.reason
}
