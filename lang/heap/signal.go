package heap

// Signal is the runtime's non-local control-flow value: raised by a failing
// native, an explicit (signal ...) call, or the evaluator's own recursion
// guard, it unwinds through Eval until a trap reserved-syntax form catches
// it or it reaches the top level uncaught. Grounded in
// original_source/src/error_utils/mod.rs's Result<Value, Signal> threading
// through the reference evaluator.
type Signal struct {
	// Value is the signaled payload — typically an error plist built by
	// NewError, but (signal v) lets user code raise any value.
	Value Handle

	// abort marks the uncatchable signal raised by a (signal) call with no
	// argument or a Nil one: no trap form may intercept it (spec §4.5).
	abort bool
}

// Abort returns the uncatchable signal: trap never binds it and it always
// propagates to the top level.
func Abort() *Signal {
	return &Signal{Value: Nil, abort: true}
}

// IsAbort reports whether s is the uncatchable abort signal.
func (s *Signal) IsAbort() bool {
	return s != nil && s.abort
}
