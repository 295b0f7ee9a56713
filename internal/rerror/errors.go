// Package rerror defines the error kinds surfaced by the value engine.
//
// These are kinds, not concrete types: callers compare with errors.Is
// against the sentinels below. Wrapping with fmt.Errorf("...: %w", ...)
// is expected and preserves errors.Is/As across package boundaries.
package rerror

import "errors"

var (
	// ErrWrongType means a command ran against a key holding a value of
	// a different logical type than the command expects.
	ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

	// ErrSyntax means an argument vector had a bad flag combination or a
	// missing required argument.
	ErrSyntax = errors.New("ERR syntax error")

	// ErrValueOutOfRange means a numeric argument or stored string did not
	// parse as the required integer/float, or arithmetic would overflow.
	ErrValueOutOfRange = errors.New("ERR value is not an integer or out of range")

	// ErrValueNotFloat is ErrValueOutOfRange's float-specific counterpart.
	ErrValueNotFloat = errors.New("ERR value is not a valid float")

	// ErrExpireTime means a TTL argument normalized to a non-positive or
	// overflowing deadline.
	ErrExpireTime = errors.New("ERR invalid expire time")

	// ErrMemoryPressure means an allocation was refused by the configured
	// memory limit policy.
	ErrMemoryPressure = errors.New("OOM command not allowed when used memory > 'maxmemory'")

	// ErrNoGroup means a blocked consumer-group read woke to find its
	// group had been destroyed.
	ErrNoGroup = errors.New("NOGROUP No such key or consumer group")

	// ErrUnblocked means a client was forced awake by a topology change
	// (e.g. its key was deleted and recreated as a non-stream type)
	// rather than by a satisfying event.
	ErrUnblocked = errors.New("UNBLOCKED client unblocked via topology change")

	// ErrShutdown means the server is terminating and blocking waiters
	// are being released, or new blocking calls are refused.
	ErrShutdown = errors.New("ERR server is shutting down")

	// ErrLFURequired means OBJECT FREQ was invoked while the configured
	// eviction policy is LRU-family rather than LFU-family. Intentional,
	// not incidental: the lru field's bits mean different things under
	// each policy and cannot be reinterpreted after the fact.
	ErrLFURequired = errors.New("ERR An LFU maxmemory policy is not selected, access frequency not tracked")

	// ErrLRURequired is OBJECT IDLETIME's mirror image of ErrLFURequired.
	ErrLRURequired = errors.New("ERR An LFU maxmemory policy is selected, idle time not tracked")

	// ErrInvalidMask means a keyspace-notification class-mask string
	// contained a byte outside the alphabet in notify.ParseClassMask.
	ErrInvalidMask = errors.New("ERR invalid event class character")

	// ErrKeyNotFound is returned by introspection commands that must
	// report NoSuchKey as an error rather than nil (OBJECT, MEMORY USAGE).
	ErrKeyNotFound = errors.New("ERR no such key")

	// ErrOffsetOutOfRange means SETRANGE's offset argument was negative.
	ErrOffsetOutOfRange = errors.New("ERR offset is out of range")

	// ErrStringTooLarge means a string operation's resulting length would
	// exceed the configured maximum bulk string size.
	ErrStringTooLarge = errors.New("ERR string exceeds maximum allowed size")

	// ErrIncrOverflow means an INCR/INCRBY/DECR/DECRBY would overflow a
	// signed 64-bit integer.
	ErrIncrOverflow = errors.New("ERR increment or decrement would overflow")

	// ErrIncrByFloatNotFinite means INCRBYFLOAT's result was NaN or Inf.
	ErrIncrByFloatNotFinite = errors.New("ERR increment would produce NaN or Infinity")

	// ErrStringTooLongForLCS means one of LCS's two input strings is at
	// or beyond LCS's input-length limit (UINT32_MAX - 1 bytes).
	ErrStringTooLongForLCS = errors.New("ERR string too long for LCS")
)

// Fatal panics after the caller has logged the invariant violation.
// Refcount <= 0 and unknown-encoding conditions are never caught; they
// indicate a bug in the engine itself, not a bad command.
func Fatal(msg string) {
	panic("redicore: fatal invariant violation: " + msg)
}
