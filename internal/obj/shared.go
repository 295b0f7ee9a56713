package obj

// sharedIntegers is the immortal pool of pre-built INT-encoded values for
// the range [0, SharedIntegersCount), mirroring createSharedObjects in
// over-object.c. Values in this pool are interned: every lookup for the
// same small integer returns the identical *Value, and retain/release on
// them are no-ops (IsImmortal() reports true).
//
// The package init builds the pool via InitShared(SharedIntegersCount);
// InitShared can later rebuild it at another size.
var sharedIntegers []*Value

// SharedIntegersCount mirrors the compile-time SHARED_INTEGERS constant
// of spec.md §3 (~10000) and is the default pool size.
const SharedIntegersCount = 10000

func init() {
	InitShared(SharedIntegersCount)
}

// InitShared (re)builds the shared-integer pool for [0, n). Exposed for
// tests that want a smaller pool; production code relies on the
// package-init default.
func InitShared(n int) {
	pool := make([]*Value, n)
	for i := 0; i < n; i++ {
		pool[i] = &Value{
			typ:      TypeString,
			refcount: RefcountImmortal,
			body:     intPayload{val: int64(i)},
		}
	}
	sharedIntegers = pool
}

// LookupShared returns the interned Value for n if n falls within the
// pool's range, per spec.md §3's "reused only when eviction policy does
// not require per-key LRU/LFU" — callers (TryEncode, SET of a small
// literal integer) are responsible for consulting the eviction policy
// before calling this; LookupShared itself performs no such check.
func LookupShared(n int64) (*Value, bool) {
	if n < 0 || int(n) >= len(sharedIntegers) {
		return nil, false
	}
	return sharedIntegers[n], true
}
