package interfaces

// Store is the indexed table backing the registry: records keyed by instance key and
// queryable by exact key or by predicate.
//
// Implementations serialize their own access; callers that need several operations to be
// atomic (re-keying an instance) must hold their own lock around the sequence.
// Implemented by adapters/memstore.Store. Called from service.Registry only.
type Store[T any] interface {
	// Insert stores record under key, replacing any previous record with that key.
	// Parameters: key - instance key (domain.InstanceKey); record - value to store.
	// Called from service.Registry on creation and on re-key after arbitration.
	Insert(key string, record T)

	// Remove deletes the record under key.
	// Returns: true when a record existed, false otherwise.
	// Called from service.Registry on re-key (old key) and on retry-budget exhaustion.
	Remove(key string) bool

	// FindByID returns the record stored under key.
	// Returns: (record, true) when present; (zero, false) otherwise.
	// Called from service.Registry.Register for the duplicate check.
	FindByID(key string) (T, bool)

	// FindList returns every record for which match returns true, ordered by key.
	// Parameter match - predicate; nil matches everything.
	// Called from service.Registry (slot candidates, router lookup, listings).
	FindList(match func(T) bool) []T

	// FindAll returns every record, ordered by key.
	FindAll() []T
}
