package go_csi

// Context is the streaming state of an in-progress suite operation:
// a hash in progress, a cipher keystream, a key schedule. Every context
// carries the identity of the suite that created it, so the dispatcher
// can reject a context handed to the wrong family instead of corrupting
// state.
//
// Lifecycle: ContextInit, zero or more update calls, one finish call,
// ContextFree. A context is invalid before init and after finish or free.
// Contexts are not safe for concurrent use.
type Context interface {
	// Suite returns the ciphersuite the context was initialized for.
	Suite() SuiteID

	// Service returns the service fixed at initialization.
	Service() ServiceID
}
