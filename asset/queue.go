// Package asset drives asset loading in two phases. Loaders run first
// and only read and decode, producing Commits. Commits are then applied
// in order on the goroutine that owns the Store and the GPU context.
package asset

// Loader turns a request into a Commit. It may enqueue further requests
// on q, those are drained within the same batch. A Loader must not touch
// the Store or the GPU.
type Loader interface {
	Load(q *Queue, r Resolver, req Request) (Commit, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(q *Queue, r Resolver, req Request) (Commit, error)

// Load implements Loader.
func (f LoaderFunc) Load(q *Queue, r Resolver, req Request) (Commit, error) {
	return f(q, r, req)
}

// Queue is a FIFO of requests with a loader registry. It is drained by a
// single goroutine and may grow while it is being drained.
type Queue struct {
	resolver Resolver
	loaders  map[Kind]Loader
	pending  []Request
	head     int
}

// NewQueue creates an empty queue resolving paths through r.
func NewQueue(r Resolver) *Queue {
	return &Queue{
		resolver: r,
		loaders:  make(map[Kind]Loader),
	}
}

// Register sets the loader for kind, replacing any earlier one.
func (q *Queue) Register(kind Kind, l Loader) {
	q.loaders[kind] = l
}

// Loader returns the loader registered for kind.
func (q *Queue) Loader(kind Kind) (Loader, bool) {
	l, ok := q.loaders[kind]
	return l, ok
}

// Resolver returns the resolver handed to loaders.
func (q *Queue) Resolver() Resolver {
	return q.resolver
}

// Enqueue appends a request. Nothing is checked until it is processed.
func (q *Queue) Enqueue(kind Kind, path, alias string, config interface{}) {
	q.Push(Request{Kind: kind, Path: path, Alias: alias, Config: config})
}

// Push appends a prepared request.
func (q *Queue) Push(req Request) {
	q.pending = append(q.pending, req)
}

// Len returns the number of requests waiting.
func (q *Queue) Len() int {
	return len(q.pending) - q.head
}

// HasNext reports whether a request is waiting.
func (q *Queue) HasNext() bool {
	return q.Len() > 0
}

// Clear drops every waiting request.
func (q *Queue) Clear() {
	q.pending = nil
	q.head = 0
}

func (q *Queue) pop() Request {
	req := q.pending[q.head]
	q.pending[q.head] = Request{}
	q.head++
	if q.head == len(q.pending) {
		q.pending = q.pending[:0]
		q.head = 0
	}
	return req
}

// ProcessNext pops the front request and runs its loader. Errors come
// back as *LoadError naming the request.
func (q *Queue) ProcessNext() (Commit, error) {
	if !q.HasNext() {
		return Commit{}, ErrQueueEmpty
	}
	req := q.pop()

	l, ok := q.loaders[req.Kind]
	if !ok {
		return Commit{}, wrap(req, ErrUnknownAssetKind)
	}

	commit, err := l.Load(q, q.resolver, req)
	if err != nil {
		return Commit{}, wrap(req, err)
	}
	commit.origin(req)
	return commit, nil
}
