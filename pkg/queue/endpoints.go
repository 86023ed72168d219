package queue

import (
	"sync"
)

// EndpointSet is an ordered, non-empty list of broker URLs with a rotating cursor.
type EndpointSet struct {
	mu     sync.Mutex
	urls   []string
	cursor int
}

func NewEndpointSet(urls []string) (*EndpointSet, error) {
	if len(urls) == 0 {
		return nil, ErrNoEndpoints
	}

	cp := make([]string, len(urls))
	copy(cp, urls)

	return &EndpointSet{urls: cp}, nil
}

// Next returns the endpoint under the cursor and advances it round-robin.
func (e *EndpointSet) Next() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	url := e.urls[e.cursor]
	e.cursor = (e.cursor + 1) % len(e.urls)

	return url
}

// Cursor returns the index the next call to Next will use.
func (e *EndpointSet) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cursor
}

func (e *EndpointSet) Len() int {
	return len(e.urls)
}

// All returns the endpoints in list order.
func (e *EndpointSet) All() []string {
	cp := make([]string, len(e.urls))
	copy(cp, e.urls)

	return cp
}
