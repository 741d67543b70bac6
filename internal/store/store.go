// Package store provides the synchronous state container the client
// runtime is built on: a single state value advanced by a reducer,
// observed through subscriptions, with a composable middleware chain
// around dispatch.
package store

import (
	"sync"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
)

// Dispatch sends one action through the middleware chain into the
// reducer.
type Dispatch func(act action.Action)

// Middleware wraps dispatch. It receives the store (for post-apply
// state reads) and the next dispatch in the chain.
type Middleware func(s *Store) func(next Dispatch) Dispatch

// Store holds game state and applies actions to it synchronously.
// Dispatch runs the full reducer and middleware chain to completion
// before returning, so state reads immediately after a dispatch are
// always consistent with it.
type Store struct {
	mu          sync.Mutex
	reducer     game.Reducer
	state       game.State
	subscribers []func()
	dispatch    Dispatch
}

// New creates a store over the reducer and initial state. Middlewares
// compose inside-out: the first listed runs closest to the reducer, so
// later middlewares observe the effects of earlier ones when they call
// next.
func New(reducer game.Reducer, initial game.State, mws ...Middleware) *Store {
	s := &Store{
		reducer: reducer,
		state:   initial,
	}
	s.dispatch = s.apply
	for _, mw := range mws {
		if mw != nil {
			s.dispatch = mw(s)(s.dispatch)
		}
	}
	return s
}

// Dispatch runs the action through the middleware chain and reducer,
// then notifies subscribers in registration order.
func (s *Store) Dispatch(act action.Action) {
	s.dispatch(act)
}

// apply is the innermost dispatch: reduce, swap state, notify.
func (s *Store) apply(act action.Action) {
	s.mu.Lock()
	s.state = s.reducer(s.state, act)
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// GetState returns the current state.
func (s *Store) GetState() game.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every applied action.
// Subscribers are invoked synchronously, in registration order.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
