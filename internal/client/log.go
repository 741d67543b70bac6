package client

import (
	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/store"
)

// logMiddleware returns the log-reconciler middleware. It observes
// every dispatched action after the reducer has applied it and keeps
// the client's log mirror equal to the log the authoritative source
// intends for the resulting state.
//
// Reconciliation table, keyed on action kind only:
//
//	make-move / game-event  append the post-state deltalog
//	reset                   clear the mirror
//	update                  append the action's deltalog (additive)
//	sync                    replace the mirror with the action's log
//	anything else           no effect
//
// The mirror only loses entries through reset or a sync replacement.
func (c *Client) logMiddleware() store.Middleware {
	return func(s *store.Store) func(next store.Dispatch) store.Dispatch {
		return func(next store.Dispatch) store.Dispatch {
			return func(act action.Action) {
				next(act)

				c.mu.Lock()
				defer c.mu.Unlock()
				switch act.Type {
				case action.MakeMove, action.GameEvent:
					c.log = append(c.log, s.GetState().Deltalog...)
				case action.Reset:
					c.log = nil
				case action.Update:
					c.log = append(c.log, act.Deltalog...)
				case action.Sync:
					c.log = append([]action.LogEntry(nil), act.Log...)
				}
			}
		}
	}
}
