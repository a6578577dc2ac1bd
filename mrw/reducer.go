package mrw

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matrix-redux-wrap/mrw-go/mrw/internal/pathtree"
)

// Reduce is the core state machine: a pure function from (action,
// previous state) to next state. It never mutates the previous state;
// every update clones only the spine it touches and shares untouched
// subtrees by reference, so callers can rely on reference inequality to
// detect change.
//
// A nil action yields the canonical initial state regardless of the
// previous state. Actions outside the reserved namespace return the
// previous state pointer unchanged. An action inside the namespace that
// routes to no known sub-reducer fails with ErrorUnsupportedNamespace.
func Reduce(action Action, state *State) (*State, error) {
	if action == nil {
		return NewInitialState(), nil
	}
	if !strings.HasPrefix(action.ActionType(), namespacePrefix) {
		return state, nil
	}
	if state == nil {
		state = NewInitialState()
	}

	switch a := action.(type) {
	case APIAction:
		return reduceAPIAction(a, state), nil
	case EventAction:
		return reduceEventAction(a, state), nil
	case SeriesAction:
		next := state
		for _, ea := range a.Actions {
			next = reduceEventAction(ea, next)
		}
		return next, nil
	default:
		return nil, NewError(ErrorUnsupportedNamespace,
			fmt.Sprintf("unsupported action type %q", action.ActionType()))
	}
}

// reduceAPIAction folds one phase of an async call into the per-method
// call state. Fields untouched by the phase carry over, so PendingState
// recorded at pending time survives into success/failure. Concurrent
// calls to the same method share one bucket: last pending wins, and
// terminal actions whose correlation id no longer matches the latest
// pending id are dropped as stale.
func reduceAPIAction(a APIAction, s *State) *State {
	call := s.WrappedAPI[a.Method]

	switch a.Status {
	case StatusPending:
		call.Status = StatusPending
		call.Loading = true
		call.PendingState = a.PendingState
		call.PendingID = a.ID
	case StatusSuccess:
		if staleTerminal(call, a.ID) {
			return s
		}
		call.Status = StatusSuccess
		call.Loading = false
		call.LastResult = a.Result
		call.LastError = nil
	case StatusFailure:
		if staleTerminal(call, a.ID) {
			return s
		}
		call.Status = StatusFailure
		call.Loading = false
		call.LastError = a.Err
		call.LastResult = nil
	default:
		return s
	}

	api := maps.Clone(s.WrappedAPI)
	if api == nil {
		api = make(map[string]APICallState, 1)
	}
	api[a.Method] = call

	next := *s
	next.WrappedAPI = api
	return &next
}

// staleTerminal reports whether a terminal action belongs to a call
// superseded by a newer pending action. Terminal actions with no
// recorded pending counterpart are accepted as-is.
func staleTerminal(call APICallState, id string) bool {
	return call.PendingID != "" && id != "" && call.PendingID != id
}

// reduceEventAction folds one normalized emitted event into the synced
// state. Rooms are always upserted, never required to pre-exist:
// membership, timeline and state events may arrive before the room's
// own creation event, and creation is idempotent over an existing room.
// Unknown emitted types are a no-op.
func reduceEventAction(a EventAction, s *State) *State {
	ws := s.WrappedState
	args := a.Args

	switch a.EmittedType {
	case EmittedSync:
		ws.Sync = SyncState{State: args.State}

	case EmittedRoom:
		ws.Rooms = upsertRoom(ws.Rooms, args.RoomID, func(r RoomState) RoomState {
			return r
		})

	case EmittedRoomName:
		ws.Rooms = upsertRoom(ws.Rooms, args.RoomID, func(r RoomState) RoomState {
			r.Name = args.Name
			return r
		})

	case EmittedRoomTimeline:
		ws.Rooms = upsertRoom(ws.Rooms, args.RoomID, func(r RoomState) RoomState {
			entry := TimelineEvent{
				ID:              args.ID,
				Type:            args.Type,
				Content:         args.Content,
				PrevContent:     args.PrevContent,
				TS:              args.TS,
				Sender:          args.Sender,
				RedactedBecause: args.RedactedBecause,
			}
			r.Timeline = append(slices.Clone(r.Timeline), entry)
			return r
		})

	case EmittedRoomReceipt:
		if args.Content == nil {
			return s
		}
		ws.Rooms = upsertRoom(ws.Rooms, args.RoomID, func(r RoomState) RoomState {
			r.Receipts = pathtree.Merge(r.Receipts, args.Content)
			return r
		})

	case EmittedRoomRedaction:
		ws.Rooms = upsertRoom(ws.Rooms, args.RoomID, func(r RoomState) RoomState {
			return redactRoom(r, args.RedactedEventID, args.RedactedBecause)
		})

	case EmittedRoomStateEvents:
		ws.Rooms = upsertRoom(ws.Rooms, args.RoomID, func(r RoomState) RoomState {
			st := maps.Clone(r.State)
			if st == nil {
				st = make(map[string]map[string]StateEvent, 1)
			}
			byKey := maps.Clone(st[args.Type])
			if byKey == nil {
				byKey = make(map[string]StateEvent, 1)
			}
			byKey[args.StateKey] = StateEvent{
				ID:              args.ID,
				Type:            args.Type,
				Content:         args.Content,
				TS:              args.TS,
				Sender:          args.Sender,
				RedactedBecause: args.RedactedBecause,
			}
			st[args.Type] = byKey
			r.State = st
			return r
		})

	case EmittedMemberMembership:
		ws.Rooms = upsertRoom(ws.Rooms, args.RoomID, func(r RoomState) RoomState {
			members := maps.Clone(r.Members)
			if members == nil {
				members = make(map[string]MemberState, 1)
			}
			members[args.UserID] = MemberState{
				Membership: args.Membership,
				Name:       args.Name,
				AvatarURL:  args.AvatarURL,
			}
			r.Members = members
			return r
		})

	case EmittedMemberName:
		ws.Rooms = upsertRoom(ws.Rooms, args.RoomID, func(r RoomState) RoomState {
			members := maps.Clone(r.Members)
			if members == nil {
				members = make(map[string]MemberState, 1)
			}
			m := members[args.UserID]
			m.Name = args.Name
			members[args.UserID] = m
			r.Members = members
			return r
		})

	default:
		return s
	}

	next := *s
	next.WrappedState = ws
	return &next
}

// upsertRoom clones the room map, ensures a room exists for roomID
// (creating it with defaults without clobbering an existing one) and
// applies update to it. Other rooms share their previous maps.
func upsertRoom(rooms map[string]RoomState, roomID string, update func(RoomState) RoomState) map[string]RoomState {
	next := maps.Clone(rooms)
	if next == nil {
		next = make(map[string]RoomState, 1)
	}
	room, ok := next[roomID]
	if !ok {
		room = newRoomState()
	}
	next[roomID] = update(room)
	return next
}

// redactRoom substitutes the redacted event in the room's timeline and
// state maps: content and prevContent are emptied and the redaction
// metadata recorded. Every entry is structurally copied so the previous
// room's slices and maps stay untouched. An id with no matching entry
// is left as a no-op; a live stream gives no completeness guarantee.
func redactRoom(room RoomState, eventID string, because *RedactionInfo) RoomState {
	timeline := slices.Clone(room.Timeline)
	for i := range timeline {
		if timeline[i].ID != eventID {
			continue
		}
		timeline[i].Content = map[string]any{}
		timeline[i].PrevContent = map[string]any{}
		timeline[i].RedactedBecause = because
	}
	room.Timeline = timeline

	st := make(map[string]map[string]StateEvent, len(room.State))
	for typ, byKey := range room.State {
		inner := maps.Clone(byKey)
		for key, ev := range inner {
			if ev.ID != eventID {
				continue
			}
			ev.Content = map[string]any{}
			ev.RedactedBecause = because
			inner[key] = ev
		}
		st[typ] = inner
	}
	room.State = st
	return room
}
