package mrw

import "github.com/matrix-redux-wrap/mrw-go/mrw/internal/pathtree"

// State is the root of the normalized state tree. It is built once by
// Reduce(nil, nil) and thereafter only replaced wholesale; callers must
// treat any *State they hold as an immutable snapshot.
type State struct {
	WrappedAPI   map[string]APICallState `json:"wrapped_api"`
	WrappedState WrappedState            `json:"wrapped_state"`
}

// WrappedState holds everything derived from the live sync stream.
type WrappedState struct {
	Rooms map[string]RoomState `json:"rooms"`
	Sync  SyncState            `json:"sync"`
}

// SyncState carries the latest sync status reported by the client.
type SyncState struct {
	State string `json:"state,omitempty"`
}

// APICallState tracks the lifecycle of the most recent call to one
// wrapped API method. At most one of LastResult/LastError is set,
// matching Status; PendingState persists across transitions.
type APICallState struct {
	Status       APIStatus `json:"status"`
	Loading      bool      `json:"loading"`
	PendingState any       `json:"pendingState,omitempty"`
	LastResult   any       `json:"lastResult,omitempty"`
	LastError    error     `json:"lastError,omitempty"`

	// PendingID is the correlation id of the latest pending action.
	// Terminal actions carrying a different id are ignored, so a
	// superseded call cannot clobber a newer call's state.
	PendingID string `json:"id,omitempty"`
}

// RoomState is the normalized view of a single room.
type RoomState struct {
	Name     string                           `json:"name,omitempty"`
	Members  map[string]MemberState           `json:"members"`
	Timeline []TimelineEvent                  `json:"timeline"`
	State    map[string]map[string]StateEvent `json:"state"`
	Receipts map[string]any                   `json:"receipts,omitempty"`
}

// Receipt returns the receipt payload recorded for the given event,
// receipt type and user, if any.
func (r RoomState) Receipt(eventID, receiptType, userID string) (any, bool) {
	v, err := pathtree.Get(r.Receipts, eventID, receiptType, userID)
	if err != nil {
		return nil, false
	}
	return v, true
}

// MemberState is the normalized view of one room member.
type MemberState struct {
	Membership string `json:"membership"`
	Name       string `json:"name"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
}

// TimelineEvent is a single timeline entry. The timeline is append-only
// except for in-place redaction substitution.
type TimelineEvent struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Content         map[string]any `json:"content"`
	PrevContent     map[string]any `json:"prevContent,omitempty"`
	TS              int64          `json:"ts"`
	Sender          string         `json:"sender"`
	RedactedBecause *RedactionInfo `json:"redactedBecause,omitempty"`
}

// StateEvent is one entry of a room's state map, keyed by event type
// and state key.
type StateEvent struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	Content         map[string]any `json:"content"`
	TS              int64          `json:"ts"`
	Sender          string         `json:"sender"`
	RedactedBecause *RedactionInfo `json:"redactedBecause,omitempty"`
}

// RedactionInfo describes the event that caused a redaction.
type RedactionInfo struct {
	Sender  string         `json:"sender"`
	Content map[string]any `json:"content"`
	TS      int64          `json:"ts"`
}

// NewInitialState returns the canonical empty state tree.
func NewInitialState() *State {
	return &State{
		WrappedAPI: map[string]APICallState{},
		WrappedState: WrappedState{
			Rooms: map[string]RoomState{},
			Sync:  SyncState{},
		},
	}
}

// newRoomState returns the defaults a room is created with when an
// event references it before its own creation event arrives.
func newRoomState() RoomState {
	return RoomState{
		Members:  map[string]MemberState{},
		Timeline: []TimelineEvent{},
		State:    map[string]map[string]StateEvent{},
	}
}
