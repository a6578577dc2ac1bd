package mrw

import "fmt"

// EmittedType names an event emitted by the live sync client.
type EmittedType string

const (
	EmittedSync             EmittedType = "sync"
	EmittedRoom             EmittedType = "Room"
	EmittedRoomName         EmittedType = "Room.name"
	EmittedRoomTimeline     EmittedType = "Room.timeline"
	EmittedRoomReceipt      EmittedType = "Room.receipt"
	EmittedRoomRedaction    EmittedType = "Room.redaction"
	EmittedRoomStateEvents  EmittedType = "RoomState.events"
	EmittedMemberMembership EmittedType = "RoomMember.membership"
	EmittedMemberName       EmittedType = "RoomMember.name"
)

// EmittedTypes returns every emitted type with a registered projection,
// in subscription order.
func EmittedTypes() []EmittedType {
	return []EmittedType{
		EmittedSync,
		EmittedRoom,
		EmittedRoomName,
		EmittedRoomTimeline,
		EmittedRoomReceipt,
		EmittedRoomRedaction,
		EmittedRoomStateEvents,
		EmittedMemberMembership,
		EmittedMemberName,
	}
}

// NativeEvent mirrors the sync client library's event object.
type NativeEvent struct {
	ID          string         `json:"id"`
	RoomID      string         `json:"roomId"`
	Type        string         `json:"type"`
	Sender      string         `json:"sender"`
	TS          int64          `json:"ts"`
	StateKey    string         `json:"stateKey,omitempty"`
	Content     map[string]any `json:"content"`
	PrevContent map[string]any `json:"prevContent,omitempty"`
	Redacts     string         `json:"redacts,omitempty"`
	Unsigned    NativeUnsigned `json:"unsigned,omitempty"`
}

// NativeUnsigned carries server-set metadata attached to an event.
type NativeUnsigned struct {
	RedactedBecause *RedactionInfo `json:"redactedBecause,omitempty"`
}

// NativeRoom mirrors the sync client library's room object.
type NativeRoom struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
}

// NativeMember mirrors the sync client library's room member object.
type NativeMember struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Membership string `json:"membership"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
}

// NativeArgs bundles the library-native payload objects of one
// emission. Which fields are set depends on the emitted type.
type NativeArgs struct {
	SyncState string        `json:"state,omitempty"`
	Room      *NativeRoom   `json:"room,omitempty"`
	Event     *NativeEvent  `json:"event,omitempty"`
	Member    *NativeMember `json:"member,omitempty"`
}

// EventArgs is the normalized payload produced by projecting a native
// emission. Only the fields relevant to the emitted type are set.
type EventArgs struct {
	State           string
	RoomID          string
	Name            string
	UserID          string
	Membership      string
	AvatarURL       string
	ID              string
	Type            string
	StateKey        string
	Content         map[string]any
	PrevContent     map[string]any
	TS              int64
	Sender          string
	RedactedBecause *RedactionInfo
	RedactedEventID string
}

// EventAction is the normalized form of one emitted event.
type EventAction struct {
	EmittedType EmittedType
	Args        EventArgs
}

// ActionType implements Action.
func (EventAction) ActionType() string { return ActionTypeEvent }

// SeriesAction bundles an ordered burst of event actions so the reducer
// can fold them in one dispatch.
type SeriesAction struct {
	Actions []EventAction
}

// ActionType implements Action.
func (SeriesAction) ActionType() string { return ActionTypeEventSeries }

// CreateEventAction projects a native emission into a normalized event
// action. Unknown emitted types fail with ErrorUnknownEventType here,
// at action-creation time, so malformed actions never reach the
// reducer. Emissions missing their native payload fail with
// ErrorInvalidAction.
func CreateEventAction(t EmittedType, args NativeArgs) (EventAction, error) {
	switch t {
	case EmittedSync:
		return EventAction{EmittedType: t, Args: EventArgs{State: args.SyncState}}, nil

	case EmittedRoom:
		if args.Room == nil {
			return EventAction{}, missingPayload(t, "room")
		}
		return EventAction{EmittedType: t, Args: EventArgs{RoomID: args.Room.RoomID}}, nil

	case EmittedRoomName:
		if args.Room == nil {
			return EventAction{}, missingPayload(t, "room")
		}
		return EventAction{EmittedType: t, Args: EventArgs{
			RoomID: args.Room.RoomID,
			Name:   args.Room.Name,
		}}, nil

	case EmittedRoomTimeline:
		if args.Event == nil {
			return EventAction{}, missingPayload(t, "event")
		}
		ev := args.Event
		return EventAction{EmittedType: t, Args: EventArgs{
			RoomID:          ev.RoomID,
			ID:              ev.ID,
			Type:            ev.Type,
			Content:         ev.Content,
			PrevContent:     ev.PrevContent,
			TS:              ev.TS,
			Sender:          ev.Sender,
			RedactedBecause: ev.Unsigned.RedactedBecause,
		}}, nil

	case EmittedRoomReceipt:
		if args.Event == nil {
			return EventAction{}, missingPayload(t, "event")
		}
		return EventAction{EmittedType: t, Args: EventArgs{
			RoomID:  args.Event.RoomID,
			Content: args.Event.Content,
		}}, nil

	case EmittedRoomRedaction:
		if args.Event == nil {
			return EventAction{}, missingPayload(t, "event")
		}
		ev := args.Event
		return EventAction{EmittedType: t, Args: EventArgs{
			RoomID:          ev.RoomID,
			RedactedEventID: ev.Redacts,
			RedactedBecause: &RedactionInfo{
				Sender:  ev.Sender,
				Content: ev.Content,
				TS:      ev.TS,
			},
		}}, nil

	case EmittedRoomStateEvents:
		if args.Event == nil {
			return EventAction{}, missingPayload(t, "event")
		}
		ev := args.Event
		return EventAction{EmittedType: t, Args: EventArgs{
			RoomID:          ev.RoomID,
			ID:              ev.ID,
			Type:            ev.Type,
			Content:         ev.Content,
			TS:              ev.TS,
			Sender:          ev.Sender,
			StateKey:        ev.StateKey,
			RedactedBecause: ev.Unsigned.RedactedBecause,
		}}, nil

	case EmittedMemberMembership:
		if args.Event == nil || args.Member == nil {
			return EventAction{}, missingPayload(t, "event+member")
		}
		return EventAction{EmittedType: t, Args: EventArgs{
			RoomID:     args.Event.RoomID,
			UserID:     args.Member.UserID,
			Name:       args.Member.Name,
			Membership: args.Member.Membership,
			AvatarURL:  args.Member.AvatarURL,
		}}, nil

	case EmittedMemberName:
		if args.Event == nil || args.Member == nil {
			return EventAction{}, missingPayload(t, "event+member")
		}
		return EventAction{EmittedType: t, Args: EventArgs{
			RoomID: args.Event.RoomID,
			UserID: args.Member.UserID,
			Name:   args.Member.Name,
		}}, nil

	default:
		return EventAction{}, NewError(ErrorUnknownEventType,
			fmt.Sprintf("no projection registered for emitted type %q", t))
	}
}

func missingPayload(t EmittedType, want string) *Error {
	return NewError(ErrorInvalidAction,
		fmt.Sprintf("emitted type %q requires a native %s payload", t, want))
}
