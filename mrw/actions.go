package mrw

import (
	"context"

	"github.com/google/uuid"
)

// namespacePrefix marks actions owned by this library. Actions whose
// discriminant lacks the prefix pass through the reducer untouched.
const namespacePrefix = "mrw"

const (
	ActionTypeAPIPending  = "mrw.wrapped_api.pending"
	ActionTypeAPISuccess  = "mrw.wrapped_api.success"
	ActionTypeAPIFailure  = "mrw.wrapped_api.failure"
	ActionTypeEvent       = "mrw.wrapped_event"
	ActionTypeEventSeries = "mrw.wrapped_event_series"
)

// Action is one state-transition request. The discriminant is a
// dotted-namespace string; foreign implementations are legal and are
// passed through by the reducer, which makes the reducer composable
// with other reducers in a larger store.
type Action interface {
	ActionType() string
}

// APIStatus is the lifecycle phase of a wrapped API call.
type APIStatus string

const (
	StatusPending APIStatus = "pending"
	StatusSuccess APIStatus = "success"
	StatusFailure APIStatus = "failure"
)

// APIAction describes one phase of a single asynchronous call. The
// three phases share a correlation ID so stale terminal actions can be
// told apart from the latest call to the same method.
type APIAction struct {
	Status       APIStatus
	Method       string
	PendingState any
	Result       any
	Err          error
	ID           string
}

// ActionType implements Action.
func (a APIAction) ActionType() string {
	return namespacePrefix + ".wrapped_api." + string(a.Status)
}

// NewAPIPendingAction builds the action dispatched when a call starts.
func NewAPIPendingAction(method string, pendingState any, id string) APIAction {
	return APIAction{Status: StatusPending, Method: method, PendingState: pendingState, ID: id}
}

// NewAPISuccessAction builds the action dispatched when a call settles
// successfully.
func NewAPISuccessAction(method string, result any, id string) APIAction {
	return APIAction{Status: StatusSuccess, Method: method, Result: result, ID: id}
}

// NewAPIFailureAction builds the action dispatched when a call settles
// with an error.
func NewAPIFailureAction(method string, err error, id string) APIAction {
	return APIAction{Status: StatusFailure, Method: method, Err: err, ID: id}
}

// DispatchFunc advances the store by one action.
type DispatchFunc func(Action)

// Thunk is a deferred dispatch sequence around an asynchronous call.
type Thunk func(dispatch DispatchFunc)

// AsyncAction wraps an asynchronous call in a thunk that dispatches the
// call's lifecycle: a pending action synchronously, then exactly one of
// success or failure once the call settles. The call's error is
// captured into the failure action and never escapes to the caller;
// retry policy stays with the caller.
func AsyncAction(ctx context.Context, method string, call func(context.Context) (any, error), pendingState any) Thunk {
	id := uuid.NewString()
	return func(dispatch DispatchFunc) {
		dispatch(NewAPIPendingAction(method, pendingState, id))
		go func() {
			result, err := call(ctx)
			if err != nil {
				dispatch(NewAPIFailureAction(method, err, id))
				return
			}
			dispatch(NewAPISuccessAction(method, result, id))
		}()
	}
}
