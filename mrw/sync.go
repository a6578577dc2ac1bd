package mrw

// EventSource is the surface the live sync client exposes to this
// library: named events with library-native payloads. SyncClient
// implements it; so can any other emitter.
type EventSource interface {
	On(t EmittedType, fn func(NativeArgs))
}

// WrapSyncClient subscribes to every registered emitted type on src and
// dispatches each emission as an individual event action, in emission
// order. Emissions whose payload fails projection are dropped; the
// projection set is closed, so that only happens when the source emits
// a malformed payload.
func WrapSyncClient(src EventSource, dispatch DispatchFunc) {
	for _, t := range EmittedTypes() {
		t := t // pre-Go-1.22 loop variable capture
		src.On(t, func(args NativeArgs) {
			action, err := CreateEventAction(t, args)
			if err != nil {
				return
			}
			dispatch(action)
		})
	}
}

// WrapSyncClientBatched is WrapSyncClient with the debounced batching
// path: emissions accumulate in the batcher and reach the store as
// series actions.
func WrapSyncClientBatched(src EventSource, batcher *Batcher) {
	for _, t := range EmittedTypes() {
		t := t // pre-Go-1.22 loop variable capture
		src.On(t, func(args NativeArgs) {
			action, err := CreateEventAction(t, args)
			if err != nil {
				return
			}
			batcher.Add(action)
		})
	}
}
