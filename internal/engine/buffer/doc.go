// Package buffer provides TextBuffer, the shared text container that
// editors, renderers and protocol clients mutate and observe.
//
// A TextBuffer composes a store.Store, which serializes access to the text,
// with an event.Bus, which notifies observers. Mutations run in two phases:
//
//  1. Under the store lock, validate the offsets, apply the edit and stamp
//     the resulting ChangeEvent with the next sequence number.
//  2. With the store lock released, dispatch the event. Dispatches run in
//     sequence order, so every observer sees events in the order the
//     mutations completed, while readers and other writers are free to use
//     the text.
//
// Basic usage:
//
//	buf := buffer.NewFromString("hello world")
//	ep := buf.Subscribe(16)
//
//	if err := buf.Insert(ctx, 5, " there"); err != nil {
//	    // *store.BoundsError
//	}
//	ev := <-ep.Events() // inserted{start:5, len:6}#1
//
// Reads share the store's exclusive lock with writers. That keeps the
// discipline simple; a reader/writer split is possible if read-heavy
// workloads ever need it.
package buffer
