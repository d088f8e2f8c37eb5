// Package event delivers buffer change notifications to a dynamic set of
// subscribers.
//
// A Bus holds one Endpoint per subscriber, in registration order. Dispatch
// hands an event to every endpoint in turn; an endpoint whose Deliver call
// fails is removed once the pass completes and never receives another event.
// There is no explicit unsubscribe: a subscriber leaves by closing its
// endpoint, and the next dispatch prunes it.
//
// ChannelEndpoint is the usual endpoint. It has a bounded buffer, so a full
// buffer suspends Deliver until the receiver drains it or the bus delivery
// timeout expires:
//
//	bus := event.NewBus(event.WithDeliveryTimeout(time.Second))
//	ep := event.NewChannelEndpoint(64)
//	bus.Register(ep)
//
//	go func() {
//	    for ev := range ep.Events() {
//	        // ev.Seq increases by one per mutation
//	    }
//	}()
//
// Every ChangeEvent carries a sequence number assigned when the mutation
// completed. Sequencer lets a producer run dispatches in sequence order
// without holding any lock over the text itself.
package event
