// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package hub broadcasts poll changes to connected clients.

# Connection lifecycle

	Register      -> Connected
	SubscribeAll  -> Subscribed
	Unregister    -> Disconnected (terminal)

There is no resume. A client that reconnects registers again and fetches
current poll state over REST.

# Delivery

PublishPollCreated and PublishVoteUpdated enqueue one event on every
subscribed connection. SendError enqueues on a single connection. Enqueue
never blocks: each connection has a bounded queue (Options.QueueSize)
drained by its own writer goroutine, and a connection whose queue is full
is disconnected.

Delivery is at most once. A publish racing with Unregister may or may not
reach that connection. A failed write unregisters the connection.

Events on one connection arrive in the order they were published.
*/
package hub
