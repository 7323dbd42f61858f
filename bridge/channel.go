package bridge

import "context"

// Conn is one end of a bidirectional message channel. The protocol is not
// tied to a particular transport; an in-memory pipe is provided for
// in-process use and tests, and any JSON transport (e.g. a cross-frame
// postMessage shim or a websocket) can implement the same shape.
type Conn struct {
	in  <-chan Message
	out chan<- Message
}

// Send delivers a message to the peer.
func (c *Conn) Send(m Message) {
	c.out <- m
}

// Recv returns the stream of messages from the peer.
func (c *Conn) Recv() <-chan Message {
	return c.in
}

// Pipe creates a connected pair of endpoints.
func Pipe(buf int) (*Conn, *Conn) {
	ab := make(chan Message, buf)
	ba := make(chan Message, buf)
	return &Conn{in: ba, out: ab}, &Conn{in: ab, out: ba}
}

// pump forwards incoming messages to a handler until the context ends or
// the channel closes.
func pump(ctx context.Context, c *Conn, handle func(Message)) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-c.Recv():
			if !ok {
				return
			}
			handle(m)
		}
	}
}
