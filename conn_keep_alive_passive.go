package neohub

// KeepAliveHandlerReplyPingWithPong answers every ping with a pong carrying the
// same payload.
func KeepAliveHandlerReplyPingWithPong(conn Connection, m Message) {
	if m.Type() == PingMessage {
		_ = conn.Write(NewPongMessage(m.Data()))
	}
}
