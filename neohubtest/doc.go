// Package neohubtest provides an in-process NeoHub server speaking the hub's
// websocket protocol. It keeps a list of sessions, answers get_full_state,
// applies arm/disarm commands and broadcasts the resulting partition_update to
// every connected client. Tests use it to drive a neohub.Client over real
// sockets; the neohub CLI serves it as a simulator.
package neohubtest
