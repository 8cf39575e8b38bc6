package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// readTimeout closes feeds whose client stopped pinging.
	readTimeout  = 2 * time.Minute
	writeTimeout = 10 * time.Second
)

// WriteTyped sends one event as a JSON text frame.
func WriteTyped(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}

// WriteError sends an error event without closing the socket.
func WriteError(conn *websocket.Conn, errMsg string) error {
	return WriteTyped(conn, ErrorResponse{Event: EventError, Error: errMsg})
}

// WriteClose starts the close handshake with the given status code.
func WriteClose(conn *websocket.Conn, code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
}

// ReadJSON waits up to readTimeout for the next client message.
func ReadJSON(conn *websocket.Conn, v any) error {
	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return err
	}
	return conn.ReadJSON(v)
}
