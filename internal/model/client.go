package model

import (
	"net"
	"time"
)

// Client is one authenticated TCP connection. Indexed by the client cache
// both by ID and by socket; the two indexes always mutate together.
type Client struct {
	ID          int64
	SessionKey  string
	Conn        net.Conn
	CharacterID int64
	ConnectedAt time.Time
}

// RemoteAddr returns the peer address or "" when the socket is gone.
func (c *Client) RemoteAddr() string {
	if c.Conn == nil {
		return ""
	}
	return c.Conn.RemoteAddr().String()
}
