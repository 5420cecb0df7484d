package gateway

import (
	"log/slog"
	"net"

	"github.com/udisondev/mmogate/internal/event"
	"github.com/udisondev/mmogate/internal/model"
	"github.com/udisondev/mmogate/internal/protocol"
)

// Queues groups the three event queues by priority class. Ping traffic runs
// on its own queue so a burst of game events never delays a latency probe.
type Queues struct {
	Client *event.Queue // events originated by game clients
	Chunk  *event.Queue // events originated by the chunk peer
	Ping   *event.Queue
}

// NewQueues creates the three open queues.
func NewQueues() *Queues {
	return &Queues{
		Client: event.NewQueue(),
		Chunk:  event.NewQueue(),
		Ping:   event.NewQueue(),
	}
}

// Close closes all three queues, waking every consumer.
func (q *Queues) Close() {
	q.Client.Close()
	q.Chunk.Close()
	q.Ping.Close()
}

// Dispatcher turns raw frames into typed events on the right queue. Frames
// with malformed JSON or an unknown event type are logged and dropped; the
// connection stays open.
type Dispatcher struct {
	queues  *Queues
	clients *ClientManager
}

// NewDispatcher creates a dispatcher feeding the given queues. The client
// manager resolves ids for disconnects raised below the auth layer.
func NewDispatcher(queues *Queues, clients *ClientManager) *Dispatcher {
	return &Dispatcher{queues: queues, clients: clients}
}

// DispatchClientFrame maps one frame read from a game client connection.
func (d *Dispatcher) DispatchClientFrame(frame []byte, conn net.Conn) {
	eventType, err := protocol.EventType(frame)
	if err != nil {
		slog.Error("dropping malformed client frame", "remote", remoteAddr(conn), "error", err)
		return
	}

	cd, err := protocol.ParseClientData(frame)
	if err != nil {
		slog.Error("dropping client frame without identity", "remote", remoteAddr(conn), "error", err)
		return
	}

	base := event.Event{
		ClientID: cd.ClientID,
		Conn:     conn,
		Frame:    append([]byte(nil), frame...),
	}

	switch eventType {
	case protocol.EventPingClient:
		base.Type = event.TypePingClient
		base.Payload = event.Empty{}
		d.push(d.queues.Ping, base)

	case protocol.EventJoinGame:
		base.Type = event.TypeJoinCharacterChunk
		base.Payload = event.ClientInfo{ClientID: cd.ClientID, Hash: cd.Hash}
		d.push(d.queues.Client, base)

	case protocol.EventGetConnectedCharacters:
		base.Type = event.TypeGetConnectedCharactersChunk
		base.Payload = event.Empty{}
		d.push(d.queues.Client, base)

	case protocol.EventMoveCharacter:
		char, err := protocol.ParseCharacterData(frame)
		if err != nil {
			slog.Error("dropping malformed move frame", "clientID", cd.ClientID, "error", err)
			return
		}
		base.Type = event.TypeMoveCharacterChunk
		base.Payload = event.PositionInfo{CharacterID: char.CharacterID, Position: char.Position}
		d.push(d.queues.Client, base)

	case protocol.EventDisconnectClient:
		d.enqueueDisconnect(cd.ClientID, conn)

	case protocol.EventGetSpawnZones:
		base.Type = event.TypeSpawnMobsInZone
		base.Payload = event.SpawnZoneInfo{} // zero zone id: all zones
		d.push(d.queues.Client, base)

	default:
		slog.Error("unknown client event type", "eventType", eventType, "clientID", cd.ClientID)
	}
}

// DispatchChunkFrame maps one frame read from the chunk link. The echoed
// event type decides which client-bound event fans the response back out.
func (d *Dispatcher) DispatchChunkFrame(frame []byte, conn net.Conn) {
	eventType, err := protocol.EventType(frame)
	if err != nil {
		slog.Error("dropping malformed chunk frame", "error", err)
		return
	}

	cd, err := protocol.ParseClientData(frame)
	if err != nil {
		slog.Error("dropping chunk frame without identity", "error", err)
		return
	}

	base := event.Event{
		ClientID: cd.ClientID,
		Conn:     conn,
		Frame:    append([]byte(nil), frame...),
	}

	switch eventType {
	case protocol.EventJoinGame:
		base.Type = event.TypeJoinCharacterClient
		base.Payload = event.Empty{}
		d.push(d.queues.Chunk, base)

	case protocol.EventGetConnectedCharacters:
		base.Type = event.TypeGetConnectedCharactersClient
		base.Payload = event.Empty{}
		d.push(d.queues.Chunk, base)

	case protocol.EventMoveCharacter:
		char, err := protocol.ParseCharacterData(frame)
		if err != nil {
			slog.Error("dropping malformed chunk move frame", "error", err)
			return
		}
		base.Type = event.TypeMoveCharacterClient
		base.Payload = event.PositionInfo{CharacterID: char.CharacterID, Position: char.Position}
		d.push(d.queues.Chunk, base)

	case protocol.EventDisconnectClient:
		base.Type = event.TypeDisconnectClient
		base.Payload = event.ClientInfo{ClientID: cd.ClientID}
		d.push(d.queues.Chunk, base)

	case protocol.EventRegisterChunk:
		hs, err := protocol.ParseChunkHandshake(frame)
		if err != nil || hs.ChunkID == 0 {
			slog.Error("dropping malformed chunk registration", "error", err)
			return
		}
		base.Type = event.TypeRegisterChunk
		base.Payload = event.ChunkInfo{Chunk: model.Chunk{
			ID:    hs.ChunkID,
			IP:    hs.IP,
			Port:  hs.Port,
			PosX:  hs.PosX,
			PosY:  hs.PosY,
			PosZ:  hs.PosZ,
			SizeX: hs.SizeX,
			SizeY: hs.SizeY,
			SizeZ: hs.SizeZ,
			Conn:  conn,
		}}
		d.push(d.queues.Chunk, base)

	default:
		slog.Error("unknown chunk event type", "eventType", eventType)
	}
}

// DispatchDisconnect raises the disconnect pair for a dead client socket.
// Sessions call it from their error path; the client id is recovered from
// the registry when the session never learned it.
func (d *Dispatcher) DispatchDisconnect(conn net.Conn) {
	clientID := int64(0)
	if c := d.clients.GetByConn(conn); c.ID != 0 {
		clientID = c.ID
	}
	d.enqueueDisconnect(clientID, conn)
}

// enqueueDisconnect pushes DISCONNECT_CLIENT and DISCONNECT_CLIENT_CHUNK as
// one batch so the local teardown and the chunk notification travel
// together.
func (d *Dispatcher) enqueueDisconnect(clientID int64, conn net.Conn) {
	pair := []event.Event{
		{
			Type:     event.TypeDisconnectClient,
			ClientID: clientID,
			Conn:     conn,
			Payload:  event.ClientInfo{ClientID: clientID},
		},
		{
			Type:     event.TypeDisconnectClientChunk,
			ClientID: clientID,
			Conn:     conn,
			Payload:  event.ClientInfo{ClientID: clientID},
		},
	}
	if err := d.queues.Client.PushBatch(pair); err != nil {
		slog.Error("dropping disconnect events", "clientID", clientID, "error", err)
	}
}

func (d *Dispatcher) push(q *event.Queue, e event.Event) {
	if err := q.Push(e); err != nil {
		slog.Error("dropping event on closed queue", "type", e.Type.String(), "clientID", e.ClientID)
	}
}

func remoteAddr(conn net.Conn) string {
	if conn == nil {
		return ""
	}
	return conn.RemoteAddr().String()
}
