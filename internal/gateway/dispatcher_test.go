package gateway

import (
	"fmt"
	"testing"

	"github.com/udisondev/mmogate/internal/event"
)

func clientFrame(eventType string, clientID int) []byte {
	return fmt.Appendf(nil,
		`{"header":{"eventType":%q,"clientId":%d,"hash":"abc"},"body":{"characterId":7,"posX":1,"posY":2,"posZ":3}}`,
		eventType, clientID)
}

func popOne(t *testing.T, q *event.Queue) event.Event {
	t.Helper()
	if q.Len() == 0 {
		t.Fatal("expected an event on the queue")
	}
	var e event.Event
	if !q.Pop(&e) {
		t.Fatal("queue closed unexpectedly")
	}
	return e
}

func TestDispatchJoinGame(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())

	d.DispatchClientFrame(clientFrame("joinGame", 42), pipeConn(t))

	e := popOne(t, queues.Client)
	if e.Type != event.TypeJoinCharacterChunk {
		t.Errorf("expected JOIN_CHARACTER_CHUNK, got %s", e.Type)
	}
	if e.ClientID != 42 {
		t.Errorf("expected clientID 42, got %d", e.ClientID)
	}
	info, ok := e.Payload.(event.ClientInfo)
	if !ok {
		t.Fatalf("expected ClientInfo payload, got %T", e.Payload)
	}
	if info.Hash != "abc" {
		t.Errorf("expected hash abc, got %q", info.Hash)
	}
	if len(e.Frame) == 0 {
		t.Error("expected the original frame to travel with the event")
	}
}

func TestDispatchPingGoesToPingQueue(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())

	d.DispatchClientFrame(clientFrame("pingClient", 42), pipeConn(t))

	if queues.Client.Len() != 0 {
		t.Error("ping leaked onto the client queue")
	}
	e := popOne(t, queues.Ping)
	if e.Type != event.TypePingClient {
		t.Errorf("expected PING_CLIENT, got %s", e.Type)
	}
}

func TestDispatchMoveCharacter(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())

	d.DispatchClientFrame(clientFrame("moveCharacter", 42), pipeConn(t))

	e := popOne(t, queues.Client)
	if e.Type != event.TypeMoveCharacterChunk {
		t.Errorf("expected MOVE_CHARACTER_CHUNK, got %s", e.Type)
	}
	pos, ok := e.Payload.(event.PositionInfo)
	if !ok {
		t.Fatalf("expected PositionInfo payload, got %T", e.Payload)
	}
	if pos.CharacterID != 7 || pos.Position.X != 1 || pos.Position.Y != 2 || pos.Position.Z != 3 {
		t.Errorf("unexpected position payload: %+v", pos)
	}
}

func TestDispatchDisconnectPair(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())

	d.DispatchClientFrame(clientFrame("disconnectClient", 42), pipeConn(t))

	first := popOne(t, queues.Client)
	second := popOne(t, queues.Client)
	if first.Type != event.TypeDisconnectClient {
		t.Errorf("expected DISCONNECT_CLIENT first, got %s", first.Type)
	}
	if second.Type != event.TypeDisconnectClientChunk {
		t.Errorf("expected DISCONNECT_CLIENT_CHUNK second, got %s", second.Type)
	}
}

func TestDispatchUnknownTypeDropped(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())

	d.DispatchClientFrame(clientFrame("castFireball", 42), pipeConn(t))

	if queues.Client.Len() != 0 || queues.Ping.Len() != 0 {
		t.Error("unknown event type was enqueued")
	}
}

func TestDispatchMalformedFrameDropped(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())

	d.DispatchClientFrame([]byte(`{"header":`), pipeConn(t))

	if queues.Client.Len() != 0 {
		t.Error("malformed frame was enqueued")
	}
}

func TestDispatchChunkFrames(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())
	conn := pipeConn(t)

	cases := []struct {
		wire string
		want event.Type
	}{
		{"joinGame", event.TypeJoinCharacterClient},
		{"getConnectedCharacters", event.TypeGetConnectedCharactersClient},
		{"moveCharacter", event.TypeMoveCharacterClient},
		{"disconnectClient", event.TypeDisconnectClient},
	}

	for _, tc := range cases {
		d.DispatchChunkFrame(clientFrame(tc.wire, 42), conn)
		e := popOne(t, queues.Chunk)
		if e.Type != tc.want {
			t.Errorf("chunk %q mapped to %s, want %s", tc.wire, e.Type, tc.want)
		}
	}
}

func TestDispatchChunkRegistration(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())
	conn := pipeConn(t)

	frame := []byte(`{"header":{"eventType":"registerChunk"},` +
		`"body":{"chunkId":3,"ip":"10.0.0.5","port":9100,` +
		`"posX":0,"posY":0,"posZ":200,"sizeX":8000,"sizeY":8000,"sizeZ":0}}`)
	d.DispatchChunkFrame(frame, conn)

	e := popOne(t, queues.Chunk)
	if e.Type != event.TypeRegisterChunk {
		t.Fatalf("expected REGISTER_CHUNK, got %s", e.Type)
	}
	info, ok := e.Payload.(event.ChunkInfo)
	if !ok {
		t.Fatalf("expected ChunkInfo payload, got %T", e.Payload)
	}
	if info.Chunk.ID != 3 || info.Chunk.SizeX != 8000 || info.Chunk.Conn != conn {
		t.Errorf("chunk payload = %+v", info.Chunk)
	}

	// A registration without a chunk id is dropped.
	d.DispatchChunkFrame([]byte(`{"header":{"eventType":"registerChunk"},"body":{}}`), conn)
	if n := queues.Chunk.Len(); n != 0 {
		t.Errorf("id-less registration enqueued %d events", n)
	}
}

func TestDispatchGetSpawnZones(t *testing.T) {
	queues := NewQueues()
	d := NewDispatcher(queues, NewClientManager())

	d.DispatchClientFrame(clientFrame("getSpawnZones", 42), pipeConn(t))

	e := popOne(t, queues.Client)
	if e.Type != event.TypeSpawnMobsInZone {
		t.Errorf("expected SPAWN_MOBS_IN_ZONE, got %s", e.Type)
	}
	if _, ok := e.Payload.(event.SpawnZoneInfo); !ok {
		t.Errorf("expected SpawnZoneInfo payload, got %T", e.Payload)
	}
}
