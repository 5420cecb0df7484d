package event

import (
	"net"

	"github.com/udisondev/mmogate/internal/model"
)

// Type discriminates internal events. The Chunk/Client suffix names the
// destination of the work: Chunk events forward traffic to the chunk peer,
// Client events fan chunk responses back out to connected clients.
type Type uint8

const (
	TypeUnknown Type = iota
	TypePingClient
	TypeJoinCharacterChunk
	TypeJoinCharacterClient
	TypeGetConnectedCharactersChunk
	TypeGetConnectedCharactersClient
	TypeMoveCharacterChunk
	TypeMoveCharacterClient
	TypeSpawnMobsInZone
	TypeDisconnectClient
	TypeDisconnectClientChunk
	TypeRegisterChunk
)

var typeNames = map[Type]string{
	TypeUnknown:                      "UNKNOWN",
	TypePingClient:                   "PING_CLIENT",
	TypeJoinCharacterChunk:           "JOIN_CHARACTER_CHUNK",
	TypeJoinCharacterClient:          "JOIN_CHARACTER_CLIENT",
	TypeGetConnectedCharactersChunk:  "GET_CONNECTED_CHARACTERS_CHUNK",
	TypeGetConnectedCharactersClient: "GET_CONNECTED_CHARACTERS_CLIENT",
	TypeMoveCharacterChunk:           "MOVE_CHARACTER_CHUNK",
	TypeMoveCharacterClient:          "MOVE_CHARACTER_CLIENT",
	TypeSpawnMobsInZone:              "SPAWN_MOBS_IN_ZONE",
	TypeDisconnectClient:             "DISCONNECT_CLIENT",
	TypeDisconnectClientChunk:        "DISCONNECT_CLIENT_CHUNK",
	TypeRegisterChunk:                "REGISTER_CHUNK",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Event is one unit of routed work. Frame keeps the original wire bytes so
// forwarding handlers do not re-encode; Payload carries the parsed view the
// handler needs. Both are copies: an event outliving its session must not
// dereference freed session state. Conn is shared with the session; closing
// it is idempotent.
type Event struct {
	Type     Type
	ClientID int64
	Conn     net.Conn
	Frame    []byte
	Payload  Payload
}

// Payload is the tagged union carried by an Event. Handlers type-switch on
// the concrete variant; receiving a wrong variant is a programming error and
// the event is logged and dropped.
type Payload interface {
	payload()
}

// Empty is the payload of events that carry no data beyond the header.
type Empty struct{}

// ClientInfo identifies the requesting client.
type ClientInfo struct {
	ClientID int64
	Hash     string
}

// CharacterInfo carries a character snapshot.
type CharacterInfo struct {
	Character model.Character
}

// PositionInfo carries a movement update for one character.
type PositionInfo struct {
	CharacterID int64
	Position    model.Position
}

// ChunkInfo carries a chunk-server registration.
type ChunkInfo struct {
	Chunk model.Chunk
}

// SpawnZoneInfo names a spawn zone to operate on. Zero ZoneID means all
// zones.
type SpawnZoneInfo struct {
	ZoneID int32
}

// CharacterList carries a set of character snapshots.
type CharacterList struct {
	Characters []model.Character
}

func (Empty) payload()         {}
func (ClientInfo) payload()    {}
func (CharacterInfo) payload() {}
func (PositionInfo) payload()  {}
func (ChunkInfo) payload()     {}
func (SpawnZoneInfo) payload() {}
func (CharacterList) payload() {}
