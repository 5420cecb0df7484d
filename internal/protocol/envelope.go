package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/udisondev/mmogate/internal/model"
)

// Event type strings on the wire, shared by the client and chunk links.
const (
	EventJoinGame               = "joinGame"
	EventGetConnectedCharacters = "getConnectedCharacters"
	EventMoveCharacter          = "moveCharacter"
	EventDisconnectClient       = "disconnectClient"
	EventPingClient             = "pingClient"
	EventGetSpawnZones          = "getSpawnZones"
	EventRegisterChunk          = "registerChunk"
)

// Response header constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	Version = "1.0"

	// TimestampLayout is local ISO time with millisecond precision.
	TimestampLayout = "2006-01-02T15:04:05.000"
)

// Every parser below re-parses the raw frame into its own narrow view of the
// envelope. Absent fields decode to zero values; the only possible failure is
// malformed JSON. Callers may invoke any subset of parsers on one frame.

// EventType returns header.eventType, or "" when the header carries none.
func EventType(frame []byte) (string, error) {
	var env struct {
		Header struct {
			EventType string `json:"eventType"`
		} `json:"header"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", fmt.Errorf("parsing event type: %w", err)
	}
	return env.Header.EventType, nil
}

// ClientData is the authentication identity carried in a frame header.
type ClientData struct {
	ClientID int64
	Hash     string
}

// ParseClientData extracts header.clientId and header.hash.
func ParseClientData(frame []byte) (ClientData, error) {
	var env struct {
		Header struct {
			ClientID int64  `json:"clientId"`
			Hash     string `json:"hash"`
		} `json:"header"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return ClientData{}, fmt.Errorf("parsing client data: %w", err)
	}
	return ClientData{ClientID: env.Header.ClientID, Hash: env.Header.Hash}, nil
}

// characterFields is the shared wire shape of one character record, used both
// as a frame body and as a charactersList element.
type characterFields struct {
	CharacterID            int64   `json:"characterId"`
	CharacterLevel         int32   `json:"characterLevel"`
	CharacterName          string  `json:"characterName"`
	CharacterClass         string  `json:"characterClass"`
	CharacterRace          string  `json:"characterRace"`
	CharacterExp           int64   `json:"characterExp"`
	CharacterCurrentHealth int32   `json:"characterCurrentHealth"`
	CharacterCurrentMana   int32   `json:"characterCurrentMana"`
	PosX                   float32 `json:"posX"`
	PosY                   float32 `json:"posY"`
	PosZ                   float32 `json:"posZ"`
	RotZ                   float32 `json:"rotZ"`
}

// CharacterData is the character payload of a frame body.
type CharacterData struct {
	CharacterID   int64
	Level         int32
	Name          string
	Class         string
	Race          string
	Exp           int64
	CurrentHealth int32
	CurrentMana   int32
	Position      model.Position
}

// ToCharacter converts the wire record into a cacheable character.
func (d CharacterData) ToCharacter() model.Character {
	return model.Character{
		ID:       d.CharacterID,
		Name:     d.Name,
		Class:    d.Class,
		Race:     d.Race,
		Level:    d.Level,
		Exp:      d.Exp,
		HP:       d.CurrentHealth,
		MP:       d.CurrentMana,
		Position: d.Position,
	}
}

func (f characterFields) toCharacterData() CharacterData {
	return CharacterData{
		CharacterID:   f.CharacterID,
		Level:         f.CharacterLevel,
		Name:          f.CharacterName,
		Class:         f.CharacterClass,
		Race:          f.CharacterRace,
		Exp:           f.CharacterExp,
		CurrentHealth: f.CharacterCurrentHealth,
		CurrentMana:   f.CharacterCurrentMana,
		Position:      model.NewPosition(f.PosX, f.PosY, f.PosZ, f.RotZ),
	}
}

// ParseCharacterData extracts the character fields of the frame body.
func ParseCharacterData(frame []byte) (CharacterData, error) {
	var env struct {
		Body characterFields `json:"body"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return CharacterData{}, fmt.Errorf("parsing character data: %w", err)
	}
	return env.Body.toCharacterData(), nil
}

// ParsePositionData extracts posX/posY/posZ/rotZ from the frame body.
func ParsePositionData(frame []byte) (model.Position, error) {
	var env struct {
		Body struct {
			PosX float32 `json:"posX"`
			PosY float32 `json:"posY"`
			PosZ float32 `json:"posZ"`
			RotZ float32 `json:"rotZ"`
		} `json:"body"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return model.Position{}, fmt.Errorf("parsing position data: %w", err)
	}
	return model.NewPosition(env.Body.PosX, env.Body.PosY, env.Body.PosZ, env.Body.RotZ), nil
}

// MessageMeta is the response half of a frame header.
type MessageMeta struct {
	Status    string
	Message   string
	Timestamp string
	Version   string
}

// ParseMessageMeta extracts status/message/timestamp/version from the header.
func ParseMessageMeta(frame []byte) (MessageMeta, error) {
	var env struct {
		Header struct {
			Status    string `json:"status"`
			Message   string `json:"message"`
			Timestamp string `json:"timestamp"`
			Version   string `json:"version"`
		} `json:"header"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return MessageMeta{}, fmt.Errorf("parsing message meta: %w", err)
	}
	return MessageMeta{
		Status:    env.Header.Status,
		Message:   env.Header.Message,
		Timestamp: env.Header.Timestamp,
		Version:   env.Header.Version,
	}, nil
}

// ChunkHandshake is the registration body a chunk server sends on connect.
type ChunkHandshake struct {
	ChunkID int64
	IP      string
	Port    int
	PosX    float32
	PosY    float32
	PosZ    float32
	SizeX   float32
	SizeY   float32
	SizeZ   float32
}

// ParseChunkHandshake extracts the chunk registration fields of the body.
func ParseChunkHandshake(frame []byte) (ChunkHandshake, error) {
	var env struct {
		Body struct {
			ChunkID int64   `json:"chunkId"`
			IP      string  `json:"ip"`
			Port    int     `json:"port"`
			PosX    float32 `json:"posX"`
			PosY    float32 `json:"posY"`
			PosZ    float32 `json:"posZ"`
			SizeX   float32 `json:"sizeX"`
			SizeY   float32 `json:"sizeY"`
			SizeZ   float32 `json:"sizeZ"`
		} `json:"body"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return ChunkHandshake{}, fmt.Errorf("parsing chunk handshake: %w", err)
	}
	return ChunkHandshake{
		ChunkID: env.Body.ChunkID,
		IP:      env.Body.IP,
		Port:    env.Body.Port,
		PosX:    env.Body.PosX,
		PosY:    env.Body.PosY,
		PosZ:    env.Body.PosZ,
		SizeX:   env.Body.SizeX,
		SizeY:   env.Body.SizeY,
		SizeZ:   env.Body.SizeZ,
	}, nil
}

// ParseCharacterList extracts body.charactersList.
func ParseCharacterList(frame []byte) ([]CharacterData, error) {
	var env struct {
		Body struct {
			CharactersList []characterFields `json:"charactersList"`
		} `json:"body"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("parsing character list: %w", err)
	}
	out := make([]CharacterData, 0, len(env.Body.CharactersList))
	for _, f := range env.Body.CharactersList {
		out = append(out, f.toCharacterData())
	}
	return out, nil
}

// responseHeader is the outbound header shape.
type responseHeader struct {
	EventType string `json:"eventType"`
	ClientID  int64  `json:"clientId"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// BuildResponse encodes a response envelope. The event type is echoed from
// the request; timestamp is local time with millisecond precision. A nil
// body encodes as an empty object.
func BuildResponse(eventType string, clientID int64, status, message string, body map[string]any) ([]byte, error) {
	if body == nil {
		body = map[string]any{}
	}
	env := struct {
		Header responseHeader `json:"header"`
		Body   map[string]any `json:"body"`
	}{
		Header: responseHeader{
			EventType: eventType,
			ClientID:  clientID,
			Status:    status,
			Message:   message,
			Timestamp: time.Now().Format(TimestampLayout),
			Version:   Version,
		},
		Body: body,
	}
	buf, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding response %q: %w", eventType, err)
	}
	return buf, nil
}

// BuildRequest encodes a gateway-originated request envelope, used on the
// chunk link for telemetry and forwarded notifications.
func BuildRequest(eventType string, clientID int64, hash string, body map[string]any) ([]byte, error) {
	if body == nil {
		body = map[string]any{}
	}
	env := struct {
		Header struct {
			EventType string `json:"eventType"`
			ClientID  int64  `json:"clientId"`
			Hash      string `json:"hash,omitempty"`
			Version   string `json:"version"`
		} `json:"header"`
		Body map[string]any `json:"body"`
	}{Body: body}
	env.Header.EventType = eventType
	env.Header.ClientID = clientID
	env.Header.Hash = hash
	env.Header.Version = Version

	buf, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encoding request %q: %w", eventType, err)
	}
	return buf, nil
}

// CharacterBody maps a character to the wire field dictionary.
func CharacterBody(c model.Character) map[string]any {
	return map[string]any{
		"characterId":            c.ID,
		"characterLevel":         c.Level,
		"characterName":          c.Name,
		"characterClass":         c.Class,
		"characterRace":          c.Race,
		"characterExp":           c.Exp,
		"characterCurrentHealth": c.HP,
		"characterCurrentMana":   c.MP,
		"posX":                   c.Position.X,
		"posY":                   c.Position.Y,
		"posZ":                   c.Position.Z,
		"rotZ":                   c.Position.RotZ,
	}
}

// CharacterListBody wraps characters into a charactersList body.
func CharacterListBody(chars []model.Character) map[string]any {
	list := make([]map[string]any, 0, len(chars))
	for _, c := range chars {
		list = append(list, CharacterBody(c))
	}
	return map[string]any{"charactersList": list}
}

// MobBody maps one mob snapshot to wire fields.
func MobBody(m model.Mob) map[string]any {
	return map[string]any{
		"uid":        m.UID,
		"templateId": m.TemplateID,
		"zoneId":     m.ZoneID,
		"name":       m.Name,
		"level":      m.Level,
		"race":       m.Race,
		"hp":         m.HP,
		"mp":         m.MP,
		"aggressive": m.Aggressive,
		"posX":       m.Position.X,
		"posY":       m.Position.Y,
		"posZ":       m.Position.Z,
		"rotZ":       m.Position.RotZ,
	}
}

// SpawnZoneBody maps a zone and its mob snapshots to wire fields.
func SpawnZoneBody(z model.SpawnZone, mobs []model.Mob) map[string]any {
	list := make([]map[string]any, 0, len(mobs))
	for _, m := range mobs {
		list = append(list, MobBody(m))
	}
	return map[string]any{
		"zoneId":     z.ZoneID,
		"zoneName":   z.Name,
		"spawnCount": z.SpawnCount,
		"mobs":       list,
	}
}
