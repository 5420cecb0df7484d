package gateway

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/udisondev/mmogate/internal/event"
	"github.com/udisondev/mmogate/internal/model"
	"github.com/udisondev/mmogate/internal/protocol"
	"github.com/udisondev/mmogate/internal/spawn"
	"github.com/udisondev/mmogate/internal/world"
)

// authFailedMessage is the exact error text the client protocol expects.
const authFailedMessage = "Authentication failed for user!"

// Dependencies the handler reaches out to, declared at the point of use.
type (
	// UserAuthenticator resolves the stored session key of a user. An
	// empty key means the user is unknown.
	UserAuthenticator interface {
		SessionKey(ctx context.Context, userID int64) (string, error)
	}

	// CharacterStore loads and persists characters. Load returns nil, nil
	// for a character that does not exist.
	CharacterStore interface {
		Load(ctx context.Context, characterID int64) (*model.Character, error)
		Save(ctx context.Context, c model.Character) error
	}

	// ChunkSender forwards frames to the chunk peer.
	ChunkSender interface {
		Send(payload []byte) error
	}

	// ClientSender writes response frames back to game clients.
	ClientSender interface {
		SendToClient(conn net.Conn, payload []byte) error
		Broadcast(payload []byte)
	}

	// ChunkRegistry tracks registered chunk-server peers.
	ChunkRegistry interface {
		Upsert(c model.Chunk)
	}
)

// Handler executes typed events. Reentrant: all shared state lives behind
// the managers' locks, and no lock is held across a network write. Errors
// never leave a handler; every failure path logs and drops.
type Handler struct {
	clients    *ClientManager
	characters *world.CharacterManager
	zones      *spawn.Manager
	users      UserAuthenticator
	store      CharacterStore
	chunk      ChunkSender
	chunks     ChunkRegistry
	sender     ClientSender
}

// NewHandler wires the handler's dependencies.
func NewHandler(
	clients *ClientManager,
	characters *world.CharacterManager,
	zones *spawn.Manager,
	users UserAuthenticator,
	store CharacterStore,
	chunk ChunkSender,
	chunks ChunkRegistry,
	sender ClientSender,
) *Handler {
	return &Handler{
		clients:    clients,
		characters: characters,
		zones:      zones,
		users:      users,
		store:      store,
		chunk:      chunk,
		chunks:     chunks,
		sender:     sender,
	}
}

// Handle executes one event.
func (h *Handler) Handle(ctx context.Context, e event.Event) {
	switch e.Type {
	case event.TypePingClient:
		h.handlePing(e)
	case event.TypeJoinCharacterChunk:
		h.handleJoinChunk(ctx, e)
	case event.TypeJoinCharacterClient:
		h.handleJoinClient(e)
	case event.TypeGetConnectedCharactersChunk:
		h.handleConnectedChunk(e)
	case event.TypeGetConnectedCharactersClient:
		h.handleConnectedClient(e)
	case event.TypeMoveCharacterChunk:
		h.handleMoveChunk(e)
	case event.TypeMoveCharacterClient:
		h.handleMoveClient(e)
	case event.TypeSpawnMobsInZone:
		h.handleSpawnZones(e)
	case event.TypeDisconnectClient:
		h.handleDisconnect(ctx, e)
	case event.TypeDisconnectClientChunk:
		h.handleDisconnectChunk(e)
	case event.TypeRegisterChunk:
		h.handleRegisterChunk(e)
	default:
		slog.Error("unhandled event type", "type", e.Type.String())
	}
}

func (h *Handler) handlePing(e event.Event) {
	resp, err := protocol.BuildResponse(protocol.EventPingClient, e.ClientID,
		protocol.StatusSuccess, "pong", nil)
	if err != nil {
		slog.Error("encoding pong failed", "error", err)
		return
	}
	_ = h.sender.SendToClient(e.Conn, resp)
}

// handleJoinChunk authenticates a joining client, caches its character and
// forwards the join to the chunk server. The success frame travels back to
// the client only after the chunk echoes the join.
func (h *Handler) handleJoinChunk(ctx context.Context, e event.Event) {
	info, ok := e.Payload.(event.ClientInfo)
	if !ok {
		slog.Error("join event with wrong payload", "clientID", e.ClientID)
		return
	}

	if !h.authenticate(ctx, info) {
		h.sendAuthError(e)
		return
	}

	char, err := protocol.ParseCharacterData(e.Frame)
	if err != nil {
		slog.Error("dropping join with malformed character data", "clientID", info.ClientID, "error", err)
		return
	}
	if char.CharacterID == 0 {
		slog.Error("dropping join without character id", "clientID", info.ClientID)
		return
	}

	cached := h.loadCharacter(ctx, char)
	h.characters.Upsert(cached)

	h.clients.Upsert(model.Client{
		ID:          info.ClientID,
		SessionKey:  info.Hash,
		Conn:        e.Conn,
		CharacterID: char.CharacterID,
		ConnectedAt: time.Now(),
	})
	slog.Info("client joined", "clientID", info.ClientID, "characterID", char.CharacterID)

	if err := h.chunk.Send(e.Frame); err != nil {
		slog.Error("forwarding join to chunk failed", "clientID", info.ClientID, "error", err)
	}
}

// loadCharacter prefers the database row; the wire payload fills in for a
// character the database has never seen. The client-claimed position wins
// either way, since the chunk server is about to place the character there.
func (h *Handler) loadCharacter(ctx context.Context, char protocol.CharacterData) model.Character {
	stored, err := h.store.Load(ctx, char.CharacterID)
	if err != nil {
		slog.Error("loading character failed, using wire data",
			"characterID", char.CharacterID, "error", err)
	}

	var c model.Character
	if stored != nil {
		c = *stored
	} else {
		c = char.ToCharacter()
	}
	c.Position = char.Position
	return c
}

func (h *Handler) authenticate(ctx context.Context, info event.ClientInfo) bool {
	if info.ClientID == 0 || info.Hash == "" {
		return false
	}
	key, err := h.users.SessionKey(ctx, info.ClientID)
	if err != nil {
		slog.Error("session key lookup failed", "clientID", info.ClientID, "error", err)
		return false
	}
	return key != "" && key == info.Hash
}

func (h *Handler) sendAuthError(e event.Event) {
	resp, err := protocol.BuildResponse(protocol.EventJoinGame, e.ClientID,
		protocol.StatusError, authFailedMessage, nil)
	if err != nil {
		slog.Error("encoding auth error failed", "error", err)
		return
	}
	_ = h.sender.SendToClient(e.Conn, resp)
	slog.Error("authentication failed", "clientID", e.ClientID)
}

// handleJoinClient relays the chunk's join verdict to the waiting client.
func (h *Handler) handleJoinClient(e event.Event) {
	client := h.clients.Get(e.ClientID)
	if client.ID == 0 {
		slog.Error("join echo for unknown client", "clientID", e.ClientID)
		return
	}

	meta, err := protocol.ParseMessageMeta(e.Frame)
	if err != nil {
		slog.Error("dropping malformed join echo", "clientID", e.ClientID, "error", err)
		return
	}
	status := meta.Status
	if status == "" {
		status = protocol.StatusSuccess
	}

	var body map[string]any
	if c := h.characters.Get(client.CharacterID); c.ID != 0 {
		body = protocol.CharacterBody(c)
	}

	resp, err := protocol.BuildResponse(protocol.EventJoinGame, e.ClientID, status, meta.Message, body)
	if err != nil {
		slog.Error("encoding join response failed", "error", err)
		return
	}
	_ = h.sender.SendToClient(client.Conn, resp)
}

func (h *Handler) handleConnectedChunk(e event.Event) {
	if err := h.chunk.Send(e.Frame); err != nil {
		slog.Error("forwarding character list request failed", "clientID", e.ClientID, "error", err)
	}
}

// handleConnectedClient relays the chunk's character list to the client
// that asked for it.
func (h *Handler) handleConnectedClient(e event.Event) {
	client := h.clients.Get(e.ClientID)
	if client.ID == 0 {
		slog.Error("character list for unknown client", "clientID", e.ClientID)
		return
	}

	list, err := protocol.ParseCharacterList(e.Frame)
	if err != nil {
		slog.Error("dropping malformed character list", "clientID", e.ClientID, "error", err)
		return
	}

	chars := make([]model.Character, 0, len(list))
	for _, cd := range list {
		chars = append(chars, cd.ToCharacter())
	}

	resp, err := protocol.BuildResponse(protocol.EventGetConnectedCharacters, e.ClientID,
		protocol.StatusSuccess, "", protocol.CharacterListBody(chars))
	if err != nil {
		slog.Error("encoding character list failed", "error", err)
		return
	}
	_ = h.sender.SendToClient(client.Conn, resp)
}

func (h *Handler) handleMoveChunk(e event.Event) {
	pos, ok := e.Payload.(event.PositionInfo)
	if !ok {
		slog.Error("move event with wrong payload", "clientID", e.ClientID)
		return
	}

	if !h.characters.UpdatePosition(pos.CharacterID, pos.Position) {
		slog.Error("move for uncached character dropped",
			"clientID", e.ClientID, "characterID", pos.CharacterID)
		return
	}

	if err := h.chunk.Send(e.Frame); err != nil {
		slog.Error("forwarding move to chunk failed", "clientID", e.ClientID, "error", err)
	}
}

// handleMoveClient applies a chunk-echoed move and fans it out to every
// connected client.
func (h *Handler) handleMoveClient(e event.Event) {
	pos, ok := e.Payload.(event.PositionInfo)
	if !ok {
		slog.Error("move echo with wrong payload", "clientID", e.ClientID)
		return
	}

	if !h.characters.UpdatePosition(pos.CharacterID, pos.Position) {
		slog.Error("move echo for uncached character dropped", "characterID", pos.CharacterID)
		return
	}

	c := h.characters.Get(pos.CharacterID)
	resp, err := protocol.BuildResponse(protocol.EventMoveCharacter, e.ClientID,
		protocol.StatusSuccess, "", protocol.CharacterBody(c))
	if err != nil {
		slog.Error("encoding move broadcast failed", "error", err)
		return
	}
	h.sender.Broadcast(resp)
}

// handleSpawnZones tops up the requested zones and answers with the full
// zone and mob listing.
func (h *Handler) handleSpawnZones(e event.Event) {
	info, ok := e.Payload.(event.SpawnZoneInfo)
	if !ok {
		slog.Error("spawn event with wrong payload", "clientID", e.ClientID)
		return
	}

	zoneIDs := h.zones.ZoneIDs()
	if info.ZoneID != 0 {
		zoneIDs = []int32{info.ZoneID}
	}

	zones := make([]map[string]any, 0, len(zoneIDs))
	for _, id := range zoneIDs {
		h.zones.SpawnMobsInZone(id)
		zones = append(zones, protocol.SpawnZoneBody(h.zones.Zone(id), h.zones.MobsInZone(id)))
	}

	resp, err := protocol.BuildResponse(protocol.EventGetSpawnZones, e.ClientID,
		protocol.StatusSuccess, "", map[string]any{"spawnZones": zones})
	if err != nil {
		slog.Error("encoding spawn zones failed", "error", err)
		return
	}
	_ = h.sender.SendToClient(e.Conn, resp)
}

// handleDisconnect flushes and evicts the departing client's character,
// then forgets the client. Runs for authenticated and anonymous sockets
// alike; the latter have nothing to clean up.
func (h *Handler) handleDisconnect(ctx context.Context, e event.Event) {
	client := h.clients.Get(e.ClientID)
	if client.ID == 0 && e.Conn != nil {
		client = h.clients.GetByConn(e.Conn)
	}
	if client.ID == 0 {
		return
	}

	if c := h.characters.Get(client.CharacterID); c.ID != 0 {
		if err := h.store.Save(ctx, c); err != nil {
			// The entry is going away, so this state is lost unless the
			// periodic flush already caught it. Log loudly.
			slog.Error("final character flush failed",
				"clientID", client.ID, "characterID", c.ID, "error", err)
		}
		h.characters.Remove(c.ID)
	}

	h.clients.Remove(client.ID)
	slog.Info("client disconnected", "clientID", client.ID)
}

// handleRegisterChunk records the peer's region in the chunk registry so the
// gateway knows which world box the link simulates.
func (h *Handler) handleRegisterChunk(e event.Event) {
	info, ok := e.Payload.(event.ChunkInfo)
	if !ok {
		slog.Error("chunk registration with wrong payload")
		return
	}
	h.chunks.Upsert(info.Chunk)
	slog.Info("chunk server registered",
		"chunkID", info.Chunk.ID,
		"pos", []float32{info.Chunk.PosX, info.Chunk.PosY, info.Chunk.PosZ},
		"size", []float32{info.Chunk.SizeX, info.Chunk.SizeY, info.Chunk.SizeZ})
}

func (h *Handler) handleDisconnectChunk(e event.Event) {
	req, err := protocol.BuildRequest(protocol.EventDisconnectClient, e.ClientID, "", nil)
	if err != nil {
		slog.Error("encoding chunk disconnect failed", "error", err)
		return
	}
	if err := h.chunk.Send(req); err != nil {
		slog.Error("forwarding disconnect to chunk failed", "clientID", e.ClientID, "error", err)
	}
}
