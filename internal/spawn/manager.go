package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/mmogate/internal/model"
)

// ZoneRepository loads the spawn zone reference rows.
type ZoneRepository interface {
	LoadAll(ctx context.Context) ([]*model.SpawnZone, error)
}

// TemplateRepository loads the mob blueprint rows.
type TemplateRepository interface {
	LoadAll(ctx context.Context) ([]model.MobTemplate, error)
}

// Manager owns every spawn zone and the mobs inside them. All spawn, step
// and death operations run under one write lock, so a zone can never
// over-spawn no matter how many callers race. Mobs leave the manager as
// value copies only.
type Manager struct {
	mu        sync.RWMutex
	zones     map[int32]*model.SpawnZone
	templates map[int32]model.MobTemplate

	rng *rand.Rand
	now func() time.Time

	uidCounter atomic.Uint64
}

// NewManager creates an empty manager stepping with the given RNG. Pass a
// fixed-seed PCG in tests for reproducible wander.
func NewManager(rng *rand.Rand) *Manager {
	return &Manager{
		zones:     make(map[int32]*model.SpawnZone),
		templates: make(map[int32]model.MobTemplate),
		rng:       rng,
		now:       time.Now,
	}
}

// Load populates zones and templates from the database. Called once at
// startup; zones arrive with an empty mob population.
func (m *Manager) Load(ctx context.Context, zoneRepo ZoneRepository, tmplRepo TemplateRepository) error {
	zones, err := zoneRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading spawn zones: %w", err)
	}
	templates, err := tmplRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading mob templates: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range templates {
		m.templates[t.ID] = t
	}
	for _, z := range zones {
		m.zones[z.ZoneID] = z
	}

	slog.Info("spawn zones loaded", "zones", len(zones), "templates", len(templates))
	return nil
}

// AddZone registers a zone directly. Used by tests and development seeds.
func (m *Manager) AddZone(z *model.SpawnZone) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones[z.ZoneID] = z
}

// AddTemplate registers a mob blueprint directly.
func (m *Manager) AddTemplate(t model.MobTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[t.ID] = t
}

// ZoneIDs returns every registered zone id.
func (m *Manager) ZoneIDs() []int32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]int32, 0, len(m.zones))
	for id := range m.zones {
		out = append(out, id)
	}
	return out
}

// Zone returns a snapshot of the zone without its mob population, or a zero
// SpawnZone (ZoneID == 0) when unknown.
func (m *Manager) Zone(zoneID int32) model.SpawnZone {
	m.mu.RLock()
	defer m.mu.RUnlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return model.SpawnZone{}
	}
	cp := *z
	cp.SpawnedMobs = nil
	cp.SpawnedMobUIDs = append([]string(nil), z.SpawnedMobUIDs...)
	return cp
}

// MobsInZone returns value copies of the zone's live mobs.
func (m *Manager) MobsInZone(zoneID int32) []model.Mob {
	m.mu.RLock()
	defer m.mu.RUnlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return nil
	}
	out := make([]model.Mob, 0, len(z.SpawnedMobs))
	for _, mob := range z.SpawnedMobs {
		out = append(out, mob.Clone())
	}
	return out
}

// LiveMobCount returns the number of live mobs across all zones.
func (m *Manager) LiveMobCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, z := range m.zones {
		total += len(z.SpawnedMobs)
	}
	return total
}

// SpawnMobsInZone materialises mobs until the zone is full. Each mob clones
// its template, lands uniformly inside the box on the fixed z=200 world
// layer with a uniform facing, and gets a globally unique uid. Returns the
// number of mobs created.
func (m *Manager) SpawnMobsInZone(zoneID int32) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		slog.Error("spawn requested for unknown zone", "zoneID", zoneID)
		return 0
	}

	tmpl, ok := m.templates[z.MobTemplateID]
	if !ok {
		slog.Error("zone references unknown mob template",
			"zoneID", zoneID, "templateID", z.MobTemplateID)
		return 0
	}

	created := 0
	for z.FreeSlots() > 0 {
		mob := m.materialise(z, tmpl)
		z.SpawnedMobs = append(z.SpawnedMobs, mob)
		z.SpawnedMobUIDs = append(z.SpawnedMobUIDs, mob.UID)
		z.SpawnedCount++
		created++
	}

	if created > 0 {
		slog.Debug("mobs spawned", "zoneID", zoneID, "created", created, "total", z.SpawnedCount)
	}
	return created
}

// SpawnAll tops up every zone. Returns the total number of mobs created.
func (m *Manager) SpawnAll() int {
	total := 0
	for _, id := range m.ZoneIDs() {
		total += m.SpawnMobsInZone(id)
	}
	return total
}

// spawnLayerZ is the fixed world layer mobs materialise on.
const spawnLayerZ = 200

func (m *Manager) materialise(z *model.SpawnZone, tmpl model.MobTemplate) *model.Mob {
	x := z.Center.X + (m.rng.Float32()-0.5)*z.Size.X
	y := z.Center.Y + (m.rng.Float32()-0.5)*z.Size.Y
	rot := m.rng.Float32() * 360

	mob := &model.Mob{
		UID:             m.nextUID(tmpl.ID, z.ZoneID),
		TemplateID:      tmpl.ID,
		ZoneID:          z.ZoneID,
		Name:            tmpl.Name,
		Level:           tmpl.Level,
		Race:            tmpl.Race,
		HP:              tmpl.HP,
		MP:              tmpl.MP,
		MaxHP:           tmpl.HP,
		MaxMP:           tmpl.MP,
		Aggressive:      tmpl.Aggressive,
		Position:        model.NewPosition(x, y, spawnLayerZ, rot),
		StepMultiplier:  uniform(m.rng, 1.2, 3.0),
		SpeedMultiplier: uniform(m.rng, 0.8, 1.5),
	}
	if tmpl.Attributes != nil {
		mob.Attributes = make(map[string]int32, len(tmpl.Attributes))
		for k, v := range tmpl.Attributes {
			mob.Attributes[k] = v
		}
	}
	return mob
}

// nextUID builds "<templateID>_<key>" where key folds the zone id, a
// millisecond timestamp and a process-wide counter. The counter keeps uids
// unique when many mobs materialise within one millisecond.
func (m *Manager) nextUID(templateID, zoneID int32) string {
	key := m.uidCounter.Add(1)
	return fmt.Sprintf("%d_%d%d%d", templateID, zoneID, m.now().UnixMilli(), key)
}

// MobDied removes the mob and frees its slot. The respawn task refills the
// zone on its next pass. Returns false when the uid is not live.
func (m *Manager) MobDied(zoneID int32, uid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return false
	}

	for i, mob := range z.SpawnedMobs {
		if mob.UID != uid {
			continue
		}
		mob.Dead = true
		z.SpawnedMobs = append(z.SpawnedMobs[:i], z.SpawnedMobs[i+1:]...)
		z.SpawnedMobUIDs = append(z.SpawnedMobUIDs[:i], z.SpawnedMobUIDs[i+1:]...)
		z.SpawnedCount--
		slog.Debug("mob died", "zoneID", zoneID, "uid", uid, "remaining", z.SpawnedCount)
		return true
	}
	return false
}

// uniform samples U(lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
