package spawn

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/udisondev/mmogate/internal/model"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1337))
}

func testZone(zoneID int32, spawnCount int32) *model.SpawnZone {
	return &model.SpawnZone{
		ZoneID:        zoneID,
		Name:          "test zone",
		Center:        model.NewPosition(0, 0, 0, 0),
		Size:          model.NewPosition(1000, 1000, 0, 0),
		MobTemplateID: 5,
		SpawnCount:    spawnCount,
	}
}

func testTemplate() model.MobTemplate {
	return model.MobTemplate{
		ID:         5,
		Name:       "Gremlin",
		Level:      3,
		Race:       "fairy",
		HP:         60,
		MP:         20,
		Aggressive: false,
		Attributes: map[string]int32{"patk": 9},
	}
}

func newTestManager(t *testing.T, zones ...*model.SpawnZone) *Manager {
	t.Helper()
	m := NewManager(testRNG())
	m.AddTemplate(testTemplate())
	for _, z := range zones {
		m.AddZone(z)
	}
	return m
}

func TestSpawnMobsInZone(t *testing.T) {
	m := newTestManager(t, testZone(1, 3))

	created := m.SpawnMobsInZone(1)
	if created != 3 {
		t.Fatalf("expected 3 mobs created, got %d", created)
	}

	mobs := m.MobsInZone(1)
	if len(mobs) != 3 {
		t.Fatalf("expected 3 live mobs, got %d", len(mobs))
	}

	for _, mob := range mobs {
		if math.Abs(float64(mob.Position.X)) > 500 || math.Abs(float64(mob.Position.Y)) > 500 {
			t.Errorf("mob %s outside zone box: (%f, %f)", mob.UID, mob.Position.X, mob.Position.Y)
		}
		if mob.Position.Z != 200 {
			t.Errorf("mob %s not on spawn layer: z=%f", mob.UID, mob.Position.Z)
		}
		if mob.Position.RotZ < 0 || mob.Position.RotZ >= 360 {
			t.Errorf("mob %s rotation out of range: %f", mob.UID, mob.Position.RotZ)
		}
		if mob.TemplateID != 5 || mob.Name != "Gremlin" {
			t.Errorf("mob %s not cloned from template: %+v", mob.UID, mob)
		}
		if mob.StepMultiplier < 1.2 || mob.StepMultiplier > 3.0 {
			t.Errorf("mob %s step multiplier out of range: %f", mob.UID, mob.StepMultiplier)
		}
	}
}

func TestSpawnNeverExceedsCount(t *testing.T) {
	m := newTestManager(t, testZone(1, 3))

	m.SpawnMobsInZone(1)
	if again := m.SpawnMobsInZone(1); again != 0 {
		t.Errorf("full zone spawned %d extra mobs", again)
	}

	z := m.Zone(1)
	if z.SpawnedCount != 3 {
		t.Errorf("expected SpawnedCount 3, got %d", z.SpawnedCount)
	}
	if len(z.SpawnedMobUIDs) != 3 {
		t.Errorf("expected 3 uids, got %d", len(z.SpawnedMobUIDs))
	}
}

func TestSpawnConcurrentCallersNoOverSpawn(t *testing.T) {
	m := newTestManager(t, testZone(1, 10))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.SpawnMobsInZone(1)
		}()
	}
	wg.Wait()

	z := m.Zone(1)
	if z.SpawnedCount != 10 {
		t.Errorf("expected exactly 10 mobs after concurrent spawns, got %d", z.SpawnedCount)
	}
	if m.LiveMobCount() != 10 {
		t.Errorf("expected 10 live mobs, got %d", m.LiveMobCount())
	}
}

func TestUIDUniquenessAcrossZones(t *testing.T) {
	zones := []*model.SpawnZone{testZone(1, 20), testZone(2, 20), testZone(3, 20)}
	m := newTestManager(t, zones...)

	m.SpawnAll()

	seen := make(map[string]int32)
	for _, z := range zones {
		for _, mob := range m.MobsInZone(z.ZoneID) {
			if prev, dup := seen[mob.UID]; dup {
				t.Fatalf("uid %s spawned in both zone %d and zone %d", mob.UID, prev, z.ZoneID)
			}
			seen[mob.UID] = z.ZoneID
		}
	}
	if len(seen) != 60 {
		t.Errorf("expected 60 unique uids, got %d", len(seen))
	}
}

func TestMobDied(t *testing.T) {
	m := newTestManager(t, testZone(1, 3))
	m.SpawnMobsInZone(1)

	mobs := m.MobsInZone(1)
	if !m.MobDied(1, mobs[0].UID) {
		t.Fatal("MobDied returned false for live mob")
	}

	z := m.Zone(1)
	if z.SpawnedCount != 2 {
		t.Errorf("expected SpawnedCount 2 after death, got %d", z.SpawnedCount)
	}
	if len(m.MobsInZone(1)) != 2 {
		t.Errorf("expected 2 live mobs, got %d", len(m.MobsInZone(1)))
	}

	if m.MobDied(1, mobs[0].UID) {
		t.Error("MobDied returned true for already-dead uid")
	}
	if m.MobDied(99, "nope") {
		t.Error("MobDied returned true for unknown zone")
	}
}

func TestRespawnRefillsAfterDeath(t *testing.T) {
	m := newTestManager(t, testZone(1, 3))
	m.SpawnMobsInZone(1)

	mobs := m.MobsInZone(1)
	m.MobDied(1, mobs[0].UID)
	m.MobDied(1, mobs[1].UID)

	if created := m.SpawnMobsInZone(1); created != 2 {
		t.Fatalf("expected 2 mobs respawned, got %d", created)
	}

	z := m.Zone(1)
	if z.SpawnedCount != 3 {
		t.Errorf("expected full zone after respawn, got %d", z.SpawnedCount)
	}
}

func TestSpawnUnknownZoneOrTemplate(t *testing.T) {
	m := NewManager(testRNG())

	if created := m.SpawnMobsInZone(42); created != 0 {
		t.Errorf("unknown zone spawned %d mobs", created)
	}

	// Zone present but its template is not.
	m.AddZone(testZone(1, 3))
	if created := m.SpawnMobsInZone(1); created != 0 {
		t.Errorf("zone with unknown template spawned %d mobs", created)
	}
}

func TestLoadFromRepositories(t *testing.T) {
	m := NewManager(testRNG())

	zoneRepo := &stubZoneRepo{zones: []*model.SpawnZone{testZone(1, 2)}}
	tmplRepo := &stubTemplateRepo{templates: []model.MobTemplate{testTemplate()}}

	if err := m.Load(context.Background(), zoneRepo, tmplRepo); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if created := m.SpawnMobsInZone(1); created != 2 {
		t.Errorf("expected 2 mobs from loaded zone, got %d", created)
	}
}

type stubZoneRepo struct {
	zones []*model.SpawnZone
}

func (s *stubZoneRepo) LoadAll(context.Context) ([]*model.SpawnZone, error) {
	return s.zones, nil
}

type stubTemplateRepo struct {
	templates []model.MobTemplate
}

func (s *stubTemplateRepo) LoadAll(context.Context) ([]model.MobTemplate, error) {
	return s.templates, nil
}
