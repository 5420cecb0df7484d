package integration

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/udisondev/mmogate/internal/db"
	"github.com/udisondev/mmogate/internal/spawn"
	"github.com/udisondev/mmogate/internal/world"
)

// ReferenceDataSuite covers the startup reference load: items, npcs, mob
// templates, loot and spawn zones against the seeded schema.
type ReferenceDataSuite struct {
	IntegrationSuite
}

func (s *ReferenceDataSuite) TestSpawnZonesLoad() {
	repo := db.NewSpawnZoneRepository(s.db.Pool())
	zones, err := repo.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(zones, 4)

	byID := make(map[int32]bool, len(zones))
	for _, z := range zones {
		byID[z.ZoneID] = true
		s.Positive(z.SpawnCount, "zone %d", z.ZoneID)
		s.Positive(z.Size.X, "zone %d", z.ZoneID)
		s.GreaterOrEqual(z.RespawnTime, time.Minute, "zone %d", z.ZoneID)
		s.Empty(z.SpawnedMobs, "zones load with no live mobs")
	}
	for id := int32(1); id <= 4; id++ {
		s.True(byID[id], "zone %d missing", id)
	}
}

func (s *ReferenceDataSuite) TestMobTemplatesLoadWithAttributes() {
	repo := db.NewMobTemplateRepository(s.db.Pool())
	templates, err := repo.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(templates, 4)

	var gremlin, golem bool
	for _, t := range templates {
		switch t.Name {
		case "Gremlin":
			gremlin = true
			s.False(t.Aggressive)
			s.Equal(int32(9), t.Attributes["patk"])
		case "Stone Golem":
			golem = true
			s.Equal(int32(160), t.Attributes["pdef"])
		}
	}
	s.True(gremlin)
	s.True(golem)
}

func (s *ReferenceDataSuite) TestSpawnManagerLoadsFromDatabase() {
	m := spawn.NewManager(rand.New(rand.NewPCG(1, 2)))
	err := m.Load(s.ctx,
		db.NewSpawnZoneRepository(s.db.Pool()),
		db.NewMobTemplateRepository(s.db.Pool()))
	s.Require().NoError(err)
	s.Len(m.ZoneIDs(), 4)

	created := m.SpawnMobsInZone(1)
	s.Equal(12, created, "zone 1 seeds spawn_count=12")
	for _, mob := range m.MobsInZone(1) {
		s.Equal("Gremlin", mob.Name)
	}
}

func (s *ReferenceDataSuite) TestReferenceTablesLoad() {
	items, err := world.LoadItemTable(s.ctx, db.NewItemRepository(s.db.Pool()))
	s.Require().NoError(err)
	s.Equal(7, items.Count())
	s.Equal("Short Sword", items.Get(1).Name)

	npcs, err := world.LoadNpcTable(s.ctx, db.NewNpcRepository(s.db.Pool()))
	s.Require().NoError(err)
	s.Equal(4, npcs.Count())
}

func (s *ReferenceDataSuite) TestLootReferencesResolve() {
	loot, err := world.LoadLootTable(s.ctx, db.NewLootRepository(s.db.Pool()))
	s.Require().NoError(err)

	items, err := world.LoadItemTable(s.ctx, db.NewItemRepository(s.db.Pool()))
	s.Require().NoError(err)

	gremlinDrops := loot.ForMob(1)
	s.Require().NotEmpty(gremlinDrops)
	for _, entry := range gremlinDrops {
		s.NotZero(items.Get(entry.ItemID).ID,
			"loot item %d must exist in the item table", entry.ItemID)
		s.Greater(entry.Chance, float32(0))
		s.LessOrEqual(entry.MinCount, entry.MaxCount)
	}
}

func TestReferenceDataSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	t.Parallel()

	suite.Run(t, new(ReferenceDataSuite))
}
