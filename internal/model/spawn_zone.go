package model

import "time"

// SpawnZone is an axis-aligned box that owns a population of mobs.
// Center and Size describe the box: mobs live inside [Center ± Size/2]
// on the XY plane. Invariant maintained by the zone manager:
// 0 <= SpawnedCount <= SpawnCount and SpawnedCount == len(SpawnedMobs).
type SpawnZone struct {
	ZoneID        int32
	Name          string
	Center        Position
	Size          Position
	MobTemplateID int32
	SpawnCount    int32
	SpawnedCount  int32
	RespawnTime   time.Duration

	SpawnedMobs    []*Mob
	SpawnedMobUIDs []string
}

// FreeSlots returns how many mobs the zone may still materialize.
func (z *SpawnZone) FreeSlots() int32 {
	free := z.SpawnCount - z.SpawnedCount
	if free < 0 {
		return 0
	}
	return free
}

// Contains reports whether p lies inside the zone box on the XY plane.
func (z *SpawnZone) Contains(p Position) bool {
	halfX := z.Size.X / 2
	halfY := z.Size.Y / 2
	dx := p.X - z.Center.X
	dy := p.Y - z.Center.Y
	return dx >= -halfX && dx <= halfX && dy >= -halfY && dy <= halfY
}

// MobByUID returns the zone's live mob with the given uid, or nil.
func (z *SpawnZone) MobByUID(uid string) *Mob {
	for _, m := range z.SpawnedMobs {
		if m.UID == uid {
			return m
		}
	}
	return nil
}
