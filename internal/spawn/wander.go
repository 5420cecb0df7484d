package spawn

import (
	"math"
	"time"

	"github.com/udisondev/mmogate/internal/model"
)

// Wander tuning. Step length scales with the per-mob multiplier and a fresh
// jitter sample, clamped so mobs neither crawl nor teleport. Candidate
// headings near a border pull back toward the zone centre.
const (
	wanderBaseSpeed = 110.0
	wanderMinStep   = 120.0
	wanderMaxStep   = 450.0

	minSeparation = 140.0

	borderBias     = 0.25
	maxCandidates  = 4
	minMoveDelay   = 7 * time.Second
	spawnSeedShort = 5  // seconds, initial U(0,5)
	spawnSeedLong  = 30 // seconds, initial 10 + U(0,30)
)

// MoveMobsInZone advances every due mob in the zone by one wander step.
// Call on a fixed cadence; mobs keep their own next-move times so the
// population drifts rather than marches. Returns how many mobs moved.
//
// Guarantees on return: every stepped mob is still inside the zone box, and
// any two mobs closer than the separation floor did not both step.
func (m *Manager) MoveMobsInZone(zoneID int32) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return 0
	}

	now := m.now()
	moved := 0
	for _, mob := range z.SpawnedMobs {
		if mob.Dead {
			continue
		}
		if mob.NextMoveTime.IsZero() {
			// Fresh mob: stagger its first step so a whole zone spawned in
			// one tick does not lurch in unison.
			delay := time.Duration(uniform(m.rng, 0, spawnSeedShort)*float64(time.Second)) +
				10*time.Second +
				time.Duration(uniform(m.rng, 0, spawnSeedLong)*float64(time.Second))
			mob.NextMoveTime = now.Add(delay)
			continue
		}
		if now.Before(mob.NextMoveTime) {
			continue
		}
		if m.stepMob(z, mob, now) {
			moved++
		}
	}
	return moved
}

// stepMob proposes candidate headings and commits the first that stays in
// the box and clear of other mobs. Falls back to blending the current
// heading with the last rejected candidate; a step that still collides is
// skipped entirely.
func (m *Manager) stepMob(z *model.SpawnZone, mob *model.Mob, now time.Time) bool {
	step := wanderBaseSpeed * mob.StepMultiplier * uniform(m.rng, 0.85, 1.2)
	maxStep := math.Min(0.08*float64(z.Size.X+z.Size.Y), wanderMaxStep)
	step = clamp(step, wanderMinStep, maxStep)

	var lastHeading float64
	accepted := false
	var target model.Position

	for i := 0; i < maxCandidates; i++ {
		heading := m.candidateHeading(z, mob.Position)
		lastHeading = heading

		cand := advance(mob.Position, heading, step)
		if z.Contains(cand) && m.clearOfOthers(z, mob.UID, cand) {
			target = cand
			accepted = true
			break
		}
	}

	if !accepted {
		// Blend where the mob was going with where it last tried to go and
		// force the result back into the box.
		mix := uniform(m.rng, 0.2, 0.6)
		heading := float64(mob.MovementDirection)*(1-mix) + lastHeading*mix
		cand := clampToZone(z, advance(mob.Position, heading, step))
		if !m.clearOfOthers(z, mob.UID, cand) {
			// Too crowded this tick. Try again later.
			mob.NextMoveTime = now.Add(m.nextMoveDelay(mob))
			return false
		}
		target = cand
	}

	dx := float64(target.X - mob.Position.X)
	dy := float64(target.Y - mob.Position.Y)
	rot := math.Atan2(dy, dx)*180/math.Pi + uniform(m.rng, -5, 5)

	mob.MovementDirection = float32(math.Atan2(dy, dx) * 180 / math.Pi)
	mob.Position = model.NewPosition(target.X, target.Y, mob.Position.Z, float32(rot))
	mob.NextMoveTime = now.Add(m.nextMoveDelay(mob))
	return true
}

// candidateHeading samples a direction for the next step. Within the border
// band the heading points back toward the centre with a wide random offset;
// in the open it is uniform.
func (m *Manager) candidateHeading(z *model.SpawnZone, pos model.Position) float64 {
	threshold := borderBias * float64(max32(z.Size.X, z.Size.Y))

	distToEdgeX := float64(z.Size.X)/2 - math.Abs(float64(pos.X-z.Center.X))
	distToEdgeY := float64(z.Size.Y)/2 - math.Abs(float64(pos.Y-z.Center.Y))

	if distToEdgeX < threshold || distToEdgeY < threshold {
		offset := uniform(m.rng, 30, 100)
		if m.rng.IntN(2) == 0 {
			offset = -offset
		}
		return pos.HeadingTo(z.Center) + offset
	}
	return uniform(m.rng, 0, 360)
}

// clearOfOthers reports whether p keeps the separation floor from every
// other live mob in the zone.
func (m *Manager) clearOfOthers(z *model.SpawnZone, uid string, p model.Position) bool {
	for _, other := range z.SpawnedMobs {
		if other.UID == uid || other.Dead {
			continue
		}
		if other.Position.PlanarDistance(p) < minSeparation {
			return false
		}
	}
	return true
}

// nextMoveDelay spaces out steps: faster mobs come back sooner, nobody
// returns in under the floor delay.
func (m *Manager) nextMoveDelay(mob *model.Mob) time.Duration {
	base := uniform(m.rng, 12, 28) / mob.SpeedMultiplier
	d := time.Duration(base * float64(time.Second))
	if d < minMoveDelay {
		d = minMoveDelay
	}
	return d
}

// advance moves p by step along heading (degrees) in the XY plane.
func advance(p model.Position, heading, step float64) model.Position {
	rad := heading * math.Pi / 180
	p.X += float32(math.Cos(rad) * step)
	p.Y += float32(math.Sin(rad) * step)
	return p
}

// clampToZone forces p inside the zone box.
func clampToZone(z *model.SpawnZone, p model.Position) model.Position {
	halfX := z.Size.X / 2
	halfY := z.Size.Y / 2
	p.X = float32(clamp(float64(p.X), float64(z.Center.X-halfX), float64(z.Center.X+halfX)))
	p.Y = float32(clamp(float64(p.Y), float64(z.Center.Y-halfY), float64(z.Center.Y+halfY)))
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
