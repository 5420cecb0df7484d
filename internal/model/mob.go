package model

import "time"

// Mob is an AI-controlled entity materialized inside a spawn zone from a
// MobTemplate. Owned by its zone; the zone manager hands out value copies
// only, so a mob escaping the manager lock is always a snapshot.
type Mob struct {
	UID        string
	TemplateID int32
	ZoneID     int32
	Name       string
	Level      int32
	Race       string
	HP         int32
	MP         int32
	MaxHP      int32
	MaxMP      int32
	Aggressive bool
	Dead       bool

	Position Position

	// Wander state. NextMoveTime zero means the mob has not been seeded
	// with an initial wander delay yet. MovementDirection is the heading
	// of the last accepted step in degrees.
	NextMoveTime      time.Time
	MovementDirection float32
	StepMultiplier    float64
	SpeedMultiplier   float64

	Attributes map[string]int32
}

// Clone returns a deep copy safe to hand across the zone-manager boundary.
func (m *Mob) Clone() Mob {
	cp := *m
	if m.Attributes != nil {
		cp.Attributes = make(map[string]int32, len(m.Attributes))
		for k, v := range m.Attributes {
			cp.Attributes[k] = v
		}
	}
	return cp
}
