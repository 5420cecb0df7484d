package model

import (
	"math"
	"testing"
)

func TestPosition_PlanarDistance(t *testing.T) {
	tests := []struct {
		name string
		a    Position
		b    Position
		want float64
	}{
		{
			name: "same point",
			a:    NewPosition(0, 0, 0, 0),
			b:    NewPosition(0, 0, 0, 0),
			want: 0,
		},
		{
			name: "3-4-5 triangle",
			a:    NewPosition(0, 0, 0, 0),
			b:    NewPosition(3, 4, 0, 0),
			want: 5,
		},
		{
			name: "z is ignored",
			a:    NewPosition(0, 0, 0, 0),
			b:    NewPosition(3, 4, 999, 0),
			want: 5,
		},
		{
			name: "negative coordinates",
			a:    NewPosition(-10, -10, 0, 0),
			b:    NewPosition(10, 10, 0, 0),
			want: math.Sqrt(800),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.PlanarDistance(tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("PlanarDistance() = %v, want %v", got, tt.want)
			}

			// Distance is symmetric
			gotReverse := tt.b.PlanarDistance(tt.a)
			if math.Abs(gotReverse-tt.want) > 1e-6 {
				t.Errorf("PlanarDistance() reverse = %v, want %v", gotReverse, tt.want)
			}
		})
	}
}

func TestPosition_HeadingTo(t *testing.T) {
	origin := NewPosition(0, 0, 0, 0)

	tests := []struct {
		name   string
		target Position
		want   float64
	}{
		{name: "east", target: NewPosition(10, 0, 0, 0), want: 0},
		{name: "north", target: NewPosition(0, 10, 0, 0), want: 90},
		{name: "west", target: NewPosition(-10, 0, 0, 0), want: 180},
		{name: "south normalized to [0,360)", target: NewPosition(0, -10, 0, 0), want: 270},
		{name: "north-east diagonal", target: NewPosition(10, 10, 0, 0), want: 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := origin.HeadingTo(tt.target)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("HeadingTo() = %v, want %v", got, tt.want)
			}
			if got < 0 || got >= 360 {
				t.Errorf("HeadingTo() = %v, outside [0, 360)", got)
			}
		})
	}
}

func TestPosition_WithRotation(t *testing.T) {
	original := NewPosition(1, 2, 3, 45)

	got := original.WithRotation(90)
	if got.RotZ != 90 || got.X != 1 || got.Y != 2 || got.Z != 3 {
		t.Errorf("WithRotation() = %+v, want rotation 90 with coordinates kept", got)
	}
	if original.RotZ != 45 {
		t.Errorf("WithRotation() mutated original: %+v", original)
	}
}

func TestCharacter_Clone(t *testing.T) {
	c := &Character{
		ID:         7,
		Name:       "tester",
		Level:      12,
		Position:   NewPosition(1, 2, 3, 0),
		Attributes: map[string]int32{"STR": 40, "DEX": 30},
		Skills:     []CharacterSkill{{SkillID: 1, Level: 2, Name: "slash"}},
	}

	cp := c.Clone()

	cp.Attributes["STR"] = 99
	cp.Skills[0].Level = 9
	cp.Position.X = 100

	if c.Attributes["STR"] != 40 {
		t.Errorf("Clone() shares attributes map: got STR=%d, want 40", c.Attributes["STR"])
	}
	if c.Skills[0].Level != 2 {
		t.Errorf("Clone() shares skills slice: got level=%d, want 2", c.Skills[0].Level)
	}
	if c.Position.X != 1 {
		t.Errorf("Clone() shares position: got x=%v, want 1", c.Position.X)
	}
}

func TestMob_Clone(t *testing.T) {
	m := &Mob{
		UID:        "5_1-100-1",
		TemplateID: 5,
		ZoneID:     1,
		Attributes: map[string]int32{"atk": 10},
	}

	cp := m.Clone()
	cp.Attributes["atk"] = 77

	if m.Attributes["atk"] != 10 {
		t.Errorf("Clone() shares attributes map: got atk=%d, want 10", m.Attributes["atk"])
	}
}

func TestSpawnZone_Contains(t *testing.T) {
	zone := &SpawnZone{
		ZoneID: 1,
		Center: NewPosition(0, 0, 0, 0),
		Size:   NewPosition(1000, 1000, 0, 0),
	}

	tests := []struct {
		name string
		p    Position
		want bool
	}{
		{name: "center", p: NewPosition(0, 0, 200, 0), want: true},
		{name: "on x edge", p: NewPosition(500, 0, 200, 0), want: true},
		{name: "on y edge", p: NewPosition(0, -500, 200, 0), want: true},
		{name: "outside x", p: NewPosition(500.5, 0, 200, 0), want: false},
		{name: "outside y", p: NewPosition(0, 501, 200, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := zone.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSpawnZone_FreeSlots(t *testing.T) {
	zone := &SpawnZone{SpawnCount: 3, SpawnedCount: 1}
	if got := zone.FreeSlots(); got != 2 {
		t.Errorf("FreeSlots() = %d, want 2", got)
	}

	zone.SpawnedCount = 3
	if got := zone.FreeSlots(); got != 0 {
		t.Errorf("FreeSlots() full zone = %d, want 0", got)
	}
}
