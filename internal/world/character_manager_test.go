package world

import (
	"testing"

	"github.com/udisondev/mmogate/internal/model"
)

func testCharacter(id int64) model.Character {
	return model.Character{
		ID:    id,
		Name:  "Tester",
		Class: "mage",
		Race:  "human",
		Level: 10,
		HP:    100,
		MP:    50,
		MaxHP: 120,
		MaxMP: 60,
		Position: model.Position{
			X: 1, Y: 2, Z: 3,
		},
		Attributes: map[string]int32{"STR": 10},
	}
}

func TestCharacterManagerGetMissing(t *testing.T) {
	m := NewCharacterManager()

	c := m.Get(42)
	if c.ID != 0 {
		t.Errorf("expected zero character for miss, got ID=%d", c.ID)
	}
}

func TestCharacterManagerUpsertGet(t *testing.T) {
	m := NewCharacterManager()
	m.Upsert(testCharacter(7))

	c := m.Get(7)
	if c.ID != 7 {
		t.Fatalf("expected character 7, got %d", c.ID)
	}
	if c.Name != "Tester" {
		t.Errorf("expected name Tester, got %q", c.Name)
	}
	if m.Count() != 1 {
		t.Errorf("expected count 1, got %d", m.Count())
	}
}

func TestCharacterManagerGetReturnsCopy(t *testing.T) {
	m := NewCharacterManager()
	m.Upsert(testCharacter(7))

	c := m.Get(7)
	c.Attributes["STR"] = 999
	c.Position.X = 500

	again := m.Get(7)
	if again.Attributes["STR"] != 10 {
		t.Errorf("mutating a returned copy leaked into the cache: STR=%d", again.Attributes["STR"])
	}
	if again.Position.X != 1 {
		t.Errorf("mutating a returned copy leaked into the cache: X=%f", again.Position.X)
	}
}

func TestCharacterManagerUpdatePosition(t *testing.T) {
	m := NewCharacterManager()
	m.Upsert(testCharacter(7))

	pos := model.NewPosition(10, 11, 12, 90)
	if !m.UpdatePosition(7, pos) {
		t.Fatal("UpdatePosition returned false for cached character")
	}

	c := m.Get(7)
	if c.Position != pos {
		t.Errorf("expected position %+v, got %+v", pos, c.Position)
	}
	if !c.Dirty {
		t.Error("expected character dirty after position update")
	}

	if m.UpdatePosition(99, pos) {
		t.Error("UpdatePosition returned true for unknown character")
	}
}

func TestCharacterManagerDirtyFlushCycle(t *testing.T) {
	m := NewCharacterManager()
	m.Upsert(testCharacter(7))

	if got := m.DirtySnapshot(); len(got) != 0 {
		t.Fatalf("fresh entry must start clean, got %d dirty rows", len(got))
	}

	m.UpdatePosition(7, model.NewPosition(10, 11, 12, 0))

	dirty := m.DirtySnapshot()
	if len(dirty) != 1 {
		t.Fatalf("expected 1 dirty row, got %d", len(dirty))
	}

	m.ClearDirty(7, dirty[0].Version)
	if got := m.DirtySnapshot(); len(got) != 0 {
		t.Errorf("expected no dirty rows after ClearDirty, got %d", len(got))
	}
}

// A flush racing a newer mutation must not clear the flag: the later write
// would otherwise never reach the database.
func TestCharacterManagerNoLostUpdate(t *testing.T) {
	m := NewCharacterManager()
	m.Upsert(testCharacter(7))
	m.UpdatePosition(7, model.NewPosition(10, 11, 12, 0))

	dirty := m.DirtySnapshot()
	if len(dirty) != 1 {
		t.Fatalf("expected 1 dirty row, got %d", len(dirty))
	}

	// Mutation lands between snapshot and flush completion.
	m.UpdatePosition(7, model.NewPosition(20, 21, 22, 0))

	m.ClearDirty(7, dirty[0].Version)

	stillDirty := m.DirtySnapshot()
	if len(stillDirty) != 1 {
		t.Fatalf("row mutated after snapshot must stay dirty, got %d dirty rows", len(stillDirty))
	}
	if stillDirty[0].Position.X != 20 {
		t.Errorf("expected newest position to survive, got X=%f", stillDirty[0].Position.X)
	}
}

func TestCharacterManagerMutate(t *testing.T) {
	m := NewCharacterManager()
	m.Upsert(testCharacter(7))

	ok := m.Mutate(7, func(c *model.Character) {
		c.Level = 11
		c.Exp = 5000
	})
	if !ok {
		t.Fatal("Mutate returned false for cached character")
	}

	c := m.Get(7)
	if c.Level != 11 || c.Exp != 5000 {
		t.Errorf("expected level 11 exp 5000, got %d %d", c.Level, c.Exp)
	}
	if !c.Dirty {
		t.Error("expected character dirty after Mutate")
	}

	if m.Mutate(99, func(*model.Character) {}) {
		t.Error("Mutate returned true for unknown character")
	}
}

func TestCharacterManagerRemove(t *testing.T) {
	m := NewCharacterManager()
	m.Upsert(testCharacter(7))
	m.Remove(7)

	if c := m.Get(7); c.ID != 0 {
		t.Errorf("expected miss after Remove, got ID=%d", c.ID)
	}
	if m.Count() != 0 {
		t.Errorf("expected count 0, got %d", m.Count())
	}
}
