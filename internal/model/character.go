package model

// Character is a player-controlled entity cached by the gateway while its
// owner is online. Loaded from the database on join, mutated by handlers,
// flushed back by the periodic persistence task and on disconnect.
//
// Not self-synchronized: the character cache guards access with its own lock
// and hands copies across goroutine boundaries.
type Character struct {
	ID       int64
	OwnerID  int64
	Name     string
	Class    string
	Race     string
	Level    int32
	Exp      int64
	HP       int32
	MP       int32
	MaxHP    int32
	MaxMP    int32
	Position Position

	Attributes map[string]int32
	Skills     []CharacterSkill

	// Write-back bookkeeping. Dirty marks the row for the next flush;
	// Version advances on every mutation so a flush that raced with a
	// newer write does not clear the flag (no lost updates).
	Dirty   bool
	Version uint64
}

// CharacterSkill is one learned skill row.
type CharacterSkill struct {
	SkillID int32
	Level   int32
	Name    string
}

// Clone returns a deep copy safe to hand to another goroutine.
func (c *Character) Clone() Character {
	cp := *c
	if c.Attributes != nil {
		cp.Attributes = make(map[string]int32, len(c.Attributes))
		for k, v := range c.Attributes {
			cp.Attributes[k] = v
		}
	}
	if c.Skills != nil {
		cp.Skills = make([]CharacterSkill, len(c.Skills))
		copy(cp.Skills, c.Skills)
	}
	return cp
}
