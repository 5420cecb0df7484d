package model

// MobTemplate is the reference blueprint a spawn zone clones mobs from.
// Loaded once at startup, read-only afterwards.
type MobTemplate struct {
	ID         int32
	Name       string
	Level      int32
	Race       string
	HP         int32
	MP         int32
	Aggressive bool
	Attributes map[string]int32
}
