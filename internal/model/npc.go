package model

// Npc is an interactable, typically stationary entity. Reference data:
// the full set loads at startup and never changes afterwards.
type Npc struct {
	ID       int64
	Name     string
	Title    string
	Type     string
	Level    int32
	Position Position
}
