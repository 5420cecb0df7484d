package model

// LootEntry links a mob template to an item it may drop. Reference data.
type LootEntry struct {
	ID            int64
	MobTemplateID int32
	ItemID        int64
	Chance        float32
	MinCount      int32
	MaxCount      int32
}
