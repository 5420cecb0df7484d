package model

// ItemTemplate is one row of the item reference table. Read-only after the
// startup load.
type ItemTemplate struct {
	ID     int64
	Name   string
	Type   string
	Grade  string
	Weight int32
	Price  int64
}
