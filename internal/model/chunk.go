package model

import "net"

// Chunk is a registered chunk-server peer: the world region it simulates
// plus the live socket to reach it. Indexed by ID and by socket.
type Chunk struct {
	ID   int64
	IP   string
	Port int

	PosX  float32
	PosY  float32
	PosZ  float32
	SizeX float32
	SizeY float32
	SizeZ float32

	Conn net.Conn
}
