package protocol

import "fmt"

// Direction is a block face, sent as a varint index into Directions.
type Direction int32

const (
	Down Direction = iota
	Up
	North
	South
	West
	East
)

// Directions lists the direction names in wire order.
var Directions = []string{"down", "up", "north", "south", "west", "east"}

// String returns the direction name.
func (d Direction) String() string {
	if d < 0 || int(d) >= len(Directions) {
		return fmt.Sprintf("Direction(%d)", int32(d))
	}
	return Directions[d]
}

// ParseDirection returns the direction with the given name.
func ParseDirection(name string) (Direction, error) {
	for i, n := range Directions {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, name)
}

// PackDirection encodes the named direction as its varint index.
func PackDirection(name string) ([]byte, error) {
	d, err := ParseDirection(name)
	if err != nil {
		return nil, err
	}
	return PackVarInt(int32(d)), nil
}

// UnpackDirection reads a direction index and returns its name.
func (b *Buffer) UnpackDirection() (string, error) {
	start := b.pos
	i, err := b.UnpackVarInt()
	if err != nil {
		return "", err
	}
	if i < 0 || int(i) >= len(Directions) {
		b.pos = start
		return "", rangeErr("direction", int64(i), 0, int64(len(Directions)-1))
	}
	return Directions[i], nil
}
