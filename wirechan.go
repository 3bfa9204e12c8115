package wirechan

// Mode is the direction a channel is bound to.
type Mode uint8

const (
	ModeUnbound Mode = iota
	ModeRead
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "unbound"
	}
}

// Valid reports whether m is a direction a channel can be bound to.
func (m Mode) Valid() bool {
	return m == ModeRead || m == ModeWrite
}
