package keeper

// Ownership is what the keeper last observed about the clipboard selection.
type Ownership int32

const (
	Unowned Ownership = iota
	OwnedByPeer
	OwnedBySelf
)

func (o Ownership) String() string {
	switch o {
	case Unowned:
		return "unowned"
	case OwnedByPeer:
		return "peer"
	case OwnedBySelf:
		return "self"
	default:
		return "unknown"
	}
}
