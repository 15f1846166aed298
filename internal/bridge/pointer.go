package bridge

import (
	"fmt"
	"sort"
)

// Farmer is the storage node holding a shard.
type Farmer struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
	NodeID  string `json:"nodeID"`
}

// Pointer describes where one shard of a file lives and how to fetch it.
type Pointer struct {
	Index  int    `json:"index"`
	Hash   string `json:"hash"`
	Size   int64  `json:"size"`
	Token  string `json:"token"`
	Farmer Farmer `json:"farmer"`
	// Data is an inline data: URL used instead of a farmer when set.
	Data string `json:"data,omitempty"`
}

// PointerList is ordered by Index; reconstruction must follow that order.
type PointerList []Pointer

// TotalSize sums the shard sizes.
func (l PointerList) TotalSize() int64 {
	var n int64
	for _, p := range l {
		n += p.Size
	}
	return n
}

// normalize sorts the list by index and rejects duplicates and gaps.
func (l PointerList) normalize() (PointerList, error) {
	out := make(PointerList, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	for i, p := range out {
		if p.Index != i {
			return nil, fmt.Errorf("%w: pointer index %d at position %d", ErrMalformedReply, p.Index, i)
		}
		if p.Size < 0 {
			return nil, fmt.Errorf("%w: pointer %d has negative size", ErrMalformedReply, p.Index)
		}
	}
	return out, nil
}
