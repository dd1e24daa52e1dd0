package stream

import "fmt"

// Handle is a wire handle: the identifier a TC_REFERENCE points at.
type Handle int32

// NoHandle marks a class that has not been assigned a handle yet.
const NoHandle Handle = -1

// Hex renders the handle as four space-separated hex bytes.
func (h Handle) Hex() string {
	u := uint32(h)
	return fmt.Sprintf("%02x %02x %02x %02x", byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

func (h Handle) String() string {
	return "0x" + h.Hex()
}

// handleAllocator issues handles in increasing order starting at
// BaseHandle. Every allocation is announced through onAlloc.
type handleAllocator struct {
	next    Handle
	onAlloc func(Handle)
}

func newHandleAllocator(onAlloc func(Handle)) *handleAllocator {
	return &handleAllocator{next: BaseHandle, onAlloc: onAlloc}
}

func (a *handleAllocator) allocate() Handle {
	h := a.next
	if a.onAlloc != nil {
		a.onAlloc(h)
	}
	a.next++
	return h
}
