// Package ringbuffer provides address arithmetic for the circular
// profile memory region of the dive computer. All offset calculations
// in the driver go through these helpers rather than ad hoc pointer
// subtraction.
package ringbuffer

// Distance returns the forward circular distance from a to b within
// the window [begin, end). Both addresses must lie inside the window.
// Distance(a, a) is zero.
func Distance(a, b, begin, end uint) uint {
	size := end - begin
	if b >= a {
		return b - a
	}
	return b + size - a
}

// Contains reports whether addr lies inside the window [begin, end).
func Contains(addr, begin, end uint) bool {
	return addr >= begin && addr < end
}
