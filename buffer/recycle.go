package buffer

// RecycleSlice zeroes every byte of b in place so that a pooled buffer
// never leaks key material or plaintext from a prior frame into the next
// read.
func RecycleSlice(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
