// +build gofuzz

package wire

// Fuzz exercises the opcode codec with the go-fuzz toolchain. It treats the
// first 8 bytes of data as an opcode and checks that decoding it and
// re-encoding the decoded fields round-trips, which is the same contract
// TestRoundTrip checks by hand.
func Fuzz(data []byte) int {
	if len(data) < 8 {
		return 0
	}
	op := Opcode(Uint64(data[:8]))
	if uint64(op)&(0x7f<<shiftUnuse) != 0 {
		// Encode never sets the unused bits, so such an opcode cannot
		// be rebuilt from its fields.
		return 0
	}

	again := Encode(op.Type(), op.BlockQuantity(), op.DiskNumber(), op.Failed(), op.ID())
	if again != op {
		panic("opcode did not round-trip through its own fields")
	}
	return 1
}
