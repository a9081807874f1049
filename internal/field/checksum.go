package field

// spaceSum is the contribution of the checksum field when each of its bytes
// is taken as an ASCII space.
const spaceSum = uint64(' ') * 8

// ComputeChecksum returns the header checksum of block: the unsigned sum of
// all bytes, with the checksum field counted as eight ASCII spaces.
//
// Sums wrap on overflow.
func ComputeChecksum(block []byte) uint64 {
	var sum uint64
	for i, c := range block {
		if i >= Checksum.Offset && i < Checksum.End() {
			continue
		}
		sum += uint64(c)
	}
	return sum + spaceSum
}

// VerifyChecksum decodes the embedded checksum of block and reports whether
// it matches ComputeChecksum. Decode errors of the checksum field itself are
// returned unchanged.
func VerifyChecksum(block []byte) (bool, error) {
	want, err := Octal(Checksum.Of(block))
	if err != nil {
		return false, err
	}
	return want == ComputeChecksum(block), nil
}
