// Package codec has the byte-level primitives the wire protocol is
// built from: the XOR frame checksum and fixed-width integer decoding.
package codec

// ChecksumXOR folds data into a single byte by XOR, starting from seed.
// The protocol appends this over every preceding byte of a frame; a
// valid frame therefore XOR-folds to zero including its trailer.
func ChecksumXOR(data []byte, seed byte) byte {
	crc := seed
	for _, b := range data {
		crc ^= b
	}
	return crc
}

// Uint16LE decodes a little-endian 16-bit integer from b[0:2].
func Uint16LE(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// Uint24BE decodes a big-endian 24-bit integer from b[0:3].
func Uint24BE(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// Uint32BE decodes a big-endian 32-bit integer from b[0:4].
func Uint32BE(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
