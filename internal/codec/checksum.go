package codec

// Checksum helpers for the terminal's checksum calculator tool. Pure
// functions over payload bytes, shared by the UI tools and any consumer
// that wants to verify frames.

// ChecksumXOR returns the XOR of all bytes
func ChecksumXOR(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// ChecksumSum8 returns the modulo-256 sum of all bytes
func ChecksumSum8(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// CRC16CCITT computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF)
func CRC16CCITT(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
