package codec

import "testing"

func TestChecksums(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xFF}

	if got := ChecksumXOR(data); got != 0xFF {
		t.Errorf("ChecksumXOR = %#02x, want 0xff", got)
	}
	if got := ChecksumSum8(data); got != 0x05 {
		t.Errorf("ChecksumSum8 = %#02x, want 0x05", got)
	}
}

func TestCRC16CCITT(t *testing.T) {
	// Standard check value for CRC-16/CCITT-FALSE
	if got := CRC16CCITT([]byte("123456789")); got != 0x29B1 {
		t.Errorf("CRC16CCITT = %#04x, want 0x29b1", got)
	}
	if got := CRC16CCITT(nil); got != 0xFFFF {
		t.Errorf("CRC16CCITT(nil) = %#04x, want init value 0xffff", got)
	}
}
