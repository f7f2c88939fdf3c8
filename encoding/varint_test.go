package encoding

import "testing"

func TestCompactSizeRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 252, 253, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000, ^uint64(0)}
	for _, v := range values {
		buf := AppendCompactSize(nil, v)
		off := 0
		got, err := ReadCompactSize(buf, &off)
		if err != nil {
			t.Fatalf("ReadCompactSize(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("got %d, want %d", got, v)
		}
		if off != len(buf) {
			t.Fatalf("offset %d did not consume full encoding of length %d", off, len(buf))
		}
	}
}

func TestCompactSizeRejectsNonMinimalEncoding(t *testing.T) {
	// 0xfd tag with a value that fits in a single byte.
	buf := []byte{0xfd, 0x10, 0x00}
	off := 0
	if _, err := ReadCompactSize(buf, &off); err == nil {
		t.Fatal("expected non-minimal 0xfd encoding to be rejected")
	}

	// 0xfe tag with a value that fits in 0xfd form.
	buf = []byte{0xfe, 0xff, 0xff, 0x00, 0x00}
	off = 0
	if _, err := ReadCompactSize(buf, &off); err == nil {
		t.Fatal("expected non-minimal 0xfe encoding to be rejected")
	}
}

func TestCompactSizeRejectsTruncatedInput(t *testing.T) {
	buf := []byte{0xfd, 0x01}
	off := 0
	if _, err := ReadCompactSize(buf, &off); err == nil {
		t.Fatal("expected truncated compactsize to be rejected")
	}
}

func TestIntLERoundTrip(t *testing.T) {
	u16 := AppendU16LE(nil, 0xbeef)
	got16, err := ReadUint16LE(u16)
	if err != nil || got16 != 0xbeef {
		t.Fatalf("u16 round trip: got %x, err %v", got16, err)
	}

	u32 := AppendU32LE(nil, 0xdeadbeef)
	got32, err := ReadUint32LE(u32)
	if err != nil || got32 != 0xdeadbeef {
		t.Fatalf("u32 round trip: got %x, err %v", got32, err)
	}

	u64 := AppendU64LE(nil, 0x0123456789abcdef)
	got64, err := ReadUint64LE(u64)
	if err != nil || got64 != 0x0123456789abcdef {
		t.Fatalf("u64 round trip: got %x, err %v", got64, err)
	}
}

func TestReverse32(t *testing.T) {
	var h [32]byte
	for i := range h {
		h[i] = byte(i)
	}
	r := Reverse32(h)
	for i := range h {
		if r[i] != h[31-i] {
			t.Fatalf("byte %d: got %x, want %x", i, r[i], h[31-i])
		}
	}
	if Reverse32(r) != h {
		t.Fatal("reversing twice should return the original")
	}
}
