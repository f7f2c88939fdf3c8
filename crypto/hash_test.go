package crypto

import "testing"

func TestHashVectors(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
		fn   func([]byte) string
	}{
		{
			name: "sha256 empty",
			in:   []byte(""),
			want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			fn:   func(b []byte) string { h := SHA256(b); return hex(h[:]) },
		},
		{
			name: "sha256 abc",
			in:   []byte("abc"),
			want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"[:64],
			fn:   func(b []byte) string { h := SHA256(b); return hex(h[:]) },
		},
		{
			name: "ripemd160 abc",
			in:   []byte("abc"),
			want: "8eb208f7e05d987a9b044a8e98c6b087f15a0bfc",
			fn:   func(b []byte) string { h := RIPEMD160(b); return hex(h[:]) },
		},
		{
			name: "hash160 empty",
			in:   []byte(""),
			want: "b472a266d0bd89c13706a4132ccfb16f7c3b9fcb",
			fn:   func(b []byte) string { h := Hash160(b); return hex(h[:]) },
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.fn(c.in)
			if got != c.want {
				t.Fatalf("got %s, want %s", got, c.want)
			}
		})
	}
}

func TestHash256IsDoubleSHA256(t *testing.T) {
	in := []byte("hash256 vector")
	first := SHA256(in)
	second := SHA256(first[:])
	got := Hash256(in)
	if got != second {
		t.Fatalf("Hash256 did not apply SHA-256 twice")
	}
}

func TestConstantTimeCompare(t *testing.T) {
	a := []byte{1, 2, 3}
	b := []byte{1, 2, 3}
	c := []byte{1, 2, 4}
	if !ConstantTimeCompare(a, b) {
		t.Fatal("expected equal slices to compare equal")
	}
	if ConstantTimeCompare(a, c) {
		t.Fatal("expected differing slices to compare unequal")
	}
}

func hex(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[2*i] = digits[v>>4]
		out[2*i+1] = digits[v&0x0f]
	}
	return string(out)
}
