package ecdsa

import (
	"math/big"

	"rubin.dev/spvcore/spverrors"
)

// SerializeDER encodes sig as a DER sequence of two integers, each in
// minimal form (no leading 0x00 byte unless the high bit of the following
// byte is set, in which case exactly one 0x00 is prepended to keep the
// integer non-negative).
func (sig *Signature) SerializeDER() []byte {
	rb := derInt(sig.R)
	sb := derInt(sig.S)

	body := make([]byte, 0, len(rb)+len(sb))
	body = append(body, rb...)
	body = append(body, sb...)

	out := make([]byte, 0, len(body)+2)
	out = append(out, 0x30, byte(len(body)))
	out = append(out, body...)
	return out
}

func derInt(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) == 0 {
		b = []byte{0x00}
	}
	if b[0]&0x80 != 0 {
		b = append([]byte{0x00}, b...)
	}
	out := make([]byte, 0, len(b)+2)
	out = append(out, 0x02, byte(len(b)))
	out = append(out, b...)
	return out
}

// ParseDER parses a strict DER-encoded ECDSA signature, rejecting any
// non-minimal integer encoding or trailing bytes.
func ParseDER(b []byte) (*Signature, error) {
	malformed := func(msg string) (*Signature, error) {
		return nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonDERMalformed, msg)
	}

	if len(b) < 8 || b[0] != 0x30 {
		return malformed("missing outer sequence tag")
	}
	seqLen := int(b[1])
	if seqLen != len(b)-2 {
		return malformed("sequence length does not match input")
	}

	rest := b[2:]
	r, rest, err := derReadInt(rest)
	if err != nil {
		return nil, err
	}
	s, rest, err := derReadInt(rest)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return malformed("trailing bytes after signature")
	}

	return &Signature{R: r, S: s}, nil
}

func derReadInt(b []byte) (*big.Int, []byte, error) {
	malformed := func(msg string) (*big.Int, []byte, error) {
		return nil, nil, spverrors.New(spverrors.KindDecode, spverrors.ReasonDERMalformed, msg)
	}

	if len(b) < 3 || b[0] != 0x02 {
		return malformed("missing integer tag")
	}
	n := int(b[1])
	if n == 0 || len(b) < 2+n {
		return malformed("integer length out of range")
	}
	v := b[2 : 2+n]

	if v[0]&0x80 != 0 {
		return malformed("integer encoded as negative")
	}
	if n > 1 && v[0] == 0x00 && v[1]&0x80 == 0 {
		return malformed("integer has non-minimal leading zero")
	}

	return new(big.Int).SetBytes(v), b[2+n:], nil
}
