package vm_test

import (
	"testing"

	"github.com/pltlang/pltvm/vm"
)

func TestSignaturePacking(t *testing.T) {
	for argc := vm.Word(0); argc < 0x1000; argc += 0x137 {
		for retc := vm.Word(0); retc < 0x1000; retc += 0x29b {
			sig := vm.PackSignature(argc, retc)
			a, r := vm.DecomposeSignature(sig)
			if a != argc || r != retc {
				t.Fatalf("decompose(pack(%d, %d)) = (%d, %d)", argc, retc, a, r)
			}
		}
	}
}

func TestSignedInterpretation(t *testing.T) {
	cases := []struct {
		w    vm.Word
		want int32
	}{
		{0, 0},
		{1, 1},
		{0x7FFFFF, 0x7FFFFF},
		{0x800000, -0x800000},
		{0xFFFFFF, -1},
	}
	for _, c := range cases {
		if got := c.w.Signed(); got != c.want {
			t.Errorf("Word(0x%06x).Signed() = %d, want %d", uint32(c.w), got, c.want)
		}
	}
}

func TestWordFromSignedRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 0x7FFFFF, -0x800000} {
		w := vm.WordFromSigned(v)
		if w.Signed() != v {
			t.Errorf("WordFromSigned(%d).Signed() = %d", v, w.Signed())
		}
	}
}

func TestBool(t *testing.T) {
	if vm.Bool(true) != 1 {
		t.Error("Bool(true) != 1")
	}
	if vm.Bool(false) != 0 {
		t.Error("Bool(false) != 0")
	}
}
