package rpc

import (
	"hash/crc32"
	"testing"
)

func TestCommandIDMatchesCRC32(t *testing.T) {
	want := crc32.ChecksumIEEE([]byte("getMe.0"))
	if got := CommandID("getMe", 0); got != want {
		t.Fatalf("CommandID(getMe,0) = %#x, want %#x", got, want)
	}
}

func TestCommandIDDistinguishesLayer(t *testing.T) {
	a := CommandID("echo", 0)
	b := CommandID("echo", 1)
	if a == b {
		t.Fatal("CommandID should differ across layers for the same name")
	}
}

func TestCommandIDUsesDotSeparator(t *testing.T) {
	// Spec §4.5: the separator is a literal '.' (0x2E), not some other
	// delimiter a naive implementation might reach for.
	want := crc32.ChecksumIEEE([]byte("foo" + string(rune(0x2E)) + "3"))
	if got := CommandID("foo", 3); got != want {
		t.Fatalf("CommandID(foo,3) = %#x, want %#x", got, want)
	}
}

func TestNewDescriptorFillsID(t *testing.T) {
	d := NewDescriptor("getMe", 0)
	if d.Name != "getMe" || d.Layer != 0 {
		t.Fatalf("descriptor = %+v", d)
	}
	if d.ID != CommandID("getMe", 0) {
		t.Fatalf("ID = %#x, want %#x", d.ID, CommandID("getMe", 0))
	}
}
