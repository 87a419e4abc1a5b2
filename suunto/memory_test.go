package suunto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Qinmu-mu/libdc-for-dirk/dc"
)

func TestMemoryRoundTrip(t *testing.T) {
	lengths := []int{1, szPacket - 1, szPacket, szPacket + 1, 0x300}

	for _, length := range lengths {
		sim := newSimulator()
		device := New(sim)

		data := make([]byte, length)
		for i := range data {
			data[i] = byte(i*7 + 3)
		}

		if err := device.WriteMemory(0x2000, data); err != nil {
			t.Fatalf("WriteMemory(len %d) error: %v", length, err)
		}
		got, err := device.ReadMemory(0x2000, length)
		if err != nil {
			t.Fatalf("ReadMemory(len %d) error: %v", length, err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("round trip of %d bytes: read back different data", length)
		}
	}
}

func TestMemoryRoundTripFullImage(t *testing.T) {
	sim := newSimulator()
	device := New(sim)

	data := make([]byte, MemorySize)
	for i := range data {
		data[i] = byte(i*11 + 5)
	}

	if err := device.WriteMemory(0x0000, data); err != nil {
		t.Fatalf("WriteMemory error: %v", err)
	}
	got, err := device.ReadMemory(0x0000, MemorySize)
	if err != nil {
		t.Fatalf("ReadMemory error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("full image round trip: read back different data")
	}
}

func TestMemoryPacketSplitting(t *testing.T) {
	tests := []struct {
		length      int
		wantPackets int
	}{
		{1, 1},
		{szPacket, 1},
		{szPacket + 1, 2},
		{3 * szPacket, 3},
		{3*szPacket + 5, 4},
	}

	for _, tt := range tests {
		sim := newSimulator()
		device := New(sim)

		if _, err := device.ReadMemory(0x1000, tt.length); err != nil {
			t.Fatalf("ReadMemory(len %d) error: %v", tt.length, err)
		}
		if sim.transactions != tt.wantPackets {
			t.Errorf("ReadMemory(len %d) used %d packets, want %d",
				tt.length, sim.transactions, tt.wantPackets)
		}
	}
}

func TestMemoryProgress(t *testing.T) {
	sim := newSimulator()

	var events []dc.Progress
	device := New(sim, WithProgress(func(p dc.Progress) {
		events = append(events, p)
	}))

	const length = 2*szPacket + 9
	if _, err := device.ReadMemory(0x1000, length); err != nil {
		t.Fatalf("ReadMemory error: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("got %d progress events, want 3", len(events))
	}
	var prev uint
	for i, p := range events {
		if p.Maximum != length {
			t.Errorf("event %d: maximum = %d, want %d", i, p.Maximum, length)
		}
		if p.Current < prev {
			t.Errorf("event %d: current %d decreased from %d", i, p.Current, prev)
		}
		prev = p.Current
	}
	if prev != length {
		t.Errorf("final progress %d, want %d", prev, length)
	}
}

func TestDump(t *testing.T) {
	sim := newSimulator()
	for i := range sim.memory {
		sim.memory[i] = byte(i * 13)
	}
	device := New(sim)

	data := make([]byte, MemorySize)
	n, err := device.Dump(data)
	if err != nil {
		t.Fatalf("Dump error: %v", err)
	}
	if n != MemorySize {
		t.Errorf("Dump returned %d bytes, want %d", n, MemorySize)
	}
	if !bytes.Equal(data, sim.memory) {
		t.Error("dumped image differs from device memory")
	}
}

func TestDumpBufferTooSmall(t *testing.T) {
	sim := newSimulator()
	device := New(sim)

	if _, err := device.Dump(make([]byte, MemorySize-1)); !errors.Is(err, dc.ErrMemory) {
		t.Fatalf("Dump error = %v, want %v", err, dc.ErrMemory)
	}
	if sim.transactions != 0 {
		t.Errorf("Dump with short buffer performed %d transactions, want 0", sim.transactions)
	}
}

func TestVersionAndSerial(t *testing.T) {
	sim := newSimulator()
	sim.model = 0x10
	sim.firmware = [3]byte{0x02, 0x00, 0x07}
	sim.setSerial(23500999)
	device := New(sim)

	version, err := device.Version()
	if err != nil {
		t.Fatalf("Version error: %v", err)
	}
	if want := []byte{0x10, 0x02, 0x00, 0x07}; !bytes.Equal(version, want) {
		t.Errorf("Version = % X, want % X", version, want)
	}

	serial, err := device.Serial()
	if err != nil {
		t.Fatalf("Serial error: %v", err)
	}
	if serial != 23500999 {
		t.Errorf("Serial = %d, want 23500999", serial)
	}
}

func TestResetMaxDepth(t *testing.T) {
	sim := newSimulator()
	device := New(sim)

	if err := device.ResetMaxDepth(); err != nil {
		t.Fatalf("ResetMaxDepth error: %v", err)
	}
	if sim.transactions != 1 {
		t.Errorf("ResetMaxDepth used %d transactions, want 1", sim.transactions)
	}
}
