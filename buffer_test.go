package dlpc1438

import (
	"bytes"
	"testing"
)

func TestBufferIndexOther(t *testing.T) {
	if Buffer0.Other() != Buffer1 || Buffer1.Other() != Buffer0 {
		t.Error("Other() does not flip between the two buffers")
	}
}

func TestParseBufferIndex(t *testing.T) {
	tests := []struct {
		v       byte
		want    BufferIndex
		wantErr bool
	}{
		{0, Buffer0, false},
		{1, Buffer1, false},
		{2, 0, true},
		{0xFF, 0, true},
	}

	for _, tt := range tests {
		got, err := parseBufferIndex(tt.v)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBufferIndex(%d) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("parseBufferIndex(%d) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestSwap(t *testing.T) {
	r := newTestRig(t)
	if r.dev.ActiveBuffer() != Buffer0 || r.dev.ReceivingBuffer() != Buffer1 {
		t.Fatalf("initial active/receiving = %d/%d, want 0/1", r.dev.ActiveBuffer(), r.dev.ReceivingBuffer())
	}

	for i, want := range []BufferIndex{Buffer1, Buffer0, Buffer1} {
		got, err := r.dev.Swap()
		if err != nil {
			t.Fatalf("Swap() #%d error = %v", i, err)
		}
		if got != want || r.dev.ActiveBuffer() != want {
			t.Errorf("Swap() #%d = %d, active %d, want %d", i, got, r.dev.ActiveBuffer(), want)
		}
		if r.dev.ReceivingBuffer() != want.Other() {
			t.Errorf("ReceivingBuffer() = %d, want %d", r.dev.ReceivingBuffer(), want.Other())
		}
	}

	writes := r.bus.writesTo(regBufferSelect)
	want := [][]byte{{1}, {0}, {1}}
	if len(writes) != len(want) {
		t.Fatalf("buffer select writes = %v, want %v", writes, want)
	}
	for i := range want {
		if !bytes.Equal(writes[i], want[i]) {
			t.Errorf("write %d = %v, want %v", i, writes[i], want[i])
		}
	}
}
