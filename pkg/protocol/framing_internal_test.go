package protocol

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func TestMessageLength(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("lengths above 32 bits are not representable as int on this platform")
	}

	top := uint64(math.MaxUint32)

	tests := []struct {
		name    string
		n       int
		want    uint32
		wantErr bool
	}{
		{"zero", 0, 0, false},
		{"small", 42, 42, false},
		{"largest representable", int(top), math.MaxUint32, false},
		{"one past the prefix range", int(top + 1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := messageLength(tt.n)
			if tt.wantErr {
				if !errors.Is(err, ErrMessageTooLong) {
					t.Fatalf("messageLength(%d) error = %v, want ErrMessageTooLong", tt.n, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("messageLength(%d) error = %v", tt.n, err)
			}
			if got != tt.want {
				t.Errorf("messageLength(%d) = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}
