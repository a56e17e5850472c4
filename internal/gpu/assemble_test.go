// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/rectfilter"
)

// sentinels encodes a mask: -1 at the given indices, 0 elsewhere.
func sentinels(n int, inside ...int) []byte {
	buf := make([]byte, n*SentinelSize)
	for _, i := range inside {
		binary.LittleEndian.PutUint32(buf[i*SentinelSize:], uint32(0xFFFFFFFF))
	}
	return buf
}

func TestAssemble(t *testing.T) {
	pts := []rectfilter.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}, {X: 7, Y: 8}}
	out := EncodePoints(pts)

	tests := []struct {
		name   string
		inside []int
		want   []rectfilter.Point
	}{
		{"none", nil, []rectfilter.Point{}},
		{"all", []int{0, 1, 2, 3}, pts},
		{"first", []int{0}, pts[:1]},
		{"last index", []int{3}, pts[3:]},
		{"interleaved", []int{1, 3}, []rectfilter.Point{pts[1], pts[3]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assemble(out, sentinels(len(pts), tt.inside...), len(pts))
			if err != nil {
				t.Fatalf("Assemble: %v", err)
			}
			if got == nil {
				t.Fatal("Assemble returned nil slice, want empty")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAssembleSinglePoint(t *testing.T) {
	pts := []rectfilter.Point{{X: 5, Y: 5}}
	got, err := Assemble(EncodePoints(pts), sentinels(1, 0), 1)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(got) != 1 || got[0] != pts[0] {
		t.Errorf("got %v, want %v", got, pts)
	}
}

func TestAssembleOnlyMinusOneCounts(t *testing.T) {
	pts := []rectfilter.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	mask := make([]byte, 2*SentinelSize)
	binary.LittleEndian.PutUint32(mask[0:], 1)
	binary.LittleEndian.PutUint32(mask[4:], 0xFFFFFFFE) // -2
	got, err := Assemble(EncodePoints(pts), mask, 2)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestAssembleLongerBuffers(t *testing.T) {
	pts := []rectfilter.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	out := append(EncodePoints(pts), make([]byte, 16)...)
	mask := append(sentinels(2, 1), make([]byte, 8)...)
	got, err := Assemble(out, mask, 2)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(got) != 1 || got[0] != pts[1] {
		t.Errorf("got %v, want [%v]", got, pts[1])
	}
}

func TestAssembleSizeMismatch(t *testing.T) {
	pts := []rectfilter.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	tests := []struct {
		name string
		out  []byte
		mask []byte
		n    int
	}{
		{"short output", EncodePoints(pts[:1]), sentinels(2), 2},
		{"short mask", EncodePoints(pts), sentinels(1), 2},
		{"negative count", nil, nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Assemble(tt.out, tt.mask, tt.n)
			if !errors.Is(err, rectfilter.ErrSizeMismatch) {
				t.Errorf("err = %v, want ErrSizeMismatch", err)
			}
		})
	}
}

func TestEncodePointsLayout(t *testing.T) {
	buf := EncodePoints([]rectfilter.Point{{X: 1.5, Y: -2}})
	if len(buf) != rectfilter.PointSize {
		t.Fatalf("len = %d, want %d", len(buf), rectfilter.PointSize)
	}
	if x := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])); x != 1.5 {
		t.Errorf("x = %v, want 1.5", x)
	}
	if y := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])); y != -2 {
		t.Errorf("y = %v, want -2", y)
	}
}

func TestEncodeParamsLayout(t *testing.T) {
	buf := EncodeParams(rectfilter.R(1, 2, 3, 4), 7)
	if len(buf) != ParamsSize {
		t.Fatalf("len = %d, want %d", len(buf), ParamsSize)
	}
	want := []float32{1, 2, 3, 4}
	for i, w := range want {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])); got != w {
			t.Errorf("field %d = %v, want %v", i, got, w)
		}
	}
	if n := binary.LittleEndian.Uint32(buf[16:]); n != 7 {
		t.Errorf("count = %d, want 7", n)
	}
	for i := 20; i < ParamsSize; i++ {
		if buf[i] != 0 {
			t.Errorf("padding byte %d = %d, want 0", i, buf[i])
		}
	}
}
