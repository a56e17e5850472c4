// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/rectfilter"
)

func TestParseRect(t *testing.T) {
	r, err := parseRect("0, 0,10,10.5")
	if err != nil {
		t.Fatalf("parseRect: %v", err)
	}
	if want := rectfilter.R(0, 0, 10, 10.5); r != want {
		t.Errorf("got %v, want %v", r, want)
	}
	for _, bad := range []string{"", "1,2,3", "1,2,3,x", "1,2,3,4,5"} {
		if _, err := parseRect(bad); err == nil {
			t.Errorf("parseRect(%q): expected error", bad)
		}
	}
}

func TestParsePoints(t *testing.T) {
	ps, err := parsePoints("1,1; 15,3;;10,10")
	if err != nil {
		t.Fatalf("parsePoints: %v", err)
	}
	want := []rectfilter.Point{{X: 1, Y: 1}, {X: 15, Y: 3}, {X: 10, Y: 10}}
	if len(ps) != len(want) {
		t.Fatalf("got %v, want %v", ps, want)
	}
	for i := range want {
		if ps[i] != want[i] {
			t.Errorf("ps[%d] = %v, want %v", i, ps[i], want[i])
		}
	}
	if _, err := parsePoints("1,2,3"); err == nil {
		t.Error("expected error for 3-component point")
	}
}

func TestCompare(t *testing.T) {
	a := []rectfilter.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}
	if err := compare(a, a); err != nil {
		t.Errorf("compare(a, a) = %v", err)
	}
	if err := compare(a, a[:1]); !errors.Is(err, ErrVerify) {
		t.Errorf("length mismatch: err = %v, want ErrVerify", err)
	}
	b := []rectfilter.Point{{X: 2, Y: 2}, {X: 1, Y: 1}}
	if err := compare(a, b); !errors.Is(err, ErrVerify) {
		t.Errorf("order mismatch: err = %v, want ErrVerify", err)
	}
}

func TestQueryFlagsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	data := "rect: {min_x: 0, min_y: 0, max_x: 1, max_y: 1}\npoints: [{x: 0.5, y: 0.5}]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &queryFlags{file: path, rect: "0,0,10,10", points: "20,20", verify: true}
	cfg, err := f.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cfg.RectValue(); got != rectfilter.R(0, 0, 10, 10) {
		t.Errorf("rect override ignored: %v", got)
	}
	ps := cfg.PointsValue()
	if len(ps) != 2 || ps[0] != rectfilter.Pt(0.5, 0.5) || ps[1] != rectfilter.Pt(20, 20) {
		t.Errorf("points = %v", ps)
	}
	if !cfg.Verify {
		t.Error("verify flag ignored")
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--log-level", "off"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), rectfilter.Version) {
		t.Errorf("output %q lacks version %s", out.String(), rectfilter.Version)
	}
}
