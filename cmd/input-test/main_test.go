package main

import (
	"strings"
	"testing"
)

func TestBarMarksCenter(t *testing.T) {
	cases := []struct {
		v    int
		want int
	}{
		{-32768, 0},
		{0, 10},
		{32767, 19},
	}
	for _, c := range cases {
		got := bar(c.v, 20)
		if len(got) != 22 {
			t.Fatalf("bar(%d) = %q, want width 22", c.v, got)
		}
		if idx := strings.Index(got, "|") - 1; idx != c.want {
			t.Errorf("bar(%d) marker at %d, want %d", c.v, idx, c.want)
		}
	}
}
