package swar

import (
	"testing"

	"github.com/hexinfra/fielddict/internal/fieldreg"
)

func requestEntries(t *testing.T) []Entry {
	t.Helper()
	headers := fieldreg.BuildDirection(fieldreg.DirRequest, fieldreg.Overrides{})
	headers, _ = fieldreg.PlanBits(fieldreg.DirRequest, headers)
	return FlatEntries(headers)
}

// P3: case-insensitive match soundness. For every known header, Eval must
// accept its exact name and the variant with every letter's case flipped;
// flipping a non-letter byte's bit 5 must reject.
func TestMatchSoundness(t *testing.T) {
	for _, e := range requestEntries(t) {
		name := []byte(e.Header.Name)

		// Exact name always matches.
		if !Eval(e.Terms, name) {
			t.Fatalf("%s: exact name did not match itself", e.Header.Name)
		}

		// Every letter flipped to the opposite case still matches.
		flipped := append([]byte(nil), name...)
		for i, b := range flipped {
			if b >= 'a' && b <= 'z' {
				flipped[i] = b - 0x20
			} else if b >= 'A' && b <= 'Z' {
				flipped[i] = b + 0x20
			}
		}
		if !Eval(e.Terms, flipped) {
			t.Fatalf("%s: fully case-flipped variant did not match", e.Header.Name)
		}

		// Flipping bit 5 of a non-letter byte must reject.
		for i, b := range name {
			if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') {
				continue
			}
			corrupt := append([]byte(nil), name...)
			corrupt[i] ^= 0x20
			if Eval(e.Terms, corrupt) {
				t.Fatalf("%s: flipping non-letter byte at %d incorrectly matched", e.Header.Name, i)
			}
		}
	}
}

// P4: matcher exclusivity — each known header's own name matches exactly
// one known header of the same direction.
func TestMatchExclusivity(t *testing.T) {
	entries := requestEntries(t)
	byLength := make(map[int][]Entry)
	for _, e := range entries {
		byLength[len(e.Header.Name)] = append(byLength[len(e.Header.Name)], e)
	}
	for _, e := range entries {
		name := []byte(e.Header.Name)
		matches := 0
		for _, cand := range byLength[len(name)] {
			if Eval(cand.Terms, name) {
				matches++
			}
		}
		if matches != 1 {
			t.Fatalf("%s: matched %d candidates, want exactly 1", e.Header.Name, matches)
		}
	}
}

func TestMatchRejectsDifferentBytes(t *testing.T) {
	entries := requestEntries(t)
	for _, e := range entries {
		if e.Header.Name == "TE" {
			continue // too short to meaningfully corrupt
		}
		corrupt := []byte(e.Header.Name)
		corrupt[0] = '_'
		if Eval(e.Terms, corrupt) {
			t.Fatalf("%s: corrupted first byte incorrectly matched", e.Header.Name)
		}
	}
}

func TestBuildBucketsGrouping(t *testing.T) {
	headers := fieldreg.BuildDirection(fieldreg.DirRequest, fieldreg.Overrides{})
	headers, _ = fieldreg.PlanBits(fieldreg.DirRequest, headers)
	buckets := BuildBuckets(headers)

	total := 0
	for _, b := range buckets {
		for _, g := range b.Groups {
			total += len(g.Members)
		}
	}
	if total != len(headers) {
		t.Fatalf("BuildBuckets dropped headers: got %d members, want %d", total, len(headers))
	}
}
