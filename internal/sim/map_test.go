package sim

import "testing"

func TestGenerateMapDeterministic(t *testing.T) {
	seed := uint64(12345)

	m1 := GenerateMap(100, 100, 10, 5, &seed)
	m2 := GenerateMap(100, 100, 10, 5, &seed)

	if len(m1.Barriers) != len(m2.Barriers) {
		t.Fatalf("barrier count differs: %d vs %d", len(m1.Barriers), len(m2.Barriers))
	}
	for i := range m1.Barriers {
		if m1.Barriers[i] != m2.Barriers[i] {
			t.Errorf("barrier %d differs: %+v vs %+v", i, m1.Barriers[i], m2.Barriers[i])
		}
	}
	if m1.Seed != m2.Seed || m1.Seed != seed {
		t.Errorf("seed not preserved: got %d, want %d", m1.Seed, seed)
	}
}

func TestGenerateMapBarriersWithinBounds(t *testing.T) {
	seed := uint64(999)
	maxRadius := 8.0
	m := GenerateMap(100, 100, 25, maxRadius, &seed)

	for _, b := range m.Barriers {
		if b.X < 0 || b.X > 100 || b.Y < 0 || b.Y > 100 {
			t.Errorf("barrier center out of bounds: %+v", b)
		}
		if b.R < 0 || b.R > maxRadius {
			t.Errorf("barrier radius out of [0, %v]: %+v", maxRadius, b)
		}
	}
}

func TestGenerateMapRandomSeedRecorded(t *testing.T) {
	m := GenerateMap(50, 50, 3, 4, nil)
	if m.Seed == 0 {
		t.Log("seed happened to be zero; astronomically unlikely but not itself an error")
	}

	// A recorded seed must reproduce the same map (spec.md §8 round-trip).
	again := GenerateMap(50, 50, 3, 4, &m.Seed)
	for i := range m.Barriers {
		if m.Barriers[i] != again.Barriers[i] {
			t.Errorf("round-trip regeneration differs at %d: %+v vs %+v", i, m.Barriers[i], again.Barriers[i])
		}
	}
}

func TestFreePointClearsAllBarriers(t *testing.T) {
	seed := uint64(42)
	m := GenerateMap(100, 100, 15, 10, &seed)

	for i := 0; i < 200; i++ {
		x, y := m.FreePoint(1)
		if x < 1 || x > 99 || y < 1 || y > 99 {
			t.Fatalf("free point out of inner margin: (%v, %v)", x, y)
		}
		if !m.clearsAllBarriers(x, y, 1) {
			t.Fatalf("free point (%v, %v) overlaps a barrier", x, y)
		}
	}
}

func TestFreePointAcceptsFirstSampleWithoutBarriers(t *testing.T) {
	m := &Map{Width: 10, Height: 10}
	x, y := m.FreePoint(1)
	if x < 1 || x > 9 || y < 1 || y > 9 {
		t.Fatalf("free point out of inner margin with no barriers: (%v, %v)", x, y)
	}
}

// clearsAllBarriers must require every barrier to clear, not just the
// first one checked (spec.md §9): a point clear of barrier[0] but
// inside barrier[1] must be rejected.
func TestClearsAllBarriersIsConjunctive(t *testing.T) {
	m := &Map{
		Width: 100, Height: 100,
		Barriers: []Barrier{
			{X: 10, Y: 10, R: 1},
			{X: 50, Y: 50, R: 5},
		},
	}

	if m.clearsAllBarriers(50, 50, 1) {
		t.Fatal("point inside the second barrier was incorrectly accepted")
	}
	if !m.clearsAllBarriers(90, 90, 1) {
		t.Fatal("point clear of both barriers was incorrectly rejected")
	}
}
