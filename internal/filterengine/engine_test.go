package filterengine

import (
	"testing"

	"go.uber.org/zap"
)

type fakeSink struct {
	phase1, phase2 [4]int
	runCalls       int
	shutterCalls   int
	failRun        bool
}

func (f *fakeSink) SetMoveTargets(phase int, positions [4]int) error {
	if phase == 1 {
		f.phase1 = positions
	} else {
		f.phase2 = positions
	}
	return nil
}

func (f *fakeSink) RunMoveProgram() error {
	f.runCalls++
	if f.failRun {
		return errTest
	}
	return nil
}

func (f *fakeSink) CloseShutter() error {
	f.shutterCalls++
	return nil
}

var errTest = &testErr{"boom"}

type testErr struct{ s string }

func (e *testErr) Error() string { return e.s }

func testPositions() PositionMap {
	return PositionMap{
		{In: 100, Out: 0},
		{In: 200, Out: 10},
		{In: -50, Out: -5},
		{In: 300, Out: 0},
	}
}

func TestApply_CurrentDemandMatchesLevel(t *testing.T) {
	for level := 0; level <= 15; level++ {
		sink := &fakeSink{}
		e := New(zap.NewNop().Sugar(), sink, testPositions())

		e.Apply(level)

		if e.CurrentAttenuation() != level {
			t.Fatalf("level=%d: attenuation=%d", level, e.CurrentAttenuation())
		}
		for i := 0; i < 4; i++ {
			want := (level>>uint(i))&1 == 1
			if e.CurrentDemand()[i] != want {
				t.Fatalf("level=%d filter=%d: demand=%v want=%v", level, i, e.CurrentDemand()[i], want)
			}
		}
	}
}

func TestApply_NeverLeavesBeamDuringMove(t *testing.T) {
	// current = filter0 in, target = filter0 out + filter1 in.
	// filter0 must still be IN during phase 1.
	sink := &fakeSink{}
	e := New(zap.NewNop().Sugar(), sink, testPositions())

	e.Apply(1) // filter0 in
	e.Apply(2) // filter1 in, filter0 out

	pos := testPositions()
	if sink.phase1[0] != pos[0].In {
		t.Fatalf("phase1 dropped filter0 early: got=%d want=%d", sink.phase1[0], pos[0].In)
	}
	if sink.phase1[1] != pos[1].In {
		t.Fatalf("phase1 did not insert filter1: got=%d want=%d", sink.phase1[1], pos[1].In)
	}
	if sink.phase2[0] != pos[0].Out {
		t.Fatalf("phase2 did not retract filter0: got=%d want=%d", sink.phase2[0], pos[0].Out)
	}
}

func TestApply_ClampsOutOfRange(t *testing.T) {
	sink := &fakeSink{}
	e := New(zap.NewNop().Sugar(), sink, testPositions())

	e.Apply(99)
	if e.CurrentAttenuation() != 15 {
		t.Fatalf("expected clamp to 15, got %d", e.CurrentAttenuation())
	}

	e.Apply(-5)
	if e.CurrentAttenuation() != 0 {
		t.Fatalf("expected clamp to 0, got %d", e.CurrentAttenuation())
	}
}

func TestApply_Idempotent(t *testing.T) {
	sink := &fakeSink{}
	e := New(zap.NewNop().Sugar(), sink, testPositions())

	e.Apply(11)
	first := e.CurrentDemand()

	e.Apply(11)
	second := e.CurrentDemand()

	if first != second {
		t.Fatalf("re-applying the same level changed demand: %v -> %v", first, second)
	}
}

func TestBuildMovePlan_PostInInvariant(t *testing.T) {
	positions := testPositions()

	for cl := 0; cl < 16; cl++ {
		for fl := 0; fl < 16; fl++ {
			current := DemandFromLevel(cl)
			final := DemandFromLevel(fl)
			plan := BuildMovePlan(current, final, positions)

			for i := 0; i < 4; i++ {
				want := final[i] || current[i]
				if plan.PostIn[i] != want {
					t.Fatalf("cl=%d fl=%d filter=%d: postIn=%v want=%v", cl, fl, i, plan.PostIn[i], want)
				}
			}
		}
	}
}

func TestValidateLevel(t *testing.T) {
	if err := ValidateLevel(0); err != nil {
		t.Fatalf("0 should be valid: %v", err)
	}
	if err := ValidateLevel(15); err != nil {
		t.Fatalf("15 should be valid: %v", err)
	}
	if err := ValidateLevel(16); err == nil {
		t.Fatalf("16 should be invalid")
	}
	if err := ValidateLevel(-1); err == nil {
		t.Fatalf("-1 should be invalid")
	}
}
