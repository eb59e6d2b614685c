package runtime

import (
	"testing"

	"github.com/not-things-modular/timeseq/internal/duration"
	"github.com/not-things-modular/timeseq/internal/resolve"
	"github.com/not-things-modular/timeseq/script"
)

func TestComputeScaleDefaultsToZeroValue(t *testing.T) {
	got := ComputeScale(nil)
	if got != (duration.Scale{}) {
		t.Errorf("got %+v, want zero value", got)
	}
}

func TestComputeScaleCarriesSetFields(t *testing.T) {
	sr, bpm, bpb := 96000, 140, 4
	got := ComputeScale(&script.TimeScale{SampleRate: &sr, Bpm: &bpm, Bpb: &bpb})
	want := duration.Scale{SampleRate: 96000, Bpm: 140, Bpb: 4}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func lane(autoStart, loop bool, segLen int64) resolve.Lane {
	return resolve.Lane{AutoStart: autoStart, Loop: loop, Segments: []*resolve.Segment{nSampleSegment(segLen)}}
}

func TestTimelineRuntimeStepsEveryLane(t *testing.T) {
	d, _, listener, _ := newTestDeps()
	def := &resolve.Timeline{Lanes: []resolve.Lane{lane(true, false, 1), lane(true, false, 1)}}
	tr := NewTimelineRuntime(def, 48000)
	if _, err := tr.Step(d, noFired); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listener.segmentStarts != 2 {
		t.Errorf("got %d segment starts, want 2 (one per lane)", listener.segmentStarts)
	}
}

func TestTimelineRuntimeLoopLockWaitsForAllLoopingLanes(t *testing.T) {
	d, _, listener, _ := newTestDeps()
	def := &resolve.Timeline{
		LoopLock: true,
		Lanes: []resolve.Lane{
			lane(true, true, 1),
			lane(true, true, 3),
		},
	}
	tr := NewTimelineRuntime(def, 48000)

	// after 1 step, lane 0 has wrapped (pending) but lane 1 has not finished yet
	if _, err := tr.Step(d, noFired); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listener.laneLoops != 0 {
		t.Error("expected no LaneLooped yet: lane 1 has not reached its own wrap")
	}
	if !tr.Lanes[0].PendingWrap() {
		t.Error("expected lane 0 to be holding at its pending wrap")
	}

	// steps 2 and 3: lane 1 finishes its 3-sample segment on step 3
	for i := 0; i < 2; i++ {
		if _, err := tr.Step(d, noFired); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if listener.laneLoops != 2 {
		t.Errorf("got %d LaneLooped calls once every looping lane reached its wrap, want 2", listener.laneLoops)
	}
	if tr.Lanes[0].PendingWrap() || tr.Lanes[1].PendingWrap() {
		t.Error("expected the barrier to release both lanes' pending wraps")
	}
}

func TestTimelineRuntimeResetResetsEveryLane(t *testing.T) {
	d, _, _, _ := newTestDeps()
	def := &resolve.Timeline{Lanes: []resolve.Lane{
		{AutoStart: true, Segments: []*resolve.Segment{nSampleSegment(1), nSampleSegment(1)}},
	}}
	tr := NewTimelineRuntime(def, 48000)
	if _, err := tr.Step(d, noFired); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Lanes[0].idx != 1 {
		t.Fatalf("setup: expected lane to be on segment 1, got %d", tr.Lanes[0].idx)
	}
	tr.Reset()
	if tr.Lanes[0].idx != 0 {
		t.Errorf("got idx %d after timeline reset, want 0", tr.Lanes[0].idx)
	}
}

func TestTimelineRuntimePropagatesPause(t *testing.T) {
	d, _, _, _ := newTestDeps()
	stop := true
	seg := &resolve.Segment{
		Duration: resolve.Duration{Samples: int64p(1)},
		Actions: []resolve.Action{
			{Timing: script.TimingStart, Assert: &script.Assert{
				Name:       "never",
				StopOnFail: &stop,
				Expect:     script.If{Operator: script.IfEq, Values: &[2]script.Value{voltage(1), voltage(2)}},
			}},
		},
	}
	def := &resolve.Timeline{Lanes: []resolve.Lane{{AutoStart: true, Segments: []*resolve.Segment{seg}}}}
	tr := NewTimelineRuntime(def, 48000)
	pause, err := tr.Step(d, noFired)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pause {
		t.Error("expected a failing stop-on-fail assert in a lane to propagate as a timeline-level pause")
	}
}
