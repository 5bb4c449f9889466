// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import "testing"

func TestOffer(t *testing.T) {
	tests := []struct {
		offer   int64
		total   int64
		want    Phase
		wantErr bool
	}{
		{NoResume, 100, Streaming, false},
		{0, 100, Verifying, false},
		{1, 100, Skipping, false},
		{100, 100, Skipping, false},
		{0, 0, Verifying, false},
		{101, 100, Negotiating, true},
		{-2, 100, Negotiating, true},
	}
	for _, test := range tests {
		state, err := Offer(test.offer, test.total)
		if (err != nil) != test.wantErr {
			t.Errorf("Offer(%d, %d) err = %v, wantErr %v", test.offer, test.total, err, test.wantErr)
			continue
		}
		if err == nil && state.Phase != test.want {
			t.Errorf("Offer(%d, %d) phase = %v, want %v", test.offer, test.total, state.Phase, test.want)
		}
	}
}

func TestConsumeClipsAtOffset(t *testing.T) {
	state, err := Offer(100, 1000)
	if err != nil {
		t.Fatal(err)
	}

	state, withheld := Consume(state, 64)
	if withheld != 64 || state.Phase != Skipping || state.Skipped != 64 {
		t.Fatalf("after first unit: withheld %d, state %+v", withheld, state)
	}

	state, withheld = Consume(state, 64)
	if withheld != 36 {
		t.Errorf("withheld = %d, want 36 (clipped to the offset)", withheld)
	}
	if state.Phase != Verifying || state.Skipped != 100 {
		t.Errorf("state = %+v, want verifying at 100", state)
	}

	// Nothing is withheld once the offset is reached.
	if _, withheld := Consume(state, 64); withheld != 0 {
		t.Errorf("withheld while verifying = %d", withheld)
	}
}

func TestConsumeExactBoundary(t *testing.T) {
	state, _ := Offer(40, 80)
	state, withheld := Consume(state, 40)
	if withheld != 40 || state.Phase != Verifying {
		t.Errorf("withheld %d, phase %v; want 40, verifying", withheld, state.Phase)
	}
}

func TestVerdict(t *testing.T) {
	verifying := ResumeState{Phase: Verifying, ContinueStart: 10, Skipped: 10}

	if got := Verdict(verifying, true); got.Phase != Streaming {
		t.Errorf("good verdict phase = %v, want streaming", got.Phase)
	}
	if got := Verdict(verifying, false); got.Phase != Restarting {
		t.Errorf("bad verdict phase = %v, want restarting", got.Phase)
	}

	skipping := ResumeState{Phase: Skipping, ContinueStart: 10, Skipped: 3}
	if got := Verdict(skipping, false); got != skipping {
		t.Errorf("verdict outside verifying changed state to %+v", got)
	}
}

func TestRestartDisablesResume(t *testing.T) {
	state := Restart()
	if state.Phase != Streaming || state.ContinueStart != NoResume {
		t.Errorf("Restart() = %+v", state)
	}
	if _, withheld := Consume(state, 100); withheld != 0 {
		t.Errorf("restart state withheld %d bytes", withheld)
	}
}
