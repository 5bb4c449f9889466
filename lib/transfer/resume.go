// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transfer

import "fmt"

// Phase is a state of the resume negotiation.
type Phase int

const (
	// Negotiating: the put request is out and the offer has not been
	// read yet.
	Negotiating Phase = iota
	// Skipping: units of the logical stream are hashed and withheld
	// until the offered offset is reached.
	Skipping
	// Verifying: the offset has been reached; the prefix digest must
	// be sent and the verdict read before anything else.
	Verifying
	// Streaming: every remaining byte goes on the wire.
	Streaming
	// Restarting: the server rejected the prefix; the upload begins
	// again from the first file with resume disabled.
	Restarting
)

func (p Phase) String() string {
	switch p {
	case Negotiating:
		return "negotiating"
	case Skipping:
		return "skipping"
	case Verifying:
		return "verifying"
	case Streaming:
		return "streaming"
	case Restarting:
		return "restarting"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// NoResume is the continue_start value that disables resume.
const NoResume = -1

// ResumeState is the negotiation state of one upload attempt.
type ResumeState struct {
	Phase Phase
	// ContinueStart is the offset offered by the server, or NoResume.
	ContinueStart int64
	// Skipped counts logical stream bytes withheld so far.
	Skipped int64
}

// Offer applies the server's continue_start to a negotiating state.
// total is the length of the logical stream. An offset outside
// [0, total] (other than NoResume) is an error; the caller reports it
// as a protocol violation.
func Offer(continueStart, total int64) (ResumeState, error) {
	switch {
	case continueStart == NoResume:
		return ResumeState{Phase: Streaming, ContinueStart: NoResume}, nil
	case continueStart < 0 || continueStart > total:
		return ResumeState{}, fmt.Errorf("continue_start %d outside [0, %d]", continueStart, total)
	case continueStart == 0:
		return ResumeState{Phase: Verifying, ContinueStart: 0}, nil
	default:
		return ResumeState{Phase: Skipping, ContinueStart: continueStart}, nil
	}
}

// Consume feeds a unit of unitLength logical bytes through the state.
// It returns the next state and how many leading bytes of the unit are
// withheld. Outside Skipping nothing is withheld. Reaching the offset
// moves the state to Verifying.
func Consume(state ResumeState, unitLength int64) (ResumeState, int64) {
	if state.Phase != Skipping {
		return state, 0
	}
	withheld := min(unitLength, state.ContinueStart-state.Skipped)
	state.Skipped += withheld
	if state.Skipped == state.ContinueStart {
		state.Phase = Verifying
	}
	return state, withheld
}

// Verdict applies the server's continue_good to a verifying state.
func Verdict(state ResumeState, good bool) ResumeState {
	if state.Phase != Verifying {
		return state
	}
	if good {
		state.Phase = Streaming
	} else {
		state.Phase = Restarting
	}
	return state
}

// Restart returns the state for the second attempt after a rejection:
// resume disabled, streaming from the beginning.
func Restart() ResumeState {
	return ResumeState{Phase: Streaming, ContinueStart: NoResume}
}
