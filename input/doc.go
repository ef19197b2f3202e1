// Package input turns raw controller frames into selection transitions.
//
// A Source yields one Frame per tick. The Gate blocks input until the arm combination is
// held on a present device. The Adapter debounces each d-pad direction on elapsed time
// alone, so a held direction repeats once per interval, and re-aims the side from the
// analog stick outside the deadzone.
package input
