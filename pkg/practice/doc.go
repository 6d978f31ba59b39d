// Package practice runs repertoire rehearsal rounds over an opening graph.
//
// # State Machine
//
// A [Session] alternates between the computer, which plays the opponent's
// moves, and the user, who has to find the prepared reply:
//
//	ComputerTurn ──leaf──────────────▶ Success
//	     │  ▲
//	 move│  │correct guess
//	     ▼  │
//	   UserTurn ──wrong guess────────▶ Failed(expected)
//
// In [ComputerTurn] the session ends the round with [Success] when the
// current position is a leaf. When the repertoire color is to move it hands
// over to [UserTurn] without playing. Otherwise it picks one of the explored
// moves uniformly at random, so rarely explored branches come up as often as
// heavily explored ones. A computer move into a leaf keeps the session in
// [ComputerTurn]; the next [Session.Step] reports [Success].
//
// In [UserTurn], [Session.Guess] checks the user's move. Illegal moves are
// rejected with an error and change nothing. A correct move advances to
// [ComputerTurn]; any other legal move ends the round in [Failed] and records
// the moves that would have been correct.
//
// [Session.Restart] begins a new round at the start position.
package practice
