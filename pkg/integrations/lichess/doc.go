// Package lichess provides a client for the Lichess opening explorer.
//
// The explorer reports, for any position reached from the standard starting
// position, how often each move was played in one of two databases:
//
//   - "masters": over-the-board games between titled players
//   - "lichess": online games, filtered by speed and rating band
//
// [Client.Position] returns the raw statistics; [Client.MoveProbabilities]
// turns them into the share of games in which each move was chosen, which is
// what coverage analysis consumes.
//
// Responses are cached and requests are limited to one per second by default,
// the pace the public explorer tolerates without answering 429.
package lichess
