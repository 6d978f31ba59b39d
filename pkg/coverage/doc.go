// Package coverage estimates how well a repertoire covers the games an
// opponent is likely to play.
//
// Starting from the root with probability 1, [Analyze] walks the graph in
// topological order. At own positions the probability flows along the
// prepared move (split evenly if a conflict left several). At opponent
// positions a [MoveSource], typically the Lichess opening explorer, supplies
// how often each reply is played, and the probability is split accordingly.
// Replies that lead outside the graph become unexplored entries; the ones with
// the highest probability are the gaps most worth preparing next.
package coverage
