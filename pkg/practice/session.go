package practice

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/observability"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// State is the phase of a practice round.
type State int

const (
	ComputerTurn State = iota
	UserTurn
	Success
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case ComputerTurn:
		return "computer_turn"
	case UserTurn:
		return "user_turn"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Done reports whether the round is over.
func (s State) Done() bool { return s == Success || s == Failed }

// ErrWrongState is returned when an operation does not fit the current state.
var ErrWrongState = errors.New(errors.ErrCodeInvalidState, "operation not allowed in current state")

// Option configures a [Session].
type Option func(*Session)

// WithRand sets the source of the computer's choices.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithStart starts rounds at n instead of the root.
func WithStart(n *graph.Node) Option {
	return func(s *Session) {
		if n != nil {
			s.start = n
		}
	}
}

// Session is a practice session over one graph. It is not safe for
// concurrent use.
type Session struct {
	g     *graph.Graph
	rng   *rand.Rand
	start *graph.Node

	cur      *graph.Node
	state    State
	played   []rules.Move
	guess    string
	expected []string
}

// New returns a session in [ComputerTurn] at the start position.
func New(g *graph.Graph, opts ...Option) *Session {
	s := &Session{
		g:     g,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		start: g.Root(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Restart()
	return s
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Current returns the node of the current position.
func (s *Session) Current() *graph.Node { return s.cur }

// Start returns the node rounds start from.
func (s *Session) Start() *graph.Node { return s.start }

// Played returns the moves of the current round.
func (s *Session) Played() []rules.Move { return slices.Clone(s.played) }

// Expected returns the correct moves after a [Failed] round, sorted.
func (s *Session) Expected() []string { return slices.Clone(s.expected) }

// Restart begins a new round at the start position.
func (s *Session) Restart() {
	s.cur = s.start
	s.state = ComputerTurn
	s.played = s.played[:0]
	s.guess = ""
	s.expected = nil
}

// Step runs the computer's turn. It returns the move played and true, or false
// when the turn passed without a move (round over or user to move).
func (s *Session) Step() (rules.Move, bool, error) {
	if s.state != ComputerTurn {
		return rules.Move{}, false, ErrWrongState
	}
	if s.cur.IsLeaf() {
		s.finish(Success)
		return rules.Move{}, false, nil
	}
	if s.cur.Turn() == s.g.Color() {
		s.state = UserTurn
		return rules.Move{}, false, nil
	}

	edges := s.cur.Edges()
	e := edges[s.rng.IntN(len(edges))]
	s.played = append(s.played, e.Move)
	s.cur = e.To
	if !s.cur.IsLeaf() {
		s.state = UserTurn
	}
	return e.Move, true, nil
}

// Guess checks the user's move in [UserTurn]. It reports whether the move was
// one of the prepared moves. Illegal moves return an
// *errors.IllegalMoveError and leave the session unchanged.
func (s *Session) Guess(move string) (bool, error) {
	if s.state != UserTurn {
		return false, ErrWrongState
	}
	st, err := s.g.Play(s.cur, move)
	if err != nil {
		return false, err
	}
	s.played = append(s.played, st.Move)
	if st.Edge != nil {
		s.cur = st.Edge.To
		s.state = ComputerTurn
		return true, nil
	}

	s.guess = st.Move.SAN
	s.expected = s.cur.Moves()
	slices.Sort(s.expected)
	s.finish(Failed)
	return false, nil
}

// Err returns an *errors.UnknownMoveError describing a [Failed] round and nil
// otherwise.
func (s *Session) Err() error {
	if s.state != Failed {
		return nil
	}
	return &errors.UnknownMoveError{Move: s.guess, Expected: s.Expected()}
}

func (s *Session) finish(state State) {
	s.state = state
	observability.Practice().OnRoundComplete(context.Background(), s.g.Color().String(), state.String(), len(s.played))
}

// Round summarizes the current round.
type Round struct {
	Color    rules.Color
	Start    []string // Moves leading to the start position
	Moves    []string // Moves played in the round
	Outcome  State
	Guess    string   // Wrong move of a failed round
	Expected []string // Correct moves of a failed round
}

// Round returns a summary of the current round.
func (s *Session) Round() Round {
	return Round{
		Color:    s.g.Color(),
		Start:    graph.SANs(s.g.FirstOrigin(s.start)),
		Moves:    graph.SANs(s.played),
		Outcome:  s.state,
		Guess:    s.guess,
		Expected: s.Expected(),
	}
}
