package lichess

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/repertoire/pkg/cache"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/httputil"
	"github.com/matzehuels/repertoire/pkg/integrations"
)

// DefaultBaseURL is the public explorer endpoint.
const DefaultBaseURL = "https://explorer.lichess.ovh"

// Databases accepted by [Options.Database].
const (
	Masters = "masters"
	Lichess = "lichess"
)

var (
	defaultSpeeds  = []string{"bullet", "blitz", "rapid", "classical", "correspondence"}
	defaultRatings = []int{1000, 1200, 1400, 1600, 1800, 2000, 2200, 2500}
)

// Options configures a [Client]. The zero value queries the lichess database
// with every speed and rating band.
type Options struct {
	Database string   // Masters or Lichess (default)
	Speeds   []string // lichess database only
	Ratings  []int    // lichess database only
	Token    string   // optional personal API token
	BaseURL  string   // defaults to DefaultBaseURL

	// RequestsPerSecond caps the request rate. Zero means one per second,
	// negative disables the limit.
	RequestsPerSecond float64
}

// Opening names the opening of a position when the explorer knows it.
type Opening struct {
	ECO  string `json:"eco"`
	Name string `json:"name"`
}

// MoveStats holds the results of the games in which a move was played.
type MoveStats struct {
	UCI           string `json:"uci"`
	SAN           string `json:"san"`
	White         int    `json:"white"`
	Draws         int    `json:"draws"`
	Black         int    `json:"black"`
	AverageRating int    `json:"averageRating"`
}

// Games returns the number of games with this move.
func (m MoveStats) Games() int { return m.White + m.Draws + m.Black }

// PositionStats is the explorer's answer for one position.
type PositionStats struct {
	White   int         `json:"white"`
	Draws   int         `json:"draws"`
	Black   int         `json:"black"`
	Moves   []MoveStats `json:"moves"`
	Opening *Opening    `json:"opening,omitempty"`
}

// Games returns the number of games that reached the position.
func (p *PositionStats) Games() int { return p.White + p.Draws + p.Black }

// Client queries the opening explorer.
type Client struct {
	*integrations.Client
	baseURL string
	opts    Options
	keyer   cache.Keyer
}

// NewClient creates an explorer client caching responses in backend for ttl.
// It fails with ErrCodeInvalidConfig for an unknown database.
func NewClient(backend cache.Cache, ttl time.Duration, opts Options) (*Client, error) {
	switch opts.Database {
	case "":
		opts.Database = Lichess
	case Masters, Lichess:
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown explorer database %q (want %s or %s)", opts.Database, Masters, Lichess)
	}
	if opts.Database == Lichess {
		if len(opts.Speeds) == 0 {
			opts.Speeds = defaultSpeeds
		}
		if len(opts.Ratings) == 0 {
			opts.Ratings = defaultRatings
		}
	} else {
		opts.Speeds, opts.Ratings = nil, nil
	}

	var headers map[string]string
	if opts.Token != "" {
		headers = map[string]string{"Authorization": "Bearer " + opts.Token}
	}

	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	c := &Client{
		Client:  integrations.NewClient(backend, "lichess:", ttl, headers),
		baseURL: base,
		opts:    opts,
		keyer:   cache.NewDefaultKeyer(),
	}
	switch {
	case opts.RequestsPerSecond == 0:
		c.SetRateLimit(1, 1)
	case opts.RequestsPerSecond > 0:
		c.SetRateLimit(opts.RequestsPerSecond, 1)
	}
	return c, nil
}

// Database returns the database the client queries.
func (c *Client) Database() string { return c.opts.Database }

// Position returns the statistics of the position reached by playing uci
// from the starting position. If refresh is true the cache is bypassed.
func (c *Client) Position(ctx context.Context, uci []string, refresh bool) (*PositionStats, error) {
	key := c.keyer.ExplorerKey(c.opts.Database, uci, cache.ExplorerKeyOpts{
		Speeds:  c.opts.Speeds,
		Ratings: c.opts.Ratings,
	})

	var stats PositionStats
	err := c.Cached(ctx, key, refresh, &stats, func() error {
		stats = PositionStats{}
		return c.Get(ctx, c.url(uci), &stats)
	})
	if err != nil {
		return nil, fmt.Errorf("explorer %s [%s]: %w", c.opts.Database, integrations.JoinMoves(uci), rateLimited(err))
	}
	return &stats, nil
}

// rateLimited converts a 429 that survived all retries into an
// *errors.RateLimitedError carrying the server's Retry-After.
func rateLimited(err error) error {
	if !stderrors.Is(err, integrations.ErrRateLimited) {
		return err
	}
	rl := &errors.RateLimitedError{Message: err.Error()}
	var re *httputil.RetryableError
	if errors.As(err, &re) {
		rl.RetryAfter = int(re.After / time.Second)
	}
	return rl
}

// MoveProbabilities returns, for every move the explorer lists after uci,
// the fraction of the position's games in which it was played, keyed by the
// move's UCI. A position without games yields an empty map.
func (c *Client) MoveProbabilities(ctx context.Context, uci []string) (map[string]float64, error) {
	stats, err := c.Position(ctx, uci, false)
	if err != nil {
		return nil, err
	}
	return Probabilities(stats), nil
}

// Probabilities converts explorer statistics to per-move probabilities.
func Probabilities(stats *PositionStats) map[string]float64 {
	out := make(map[string]float64, len(stats.Moves))
	total := stats.Games()
	if total == 0 {
		return out
	}
	for _, m := range stats.Moves {
		out[m.UCI] = float64(m.Games()) / float64(total)
	}
	return out
}

func (c *Client) url(uci []string) string {
	q := url.Values{}
	if c.opts.Database == Lichess {
		q.Set("variant", "standard")
		q.Set("speeds", strings.Join(c.opts.Speeds, ","))
		ratings := make([]string, len(c.opts.Ratings))
		for i, r := range c.opts.Ratings {
			ratings[i] = strconv.Itoa(r)
		}
		q.Set("ratings", strings.Join(ratings, ","))
	}
	q.Set("play", integrations.JoinMoves(uci))
	q.Set("moves", "100")
	q.Set("topGames", "0")
	q.Set("recentGames", "0")
	return c.baseURL + "/" + c.opts.Database + "?" + q.Encode()
}
