// Package bot provides autoplay strategies: objects that, given game
// state and a player id, propose one action for that player.
package bot

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
)

// Move is one candidate move an Enumerate function may propose.
type Move struct {
	Name string
	Args []any
}

// Enumerate lists the legal moves for a player on the given state.
type Enumerate func(g any, ctx game.Ctx, playerID string) []Move

// Metadata describes how a strategy arrived at its choice; it rides
// on the dispatched action's payload for debugging and replays.
type Metadata struct {
	Strategy   string `json:"strategy"`
	Candidates int    `json:"candidates"`
}

// RandomConfig configures NewRandom.
type RandomConfig struct {
	Game      *game.Game
	Enumerate Enumerate
	// Seed of zero means a time-derived seed.
	Seed   int64
	Logger *zap.Logger
}

// Random picks uniformly among the enumerated legal moves.
type Random struct {
	game      *game.Game
	enumerate Enumerate
	rng       *rand.Rand
	logger    *zap.Logger
}

// NewRandom creates a random-playout strategy.
func NewRandom(cfg RandomConfig) *Random {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	return &Random{
		game:      cfg.Game,
		enumerate: cfg.Enumerate,
		rng:       rng,
		logger:    logger,
	}
}

// Play proposes one move for playerID. ok is false when the position
// offers no legal moves.
func (b *Random) Play(state game.State, playerID string) (action.Action, any, bool) {
	moves := b.enumerate(state.G, state.Ctx, playerID)
	if len(moves) == 0 {
		b.logger.Debug("random bot has no moves", zap.String("player_id", playerID))
		return action.Action{}, nil, false
	}

	var idx int
	if b.rng != nil {
		idx = b.rng.Intn(len(moves))
	} else {
		idx = rand.Intn(len(moves))
	}
	chosen := moves[idx]

	b.logger.Debug("random bot chose move",
		zap.String("player_id", playerID),
		zap.String("move", chosen.Name),
		zap.Int("candidates", len(moves)),
	)

	act := action.NewMakeMove(chosen.Name, chosen.Args, playerID, "")
	return act, Metadata{Strategy: "random", Candidates: len(moves)}, true
}
