package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sachgits/boardgame.io/internal/action"
	"github.com/sachgits/boardgame.io/internal/game"
)

func enumerateFixed(moves []Move) Enumerate {
	return func(g any, ctx game.Ctx, playerID string) []Move {
		return moves
	}
}

func TestRandomPlaysEnumeratedMove(t *testing.T) {
	b := NewRandom(RandomConfig{
		Enumerate: enumerateFixed([]Move{
			{Name: "a", Args: []any{1}},
			{Name: "b"},
			{Name: "c"},
		}),
		Seed: 42,
	})

	act, metadata, ok := b.Play(game.State{}, "0")

	require.True(t, ok)
	assert.Equal(t, action.MakeMove, act.Type)
	assert.Contains(t, []string{"a", "b", "c"}, act.Payload.Name)
	assert.Equal(t, "0", act.Payload.PlayerID)
	assert.Equal(t, Metadata{Strategy: "random", Candidates: 3}, metadata)
}

func TestRandomDeclinesWithoutMoves(t *testing.T) {
	b := NewRandom(RandomConfig{Enumerate: enumerateFixed(nil)})

	_, _, ok := b.Play(game.State{}, "0")
	assert.False(t, ok)
}

func TestRandomSeededIsDeterministic(t *testing.T) {
	moves := []Move{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}

	pick := func() []string {
		b := NewRandom(RandomConfig{Enumerate: enumerateFixed(moves), Seed: 7})
		var names []string
		for i := 0; i < 10; i++ {
			act, _, ok := b.Play(game.State{}, "0")
			require.True(t, ok)
			names = append(names, act.Payload.Name)
		}
		return names
	}

	assert.Equal(t, pick(), pick())
}
