// Package tictactoe defines the example game used by the demo binary
// and the integration tests: a 3x3 grid, one move, automatic turn
// end, and victory/draw detection.
package tictactoe

import (
	"encoding/json"

	"github.com/sachgits/boardgame.io/internal/bot"
	"github.com/sachgits/boardgame.io/internal/game"
)

// Board is the G payload: nine cells owned by "" (open) or a player
// id.
type Board struct {
	Cells []string `json:"cells"`
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Result is the gameover value.
type Result struct {
	Winner string `json:"winner,omitempty"`
	Draw   bool   `json:"draw,omitempty"`
}

// Game returns the tic-tac-toe definition.
func Game() *game.Game {
	return &game.Game{
		Name:  "tic-tac-toe",
		Setup: setup,
		Moves: map[string]game.MoveFn{
			"clickCell": clickCell,
		},
		Flow: &game.Flow{
			EndTurnIf: func(any, game.Ctx) bool { return true },
			EndGameIf: endGameIf,
		},
		HydrateG: hydrate,
	}
}

func setup(int) any {
	return Board{Cells: make([]string, 9)}
}

// clickCell claims an open cell for the moving player. Claims on
// occupied or out-of-range cells are invalid.
func clickCell(g any, ctx game.Ctx, args ...any) any {
	board, ok := g.(Board)
	if !ok || len(args) != 1 {
		return nil
	}
	cell, ok := cellIndex(args[0])
	if !ok || cell < 0 || cell >= len(board.Cells) || board.Cells[cell] != "" {
		return nil
	}

	next := Board{Cells: append([]string(nil), board.Cells...)}
	next.Cells[cell] = ctx.CurrentPlayer
	return next
}

func endGameIf(g any, ctx game.Ctx) any {
	board, ok := g.(Board)
	if !ok {
		return nil
	}
	for _, line := range lines {
		owner := board.Cells[line[0]]
		if owner != "" && owner == board.Cells[line[1]] && owner == board.Cells[line[2]] {
			return Result{Winner: owner}
		}
	}
	for _, cell := range board.Cells {
		if cell == "" {
			return nil
		}
	}
	return Result{Draw: true}
}

// Enumerate lists the open cells as candidate moves, for autoplay.
func Enumerate(g any, ctx game.Ctx, playerID string) []bot.Move {
	board, ok := hydrate(g).(Board)
	if !ok {
		return nil
	}
	var moves []bot.Move
	for i, owner := range board.Cells {
		if owner == "" {
			moves = append(moves, bot.Move{Name: "clickCell", Args: []any{i}})
		}
	}
	return moves
}

// hydrate restores a Board from the generic value a JSON round trip
// produces.
func hydrate(g any) any {
	switch v := g.(type) {
	case Board:
		return v
	case map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return g
		}
		var board Board
		if err := json.Unmarshal(raw, &board); err != nil {
			return g
		}
		return board
	default:
		return g
	}
}

// cellIndex accepts the numeric types a cell argument may arrive as:
// int locally, float64 after JSON decoding.
func cellIndex(arg any) (int, bool) {
	switch v := arg.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
