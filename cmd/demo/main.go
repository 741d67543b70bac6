// Command demo plays a local game of tic-tac-toe with the random
// autoplay strategy stepping every turn, printing the projected view
// after each move.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/sachgits/boardgame.io/internal/bot"
	"github.com/sachgits/boardgame.io/internal/client"
	"github.com/sachgits/boardgame.io/internal/games/tictactoe"
)

var seed = flag.Int64("seed", 0, "bot seed; 0 means nondeterministic")

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	g := tictactoe.Game()
	c := client.New(client.Config{
		Game:       g,
		NumPlayers: 2,
		GameID:     "demo",
		AI: bot.NewRandom(bot.RandomConfig{
			Game:      g,
			Enumerate: tictactoe.Enumerate,
			Seed:      *seed,
			Logger:    logger,
		}),
		Logger: logger,
	})

	for turn := 0; ; turn++ {
		view := c.State()
		if view.Ctx.Gameover != nil {
			printBoard(view.G)
			if result, ok := view.Ctx.Gameover.(tictactoe.Result); ok {
				if result.Draw {
					fmt.Println("Result: draw")
				} else {
					fmt.Printf("Result: player %s wins\n", result.Winner)
				}
			}
			fmt.Printf("Moves played: %d\n", len(view.Log))
			return
		}

		act, err := c.Step()
		if err != nil {
			logger.Fatal("step failed", zap.Error(err))
		}
		if act == nil {
			logger.Fatal("bot declined to move mid-game", zap.Int("turn", turn))
		}
		printBoard(c.State().G)
	}
}

func printBoard(g any) {
	board, ok := g.(tictactoe.Board)
	if !ok {
		return
	}
	marks := map[string]string{"": ".", "0": "X", "1": "O"}
	var b strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			b.WriteString(marks[board.Cells[row*3+col]])
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	fmt.Println(b.String())
}
