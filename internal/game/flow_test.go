package game

import "testing"

func TestFlowTurnSequence(t *testing.T) {
	f := &Flow{}
	ctx := f.setup(3)

	expected := []struct {
		turn   int
		player string
	}{
		{0, "0"},
		{1, "1"},
		{2, "2"},
		{3, "0"},
		{4, "1"},
	}

	for i, exp := range expected {
		if ctx.Turn != exp.turn {
			t.Fatalf("step %d: expected turn %d, got %d", i, exp.turn, ctx.Turn)
		}
		if ctx.CurrentPlayer != exp.player {
			t.Fatalf("step %d: expected current player %s, got %s", i, exp.player, ctx.CurrentPlayer)
		}
		if len(ctx.ActionPlayers) != 1 || ctx.ActionPlayers[0] != exp.player {
			t.Fatalf("step %d: expected action players [%s], got %v", i, exp.player, ctx.ActionPlayers)
		}
		ctx = f.endTurn(ctx)
	}
}

func TestFlowFirstPlayer(t *testing.T) {
	f := &Flow{FirstPlayer: "1"}
	ctx := f.setup(2)

	if ctx.CurrentPlayer != "1" {
		t.Fatalf("expected first player 1, got %s", ctx.CurrentPlayer)
	}
	ctx = f.endTurn(ctx)
	if ctx.CurrentPlayer != "0" {
		t.Fatalf("expected wrap to player 0, got %s", ctx.CurrentPlayer)
	}
}

func TestFlowCanPlayerMakeMove(t *testing.T) {
	f := &Flow{}
	ctx := f.setup(2)

	if !f.CanPlayerMakeMove(nil, ctx, "0") {
		t.Fatal("expected player 0 to be able to move on turn 0")
	}
	if f.CanPlayerMakeMove(nil, ctx, "1") {
		t.Fatal("expected player 1 to be unable to move on turn 0")
	}

	ctx.Gameover = "done"
	if f.CanPlayerMakeMove(nil, ctx, "0") {
		t.Fatal("expected nobody to move once the game is over")
	}
}

func TestFlowUnknownEventIgnored(t *testing.T) {
	f := &Flow{}
	ctx := f.setup(2)

	next, ok := f.processEvent(nil, ctx, "explode")
	if ok {
		t.Fatal("expected unknown event to be rejected")
	}
	if next.Turn != ctx.Turn || next.CurrentPlayer != ctx.CurrentPlayer {
		t.Fatal("expected context unchanged after unknown event")
	}
}
