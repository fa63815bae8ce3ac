package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Skryldev/boxing-ring/db"
	"github.com/Skryldev/boxing-ring/models"
	"github.com/Skryldev/boxing-ring/repo"
)

// ─────────────────────────────────────────────────────────────────────────────
// Test fixture
// ─────────────────────────────────────────────────────────────────────────────

func newTestStore(t *testing.T) *repo.BoxerStore {
	t.Helper()

	database, err := db.Open(db.Config{
		DSN:          ":memory:",
		DriverName:   "sqlite3",
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := repo.EnsureSchema(context.Background(), database, "sqlite3"); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return repo.NewBoxerStore(database, nil)
}

var (
	ali   = models.CreateBoxerParams{Name: "Ali", Weight: 200, Height: 70, Reach: 74, Age: 28}
	tyson = models.CreateBoxerParams{Name: "Tyson", Weight: 220, Height: 71, Reach: 71, Age: 25}
)

func mustCreate(t *testing.T, s *repo.BoxerStore, p models.CreateBoxerParams) *models.Boxer {
	t.Helper()
	b, err := s.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create %s: %v", p.Name, err)
	}
	return b
}

// ─────────────────────────────────────────────────────────────────────────────
// Create / Get
// ─────────────────────────────────────────────────────────────────────────────

func TestBoxerRepo_CreateThenGetByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := mustCreate(t, s, ali)
	if created.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	fetched, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := models.Boxer{ID: created.ID, Name: "Ali", Weight: 200, Height: 70, Reach: 74, Age: 28}
	if *fetched != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", *fetched, want)
	}
	if fetched.WeightClass() != models.Middleweight {
		t.Fatalf("unexpected weight class: %s", fetched.WeightClass())
	}
}

func TestBoxerRepo_GetByName(t *testing.T) {
	s := newTestStore(t)
	created := mustCreate(t, s, tyson)

	fetched, err := s.GetByName(context.Background(), "Tyson")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if fetched.ID != created.ID || fetched.Reach != 71 {
		t.Fatalf("unexpected boxer: %+v", fetched)
	}
	if fetched.WeightClass() != models.Heavyweight {
		t.Fatalf("unexpected weight class: %s", fetched.WeightClass())
	}
}

func TestBoxerRepo_GetNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetByID(ctx, 99999); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound by id, got %v", err)
	}
	if _, err := s.GetByName(ctx, "Nobody"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound by name, got %v", err)
	}
}

func TestBoxerRepo_Create_Validation(t *testing.T) {
	s := newTestStore(t)
	bad := ali
	bad.Weight = 120

	if _, err := s.Create(context.Background(), bad); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	boxers, _ := s.List(context.Background())
	if len(boxers) != 0 {
		t.Fatalf("invalid boxer must not be stored, found %d", len(boxers))
	}
}

func TestBoxerRepo_Create_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, ali)

	// Every other attribute differs; the name alone decides.
	again := models.CreateBoxerParams{Name: "Ali", Weight: 150, Height: 66, Reach: 60, Age: 35}
	_, err := s.Create(context.Background(), again)
	if !errors.Is(err, models.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete / List
// ─────────────────────────────────────────────────────────────────────────────

func TestBoxerRepo_Delete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := mustCreate(t, s, ali)

	if err := s.Delete(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetByID(ctx, b.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, b.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestBoxerRepo_List(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, ali)
	mustCreate(t, s, tyson)

	boxers, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(boxers) != 2 || boxers[0].Name != "Ali" || boxers[1].Name != "Tyson" {
		t.Fatalf("unexpected list: %+v", boxers)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStats
// ─────────────────────────────────────────────────────────────────────────────

func TestBoxerRepo_UpdateStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := mustCreate(t, s, ali)

	if err := s.UpdateStats(ctx, b.ID, models.Win); err != nil {
		t.Fatalf("win: %v", err)
	}
	if err := s.UpdateStats(ctx, b.ID, models.Win); err != nil {
		t.Fatalf("second win: %v", err)
	}
	if err := s.UpdateStats(ctx, b.ID, models.Loss); err != nil {
		t.Fatalf("loss: %v", err)
	}

	got, _ := s.GetByID(ctx, b.ID)
	if got.Fights != 3 || got.Wins != 2 {
		t.Fatalf("expected fights=3 wins=2, got fights=%d wins=%d", got.Fights, got.Wins)
	}
}

func TestBoxerRepo_UpdateStats_Errors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	b := mustCreate(t, s, ali)

	if err := s.UpdateStats(ctx, b.ID, models.Outcome("draw")); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := s.UpdateStats(ctx, 424242, models.Win); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Leaderboard
// ─────────────────────────────────────────────────────────────────────────────

func TestBoxerRepo_Leaderboard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := mustCreate(t, s, ali)
	ty := mustCreate(t, s, tyson)
	mustCreate(t, s, models.CreateBoxerParams{Name: "Rookie", Weight: 130, Height: 65, Reach: 66, Age: 19})

	// Ali: 1 win of 1 (100%). Tyson: 2 wins of 3 (66.7%).
	for _, step := range []struct {
		id      int64
		outcome models.Outcome
	}{
		{a.ID, models.Win},
		{ty.ID, models.Win},
		{ty.ID, models.Win},
		{ty.ID, models.Loss},
	} {
		if err := s.UpdateStats(ctx, step.id, step.outcome); err != nil {
			t.Fatalf("update stats: %v", err)
		}
	}

	byWins, err := s.GetLeaderboard(ctx, models.SortByWins)
	if err != nil {
		t.Fatalf("leaderboard wins: %v", err)
	}
	if len(byWins) != 2 {
		t.Fatalf("boxers without fights must be excluded, got %d entries", len(byWins))
	}
	if byWins[0].Name != "Tyson" || byWins[1].Name != "Ali" {
		t.Fatalf("unexpected wins order: %s, %s", byWins[0].Name, byWins[1].Name)
	}
	if byWins[0].WinPct != 66.7 || byWins[0].WeightClass != models.Heavyweight {
		t.Fatalf("unexpected entry: %+v", byWins[0])
	}

	byPct, err := s.GetLeaderboard(ctx, models.SortByWinPct)
	if err != nil {
		t.Fatalf("leaderboard pct: %v", err)
	}
	if byPct[0].Name != "Ali" || byPct[0].WinPct != 100 {
		t.Fatalf("unexpected pct leader: %+v", byPct[0])
	}
}

func TestBoxerRepo_Leaderboard_EmptyAndInvalid(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, s, ali)

	board, err := s.GetLeaderboard(ctx, models.SortByWins)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", board)
	}

	if _, err := s.GetLeaderboard(ctx, models.SortKey("losses")); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// RecordFight
// ─────────────────────────────────────────────────────────────────────────────

func TestBoxerStore_RecordFight(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, ali)
	ty := mustCreate(t, s, tyson)

	if err := s.RecordFight(ctx, a.ID, ty.ID); err != nil {
		t.Fatalf("record fight: %v", err)
	}

	winner, _ := s.GetByID(ctx, a.ID)
	loser, _ := s.GetByID(ctx, ty.ID)
	if winner.Fights != 1 || winner.Wins != 1 {
		t.Fatalf("unexpected winner stats: %+v", winner)
	}
	if loser.Fights != 1 || loser.Wins != 0 {
		t.Fatalf("unexpected loser stats: %+v", loser)
	}
}

func TestBoxerStore_RecordFight_RollsBackWinnerWhenLoserMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, ali)

	err := s.RecordFight(ctx, a.ID, 777)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	winner, _ := s.GetByID(ctx, a.ID)
	if winner.Fights != 0 || winner.Wins != 0 {
		t.Fatalf("winner update must roll back, got %+v", winner)
	}
}

func TestBoxerStore_RecordFight_SameBoxer(t *testing.T) {
	s := newTestStore(t)
	a := mustCreate(t, s, ali)
	if err := s.RecordFight(context.Background(), a.ID, a.ID); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestEnsureSchema_UnknownDriver(t *testing.T) {
	if err := repo.EnsureSchema(context.Background(), nil, "oracle"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
