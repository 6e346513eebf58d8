package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/apperrors"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/repository"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/testutil"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/washdate"
)

// assertStatusInvariant checks, directly against the stored row, that
// status == completed <=> completed == 1 <=> completed_date is set. Every
// mutating operation must leave the row in this state.
func assertStatusInvariant(t *testing.T, db *sql.DB, id int64) {
	t.Helper()

	var status string
	var completed int
	var completedDate sql.NullString

	err := db.QueryRow(`SELECT status, completed, completed_date FROM entries WHERE id = ?`, id).
		Scan(&status, &completed, &completedDate)
	if err != nil {
		t.Fatalf("Failed to read entry %d: %v", id, err)
	}

	isCompleted := status == string(model.StatusCompleted)
	if (completed == 1) != isCompleted {
		t.Errorf("entry %d: status %q but completed = %d", id, status, completed)
	}
	if completedDate.Valid != isCompleted {
		t.Errorf("entry %d: status %q but completed_date set = %v", id, status, completedDate.Valid)
	}
}

func TestEntryRepository_InsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEntryRepository(db)

	sellDate := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	entry := model.Entry{
		Account:    "Acct-100",
		Tickers:    "VTI,VOO",
		HeldIn:     "CASH",
		Broker:     "SCHWAB",
		SellDate:   sellDate,
		TargetDate: washdate.TargetDate(sellDate),
		Comments:   "tax loss pair",
		Status:     model.StatusPending,
	}

	if err := repo.Insert(&entry); err != nil {
		t.Fatalf("Insert() returned unexpected error: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("Insert() did not assign an ID")
	}

	got, err := repo.GetByID(entry.ID)
	if err != nil {
		t.Fatalf("GetByID() returned unexpected error: %v", err)
	}

	if got.Account != "Acct-100" {
		t.Errorf("Account = %q, want Acct-100 (original casing preserved)", got.Account)
	}
	if got.Tickers != "VTI,VOO" || got.HeldIn != "CASH" || got.Broker != "SCHWAB" {
		t.Errorf("unexpected fields: %+v", got)
	}
	if !got.SellDate.Equal(sellDate) {
		t.Errorf("SellDate = %s, want %s", got.SellDate, sellDate)
	}
	if !got.TargetDate.Equal(washdate.TargetDate(sellDate)) {
		t.Errorf("TargetDate = %s, want %s", got.TargetDate, washdate.TargetDate(sellDate))
	}
	if got.Status != model.StatusPending || got.Completed || got.CompletedDate != nil {
		t.Errorf("fresh entry not pending: %+v", got)
	}

	assertStatusInvariant(t, db, entry.ID)

	t.Run("IDs are monotonic", func(t *testing.T) {
		second := testutil.NewEntry().Build(t, db)
		if second.ID <= entry.ID {
			t.Errorf("second ID %d not greater than first %d", second.ID, entry.ID)
		}
	})

	t.Run("missing entry returns not found", func(t *testing.T) {
		_, err := repo.GetByID(99999)
		if !errors.Is(err, apperrors.ErrEntryNotFound) {
			t.Errorf("GetByID() error = %v, want ErrEntryNotFound", err)
		}
	})
}

func TestEntryRepository_Update(t *testing.T) {
	t.Run("rewrites editable fields but never status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewEntryRepository(db)

		created := testutil.NewEntry().WithStatus(model.StatusInProgress).Build(t, db)

		newSellDate := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
		updated := model.Entry{
			ID:         created.ID,
			Account:    "Acct-200",
			Tickers:    "SPY",
			HeldIn:     "VTI",
			Broker:     "UBS",
			SellDate:   newSellDate,
			TargetDate: washdate.TargetDate(newSellDate),
			Comments:   "rebooked",
		}
		if err := repo.Update(&updated); err != nil {
			t.Fatalf("Update() returned unexpected error: %v", err)
		}

		got, err := repo.GetByID(created.ID)
		if err != nil {
			t.Fatalf("GetByID() returned unexpected error: %v", err)
		}

		if got.Account != "Acct-200" || got.Tickers != "SPY" || got.Broker != "UBS" {
			t.Errorf("update did not apply: %+v", got)
		}
		if !got.TargetDate.Equal(washdate.TargetDate(newSellDate)) {
			t.Errorf("TargetDate = %s, want recomputed %s", got.TargetDate, washdate.TargetDate(newSellDate))
		}
		if got.Status != model.StatusInProgress {
			t.Errorf("Status = %s, update must not alter workflow stage", got.Status)
		}

		assertStatusInvariant(t, db, created.ID)
	})

	t.Run("missing entry returns not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewEntryRepository(db)

		entry := model.Entry{ID: 42, Account: "A", Tickers: "T", HeldIn: "CASH", Broker: "UBS",
			SellDate: washdate.Today(), TargetDate: washdate.TargetDate(washdate.Today())}
		if err := repo.Update(&entry); !errors.Is(err, apperrors.ErrEntryNotFound) {
			t.Errorf("Update() error = %v, want ErrEntryNotFound", err)
		}
	})
}

func TestEntryRepository_Delete(t *testing.T) {
	t.Run("removes entry and its attachments together", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewEntryRepository(db)

		entry := testutil.NewEntry().Build(t, db)
		testutil.NewAttachment(entry.ID).Build(t, db)
		testutil.NewAttachment(entry.ID).Build(t, db)

		keep := testutil.NewEntry().Build(t, db)
		keptAttachment := testutil.NewAttachment(keep.ID).Build(t, db)

		if err := repo.Delete(entry.ID); err != nil {
			t.Fatalf("Delete() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "entries", 1)
		testutil.AssertRowCount(t, db, "attachments", 1)

		// The surviving entry's attachment is untouched.
		attachmentRepo := repository.NewAttachmentRepository(db)
		metas, err := attachmentRepo.ListMetadata(keep.ID)
		if err != nil {
			t.Fatalf("ListMetadata() returned unexpected error: %v", err)
		}
		if len(metas) != 1 || metas[0].ID != keptAttachment.ID {
			t.Errorf("expected surviving attachment %s, got %+v", keptAttachment.ID, metas)
		}

		// The deleted entry is gone from the unfiltered list.
		entries, err := repo.List(model.FilterAll, washdate.Today())
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		for _, e := range entries {
			if e.ID == entry.ID {
				t.Error("deleted entry still present in list")
			}
		}
	})

	t.Run("missing entry returns not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewEntryRepository(db)

		if err := repo.Delete(12345); !errors.Is(err, apperrors.ErrEntryNotFound) {
			t.Errorf("Delete() error = %v, want ErrEntryNotFound", err)
		}
	})
}

func TestEntryRepository_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEntryRepository(db)

	entry := testutil.NewEntry().Build(t, db)
	today := washdate.Today()

	t.Run("completed stamps the mirror fields", func(t *testing.T) {
		if err := repo.SetStatus(entry.ID, model.StatusCompleted, &today); err != nil {
			t.Fatalf("SetStatus() returned unexpected error: %v", err)
		}

		got, _ := repo.GetByID(entry.ID)
		if got.Status != model.StatusCompleted || !got.Completed || got.CompletedDate == nil {
			t.Errorf("completed entry inconsistent: %+v", got)
		}
		if !got.CompletedDate.Equal(today) {
			t.Errorf("CompletedDate = %s, want %s", got.CompletedDate, today)
		}
		assertStatusInvariant(t, db, entry.ID)
	})

	t.Run("reopening clears the mirror fields", func(t *testing.T) {
		if err := repo.SetStatus(entry.ID, model.StatusPending, nil); err != nil {
			t.Fatalf("SetStatus() returned unexpected error: %v", err)
		}

		got, _ := repo.GetByID(entry.ID)
		if got.Status != model.StatusPending || got.Completed || got.CompletedDate != nil {
			t.Errorf("reopened entry inconsistent: %+v", got)
		}
		assertStatusInvariant(t, db, entry.ID)
	})

	t.Run("missing entry returns not found", func(t *testing.T) {
		if err := repo.SetStatus(99999, model.StatusCompleted, &today); !errors.Is(err, apperrors.ErrEntryNotFound) {
			t.Errorf("SetStatus() error = %v, want ErrEntryNotFound", err)
		}
	})
}

func TestEntryRepository_CycleStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEntryRepository(db)

	entry := testutil.NewEntry().Build(t, db)
	today := washdate.Today()

	// A fresh pending entry cycles through in_progress, completed, pending.
	want := []model.Status{model.StatusInProgress, model.StatusCompleted, model.StatusPending}
	for i, expected := range want {
		got, err := repo.CycleStatus(entry.ID, today)
		if err != nil {
			t.Fatalf("CycleStatus() step %d returned unexpected error: %v", i, err)
		}
		if got != expected {
			t.Errorf("CycleStatus() step %d = %s, want %s", i, got, expected)
		}

		assertStatusInvariant(t, db, entry.ID)

		stored, _ := repo.GetByID(entry.ID)
		if stored.Status != expected {
			t.Errorf("stored status after step %d = %s, want %s", i, stored.Status, expected)
		}
		if expected == model.StatusCompleted {
			if stored.CompletedDate == nil || !stored.CompletedDate.Equal(today) {
				t.Errorf("CompletedDate after completing = %v, want %s", stored.CompletedDate, today)
			}
		} else if stored.CompletedDate != nil {
			t.Errorf("CompletedDate after %s = %v, want nil", expected, stored.CompletedDate)
		}
	}

	t.Run("missing entry returns not found", func(t *testing.T) {
		if _, err := repo.CycleStatus(99999, today); !errors.Is(err, apperrors.ErrEntryNotFound) {
			t.Errorf("CycleStatus() error = %v, want ErrEntryNotFound", err)
		}
	})
}

func TestEntryRepository_BusyStore(t *testing.T) {
	path := testutil.SetupFileDB(t)

	open := func(pragma string) *sql.DB {
		db, err := sql.Open("sqlite", path)
		if err != nil {
			t.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		return db
	}

	holder := open("PRAGMA busy_timeout = 5000")
	// Zero timeout so the contended write surfaces immediately instead of
	// waiting out the bounded retry window.
	contender := open("PRAGMA busy_timeout = 0")

	// Hold the write lock with an uncommitted insert on the first connection.
	tx, err := holder.Begin()
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO entries (account, tickers, held_in, broker, sell_date, target_date)
		 VALUES ('holder', 'VTI', 'CASH', 'UBS', '2024-01-03', '2024-02-05')`,
	); err != nil {
		t.Fatalf("Failed to insert on holding connection: %v", err)
	}

	sellDate := washdate.Today()
	entry := model.Entry{
		Account:    "contender",
		Tickers:    "VOO",
		HeldIn:     "CASH",
		Broker:     "SCHWAB",
		SellDate:   sellDate,
		TargetDate: washdate.TargetDate(sellDate),
		Status:     model.StatusPending,
	}

	repo := repository.NewEntryRepository(contender)
	if err := repo.Insert(&entry); !errors.Is(err, apperrors.ErrStoreBusy) {
		t.Fatalf("Insert() under a held write lock error = %v, want ErrStoreBusy", err)
	}

	// Once the holding writer commits, the same operation goes through.
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit holding transaction: %v", err)
	}
	if err := repo.Insert(&entry); err != nil {
		t.Fatalf("Insert() after lock release returned unexpected error: %v", err)
	}
	testutil.AssertRowCount(t, contender, "entries", 2)
}

func TestEntryRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEntryRepository(db)
	today := washdate.Today()

	// Past target, still open: ready.
	ready := testutil.NewEntry().WithAccount("ready-acct").SoldDaysAgo(40).Build(t, db)
	// Future target: waiting.
	waiting := testutil.NewEntry().WithAccount("waiting-acct").Build(t, db)
	// Past target but completed: must never appear in ready.
	finished := testutil.NewEntry().WithAccount("done-acct").SoldDaysAgo(40).
		CompletedOn(today.AddDate(0, 0, -1)).Build(t, db)
	finishedLater := testutil.NewEntry().WithAccount("done-acct-2").SoldDaysAgo(45).
		CompletedOn(today).Build(t, db)
	inProgress := testutil.NewEntry().WithAccount("busy-acct").WithStatus(model.StatusInProgress).Build(t, db)

	ids := func(entries []model.Entry) []int64 {
		out := make([]int64, len(entries))
		for i, e := range entries {
			out[i] = e.ID
		}
		return out
	}

	t.Run("ready excludes completed entries regardless of date", func(t *testing.T) {
		entries, err := repo.List(model.FilterReady, today)
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != ready.ID {
			t.Errorf("List(ready) = %v, want [%d]", ids(entries), ready.ID)
		}
	})

	t.Run("waiting excludes ready and completed", func(t *testing.T) {
		entries, err := repo.List(model.FilterWaiting, today)
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}

		found := map[int64]bool{}
		for _, e := range entries {
			found[e.ID] = true
		}
		if !found[waiting.ID] || !found[inProgress.ID] {
			t.Errorf("List(waiting) = %v, want %d and %d", ids(entries), waiting.ID, inProgress.ID)
		}
		if found[ready.ID] || found[finished.ID] {
			t.Errorf("List(waiting) = %v, must not contain ready or completed entries", ids(entries))
		}
	})

	t.Run("completed ordered by completion date descending", func(t *testing.T) {
		entries, err := repo.List(model.FilterCompleted, today)
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("List(completed) returned %d entries, want 2", len(entries))
		}
		if entries[0].ID != finishedLater.ID || entries[1].ID != finished.ID {
			t.Errorf("List(completed) = %v, want [%d %d]", ids(entries), finishedLater.ID, finished.ID)
		}
	})

	t.Run("stored-status filters match exactly", func(t *testing.T) {
		entries, err := repo.List(model.FilterInProgress, today)
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != inProgress.ID {
			t.Errorf("List(in_progress) = %v, want [%d]", ids(entries), inProgress.ID)
		}
	})

	t.Run("all returns everything", func(t *testing.T) {
		entries, err := repo.List(model.FilterAll, today)
		if err != nil {
			t.Fatalf("List() returned unexpected error: %v", err)
		}
		if len(entries) != 5 {
			t.Errorf("List(all) returned %d entries, want 5", len(entries))
		}
	})

	t.Run("unknown filter is rejected", func(t *testing.T) {
		if _, err := repo.List("overdue", today); !errors.Is(err, apperrors.ErrInvalidFilter) {
			t.Errorf("List() error = %v, want ErrInvalidFilter", err)
		}
	})
}

func TestEntryRepository_ListOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEntryRepository(db)
	today := washdate.Today()

	later := testutil.NewEntry().WithAccount("anyone").
		WithTargetDate(today.AddDate(0, 0, 20)).Build(t, db)
	// Same target date: account tiebreak is case-insensitive.
	second := testutil.NewEntry().WithAccount("beta").
		WithTargetDate(today.AddDate(0, 0, 10)).Build(t, db)
	first := testutil.NewEntry().WithAccount("ALPHA").
		WithTargetDate(today.AddDate(0, 0, 10)).Build(t, db)

	entries, err := repo.List(model.FilterAll, today)
	if err != nil {
		t.Fatalf("List() returned unexpected error: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	if entries[0].ID != first.ID || entries[1].ID != second.ID || entries[2].ID != later.ID {
		t.Errorf("order = [%d %d %d], want [%d %d %d]",
			entries[0].ID, entries[1].ID, entries[2].ID, first.ID, second.ID, later.ID)
	}
}

func TestEntryRepository_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEntryRepository(db)

	byAccount := testutil.NewEntry().WithAccount("Smith Family Trust").WithTickers("VTI").Build(t, db)
	byTicker := testutil.NewEntry().WithAccount("other").WithTickers("SMTH,VOO").Build(t, db)
	testutil.NewEntry().WithAccount("unrelated").WithTickers("QQQ").Build(t, db)

	t.Run("matches account or tickers case-insensitively", func(t *testing.T) {
		entries, err := repo.Search("smth")
		if err != nil {
			t.Fatalf("Search() returned unexpected error: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != byTicker.ID {
			t.Errorf("Search(smth) matched %d entries, want ticker entry only", len(entries))
		}

		entries, err = repo.Search("smith")
		if err != nil {
			t.Fatalf("Search() returned unexpected error: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != byAccount.ID {
			t.Errorf("Search(smith) matched %d entries, want account entry only", len(entries))
		}
	})

	t.Run("no matches yields empty slice", func(t *testing.T) {
		entries, err := repo.Search("zzz-nothing")
		if err != nil {
			t.Fatalf("Search() returned unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("Search() matched %d entries, want 0", len(entries))
		}
	})

	t.Run("LIKE wildcards in the query are literal", func(t *testing.T) {
		entries, err := repo.Search("%")
		if err != nil {
			t.Fatalf("Search() returned unexpected error: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("Search(%%) matched %d entries, want 0", len(entries))
		}
	})
}

func TestEntryRepository_AccountCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEntryRepository(db)

	testutil.NewEntry().WithAccount("Alpha").Build(t, db)
	testutil.NewEntry().WithAccount("ALPHA").Build(t, db)
	testutil.NewEntry().WithAccount("beta").Build(t, db)

	counts, err := repo.AccountCounts()
	if err != nil {
		t.Fatalf("AccountCounts() returned unexpected error: %v", err)
	}

	if counts["ALPHA"] != 2 {
		t.Errorf("counts[ALPHA] = %d, want 2 (case-insensitive grouping)", counts["ALPHA"])
	}
	if counts["BETA"] != 1 {
		t.Errorf("counts[BETA] = %d, want 1", counts["BETA"])
	}
	if len(counts) != 2 {
		t.Errorf("AccountCounts() returned %d accounts, want 2", len(counts))
	}
}

func TestEntryRepository_Stats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEntryRepository(db)
	today := washdate.Today()
	ctx := context.Background()

	baseline, err := repo.Stats(ctx, today)
	if err != nil {
		t.Fatalf("Stats() returned unexpected error: %v", err)
	}
	if baseline.Total != 0 {
		t.Fatalf("empty store Total = %d, want 0", baseline.Total)
	}

	testutil.NewEntry().WithTargetDate(today.AddDate(0, 0, 20)).Build(t, db) // waiting
	testutil.NewEntry().WithTargetDate(today).Build(t, db)                   // ready + due today + due this week
	testutil.NewEntry().WithTargetDate(today.AddDate(0, 0, 7)).Build(t, db)  // waiting + due this week (inclusive end)
	testutil.NewEntry().WithTargetDate(today.AddDate(0, 0, 8)).Build(t, db)  // waiting, outside the week
	testutil.NewEntry().WithTargetDate(today.AddDate(0, 0, -3)).Build(t, db) // ready (overdue)
	testutil.NewEntry().SoldDaysAgo(40).CompletedOn(today).Build(t, db)      // completed

	stats, err := repo.Stats(ctx, today)
	if err != nil {
		t.Fatalf("Stats() returned unexpected error: %v", err)
	}

	want := model.Stats{Waiting: 3, Ready: 2, DueToday: 1, DueThisWeek: 2, Completed: 1, Total: 6}
	if stats != want {
		t.Errorf("Stats() = %+v, want %+v", stats, want)
	}

	t.Run("completing an entry moves it between buckets", func(t *testing.T) {
		entry := testutil.NewEntry().WithTargetDate(today.AddDate(0, 0, 15)).Build(t, db)

		before, err := repo.Stats(ctx, today)
		if err != nil {
			t.Fatalf("Stats() returned unexpected error: %v", err)
		}

		if err := repo.SetStatus(entry.ID, model.StatusCompleted, &today); err != nil {
			t.Fatalf("SetStatus() returned unexpected error: %v", err)
		}

		after, err := repo.Stats(ctx, today)
		if err != nil {
			t.Fatalf("Stats() returned unexpected error: %v", err)
		}

		if after.Completed != before.Completed+1 {
			t.Errorf("Completed = %d, want %d", after.Completed, before.Completed+1)
		}
		if after.Waiting != before.Waiting-1 {
			t.Errorf("Waiting = %d, want %d", after.Waiting, before.Waiting-1)
		}
		if after.Total != before.Total {
			t.Errorf("Total = %d, want unchanged %d", after.Total, before.Total)
		}
	})
}
