package model_test

import (
	"testing"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
)

func TestStatus_Next(t *testing.T) {
	transitions := map[model.Status]model.Status{
		model.StatusPending:    model.StatusInProgress,
		model.StatusInProgress: model.StatusCompleted,
		model.StatusCompleted:  model.StatusPending,
	}

	for from, want := range transitions {
		if got := from.Next(); got != want {
			t.Errorf("Next(%s) = %s, want %s", from, got, want)
		}
	}

	t.Run("three steps return to the original stage", func(t *testing.T) {
		for _, start := range []model.Status{model.StatusPending, model.StatusInProgress, model.StatusCompleted} {
			if got := start.Next().Next().Next(); got != start {
				t.Errorf("cycling %s three times = %s, want %s", start, got, start)
			}
		}
	})
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []model.Status{model.StatusPending, model.StatusInProgress, model.StatusCompleted} {
		if !s.Valid() {
			t.Errorf("expected %s to be valid", s)
		}
	}

	for _, s := range []model.Status{"", "done", "COMPLETED"} {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestValidBroker(t *testing.T) {
	for _, b := range model.Brokers {
		if !model.ValidBroker(b) {
			t.Errorf("expected broker %q to be valid", b)
		}
	}

	for _, b := range []string{"", "schwab", "FIDELITY"} {
		if model.ValidBroker(b) {
			t.Errorf("expected broker %q to be invalid", b)
		}
	}
}

func TestEntryFilter_Valid(t *testing.T) {
	valid := []model.EntryFilter{
		model.FilterAll, model.FilterWaiting, model.FilterReady,
		model.FilterCompleted, model.FilterPending, model.FilterInProgress,
	}
	for _, f := range valid {
		if !f.Valid() {
			t.Errorf("expected filter %q to be valid", f)
		}
	}

	if model.EntryFilter("overdue").Valid() {
		t.Error("expected unknown filter to be invalid")
	}
}
