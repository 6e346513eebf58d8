package service

import (
	"context"
	"strings"
	"time"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/api/request"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/model"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/repository"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/validation"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/washdate"
)

// EntryService handles the wash-sale entry lifecycle: validation and
// normalization on the way in, target-date derivation, the workflow status
// cycle, and the read-time eligibility decoration on the way out.
type EntryService struct {
	entryRepo *repository.EntryRepository

	// now is a seam for tests; production uses washdate.Today.
	now func() time.Time
}

// NewEntryService creates a new EntryService with the provided repository.
func NewEntryService(entryRepo *repository.EntryRepository) *EntryService {
	return &EntryService{
		entryRepo: entryRepo,
		now:       washdate.Today,
	}
}

// Create validates and stores a new entry. Tickers and heldIn are
// normalized to uppercase; account keeps its typed casing (grouping and
// search treat it case-insensitively). The target date is derived from the
// sell date and every entry starts at pending.
func (s *EntryService) Create(req request.CreateEntryRequest) (model.Entry, error) {
	if err := validation.ValidateCreateEntry(req); err != nil {
		return model.Entry{}, err
	}

	sellDate, err := washdate.ParseDate(req.SellDate)
	if err != nil {
		return model.Entry{}, err
	}

	entry := model.Entry{
		Account:    strings.TrimSpace(req.Account),
		Tickers:    strings.ToUpper(strings.TrimSpace(req.Tickers)),
		HeldIn:     strings.ToUpper(strings.TrimSpace(req.HeldIn)),
		Broker:     req.Broker,
		SellDate:   sellDate,
		TargetDate: washdate.TargetDate(sellDate),
		Comments:   strings.TrimSpace(req.Comments),
		Status:     model.StatusPending,
		Completed:  false,
	}

	if err := s.entryRepo.Insert(&entry); err != nil {
		return model.Entry{}, err
	}

	s.decorate(&entry, s.now())
	return entry, nil
}

// Update rewrites the editable fields of an entry with the same
// normalization and target-date recomputation as Create. The workflow
// status and its completion mirror are left untouched.
func (s *EntryService) Update(id int64, req request.UpdateEntryRequest) (model.Entry, error) {
	if err := validation.ValidateUpdateEntry(req); err != nil {
		return model.Entry{}, err
	}

	sellDate, err := washdate.ParseDate(req.SellDate)
	if err != nil {
		return model.Entry{}, err
	}

	entry := model.Entry{
		ID:         id,
		Account:    strings.TrimSpace(req.Account),
		Tickers:    strings.ToUpper(strings.TrimSpace(req.Tickers)),
		HeldIn:     strings.ToUpper(strings.TrimSpace(req.HeldIn)),
		Broker:     req.Broker,
		SellDate:   sellDate,
		TargetDate: washdate.TargetDate(sellDate),
		Comments:   strings.TrimSpace(req.Comments),
	}

	if err := s.entryRepo.Update(&entry); err != nil {
		return model.Entry{}, err
	}

	return s.Get(id)
}

// Get retrieves a single entry with its computed eligibility.
func (s *EntryService) Get(id int64) (model.Entry, error) {
	entry, err := s.entryRepo.GetByID(id)
	if err != nil {
		return model.Entry{}, err
	}

	s.decorate(&entry, s.now())
	return entry, nil
}

// Delete removes an entry together with its attachments.
func (s *EntryService) Delete(id int64) error {
	return s.entryRepo.Delete(id)
}

// SetCompleted jumps an entry directly to completed (true) or back to
// pending (false) from any workflow stage, stamping or clearing the
// completion date accordingly.
func (s *EntryService) SetCompleted(id int64, completed bool) (model.Entry, error) {
	status := model.StatusPending
	var completedDate *time.Time
	if completed {
		status = model.StatusCompleted
		today := s.now()
		completedDate = &today
	}

	if err := s.entryRepo.SetStatus(id, status, completedDate); err != nil {
		return model.Entry{}, err
	}

	return s.Get(id)
}

// CycleStatus advances an entry one workflow stage and returns the new
// stage, so callers can react without re-querying.
func (s *EntryService) CycleStatus(id int64) (model.Status, error) {
	return s.entryRepo.CycleStatus(id, s.now())
}

// List retrieves entries matching the given filter, decorated with their
// computed eligibility.
func (s *EntryService) List(filter model.EntryFilter) ([]model.Entry, error) {
	today := s.now()

	entries, err := s.entryRepo.List(filter, today)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		s.decorate(&entries[i], today)
	}
	return entries, nil
}

// Search retrieves entries whose account or tickers contain the query.
func (s *EntryService) Search(query string) ([]model.Entry, error) {
	entries, err := s.entryRepo.Search(query)
	if err != nil {
		return nil, err
	}

	today := s.now()
	for i := range entries {
		s.decorate(&entries[i], today)
	}
	return entries, nil
}

// AccountCounts returns the number of entries per uppercased account.
func (s *EntryService) AccountCounts() (map[string]int, error) {
	return s.entryRepo.AccountCounts()
}

// Stats returns the aggregate dashboard counts.
func (s *EntryService) Stats(ctx context.Context) (model.Stats, error) {
	return s.entryRepo.Stats(ctx, s.now())
}

// decorate fills in the read-time computed fields. Eligibility is a
// separate axis from the stored workflow stage: a pending entry whose
// target date has arrived displays READY while staying pending.
func (s *EntryService) decorate(e *model.Entry, today time.Time) {
	e.DaysRemaining = washdate.DaysRemaining(e.TargetDate, today)

	switch {
	case e.Status == model.StatusCompleted:
		e.Eligibility = model.EligibilityCompleted
	case e.DaysRemaining <= 0:
		e.Eligibility = model.EligibilityReady
	default:
		e.Eligibility = model.EligibilityWaiting
	}
}
