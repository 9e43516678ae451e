package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/core/domain"
	"github.com/SscSPs/school_fee_ledger/internal/core/ports/events"
	portsrepo "github.com/SscSPs/school_fee_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/school_fee_ledger/internal/core/ports/services"
	"github.com/SscSPs/school_fee_ledger/internal/dto"
	"github.com/SscSPs/school_fee_ledger/internal/utils/accounting"
	"github.com/SscSPs/school_fee_ledger/internal/utils/pagination"
)

// Steps of a ledger mutation, used to tag infrastructure failures in logs.
const (
	stepLoadEntry      = "load_entry"
	stepLoadAccounts   = "load_accounts"
	stepAllocateNumber = "allocate_number"
	stepSaveEntry      = "save_entry"
	stepPostEntry      = "post_entry"
	stepMarkReversed   = "mark_reversed"
	stepCommit         = "commit"
)

const reversalLinePrefix = "Reversal:"

// journalService provides the transactional ledger operations.
type journalService struct {
	BaseService
	repos     portsrepo.RepositoryProvider
	txManager portsrepo.TransactionManager
	sequences *SequenceAllocator
	publisher events.JournalEventPublisher
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithEventPublisher sets where committed ledger events are sent.
func WithEventPublisher(p events.JournalEventPublisher) JournalServiceOption {
	return func(s *journalService) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithEntryNumberPrefix overrides the entry number prefix.
func WithEntryNumberPrefix(prefix string) JournalServiceOption {
	return func(s *journalService) {
		s.sequences = NewSequenceAllocator(prefix)
	}
}

// WithJournalClock overrides the clock used for posting times and number years.
func WithJournalClock(now func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.now = now
	}
}

// NewJournalService creates a new ledger service. repos is used for reads outside a
// transaction; every mutation goes through txManager.
func NewJournalService(repos portsrepo.RepositoryProvider, txManager portsrepo.TransactionManager, options ...JournalServiceOption) portssvc.LedgerSvcFacade {
	svc := &journalService{
		BaseService: newBaseService(),
		repos:       repos,
		txManager:   txManager,
		sequences:   NewSequenceAllocator(domain.DefaultEntryNumberPrefix),
		publisher:   events.NopPublisher{},
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure journalService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*journalService)(nil)

// entryInput is a validated, rounded request ready to be written.
type entryInput struct {
	EntryDate         time.Time
	EntryType         domain.JournalEntryType
	Description       string
	Reference         *string
	ReferenceID       *string
	Notes             *string
	ReversalOfEntryID *string
	Lines             []domain.JournalEntryLine
	// AllowInactive lets reversals touch accounts deactivated after the original was posted.
	AllowInactive bool
}

// mutationLog carries what is known about an in-flight mutation for error logs.
type mutationLog struct {
	tenantID    string
	entryID     string
	entryNumber string
}

// fail logs infrastructure failures with the step that produced them. Caller-fixable
// errors pass through untouched.
func (s *journalService) fail(ctx context.Context, m *mutationLog, step string, err error) error {
	if isDomainError(err) {
		return err
	}
	s.LogError(ctx, err, "Ledger mutation failed",
		slog.String("tenant_id", m.tenantID),
		slog.String("entry_id", m.entryID),
		slog.String("entry_number", m.entryNumber),
		slog.String("step", step))
	return err
}

func isDomainError(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrForbidden) ||
		errors.Is(err, apperrors.ErrDuplicate)
}

func toEntryInput(req dto.CreateJournalEntryRequest) (entryInput, error) {
	if req.EntryDate.IsZero() {
		return entryInput{}, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	if !req.EntryType.IsValid() {
		return entryInput{}, fmt.Errorf("%w: unknown entry type %q", apperrors.ErrValidation, req.EntryType)
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return entryInput{}, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	}

	lines := make([]domain.JournalEntryLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalEntryLine{
			AccountID:    strings.TrimSpace(l.AccountID),
			DebitAmount:  l.DebitAmount,
			CreditAmount: l.CreditAmount,
			Description:  l.Description,
		}
	}

	return entryInput{
		EntryDate:   dto.NewDate(req.EntryDate.Time).Time,
		EntryType:   req.EntryType,
		Description: description,
		Reference:   req.Reference,
		ReferenceID: req.ReferenceID,
		Notes:       req.Notes,
		Lines:       lines,
	}, nil
}

func (s *journalService) CreateJournalEntry(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, actorID string) (*domain.JournalEntry, error) {
	input, err := toEntryInput(req)
	if err != nil {
		return nil, err
	}
	if err := accounting.ValidateJournalLines(input.Lines); err != nil {
		return nil, err
	}

	m := &mutationLog{tenantID: tenantID}
	var created *domain.JournalEntry
	fnDone := false
	err = s.txManager.WithTransaction(ctx, func(repos portsrepo.RepositoryProvider) error {
		entry, err := s.createInTx(ctx, repos, m, tenantID, input, actorID)
		if err != nil {
			return err
		}
		created = entry
		fnDone = true
		return nil
	})
	if err != nil {
		if fnDone {
			return nil, s.fail(ctx, m, stepCommit, err)
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry created and posted",
		slog.String("tenant_id", tenantID),
		slog.String("entry_id", created.JournalEntryID),
		slog.String("entry_number", created.EntryNumber))
	s.publish(ctx, domain.EventJournalPosted, created, nil, actorID)
	return created, nil
}

// createInTx checks accounts, allocates a number, stores the draft and posts it.
// Structural line validation has already happened.
func (s *journalService) createInTx(ctx context.Context, repos portsrepo.RepositoryProvider, m *mutationLog, tenantID string, input entryInput, actorID string) (*domain.JournalEntry, error) {
	accounts, err := s.loadLineAccounts(ctx, repos, tenantID, input.Lines, input.AllowInactive)
	if err != nil {
		return nil, s.fail(ctx, m, stepLoadAccounts, err)
	}

	now := s.Now()
	entryNumber, err := s.sequences.Next(ctx, repos.SequenceRepo, tenantID, now)
	if err != nil {
		return nil, s.fail(ctx, m, stepAllocateNumber, err)
	}
	m.entryNumber = entryNumber

	actor := actorOrSystem(actorID)
	totalDebit, totalCredit := accounting.Totals(input.Lines)
	entry := domain.JournalEntry{
		JournalEntryID:    uuid.NewString(),
		TenantID:          tenantID,
		EntryNumber:       entryNumber,
		EntryDate:         input.EntryDate,
		EntryType:         input.EntryType,
		Status:            domain.Draft,
		Description:       input.Description,
		Reference:         input.Reference,
		ReferenceID:       input.ReferenceID,
		Notes:             input.Notes,
		TotalDebit:        totalDebit,
		TotalCredit:       totalCredit,
		ReversalOfEntryID: input.ReversalOfEntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}
	m.entryID = entry.JournalEntryID

	lines := make([]domain.JournalEntryLine, len(input.Lines))
	for i, l := range input.Lines {
		l.LineID = uuid.NewString()
		l.JournalEntryID = entry.JournalEntryID
		l.LineOrder = i + 1
		acc := accounts[l.AccountID]
		l.AccountCode = acc.Code
		l.AccountName = acc.Name
		lines[i] = l
	}

	if err := repos.JournalRepo.SaveJournalEntry(ctx, entry, lines); err != nil {
		return nil, s.fail(ctx, m, stepSaveEntry, err)
	}
	entry.Lines = lines

	if err := s.postInTx(ctx, repos, &entry, actorID); err != nil {
		return nil, s.fail(ctx, m, stepPostEntry, err)
	}
	return &entry, nil
}

// loadLineAccounts resolves every line's account within the tenant.
func (s *journalService) loadLineAccounts(ctx context.Context, repos portsrepo.RepositoryProvider, tenantID string, lines []domain.JournalEntryLine, allowInactive bool) (map[string]domain.Account, error) {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}

	accounts, err := repos.AccountRepo.FindAccountsByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, id)
		}
		if !acc.IsActive && !allowInactive {
			return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrInactiveAccount, acc.Code, id)
		}
	}
	return accounts, nil
}

// postInTx moves a draft entry to POSTED after re-checking its balance.
func (s *journalService) postInTx(ctx context.Context, repos portsrepo.RepositoryProvider, entry *domain.JournalEntry, actorID string) error {
	if !entry.Status.CanTransitionTo(domain.Posted) {
		return fmt.Errorf("%w: cannot post entry %s in status %s", apperrors.ErrInvalidTransition, entry.EntryNumber, entry.Status)
	}

	debit, credit := accounting.Totals(entry.Lines)
	if !accounting.IsBalanced(debit, credit) || !accounting.IsBalanced(entry.TotalDebit, entry.TotalCredit) {
		return fmt.Errorf("%w: entry %s debit %s, credit %s", apperrors.ErrUnbalanced, entry.EntryNumber, debit.String(), credit.String())
	}

	now := s.Now()
	actor := actorOrSystem(actorID)
	if err := repos.JournalRepo.MarkJournalEntryPosted(ctx, entry.TenantID, entry.JournalEntryID, actor, now); err != nil {
		return err
	}
	entry.Status = domain.Posted
	entry.PostedByID = &actor
	entry.PostedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor
	return nil
}

func (s *journalService) PostJournalEntry(ctx context.Context, tenantID string, entryID string, actorID string) (*domain.JournalEntry, error) {
	m := &mutationLog{tenantID: tenantID, entryID: entryID}
	var posted *domain.JournalEntry
	fnDone := false
	err := s.txManager.WithTransaction(ctx, func(repos portsrepo.RepositoryProvider) error {
		entry, err := s.loadEntryForUpdate(ctx, repos, tenantID, entryID)
		if err != nil {
			return s.fail(ctx, m, stepLoadEntry, err)
		}
		m.entryNumber = entry.EntryNumber
		if err := s.postInTx(ctx, repos, entry, actorID); err != nil {
			return s.fail(ctx, m, stepPostEntry, err)
		}
		posted = entry
		fnDone = true
		return nil
	})
	if err != nil {
		if fnDone {
			return nil, s.fail(ctx, m, stepCommit, err)
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("tenant_id", tenantID),
		slog.String("entry_number", posted.EntryNumber))
	s.publish(ctx, domain.EventJournalPosted, posted, nil, actorID)
	return posted, nil
}

func (s *journalService) ReverseJournalEntry(ctx context.Context, tenantID string, entryID string, actorID string, reason *string) (*domain.JournalEntry, error) {
	m := &mutationLog{tenantID: tenantID, entryID: entryID}
	var original, reversal *domain.JournalEntry
	fnDone := false
	err := s.txManager.WithTransaction(ctx, func(repos portsrepo.RepositoryProvider) error {
		entry, err := s.loadEntryForUpdate(ctx, repos, tenantID, entryID)
		if err != nil {
			return s.fail(ctx, m, stepLoadEntry, err)
		}
		if !entry.Status.CanTransitionTo(domain.Reversed) {
			return fmt.Errorf("%w: cannot reverse entry %s in status %s", apperrors.ErrInvalidTransition, entry.EntryNumber, entry.Status)
		}
		if entry.IsReversal() {
			return fmt.Errorf("%w: entry %s is itself a reversal", apperrors.ErrInvalidTransition, entry.EntryNumber)
		}

		created, err := s.createInTx(ctx, repos, &mutationLog{tenantID: tenantID}, tenantID, reversalInput(entry, reason, s.Now()), actorID)
		if err != nil {
			return err
		}

		m.entryNumber = entry.EntryNumber
		now := s.Now()
		actor := actorOrSystem(actorID)
		if err := repos.JournalRepo.MarkJournalEntryReversed(ctx, tenantID, entry.JournalEntryID, created.JournalEntryID, actor, now); err != nil {
			return s.fail(ctx, m, stepMarkReversed, err)
		}
		entry.Status = domain.Reversed
		entry.ReversedByID = &actor
		entry.ReversedAt = &now
		entry.ReversedEntryID = &created.JournalEntryID
		entry.LastUpdatedAt = now
		entry.LastUpdatedBy = actor

		original, reversal = entry, created
		fnDone = true
		return nil
	})
	if err != nil {
		if fnDone {
			return nil, s.fail(ctx, m, stepCommit, err)
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("tenant_id", tenantID),
		slog.String("entry_number", original.EntryNumber),
		slog.String("reversal_entry_number", reversal.EntryNumber))
	s.publish(ctx, domain.EventJournalPosted, reversal, &original.JournalEntryID, actorID)
	s.publish(ctx, domain.EventJournalReversed, original, &reversal.JournalEntryID, actorID)
	return reversal, nil
}

// reversalInput builds the mirror of a posted entry, dated on the reversal day.
func reversalInput(original *domain.JournalEntry, reason *string, now time.Time) entryInput {
	lines := make([]domain.JournalEntryLine, len(original.Lines))
	for i, l := range original.Lines {
		swapped := l.Swapped()
		lines[i] = domain.JournalEntryLine{
			AccountID:    swapped.AccountID,
			DebitAmount:  swapped.DebitAmount,
			CreditAmount: swapped.CreditAmount,
			Description:  strings.TrimSpace(reversalLinePrefix + " " + l.Description),
		}
	}

	description := "Reversal of " + original.EntryNumber
	if reason != nil && strings.TrimSpace(*reason) != "" {
		description = strings.TrimSpace(*reason)
	}
	reference := original.EntryNumber
	referenceID := original.JournalEntryID
	reversalOf := original.JournalEntryID

	return entryInput{
		EntryDate:         dto.NewDate(now).Time,
		EntryType:         original.EntryType,
		Description:       description,
		Reference:         &reference,
		ReferenceID:       &referenceID,
		ReversalOfEntryID: &reversalOf,
		Lines:             lines,
		AllowInactive:     true,
	}
}

func (s *journalService) loadEntryForUpdate(ctx context.Context, repos portsrepo.RepositoryProvider, tenantID, entryID string) (*domain.JournalEntry, error) {
	entry, err := repos.JournalRepo.FindJournalEntryForUpdate(ctx, tenantID, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := repos.JournalRepo.FindLinesByEntryID(ctx, entry.JournalEntryID)
	if err != nil {
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

func (s *journalService) GetJournalEntry(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.repos.JournalRepo.FindJournalEntryByID(ctx, tenantID, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find journal entry",
				slog.String("tenant_id", tenantID),
				slog.String("entry_id", entryID))
		}
		return nil, err
	}
	lines, err := s.repos.JournalRepo.FindLinesByEntryID(ctx, entry.JournalEntryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load journal entry lines", slog.String("entry_id", entryID))
		return nil, err
	}
	entry.Lines = lines
	return entry, nil
}

func (s *journalService) ListJournalEntries(ctx context.Context, tenantID string, filter domain.JournalEntryFilter) ([]domain.JournalEntry, *string, error) {
	if filter.EntryType != nil && !filter.EntryType.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown entry type %q", apperrors.ErrValidation, *filter.EntryType)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}
	if filter.NextToken != nil {
		if _, _, err := pagination.DecodeEntryToken(*filter.NextToken); err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
	}
	filter.Limit = pagination.ClampLimit(filter.Limit)

	entries, next, err := s.repos.JournalRepo.ListJournalEntries(ctx, tenantID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.String("tenant_id", tenantID))
		return nil, nil, err
	}
	return entries, next, nil
}

// publish emits an event after commit. Delivery failures are logged and never
// affect the ledger.
func (s *journalService) publish(ctx context.Context, eventType string, entry *domain.JournalEntry, related *string, actorID string) {
	event := domain.JournalEvent{
		EventType:      eventType,
		TenantID:       entry.TenantID,
		JournalEntryID: entry.JournalEntryID,
		EntryNumber:    entry.EntryNumber,
		EntryType:      string(entry.EntryType),
		Status:         entry.Status,
		Amount:         entry.TotalDebit,
		RelatedEntryID: related,
		ActorID:        actorOrSystem(actorID),
		OccurredAt:     s.Now(),
	}
	if err := s.publisher.PublishJournalEvent(ctx, event); err != nil {
		s.LogWarn(ctx, "Failed to publish journal event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.String("entry_number", entry.EntryNumber))
	}
}
