package deal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"propdesk-backend/internal/filestore"
	"propdesk-backend/internal/finance"
	"propdesk-backend/internal/models"

	"github.com/samber/mo"
)

// Service creates, updates and deletes deals. It normalizes the entered figures, derives the
// stored figures and replaces the expense rows as a whole on every write.
type Service struct {
	store    Store
	files    filestore.Store
	notifier Notifier

	strictUpdate bool
}

type Option func(*Service)

// WithStrictUpdateValidation makes Update reject an empty code or address like Create does.
// Without it an update stores whatever code and address it is given.
func WithStrictUpdateValidation(strict bool) Option {
	return func(s *Service) { s.strictUpdate = strict }
}

func NewService(store Store, files filestore.Store, notifier Notifier, opts ...Option) *Service {
	s := &Service{store: store, files: files, notifier: notifier}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, filter Filter, order Order) ([]models.Deal, error) {
	deals, err := s.store.FindAll(ctx, filter, order)
	if err != nil {
		return nil, storageError("list deals", err)
	}
	return deals, nil
}

// Get returns ErrNotFound when the deal does not exist or belongs to another variant.
func (s *Service) Get(ctx context.Context, variant models.DealVariant, id uint) (*models.Deal, error) {
	d, err := s.store.FindOne(ctx, id)
	if err != nil {
		return nil, storageError("find deal", err)
	}
	if d.Variant != variant {
		return nil, ErrNotFound
	}
	return d, nil
}

// Create validates in, derives the figures, creates the document folder when the variant
// wants one and stores the deal with its expenses. New deals are always prospects.
func (s *Service) Create(ctx context.Context, variant models.DealVariant, in Input, createdBy *uint) (*models.Deal, error) {
	desc, ok := Lookup(variant)
	if !ok {
		return nil, unknownVariant(variant)
	}

	d := &models.Deal{
		Variant:         variant,
		Code:            strings.TrimSpace(in.Code.OrEmpty()),
		PropertyAddress: strings.TrimSpace(in.PropertyAddress.OrEmpty()),
		Note:            strings.TrimSpace(in.Note.OrEmpty()),
		Status:          models.StatusProspect,
		CreatedBy:       createdBy,
	}
	ve := &ValidationError{}
	if d.Code == "" {
		ve.Add(fieldCode, "is required")
	}
	if d.PropertyAddress == "" {
		ve.Add(fieldPropertyAddress, "is required")
	}
	checkLength(ve, fieldCode, d.Code, maxCodeLen)
	checkLength(ve, fieldPropertyAddress, d.PropertyAddress, maxAddressLen)
	checkLength(ve, fieldNote, d.Note, maxNoteLen)
	checkExpenses(ve, in.Expenses)
	if err := ve.Err(); err != nil {
		return nil, err
	}

	expenses := applyFigures(desc, d, in)

	if desc.CreatesFolder && s.files != nil {
		folderID, err := s.files.CreateFolder(ctx, folderName(d))
		if err != nil {
			return nil, fmt.Errorf("%w: create folder: %w", ErrStorage, err)
		}
		d.FolderID = folderID
	}

	created, err := s.store.CreateWithChildren(ctx, d, expenses)
	if err != nil {
		if d.FolderID != "" {
			if derr := s.files.DeleteFolder(ctx, d.FolderID); derr != nil {
				log.Printf("remove folder %s of unsaved deal %s: %v", d.FolderID, d.Code, derr)
			}
		}
		return nil, storageError("create deal", err)
	}
	s.signal(ctx, variant)
	return created, nil
}

// Update re-derives every figure from in. Money fields and expenses are replaced as a whole:
// a field missing from in becomes absent and an empty expense list removes all expenses.
// Code, address and note change only when present in in.
func (s *Service) Update(ctx context.Context, variant models.DealVariant, id uint, in Input) (*models.Deal, error) {
	desc, ok := Lookup(variant)
	if !ok {
		return nil, unknownVariant(variant)
	}
	d, err := s.Get(ctx, variant, id)
	if err != nil {
		return nil, err
	}

	ve := &ValidationError{}
	if code, ok := in.Code.Get(); ok {
		d.Code = strings.TrimSpace(code)
		if d.Code == "" {
			s.emptyOnUpdate(ve, fieldCode, id)
		}
		checkLength(ve, fieldCode, d.Code, maxCodeLen)
	}
	if address, ok := in.PropertyAddress.Get(); ok {
		d.PropertyAddress = strings.TrimSpace(address)
		if d.PropertyAddress == "" {
			s.emptyOnUpdate(ve, fieldPropertyAddress, id)
		}
		checkLength(ve, fieldPropertyAddress, d.PropertyAddress, maxAddressLen)
	}
	if note, ok := in.Note.Get(); ok {
		d.Note = strings.TrimSpace(note)
		checkLength(ve, fieldNote, d.Note, maxNoteLen)
	}
	checkExpenses(ve, in.Expenses)
	if err := ve.Err(); err != nil {
		return nil, err
	}

	expenses := applyFigures(desc, d, in)
	d.Expenses = nil

	updated, err := s.store.ReplaceChildrenAndUpdate(ctx, id, d, expenses)
	if err != nil {
		return nil, storageError("update deal", err)
	}
	s.signal(ctx, variant)
	return updated, nil
}

// Delete removes the deal and its expenses and returns what was removed.
func (s *Service) Delete(ctx context.Context, variant models.DealVariant, id uint) (*models.Deal, error) {
	d, err := s.Get(ctx, variant, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return nil, storageError("delete deal", err)
	}
	s.signal(ctx, variant)
	return d, nil
}

// Column widths of the deal tables, in characters.
const (
	maxCodeLen        = 50
	maxAddressLen     = 255
	maxNoteLen        = 2000
	maxExpenseNameLen = 200
)

func checkLength(ve *ValidationError, field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		ve.Add(field, fmt.Sprintf("must be at most %d characters", limit))
	}
}

func checkExpenses(ve *ValidationError, raw []finance.RawExpense) {
	if len(raw) > finance.MaxExpenseRows {
		ve.Add(fieldExpenses, fmt.Sprintf("must have at most %d rows", finance.MaxExpenseRows))
		return
	}
	for i, e := range raw {
		checkLength(ve, fmt.Sprintf("%s[%d].name", fieldExpenses, i), strings.TrimSpace(e.Name), maxExpenseNameLen)
	}
}

func (s *Service) emptyOnUpdate(ve *ValidationError, field string, id uint) {
	if s.strictUpdate {
		ve.Add(field, "is required")
		return
	}
	log.Printf("[WARN] deal %d updated with empty %s", id, field)
}

func (s *Service) signal(ctx context.Context, variant models.DealVariant) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Changed(ctx, variant); err != nil {
		log.Printf("change signal for %s failed: %v", variant, err)
	}
}

// applyFigures normalizes the money inputs the variant accepts, derives the stored figures
// into d and returns the cleaned expense rows.
func applyFigures(desc Descriptor, d *models.Deal, in Input) []models.DealExpense {
	accepted := func(ok bool, raw any) mo.Option[int64] {
		if !ok {
			return mo.None[int64]()
		}
		return finance.ParseAmount(raw)
	}
	cleaned, total := finance.NormalizeExpenses(in.Expenses)
	inputs := finance.Inputs{
		PropertyPrice:     finance.ParseAmount(in.PropertyPrice),
		ExpectedRent:      accepted(desc.ExpectedRent, in.ExpectedRent),
		AgentRent:         accepted(desc.AgentRent, in.AgentRent),
		ExpectedSalePrice: accepted(desc.ExpectedSalePrice, in.ExpectedSalePrice),
		Expenses:          cleaned,
		ExpenseTotal:      total,
	}
	fig := finance.Derive(inputs)

	d.PropertyPrice = inputs.PropertyPrice.ToPointer()
	d.ExpectedRent = inputs.ExpectedRent.ToPointer()
	d.AgentRent = inputs.AgentRent.ToPointer()
	d.ExpectedSalePrice = inputs.ExpectedSalePrice.ToPointer()
	d.AcquisitionCost = fig.AcquisitionCost.ToPointer()
	d.ProjectTotal = fig.ProjectTotal.ToPointer()
	d.ExpectedYieldBp = fig.ExpectedYieldBp.ToPointer()
	d.SurfaceYieldBp = fig.SurfaceYieldBp.ToPointer()
	d.ExpectedProfit = fig.ExpectedProfit.ToPointer()

	rows := make([]models.DealExpense, 0, len(cleaned))
	for i, e := range cleaned {
		rows = append(rows, models.DealExpense{Position: i, Name: e.Name, Price: e.Price})
	}
	return rows
}

func folderName(d *models.Deal) string {
	return fmt.Sprintf("%s %s", d.Code, d.PropertyAddress)
}

func storageError(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

func unknownVariant(v models.DealVariant) error {
	ve := &ValidationError{}
	ve.Add("variant", fmt.Sprintf("%q is unknown", v))
	return ve
}
