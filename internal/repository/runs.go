package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/joseph-ayodele/invoice-ledger/internal/batch"
	"github.com/joseph-ayodele/invoice-ledger/internal/common"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

type runRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;index"`
	Documents  int       `gorm:"column:documents;not null"`
	PDFs       int       `gorm:"column:pdfs;not null"`
	Duplicates int       `gorm:"column:duplicates;not null"`
	AmountSum  string    `gorm:"column:amount_sum;not null"`
	ElapsedMS  int64     `gorm:"column:elapsed_ms;not null"`
}

func (runRow) TableName() string { return "runs" }

type invoiceRow struct {
	RunID           string `gorm:"column:run_id;primaryKey"`
	Seq             int    `gorm:"column:seq;primaryKey;autoIncrement:false"`
	Folder          string `gorm:"column:folder;not null"`
	Filename        string `gorm:"column:filename;not null"`
	FileType        string `gorm:"column:file_type;not null"`
	InvoiceCode     string `gorm:"column:invoice_code;not null"`
	InvoiceNumber   string `gorm:"column:invoice_number;not null"`
	VerifyCode      string `gorm:"column:verify_code;not null"`
	IssueDate       string `gorm:"column:issue_date;not null"`
	BuyerName       string `gorm:"column:buyer_name;not null"`
	BuyerTaxID      string `gorm:"column:buyer_tax_id;not null"`
	SellerName      string `gorm:"column:seller_name;not null"`
	SellerTaxID     string `gorm:"column:seller_tax_id;not null"`
	ItemDescription string `gorm:"column:item_description;not null"`
	Amount          string `gorm:"column:amount;not null"`
	Note            string `gorm:"column:note;not null"`
}

func (invoiceRow) TableName() string { return "invoices" }

type duplicateRow struct {
	ID                uint   `gorm:"column:id;primaryKey"`
	RunID             string `gorm:"column:run_id;not null;index"`
	DedupKey          string `gorm:"column:dedup_key;not null"`
	OriginalFilename  string `gorm:"column:original_filename;not null"`
	DuplicateFilename string `gorm:"column:duplicate_filename;not null"`
}

func (duplicateRow) TableName() string { return "duplicates" }

func newInvoiceRow(runID string, seq int, inv entity.Invoice) invoiceRow {
	return invoiceRow{
		RunID: runID, Seq: seq,
		Folder: inv.Folder, Filename: inv.Filename, FileType: inv.FileType,
		InvoiceCode: inv.InvoiceCode, InvoiceNumber: inv.InvoiceNumber, VerifyCode: inv.VerifyCode,
		IssueDate: inv.IssueDate, BuyerName: inv.BuyerName, BuyerTaxID: inv.BuyerTaxID,
		SellerName: inv.SellerName, SellerTaxID: inv.SellerTaxID,
		ItemDescription: inv.ItemDescription, Amount: inv.Amount, Note: inv.Note,
	}
}

func (r invoiceRow) invoice() entity.Invoice {
	return entity.Invoice{
		Folder: r.Folder, Filename: r.Filename, FileType: r.FileType,
		InvoiceCode: r.InvoiceCode, InvoiceNumber: r.InvoiceNumber, VerifyCode: r.VerifyCode,
		IssueDate: r.IssueDate, BuyerName: r.BuyerName, BuyerTaxID: r.BuyerTaxID,
		SellerName: r.SellerName, SellerTaxID: r.SellerTaxID,
		ItemDescription: r.ItemDescription, Amount: r.Amount, Note: r.Note,
	}
}

// RunSummary is one archived run.
type RunSummary struct {
	ID         uuid.UUID
	CreatedAt  time.Time
	Documents  int
	Duplicates int
	AmountSum  string
}

// RunRepository archives finished runs. The archive is write-only from the pipeline's
// point of view: deduplication never consults it.
type RunRepository interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, rep *batch.Report, records []entity.Invoice) error
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	ListInvoices(ctx context.Context, runID uuid.UUID) ([]entity.Invoice, error)
	ListDuplicates(ctx context.Context, runID uuid.UUID) ([]entity.Duplicate, error)
}

type runRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRunRepository(db *DB, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepository{db: db, logger: logger}
}

func (r *runRepository) Migrate(ctx context.Context) error {
	if err := r.db.Gorm.WithContext(ctx).AutoMigrate(&runRow{}, &invoiceRow{}, &duplicateRow{}); err != nil {
		r.logger.Error("failed to migrate archive", "error", err)
		return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
	}
	return nil
}

func (r *runRepository) SaveRun(ctx context.Context, rep *batch.Report, records []entity.Invoice) error {
	runID := rep.RunID.String()
	err := r.db.Gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := runRow{
			ID:         runID,
			CreatedAt:  time.Now().UTC(),
			Documents:  rep.Documents,
			PDFs:       rep.PDFs,
			Duplicates: len(rep.Duplicates),
			AmountSum:  rep.AmountSum.String(),
			ElapsedMS:  rep.Elapsed.Milliseconds(),
		}
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if len(records) > 0 {
			rows := make([]invoiceRow, 0, len(records))
			for i, inv := range records {
				rows = append(rows, newInvoiceRow(runID, i+1, inv))
			}
			if err := tx.CreateInBatches(&rows, 100).Error; err != nil {
				return fmt.Errorf("insert invoices: %w", err)
			}
		}

		if len(rep.Duplicates) > 0 {
			dups := make([]duplicateRow, 0, len(rep.Duplicates))
			for _, d := range rep.Duplicates {
				dups = append(dups, duplicateRow{
					RunID: runID, DedupKey: d.Key,
					OriginalFilename: d.OriginalFilename, DuplicateFilename: d.DuplicateFilename,
				})
			}
			if err := tx.Create(&dups).Error; err != nil {
				return fmt.Errorf("insert duplicates: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to save run", "run_id", runID, "error", err)
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	r.logger.Info("repository.run.saved", "run_id", runID, "invoices", len(records), "duplicates", len(rep.Duplicates))
	return nil
}

func (r *runRepository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []runRow
	if err := r.db.Gorm.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}

	out := make([]RunSummary, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: run id %q: %v", common.ErrDatabase, row.ID, err)
		}
		out = append(out, RunSummary{
			ID:         id,
			CreatedAt:  row.CreatedAt,
			Documents:  row.Documents,
			Duplicates: row.Duplicates,
			AmountSum:  row.AmountSum,
		})
	}
	return out, nil
}

func (r *runRepository) ListInvoices(ctx context.Context, runID uuid.UUID) ([]entity.Invoice, error) {
	var rows []invoiceRow
	if err := r.db.Gorm.WithContext(ctx).Where("run_id = ?", runID.String()).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list invoices: %v", common.ErrDatabase, err)
	}
	out := make([]entity.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.invoice())
	}
	return out, nil
}

func (r *runRepository) ListDuplicates(ctx context.Context, runID uuid.UUID) ([]entity.Duplicate, error) {
	var rows []duplicateRow
	if err := r.db.Gorm.WithContext(ctx).Where("run_id = ?", runID.String()).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: list duplicates: %v", common.ErrDatabase, err)
	}
	out := make([]entity.Duplicate, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.Duplicate{
			Key:               row.DedupKey,
			OriginalFilename:  row.OriginalFilename,
			DuplicateFilename: row.DuplicateFilename,
		})
	}
	return out, nil
}
