package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
	"github.com/monitorpelanggan/billing-monitor/internal/importer"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

const (
	pdfContentType = "application/pdf"
	filePrefix     = "kontrak/"
)

// ContractService implements contract records and their PDF documents.
// Replaced or orphaned objects are removed through the cleanup queue.
type ContractService struct {
	contracts ports.ContractRepository
	files     ports.FileStore
	cleanup   ports.CleanupQueue
	changes   ports.ChangeTracker
	maxBytes  int64
	log       zerolog.Logger
	now       func() time.Time
}

func NewContractService(
	contracts ports.ContractRepository,
	files ports.FileStore,
	cleanup ports.CleanupQueue,
	changes ports.ChangeTracker,
	maxBytes int64,
	log zerolog.Logger,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		files:     files,
		cleanup:   cleanup,
		changes:   changes,
		maxBytes:  maxBytes,
		log:       log,
		now:       time.Now,
	}
}

func (s *ContractService) List(ctx context.Context, q ports.ContractQuery) (*ports.ContractList, error) {
	items, err := s.contracts.List(ctx)
	if err != nil {
		return nil, err
	}
	items = q.Criteria.Apply(items)

	out := &ports.ContractList{Items: items}
	if q.Page > 0 {
		size := q.PerPage
		if size <= 0 {
			size = listview.DefaultPageSize
		}
		p := listview.Paginate(items, q.Page, size)
		out.Items, out.Page = p.Items, &p
	}
	return out, nil
}

func (s *ContractService) Create(ctx context.Context, in ports.ContractInput, file *ports.Upload) (*domain.Contract, error) {
	k := &domain.Contract{
		Number:          strings.TrimSpace(in.Number),
		ContractDate:    in.ContractDate,
		Value:           in.Value,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		JobName:         strings.TrimSpace(in.JobName),
		CustomerName:    strings.TrimSpace(in.CustomerName),
		TransactionType: in.TransactionType,
		Segment:         in.Segment,
	}
	if pic := strings.TrimSpace(in.PICName); pic != "" {
		k.PICName = &pic
	}
	if err := validateContract(k); err != nil {
		return nil, err
	}
	if file != nil {
		if err := s.checkPDF(*file); err != nil {
			return nil, err
		}
	}

	exists, err := s.contracts.ExistsNumber(ctx, k.Number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: no_kontrak %q", domain.ErrDuplicate, k.Number)
	}

	now := s.now().UTC()
	if file != nil {
		key := s.fileKey(now, k.Number, file.Filename)
		if err := s.files.Put(ctx, key, file.Reader, file.Size, pdfContentType); err != nil {
			return nil, err
		}
		k.FileKey = &key
	}

	k.CreatedAt, k.UpdatedAt = now, now
	if err := s.contracts.Create(ctx, k); err != nil {
		if k.FileKey != nil {
			s.cleanup.Enqueue(*k.FileKey)
		}
		return nil, err
	}
	touch(ctx, s.changes, s.log, now, scopeContracts)
	return k, nil
}

func validateContract(k *domain.Contract) error {
	switch {
	case k.Number == "" || k.JobName == "" || k.CustomerName == "":
		return fmt.Errorf("%w: no_kontrak, nama_pekerjaan and nama_customer are required", domain.ErrInvalidInput)
	case k.ContractDate.IsZero() || k.StartDate.IsZero() || k.EndDate.IsZero():
		return fmt.Errorf("%w: tanggal_kontrak, start_date and end_date are required", domain.ErrInvalidInput)
	case k.Value < 0:
		return fmt.Errorf("%w: nilai_kontrak must not be negative", domain.ErrInvalidInput)
	case !domain.ValidTransactionType(k.TransactionType):
		return fmt.Errorf("%w: unknown jenis_transaksi %q", domain.ErrInvalidInput, k.TransactionType)
	case !domain.ValidSegment(k.Segment):
		return fmt.Errorf("%w: unknown segmen %q", domain.ErrInvalidInput, k.Segment)
	}
	return nil
}

func (s *ContractService) checkPDF(f ports.Upload) error {
	if !strings.EqualFold(path.Ext(f.Filename), ".pdf") {
		return fmt.Errorf("%w: only PDF files are allowed", domain.ErrUnsupportedFile)
	}
	if s.maxBytes > 0 && f.Size > s.maxBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidInput, s.maxBytes)
	}
	return nil
}

func (s *ContractService) fileKey(at time.Time, number, filename string) string {
	return fmt.Sprintf("%s%d_%s_%s", filePrefix, at.Unix(), safeSegment(number), safeName(filename))
}

// Update applies the non-nil fields of p.
func (s *ContractService) Update(ctx context.Context, id string, p ports.ContractPatch) (*domain.Contract, error) {
	k, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldNumber := k.Number

	if p.Number != nil {
		k.Number = strings.TrimSpace(*p.Number)
	}
	if p.ContractDate != nil {
		k.ContractDate = *p.ContractDate
	}
	if p.Value != nil {
		k.Value = *p.Value
	}
	if p.StartDate != nil {
		k.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		k.EndDate = *p.EndDate
	}
	if p.JobName != nil {
		k.JobName = strings.TrimSpace(*p.JobName)
	}
	if p.CustomerName != nil {
		k.CustomerName = strings.TrimSpace(*p.CustomerName)
	}
	if p.TransactionType != nil {
		k.TransactionType = *p.TransactionType
	}
	if p.Segment != nil {
		k.Segment = *p.Segment
	}
	if p.PICName != nil {
		if pic := strings.TrimSpace(*p.PICName); pic != "" {
			k.PICName = &pic
		} else {
			k.PICName = nil
		}
	}
	if err := validateContract(k); err != nil {
		return nil, err
	}

	if k.Number != oldNumber {
		exists, err := s.contracts.ExistsNumber(ctx, k.Number)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: no_kontrak %q", domain.ErrDuplicate, k.Number)
		}
	}

	now := s.now().UTC()
	k.UpdatedAt = now
	if err := s.contracts.Update(ctx, k); err != nil {
		return nil, err
	}
	k.Derive()
	touch(ctx, s.changes, s.log, now, scopeContracts)
	return k, nil
}

func (s *ContractService) Delete(ctx context.Context, id string) error {
	k, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.contracts.Delete(ctx, id); err != nil {
		return err
	}
	if k.FileKey != nil {
		s.cleanup.Enqueue(*k.FileKey)
	}
	touch(ctx, s.changes, s.log, s.now().UTC(), scopeContracts)
	return nil
}

// BulkDelete deletes every listed contract it can and reports the rest.
func (s *ContractService) BulkDelete(ctx context.Context, ids []string) (*ports.BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: kontrak_ids must be a non-empty list", domain.ErrInvalidInput)
	}

	res := &ports.BulkDeleteResult{Errors: []string{}}
	for _, id := range ids {
		err := s.Delete(ctx, id)
		switch {
		case err == nil:
			res.DeletedCount++
		case errors.Is(err, domain.ErrContractNotFound):
			res.Errors = append(res.Errors, fmt.Sprintf("Kontrak with ID %s not found", id))
		default:
			s.log.Error().Err(err).Str("kontrak_id", id).Msg("bulk delete failed")
			res.Errors = append(res.Errors, fmt.Sprintf("Error deleting kontrak %s: %v", id, err))
		}
	}
	res.Message = fmt.Sprintf("Successfully deleted %d kontrak(s)", res.DeletedCount)
	return res, nil
}

// BulkImport stores every valid row and reports the invalid ones. Only a
// file that cannot be read at all, or lacks required columns, is rejected.
func (s *ContractService) BulkImport(ctx context.Context, filename string, r io.Reader) (*ports.ImportResult, error) {
	table, err := importer.Read(filename, r)
	if err != nil {
		return nil, readError(err)
	}
	if missing := table.Missing(importer.ContractColumns...); len(missing) > 0 {
		return nil, &domain.ImportError{
			Message: "Missing required columns: " + strings.Join(missing, ", "),
			Details: missing,
		}
	}

	records, rowErrs := importer.Contracts(table)
	res := &ports.ImportResult{Errors: rowErrs}
	if res.Errors == nil {
		res.Errors = []string{}
	}

	now := s.now().UTC()
	seen := make(map[string]int, len(records))
	for _, rec := range records {
		k := rec.Contract
		if first, dup := seen[k.Number]; dup {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: duplicate no_kontrak %q (first seen on row %d)", rec.Line, k.Number, first))
			continue
		}
		seen[k.Number] = rec.Line

		exists, err := s.contracts.ExistsNumber(ctx, k.Number)
		if err != nil {
			return nil, err
		}
		if exists {
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d: no_kontrak %q already exists", rec.Line, k.Number))
			continue
		}

		k.CreatedAt, k.UpdatedAt = now, now
		if err := s.contracts.Create(ctx, &k); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				res.Errors = append(res.Errors, fmt.Sprintf("Row %d: no_kontrak %q already exists", rec.Line, k.Number))
				continue
			}
			return nil, err
		}
		res.ImportedCount++
	}

	if res.ImportedCount > 0 {
		touch(ctx, s.changes, s.log, now, scopeContracts)
	}
	res.Message = fmt.Sprintf("Import completed. %d records imported.", res.ImportedCount)
	s.log.Info().Int("imported", res.ImportedCount).Int("rejected", len(res.Errors)).Str("file", filename).Msg("contract bulk import")
	return res, nil
}

// AttachFile stores a PDF for the contract, replacing any previous one.
func (s *ContractService) AttachFile(ctx context.Context, id string, file ports.Upload) (*domain.Contract, error) {
	if err := s.checkPDF(file); err != nil {
		return nil, err
	}
	k, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := s.fileKey(now, k.Number, file.Filename)
	if err := s.files.Put(ctx, key, file.Reader, file.Size, pdfContentType); err != nil {
		return nil, err
	}
	if err := s.contracts.SetFile(ctx, id, key, now); err != nil {
		s.cleanup.Enqueue(key)
		return nil, err
	}
	if k.FileKey != nil && *k.FileKey != key {
		s.cleanup.Enqueue(*k.FileKey)
	}

	k.FileKey, k.UpdatedAt = &key, now
	touch(ctx, s.changes, s.log, now, scopeContracts)
	return k, nil
}

// OpenFile returns the contract's PDF. The caller closes the reader.
func (s *ContractService) OpenFile(ctx context.Context, id string) (io.ReadCloser, ports.FileInfo, error) {
	k, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, ports.FileInfo{}, err
	}
	if k.FileKey == nil || *k.FileKey == "" {
		return nil, ports.FileInfo{}, domain.ErrFileNotFound
	}
	return s.files.Get(ctx, *k.FileKey)
}

// ListFiles describes every stored contract document. Contracts whose object
// has gone missing from the store are skipped.
func (s *ContractService) ListFiles(ctx context.Context) ([]domain.ContractFile, error) {
	items, err := s.contracts.ListWithFiles(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ContractFile, 0, len(items))
	for _, k := range items {
		info, err := s.files.Stat(ctx, *k.FileKey)
		if err != nil {
			if errors.Is(err, domain.ErrFileNotFound) {
				s.log.Warn().Str("kontrak_id", k.ID).Str("key", *k.FileKey).Msg("contract file missing from store")
				continue
			}
			return nil, err
		}
		out = append(out, domain.ContractFile{
			ID:           k.ID,
			Number:       k.Number,
			JobName:      k.JobName,
			CustomerName: k.CustomerName,
			Filename:     path.Base(*k.FileKey),
			FileSize:     fmt.Sprintf("%.2f MB", float64(info.Size)/(1024*1024)),
			UploadDate:   k.UpdatedAt.UTC().Format(domain.DateLayout),
			ViewURL:      fmt.Sprintf("/api/kontrak/%s/view", k.ID),
			DownloadURL:  fmt.Sprintf("/api/kontrak/%s/download", k.ID),
		})
	}
	return out, nil
}
