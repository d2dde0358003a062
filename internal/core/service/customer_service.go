package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
	"github.com/monitorpelanggan/billing-monitor/internal/importer"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

const unknownAM = "N/A"

// CustomerService implements the billing use cases.
type CustomerService struct {
	customers ports.CustomerRepository
	contracts ports.ContractRepository
	users     ports.UserRepository
	changes   ports.ChangeTracker
	log       zerolog.Logger
	now       func() time.Time
	// started is reported by LastUpdate while nothing has been written, so
	// pollers on an empty install see a stable marker.
	started time.Time
}

func NewCustomerService(
	customers ports.CustomerRepository,
	contracts ports.ContractRepository,
	users ports.UserRepository,
	changes ports.ChangeTracker,
	log zerolog.Logger,
) *CustomerService {
	return &CustomerService{
		customers: customers,
		contracts: contracts,
		users:     users,
		changes:   changes,
		log:       log,
		now:       time.Now,
		started:   time.Now(),
	}
}

func (s *CustomerService) List(ctx context.Context, who domain.Identity, q ports.CustomerQuery) (*ports.CustomerList, error) {
	items, err := s.scoped(ctx, who, q.Criteria.AMID)
	if err != nil {
		return nil, err
	}

	crit := q.Criteria
	if who.Role == domain.RoleAM {
		crit.AMID = listview.All
	}
	items = crit.Apply(items, s.now())

	out := &ports.CustomerList{Items: items}
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

// scoped loads the customers visible to who, with AM names resolved.
func (s *CustomerService) scoped(ctx context.Context, who domain.Identity, requested string) ([]domain.Customer, error) {
	items, err := s.customers.List(ctx, who.Scope(requested))
	if err != nil {
		return nil, err
	}
	names, err := s.amNames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].AMName = nameOr(names, items[i].AMID)
	}
	return items, nil
}

func (s *CustomerService) amNames(ctx context.Context) (map[string]string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return unknownAM
}

func (s *CustomerService) Create(ctx context.Context, in ports.CustomerInput) (*domain.Customer, error) {
	c := &domain.Customer{
		AccountNumber:   importer.AccountNumber(in.AccountNumber),
		Name:            strings.TrimSpace(in.Name),
		AMID:            strings.TrimSpace(in.AMID),
		Product:         strings.TrimSpace(in.Product),
		Category:        in.Category,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		BilledAmount:    in.BilledAmount,
		InvoiceStatus:   in.InvoiceStatus,
		PaymentProgress: in.PaymentProgress,
	}
	if c.InvoiceStatus == "" {
		c.InvoiceStatus = domain.InvoiceNotSent
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	am, err := s.users.FindByID(ctx, c.AMID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: am_id %q does not reference a user", domain.ErrInvalidInput, c.AMID)
		}
		return nil, err
	}

	now := s.now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, err
	}
	c.AMName = am.Name
	touch(ctx, s.changes, s.log, now, scopeCustomers, amScope(c.AMID))
	return c, nil
}

func validateCustomer(c *domain.Customer) error {
	switch {
	case c.AccountNumber == "" || c.Name == "" || c.AMID == "" || c.Product == "":
		return fmt.Errorf("%w: no_akun, nama_pelanggan, am_id and produk are required", domain.ErrInvalidInput)
	case !domain.ValidCategory(c.Category):
		return fmt.Errorf("%w: unknown kategori %q", domain.ErrInvalidInput, c.Category)
	case !domain.ValidInvoiceStatus(c.InvoiceStatus):
		return fmt.Errorf("%w: unknown status_invoice %q", domain.ErrInvalidInput, c.InvoiceStatus)
	case c.StartDate.IsZero() || c.EndDate.IsZero():
		return fmt.Errorf("%w: start_date and end_date are required", domain.ErrInvalidInput)
	case c.BilledAmount < 0 || c.PaymentProgress < 0:
		return fmt.Errorf("%w: amounts must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// UpdatePayment changes invoice status and payment progress. Every other
// field is fixed after creation.
func (s *CustomerService) UpdatePayment(ctx context.Context, id string, in ports.PaymentUpdate) (*domain.Customer, error) {
	cur, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice, progress := cur.InvoiceStatus, cur.PaymentProgress
	if in.InvoiceStatus != nil {
		invoice = *in.InvoiceStatus
	}
	if in.PaymentProgress != nil {
		progress = *in.PaymentProgress
	}
	if !domain.ValidInvoiceStatus(invoice) {
		return nil, fmt.Errorf("%w: unknown status_invoice %q", domain.ErrInvalidInput, invoice)
	}
	if progress < 0 {
		return nil, fmt.Errorf("%w: progres_pembayaran must not be negative", domain.ErrInvalidInput)
	}

	now := s.now().UTC()
	updated, err := s.customers.UpdatePayment(ctx, id, invoice, progress, now)
	if err != nil {
		return nil, err
	}
	if am, err := s.users.FindByID(ctx, updated.AMID); err == nil {
		updated.AMName = am.Name
	} else {
		updated.AMName = unknownAM
	}
	touch(ctx, s.changes, s.log, now, scopeCustomers, amScope(updated.AMID))
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	cur, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.customers.Delete(ctx, id); err != nil {
		return err
	}
	touch(ctx, s.changes, s.log, s.now().UTC(), scopeCustomers, amScope(cur.AMID))
	return nil
}

// BulkImport stores every row of the file or none of them. All row problems
// are collected into a single *domain.ImportError.
func (s *CustomerService) BulkImport(ctx context.Context, filename string, r io.Reader) (int, error) {
	table, err := importer.Read(filename, r)
	if err != nil {
		return 0, readError(err)
	}
	if missing := table.Missing(importer.CustomerColumns...); len(missing) > 0 {
		return 0, &domain.ImportError{
			Message: "Missing required columns: " + strings.Join(missing, ", "),
			Details: missing,
		}
	}

	records, details := importer.Customers(table)

	ams, err := s.users.ListActiveAMs(ctx)
	if err != nil {
		return 0, err
	}
	amByRef := make(map[string]domain.User, len(ams)*2)
	for _, u := range ams {
		amByRef[u.ID] = u
		amByRef[strings.ToLower(u.Username)] = u
	}

	seen := make(map[string]int, len(records))
	numbers := make([]string, 0, len(records))
	customers := make([]domain.Customer, 0, len(records))
	for _, rec := range records {
		am, ok := amByRef[rec.AMRef]
		if !ok {
			am, ok = amByRef[strings.ToLower(rec.AMRef)]
		}
		if !ok {
			details = append(details, fmt.Sprintf("Row %d: am_id %q does not match an active account manager", rec.Line, rec.AMRef))
			continue
		}
		no := rec.Customer.AccountNumber
		if first, dup := seen[no]; dup {
			details = append(details, fmt.Sprintf("Row %d: duplicate no_akun %q (first seen on row %d)", rec.Line, no, first))
			continue
		}
		seen[no] = rec.Line
		numbers = append(numbers, no)

		c := rec.Customer
		c.AMID = am.ID
		customers = append(customers, c)
	}

	existing, err := s.customers.ExistingAccountNumbers(ctx, numbers)
	if err != nil {
		return 0, err
	}
	for _, no := range existing {
		details = append(details, fmt.Sprintf("Row %d: no_akun %q already exists", seen[no], no))
	}

	if len(details) > 0 {
		return 0, &domain.ImportError{Message: "Validation failed, no rows were imported", Details: details}
	}

	now := s.now().UTC()
	scopes := []string{scopeCustomers}
	touched := make(map[string]bool)
	for i := range customers {
		customers[i].CreatedAt, customers[i].UpdatedAt = now, now
		if id := customers[i].AMID; !touched[id] {
			touched[id] = true
			scopes = append(scopes, amScope(id))
		}
	}
	if err := s.customers.InsertMany(ctx, customers); err != nil {
		return 0, err
	}
	touch(ctx, s.changes, s.log, now, scopes...)

	s.log.Info().Int("imported", len(customers)).Str("file", filename).Msg("customer bulk import")
	return len(customers), nil
}

func readError(err error) error {
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		return fmt.Errorf("%w: %v", domain.ErrUnsupportedFile, err)
	case errors.Is(err, importer.ErrEmptyFile):
		return &domain.ImportError{Message: err.Error()}
	}
	return &domain.ImportError{Message: "Error processing file", Details: []string{err.Error()}}
}

// Export writes the filtered customers (ignoring pagination) as csv or xlsx.
func (s *CustomerService) Export(ctx context.Context, who domain.Identity, q ports.CustomerQuery, format string, w io.Writer) error {
	q.Page = 0
	list, err := s.List(ctx, who, q)
	if err != nil {
		return err
	}
	return importer.ExportCustomers(w, format, list.Items)
}

func (s *CustomerService) Summary(ctx context.Context, who domain.Identity, amID string) (*domain.PaymentSummary, error) {
	scope := who.Scope(amID)
	items, err := s.customers.List(ctx, scope)
	if err != nil {
		return nil, err
	}

	sum := &domain.PaymentSummary{CustomerCount: len(items)}
	for _, c := range items {
		sum.TotalProgress += c.PaymentProgress
		sum.TotalBilled += c.BilledAmount
	}
	if scope != "" {
		sum.AMID = &scope
	}
	return sum, nil
}

// ProgressPerAM rolls billing up per active account manager. Managers
// without customers are left out.
func (s *CustomerService) ProgressPerAM(ctx context.Context) ([]domain.AMProgress, error) {
	ams, err := s.users.ListActiveAMs(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.customers.List(ctx, "")
	if err != nil {
		return nil, err
	}

	byAM := make(map[string][]domain.Customer)
	for _, c := range items {
		byAM[c.AMID] = append(byAM[c.AMID], c)
	}

	out := make([]domain.AMProgress, 0, len(ams))
	for _, am := range ams {
		cs := byAM[am.ID]
		if len(cs) == 0 {
			continue
		}
		p := domain.AMProgress{AMID: am.ID, AMName: am.Name, CustomerCount: len(cs)}
		for _, c := range cs {
			p.TotalProgress += c.PaymentProgress
			p.TotalBilled += c.BilledAmount
			if c.PaymentProgress >= c.BilledAmount {
				p.PaidCustomers++
			}
		}
		p.Remaining = p.TotalBilled - p.TotalProgress
		if p.TotalBilled > 0 {
			p.ProgressPercentage = round2(p.TotalProgress / p.TotalBilled * 100)
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *CustomerService) AMList(ctx context.Context) ([]domain.AccountManager, error) {
	ams, err := s.users.ListActiveAMs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccountManager, len(ams))
	for i, u := range ams {
		out[i] = domain.AccountManager{ID: u.ID, Name: u.Name}
	}
	return out, nil
}

// LastUpdate returns the newest change visible to who: the latest
// updated_at of their customers and of the contracts, or a tracked delete.
// With no data at all it returns the service start time.
func (s *CustomerService) LastUpdate(ctx context.Context, who domain.Identity) (time.Time, error) {
	scope := who.Scope("")
	marker := scopeCustomers
	if scope != "" {
		marker = amScope(scope)
	}

	customersAt, err := s.customers.MaxUpdatedAt(ctx, scope)
	if err != nil {
		return time.Time{}, err
	}
	var contractsAt time.Time
	if s.contracts != nil {
		if contractsAt, err = s.contracts.MaxUpdatedAt(ctx); err != nil {
			return time.Time{}, err
		}
	}

	var markers []time.Time
	if s.changes != nil {
		for _, sc := range []string{marker, scopeContracts} {
			at, err := s.changes.Last(ctx, sc)
			if err != nil {
				s.log.Warn().Err(err).Str("scope", sc).Msg("change marker unavailable")
				continue
			}
			markers = append(markers, at)
		}
	}

	last := latest(append(markers, customersAt, contractsAt)...)
	if last.IsZero() {
		return s.started.UTC(), nil
	}
	return last.UTC(), nil
}
