package client

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
	"github.com/monitorpelanggan/billing-monitor/internal/poller"
)

// Stats are the headline numbers of the dashboard page.
type Stats struct {
	TotalCustomers  int
	TotalContracts  int
	TotalBilled     float64
	PaidCustomers   int
	TotalProgress   float64
	PaymentPercent  float64
	LastRefreshedAt time.Time
}

// Dashboard keeps the per-view copies of server data. Each fetch stores its
// own result as it arrives; the last response wins.
type Dashboard struct {
	c       *Client
	session *Session
	log     zerolog.Logger

	mu          sync.Mutex
	customers   []domain.Customer
	contracts   []domain.Contract
	ams         []domain.AccountManager
	summary     *domain.PaymentSummary
	perAM       []domain.AMProgress
	refreshedAt time.Time
	onRefresh   func()
	now         func() time.Time
}

func NewDashboard(c *Client, s *Session, log zerolog.Logger) *Dashboard {
	return &Dashboard{c: c, session: s, log: log, now: time.Now}
}

// Refresh re-fetches every view concurrently. Per-AM progress is only
// fetched for managers.
func (d *Dashboard) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := d.c.Customers(ctx, listview.NewCustomerCriteria())
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.customers = items
		d.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		items, err := d.c.Contracts(ctx, listview.NewContractCriteria())
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.contracts = items
		d.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		ams, err := d.c.AMList(ctx)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.ams = ams
		d.mu.Unlock()
		return nil
	})
	g.Go(func() error {
		sum, err := d.c.Progress(ctx, "")
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.summary = sum
		d.mu.Unlock()
		return nil
	})
	if u := d.session.User(); u != nil && domain.IsManager(u.Role) {
		g.Go(func() error {
			rows, err := d.c.ProgressPerAM(ctx)
			if err != nil {
				return err
			}
			d.mu.Lock()
			d.perAM = rows
			d.mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	d.mu.Lock()
	d.refreshedAt = d.now()
	hook := d.onRefresh
	d.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

// OnRefresh registers fn to run after every successful Refresh.
func (d *Dashboard) OnRefresh(fn func()) {
	d.mu.Lock()
	d.onRefresh = fn
	d.mu.Unlock()
}

// Watch starts the change-poller; every change of the server's marker
// triggers Refresh.
func (d *Dashboard) Watch(ctx context.Context, cfg poller.Config) *poller.Handle {
	return poller.New(cfg, d.c.LastUpdate, d.Refresh, d.log).Start(ctx)
}

func (d *Dashboard) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := Stats{
		TotalCustomers:  len(d.customers),
		TotalContracts:  len(d.contracts),
		LastRefreshedAt: d.refreshedAt,
	}
	for _, c := range d.customers {
		s.TotalBilled += c.BilledAmount
		s.TotalProgress += c.PaymentProgress
		if domain.DerivePaymentStatus(c.PaymentProgress, c.BilledAmount) == domain.PaymentPaid {
			s.PaidCustomers++
		}
	}
	if s.TotalBilled > 0 {
		s.PaymentPercent = math.Round(s.TotalProgress/s.TotalBilled*10000) / 100
	}
	return s
}

// Customers pages the cached customers through crit.
func (d *Dashboard) Customers(crit listview.CustomerCriteria, page, size int) listview.Page[domain.Customer] {
	d.mu.Lock()
	items := crit.Apply(d.customers, d.now())
	d.mu.Unlock()
	return listview.Paginate(items, page, size)
}

// Contracts pages the cached contracts through crit.
func (d *Dashboard) Contracts(crit listview.ContractCriteria, page, size int) listview.Page[domain.Contract] {
	d.mu.Lock()
	items := crit.Apply(d.contracts)
	d.mu.Unlock()
	return listview.Paginate(items, page, size)
}

func (d *Dashboard) AMs() []domain.AccountManager {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.ams)
}

func (d *Dashboard) Summary() *domain.PaymentSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.summary == nil {
		return nil
	}
	s := *d.summary
	return &s
}

func (d *Dashboard) ProgressPerAM() []domain.AMProgress {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.perAM)
}
