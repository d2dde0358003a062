// Command dashboard is a terminal view of the billing monitor. It signs in,
// prints the headline numbers and the first page of customers, and with
// -watch reprints them whenever the server reports a change.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/monitorpelanggan/billing-monitor/internal/client"
	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/infrastructure/config"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
	"github.com/monitorpelanggan/billing-monitor/internal/poller"
	"github.com/monitorpelanggan/billing-monitor/pkg/logger"
)

func main() {
	var (
		username = flag.String("user", os.Getenv("DASHBOARD_USER"), "username")
		password = flag.String("password", os.Getenv("DASHBOARD_PASSWORD"), "password")
		watch    = flag.Bool("watch", false, "keep polling and reprint on change")
		perPage  = flag.Int("per-page", 10, "customers per page")
		search   = flag.String("search", "", "customer search term")
		upload   = flag.String("upload", "", "customer CSV/XLSX file to import before printing")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Output: os.Stderr})

	if err := run(ctx, cfg.Dashboard, log, *username, *password, *upload, *search, *perPage, *watch); err != nil {
		log.Fatal().Err(err).Msg("dashboard")
	}
}

func run(ctx context.Context, cfg config.DashboardConfig, log zerolog.Logger, username, password, upload, search string, perPage int, watch bool) error {
	c, err := client.New(client.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout, Log: log})
	if err != nil {
		return err
	}
	session := client.NewSession(c)
	if _, err := session.Init(ctx); err != nil {
		return err
	}
	if !session.Authenticated() {
		if _, err := session.Login(ctx, username, password); err != nil {
			return err
		}
	}
	defer func() {
		if _, err := session.Logout(context.Background()); err != nil {
			log.Warn().Err(err).Msg("logout")
		}
	}()

	if upload != "" {
		if err := importFile(ctx, c, log, upload); err != nil {
			return err
		}
	}

	dash := client.NewDashboard(c, session, log)
	if err := dash.Refresh(ctx); err != nil {
		return err
	}
	crit := listview.NewCustomerCriteria()
	crit.Search = search

	show := func() {
		render(os.Stdout, session.User(), dash, crit, perPage)
	}
	show()
	if !watch {
		return nil
	}

	refreshed := make(chan struct{}, 1)
	dash.OnRefresh(func() {
		select {
		case refreshed <- struct{}{}:
		default:
		}
	})
	h := dash.Watch(ctx, poller.Config{Interval: cfg.PollInterval, Jitter: cfg.PollJitter})
	defer h.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-refreshed:
			show()
		}
	}
}

func importFile(ctx context.Context, c *client.Client, log zerolog.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return err
	}

	up := c.Uploader(client.UploaderConfig{
		Endpoint: "/api/pelanggan/bulk-upload",
		Allowed:  []string{".csv", ".xlsx", ".xls"},
		Progress: func(sent, total int64) {
			log.Debug().Int64("sent", sent).Int64("total", total).Msg("uploading")
		},
	})
	res, err := up.Upload(ctx, path, f, st.Size())
	if err != nil {
		return err
	}
	log.Info().Int("imported", res.ImportedCount).Msg(res.Message)
	return nil
}

func render(w io.Writer, u *domain.User, dash *client.Dashboard, crit listview.CustomerCriteria, perPage int) {
	st := dash.Stats()
	if u != nil {
		fmt.Fprintf(w, "\n%s (%s)  menu:", u.Name, u.Role)
		for _, m := range client.Menu(u) {
			fmt.Fprintf(w, " %s", m.Label)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Pelanggan: %d  Kontrak: %d  Lunas: %d\n", st.TotalCustomers, st.TotalContracts, st.PaidCustomers)
	fmt.Fprintf(w, "Tagihan: %.2f  Terbayar: %.2f  (%.2f%%)\n\n", st.TotalBilled, st.TotalProgress, st.PaymentPercent)

	page := dash.Customers(crit, 1, perPage)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NO AKUN\tNAMA\tAM\tKATEGORI\tTAGIHAN\tPROGRES\tSTATUS")
	for _, c := range page.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			c.AccountNumber, c.Name, c.AMName, c.Category, c.BilledAmount, c.PaymentProgress, c.PaymentStatus.Label())
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Showing %d-%d of %d (page %d/%d)\n", page.StartIndex, page.EndIndex, page.Total, page.Page, page.TotalPages)
}
