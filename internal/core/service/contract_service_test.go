package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
	"github.com/monitorpelanggan/billing-monitor/internal/listview"
)

type contractFixture struct {
	svc     *ContractService
	repo    *stubContractRepo
	files   *stubFileStore
	cleanup *stubCleanup
	tracker *stubTracker
}

func newContractFixture() contractFixture {
	repo := &stubContractRepo{}
	files := newStubFileStore()
	cleanup := &stubCleanup{}
	tracker := newStubTracker()
	svc := NewContractService(repo, files, cleanup, tracker, 1024, zerolog.Nop())
	svc.now = fixedClock(testNow)
	return contractFixture{svc: svc, repo: repo, files: files, cleanup: cleanup, tracker: tracker}
}

func contractInput(no string) ports.ContractInput {
	return ports.ContractInput{
		Number:          no,
		ContractDate:    domain.MustDate("2025-01-10"),
		Value:           50_000_000,
		StartDate:       domain.MustDate("2025-01-15"),
		EndDate:         domain.MustDate("2026-01-14"),
		JobName:         "Pengadaan WiFi",
		CustomerName:    "PT Contoh",
		TransactionType: domain.TransactionOwnChannel,
		Segment:         domain.SegmentBusiness,
		PICName:         "Aldi",
	}
}

func pdf(name, body string) *ports.Upload {
	return &ports.Upload{Filename: name, Size: int64(len(body)), ContentType: "application/pdf", Reader: strings.NewReader(body)}
}

func TestContractService_Create(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	k, err := f.svc.Create(ctx, contractInput("KTR-001"), nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if k.Period != "1 tahun" || k.PICName == nil || *k.PICName != "Aldi" || k.FileKey != nil {
		t.Fatalf("unexpected contract: %+v", k)
	}
	if got, _ := f.tracker.Last(ctx, scopeContracts); !got.Equal(testNow) {
		t.Fatalf("contract marker not touched")
	}

	if _, err := f.svc.Create(ctx, contractInput("KTR-001"), nil); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	bad := contractInput("KTR-002")
	bad.Segment = "Retail"
	if _, err := f.svc.Create(ctx, bad, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestContractService_CreateWithFile(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	k, err := f.svc.Create(ctx, contractInput("KTR 9/2025"), pdf("Scan Kontrak.pdf", "%PDF-1.4"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	want := "kontrak/1749974400_KTR_9_2025_Scan_Kontrak.pdf"
	if k.FileKey == nil || *k.FileKey != want {
		t.Fatalf("file key = %v, want %s", k.FileKey, want)
	}
	if string(f.files.objects[want]) != "%PDF-1.4" {
		t.Fatalf("object not stored")
	}

	if _, err := f.svc.Create(ctx, contractInput("KTR-3"), pdf("scan.docx", "x")); !errors.Is(err, domain.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
	if _, err := f.svc.Create(ctx, contractInput("KTR-4"), pdf("big.pdf", strings.Repeat("x", 2048))); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestContractService_Update_Partial(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	k, _ := f.svc.Create(ctx, contractInput("KTR-001"), nil)
	_, _ = f.svc.Create(ctx, contractInput("KTR-002"), nil)

	end := domain.MustDate("2025-03-15")
	empty := ""
	got, err := f.svc.Update(ctx, k.ID, ports.ContractPatch{EndDate: &end, PICName: &empty})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Period != "2 bulan" || got.PICName != nil || got.JobName != "Pengadaan WiFi" {
		t.Fatalf("unexpected contract: %+v", got)
	}

	taken := "KTR-002"
	if _, err := f.svc.Update(ctx, k.ID, ports.ContractPatch{Number: &taken}); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if _, err := f.svc.Update(ctx, "nope", ports.ContractPatch{}); !errors.Is(err, domain.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}
}

func TestContractService_DeleteQueuesFileCleanup(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	k, _ := f.svc.Create(ctx, contractInput("KTR-001"), pdf("a.pdf", "pdf"))

	if err := f.svc.Delete(ctx, k.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.cleanup.keys) != 1 || f.cleanup.keys[0] != *k.FileKey {
		t.Fatalf("cleanup = %v", f.cleanup.keys)
	}
}

func TestContractService_BulkDelete(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	a, _ := f.svc.Create(ctx, contractInput("KTR-001"), nil)
	b, _ := f.svc.Create(ctx, contractInput("KTR-002"), nil)

	res, err := f.svc.BulkDelete(ctx, []string{a.ID, "k99", b.ID})
	if err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if res.DeletedCount != 2 || res.Message != "Successfully deleted 2 kontrak(s)" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Kontrak with ID k99 not found" {
		t.Fatalf("errors = %v", res.Errors)
	}

	if _, err := f.svc.BulkDelete(ctx, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty list, got %v", err)
	}
}

func TestContractService_BulkImport_Partial(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	_, _ = f.svc.Create(ctx, contractInput("KTR-OLD"), nil)

	header := "no_kontrak,tanggal_kontrak,nilai_kontrak,start_date,end_date,nama_pekerjaan,nama_customer,jenis_transaksi,segmen,pic_name"
	res, err := f.svc.BulkImport(ctx, "kontrak.csv", csvReader(
		header,
		"KTR-101,2025-01-01,1000,2025-01-01,2025-06-30,Backbone,PT A,GTMA,Government,Tommy",
		"KTR-102,2025-01-01,1000,2025-01-01,2025-06-30,Backbone,PT B,Barter,Business,",
		"KTR-OLD,2025-01-01,1000,2025-01-01,2025-06-30,Backbone,PT C,NGTMA,Enterprise,",
		"KTR-101,2025-01-01,1000,2025-01-01,2025-06-30,Backbone,PT D,NGTMA,Enterprise,",
		"KTR-103,2025-01-01,1000,2025-01-01,2025-06-30,Hotspot,PT E,Own Channel,Business,",
	))
	if err != nil {
		t.Fatalf("BulkImport: %v", err)
	}
	if res.ImportedCount != 2 || res.Message != "Import completed. 2 records imported." {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.Errors) != 3 {
		t.Fatalf("errors = %v", res.Errors)
	}
	if !strings.HasPrefix(res.Errors[0], "Row 3:") {
		t.Fatalf("row errors come first: %v", res.Errors)
	}

	_, err = f.svc.BulkImport(ctx, "kontrak.csv", csvReader("no_kontrak", "X"))
	var ie *domain.ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("missing columns must reject the file, got %v", err)
	}
}

func TestContractService_AttachOpenAndListFiles(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	k, _ := f.svc.Create(ctx, contractInput("KTR-001"), pdf("old.pdf", "old"))
	oldKey := *k.FileKey

	if _, _, err := f.svc.OpenFile(ctx, "k99"); !errors.Is(err, domain.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}

	f.svc.now = fixedClock(testNow.Add(time.Minute))
	body := strings.Repeat("p", 512)
	up := pdf("new.pdf", body)
	got, err := f.svc.AttachFile(ctx, k.ID, *up)
	if err != nil {
		t.Fatalf("AttachFile: %v", err)
	}
	if *got.FileKey == oldKey {
		t.Fatalf("file key not replaced")
	}
	if len(f.cleanup.keys) != 1 || f.cleanup.keys[0] != oldKey {
		t.Fatalf("old file must be queued for removal: %v", f.cleanup.keys)
	}

	rc, info, err := f.svc.OpenFile(ctx, k.ID)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != body || info.Size != 512 {
		t.Fatalf("unexpected file: %d bytes", len(b))
	}

	plain, _ := f.svc.Create(ctx, contractInput("KTR-002"), nil)
	if _, _, err := f.svc.OpenFile(ctx, plain.ID); !errors.Is(err, domain.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}

	files, err := f.svc.ListFiles(ctx)
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %+v", files)
	}
	cf := files[0]
	if cf.FileSize != "0.00 MB" || cf.UploadDate != "2025-06-15" ||
		cf.ViewURL != "/api/kontrak/"+k.ID+"/view" || cf.DownloadURL != "/api/kontrak/"+k.ID+"/download" ||
		!strings.HasSuffix(cf.Filename, "_new.pdf") {
		t.Fatalf("unexpected entry: %+v", cf)
	}

	if _, err := f.svc.AttachFile(ctx, k.ID, ports.Upload{Filename: "x.png", Size: 1, Reader: strings.NewReader("x")}); !errors.Is(err, domain.ErrUnsupportedFile) {
		t.Fatalf("expected ErrUnsupportedFile, got %v", err)
	}
}

func TestContractService_List_Filters(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()
	_, _ = f.svc.Create(ctx, contractInput("KTR-001"), nil)
	gov := contractInput("KTR-002")
	gov.Segment = domain.SegmentGovernment
	_, _ = f.svc.Create(ctx, gov, nil)

	q := ports.ContractQuery{Criteria: listview.NewContractCriteria()}
	q.Criteria.Segment = "Government"
	list, err := f.svc.List(ctx, q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Number != "KTR-002" {
		t.Fatalf("unexpected items: %+v", list.Items)
	}
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"Scan Kontrak.pdf":     "Scan_Kontrak.pdf",
		"../../etc/passwd":     "passwd",
		`C:\docs\final v2.pdf`: "final_v2.pdf",
		"   ":                  "file",
	}
	for in, want := range cases {
		if got := safeName(in); got != want {
			t.Errorf("safeName(%q) = %q, want %q", in, got, want)
		}
	}
}
