package main

import (
	"testing"

	"github.com/monitorpelanggan/billing-monitor/internal/infrastructure/config"
)

func TestStorageConfig(t *testing.T) {
	got := storageConfig(config.StorageConfig{
		Endpoint:  "minio:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "kontrak",
		Region:    "us-east-1",
		UseSSL:    true,
	})

	if got.Endpoint != "minio:9000" || got.Bucket != "kontrak" || !got.UseSSL {
		t.Fatalf("unexpected config: %+v", got)
	}
	if got.AccessKey != "key" || got.SecretKey != "secret" || got.Region != "us-east-1" {
		t.Fatalf("credentials not carried over: %+v", got)
	}
}
