package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signalsfoundry/laserhazard/internal/hazardapi"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
	"github.com/signalsfoundry/laserhazard/internal/logging"
)

func TestHazardServerStartupSmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}

	cfg := Config{
		ListenAddress:       lis.Addr().String(),
		MetricsAddress:      "",
		LogLevel:            "warn",
		LogFormat:           "text",
		CatalogPath:         "../../configs/lasers.yaml",
		CacheReportInterval: 10 * time.Millisecond,
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, log, lis)
	}()

	conn, err := grpc.NewClient(cfg.ListenAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	defer conn.Close()

	client := hazardapi.NewHazardClient(conn)
	products, err := client.ListProducts(ctx, grpc.WaitForReady(true))
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(products) != 5 {
		t.Fatalf("catalog has %d products, want 5", len(products))
	}

	lim, err := client.EvaluateExposureLimit(ctx, types.LimitRequest{WavelengthNm: 10600, ExposureTimeS: 10, Target: "skin"})
	if err != nil {
		t.Fatalf("EvaluateExposureLimit: %v", err)
	}
	if !lim.Applicable() {
		t.Fatalf("skin MPE = %+v", lim)
	}

	if got, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "hazard_requests_total"); err != nil || got == 0 {
		t.Fatalf("hazard_requests_total series = %d, %v", got, err)
	}

	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}
