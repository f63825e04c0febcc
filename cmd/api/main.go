package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"nft-marketplace/internal/api"
	"nft-marketplace/internal/index"
	"nft-marketplace/internal/marketplace"
	"nft-marketplace/internal/payment"
	"nft-marketplace/internal/persistence"
	"nft-marketplace/internal/registry"
)

func main() {
	addr := getenv("APP_ADDR", ":8080")
	marketAddr := marketplace.Address(getenv("MARKET_ADDR", "0xMARKETPLACE"))
	dataDir := getenv("DATA_DIR", "./data")

	eventStore, err := persistence.NewFileEventStore(filepath.Join(dataDir, "events"))
	if err != nil {
		log.Fatal("Failed to open event store:", err)
	}
	defer eventStore.Close()

	snapshotStore, err := persistence.NewFileSnapshotStore(filepath.Join(dataDir, "snapshots"))
	if err != nil {
		log.Fatal("Failed to open snapshot store:", err)
	}

	assetRegistry := registry.NewMemoryRegistry()
	paymentChannel := payment.NewMemoryChannel()

	listingRepo := index.NewMemoryListingRepository()
	saleRepo := index.NewMemorySaleRepository()
	projector := index.NewProjector(listingRepo, saleRepo)

	ledger := marketplace.NewMemoryLedger(marketAddr, assetRegistry, paymentChannel,
		eventStore.Sink(), projector.Sink())

	// Rebuild ledger state from the journal before serving requests
	recovery := persistence.NewRecoveryService(eventStore, snapshotStore)
	state, err := recovery.Recover(context.Background())
	if err != nil {
		log.Fatal("Failed to recover state:", err)
	}
	ledger.RestoreState(state)
	log.Printf("Recovered state: %d collections, %d sellers with proceeds",
		len(state.Collections), len(state.Proceeds))

	// Read models have no snapshot; replay the journal so their cursors line
	// up with the recovered ledger sequences before live events arrive
	if err := projector.Rebuild(context.Background(), eventStore); err != nil {
		log.Fatal("Failed to rebuild read models:", err)
	}

	router := api.NewRouter(ledger, assetRegistry, listingRepo, saleRepo)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Printf("Listening on %s (marketplace operator %s)", addr, marketAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	// Snapshot on shutdown so the next start replays only the tail
	snapshot := &persistence.LedgerSnapshot{
		Version:    1,
		CapturedAt: time.Now().UTC(),
		State:      ledger.ExportState(),
	}
	if err := snapshotStore.Save(ctx, snapshot); err != nil {
		log.Println("Failed to save snapshot:", err)
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
