package persistence

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"nft-marketplace/internal/marketplace"
)

// FileEventStore implements EventStore using JSONL files,
// one log per collection
type FileEventStore struct {
	baseDir string
	mu      sync.RWMutex
	files   map[marketplace.Address]*os.File // collection -> file handle
}

// NewFileEventStore creates a new file-based event store
func NewFileEventStore(baseDir string) (*FileEventStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileEventStore{
		baseDir: baseDir,
		files:   make(map[marketplace.Address]*os.File),
	}, nil
}

// Sink adapts the store to a ledger event sink. Append failures are logged,
// never propagated: event publication is fire-and-forget.
func (s *FileEventStore) Sink() marketplace.SinkFunc {
	return func(event marketplace.Event) {
		if err := s.Append(context.Background(), event.Collection(), event); err != nil {
			log.Printf("event store append failed: %v", err)
		}
	}
}

// Append appends an event to the log for a specific collection
func (s *FileEventStore) Append(ctx context.Context, collection marketplace.Address, event marketplace.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.getOrCreateFile(collection)
	if err != nil {
		return fmt.Errorf("failed to get file for collection %s: %w", collection, err)
	}

	record := EventRecord{
		Version:    1,
		Collection: event.Collection(),
		Sequence:   event.Sequence(),
		Type:       event.EventType(),
		OccurredAt: event.OccurredAt(),
		Payload:    event,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	// Sync to disk for durability
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}

	return nil
}

// getOrCreateFile gets or creates a file handle for a collection
func (s *FileEventStore) getOrCreateFile(collection marketplace.Address) (*os.File, error) {
	if file, ok := s.files[collection]; ok {
		return file, nil
	}

	collectionDir := filepath.Join(s.baseDir, string(collection))
	if err := os.MkdirAll(collectionDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}

	filePath := filepath.Join(collectionDir, "events.log")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}

	s.files[collection] = file
	return file, nil
}

// ReadFrom reads events from a specific sequence number (inclusive)
func (s *FileEventStore) ReadFrom(ctx context.Context, collection marketplace.Address, fromSeq int64) ([]marketplace.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := filepath.Join(s.baseDir, string(collection), "events.log")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return []marketplace.Event{}, nil // No events yet
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer file.Close()

	var events []marketplace.Event
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event record: %w", err)
		}

		if record.Sequence < fromSeq {
			continue
		}

		event, err := s.deserializeEvent(&record)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize event: %w", err)
		}

		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan events file: %w", err)
	}

	return events, nil
}

// deserializeEvent deserializes an EventRecord to a concrete event type
func (s *FileEventStore) deserializeEvent(record *EventRecord) (marketplace.Event, error) {
	// Re-marshal payload to JSON for type-specific unmarshaling
	payloadBytes, err := json.Marshal(record.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	switch record.Type {
	case "ListingCreated":
		var event marketplace.ListingCreatedEvent
		if err := json.Unmarshal(payloadBytes, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ListingCreatedEvent: %w", err)
		}
		return &event, nil

	case "ListingCanceled":
		var event marketplace.ListingCanceledEvent
		if err := json.Unmarshal(payloadBytes, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ListingCanceledEvent: %w", err)
		}
		return &event, nil

	case "ItemSold":
		var event marketplace.ItemSoldEvent
		if err := json.Unmarshal(payloadBytes, &event); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ItemSoldEvent: %w", err)
		}
		return &event, nil

	default:
		return nil, fmt.Errorf("unknown event type: %s", record.Type)
	}
}

// GetLastSequence returns the last sequence number for a collection
func (s *FileEventStore) GetLastSequence(ctx context.Context, collection marketplace.Address) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := filepath.Join(s.baseDir, string(collection), "events.log")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, nil // No events yet
	}

	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open events file: %w", err)
	}
	defer file.Close()

	var lastSeq int64 = 0
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record EventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			return 0, fmt.Errorf("failed to unmarshal event record: %w", err)
		}

		if record.Sequence > lastSeq {
			lastSeq = record.Sequence
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan events file: %w", err)
	}

	return lastSeq, nil
}

// ListCollections lists all collections that have event logs
func (s *FileEventStore) ListCollections(ctx context.Context) ([]marketplace.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.baseDir); os.IsNotExist(err) {
		return []marketplace.Address{}, nil
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory: %w", err)
	}

	var collections []marketplace.Address
	for _, entry := range entries {
		if entry.IsDir() {
			eventsFile := filepath.Join(s.baseDir, entry.Name(), "events.log")
			if _, err := os.Stat(eventsFile); err == nil {
				collections = append(collections, marketplace.Address(entry.Name()))
			}
		}
	}

	return collections, nil
}

// Close closes all open file handles
func (s *FileEventStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for collection, file := range s.files {
		if err := file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close file for collection %s: %w", collection, err))
		}
	}
	s.files = make(map[marketplace.Address]*os.File)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing files: %v", errs)
	}

	return nil
}
