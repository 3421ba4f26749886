package id

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateUnique(t *testing.T) {
	gen := Default()

	if gen.Generate().String() == gen.Generate().String() {
		t.Error("generated IDs should be unique")
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := Default()

	id := gen.GenerateWithPrefix("conn")
	parts := strings.Split(id, "_")
	if len(parts) != 2 || parts[0] != "conn" {
		t.Errorf("ID should have format 'conn_ulid', got: %s", id)
	}
	if len(parts[1]) != 26 {
		t.Errorf("ULID should be 26 characters, got %d", len(parts[1]))
	}
}

func TestTypedIDGeneration(t *testing.T) {
	if !strings.HasPrefix(string(NewConnID()), "conn_") {
		t.Error("ConnID should start with 'conn_'")
	}
	if !strings.HasPrefix(string(NewRequestID()), "req_") {
		t.Error("RequestID should start with 'req_'")
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same instance")
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := Default()

	const goroutines = 50
	const perGoroutine = 100

	var wg sync.WaitGroup
	idChan := make(chan string, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				idChan <- gen.Generate().String()
			}
		}()
	}
	wg.Wait()
	close(idChan)

	seen := make(map[string]bool)
	for id := range idChan {
		if seen[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
	if len(seen) != goroutines*perGoroutine {
		t.Errorf("expected %d unique IDs, got %d", goroutines*perGoroutine, len(seen))
	}
}
