package kernel

import (
	"errors"
	"testing"
)

func TestCreatePortPair(t *testing.T) {
	server, client := CreatePortPair(4, "fs")

	if server == nil || client == nil {
		t.Fatal("both sides of the pair should exist")
	}
	if server.ObjectID() == client.ObjectID() {
		t.Error("pair sides should have distinct object IDs")
	}
	if client.MaxSessions() != 4 {
		t.Errorf("expected capacity 4, got %d", client.MaxSessions())
	}
	if client.ActiveSessions() != 0 {
		t.Errorf("new port should have no sessions, got %d", client.ActiveSessions())
	}
}

func TestConnectCountsAgainstCapacity(t *testing.T) {
	_, client := CreatePortPair(2, "cfg")

	s1, err := client.Connect()
	if err != nil {
		t.Fatalf("first connect failed: %v", err)
	}
	s2, err := client.Connect()
	if err != nil {
		t.Fatalf("second connect failed: %v", err)
	}
	if client.ActiveSessions() != 2 {
		t.Errorf("expected 2 active sessions, got %d", client.ActiveSessions())
	}

	if _, err := client.Connect(); !errors.Is(err, ErrMaxConnectionsReached) {
		t.Errorf("expected ErrMaxConnectionsReached, got %v", err)
	}

	s1.Close()
	if client.ActiveSessions() != 1 {
		t.Errorf("close should release the slot, got %d active", client.ActiveSessions())
	}

	// The freed slot is usable again.
	if _, err := client.Connect(); err != nil {
		t.Errorf("connect after release failed: %v", err)
	}
	s2.Close()
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	_, client := CreatePortPair(1, "dsp")

	s, err := client.Connect()
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	s.Close()
	s.Close()

	if client.ActiveSessions() != 0 {
		t.Errorf("double close should release exactly one slot, got %d active", client.ActiveSessions())
	}
}

func TestZeroCapacityPortRejectsImmediately(t *testing.T) {
	_, client := CreatePortPair(0, "null")
	if _, err := client.Connect(); !errors.Is(err, ErrMaxConnectionsReached) {
		t.Errorf("expected ErrMaxConnectionsReached, got %v", err)
	}
}
