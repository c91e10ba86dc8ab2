package crawlers

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
)

// scriptedMonitor answers from a fixed sequence, then repeats the last answer
type scriptedMonitor struct {
	mu      sync.Mutex
	answers []bool
	calls   int
}

func (m *scriptedMonitor) IsReachable(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++
	if i >= len(m.answers) {
		return m.answers[len(m.answers)-1]
	}
	return m.answers[i]
}

func (m *scriptedMonitor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestWaitForConnectivity_RetriesUntilReachable(t *testing.T) {
	monitor := &scriptedMonitor{answers: []bool{false, false, true}}

	start := time.Now()
	if err := WaitForConnectivity(context.Background(), monitor, 10*time.Millisecond); err != nil {
		t.Fatalf("WaitForConnectivity error: %v", err)
	}

	if monitor.Calls() != 3 {
		t.Errorf("check calls = %d, want 3", monitor.Calls())
	}
	if elapsed := time.Since(start); elapsed < 2*MinRetryInterval {
		t.Errorf("expected two retry intervals, waited only %s", elapsed)
	}
}

func TestWaitForConnectivity_ZeroIntervalUsesFloor(t *testing.T) {
	monitor := &scriptedMonitor{answers: []bool{false}}
	ctx, cancel := context.WithTimeout(context.Background(), 2*MinRetryInterval+MinRetryInterval/2)
	defer cancel()

	err := WaitForConnectivity(ctx, monitor, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	// checks at 0, 1x and 2x the floor
	if calls := monitor.Calls(); calls < 2 || calls > 4 {
		t.Errorf("check calls = %d, want about 3", calls)
	}
}

func TestWaitForConnectivity_ImmediatelyReachable(t *testing.T) {
	monitor := &scriptedMonitor{answers: []bool{true}}
	if err := WaitForConnectivity(context.Background(), monitor, time.Hour); err != nil {
		t.Fatalf("WaitForConnectivity error: %v", err)
	}
	if monitor.Calls() != 1 {
		t.Errorf("check calls = %d, want 1", monitor.Calls())
	}
}

func TestWaitForConnectivity_Cancelled(t *testing.T) {
	monitor := &scriptedMonitor{answers: []bool{false}}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := WaitForConnectivity(ctx, monitor, 5*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestNetMonitor_Probe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	config := models.ConnectivityConfig{
		ProbeAddress: ln.Addr().String(),
		ProbeTimeout: time.Second,
	}
	monitor := NewNetMonitor(config)
	if !monitor.IsReachable(context.Background()) {
		t.Error("listening address should be reachable")
	}

	ln.Close()
	if monitor.IsReachable(context.Background()) {
		t.Error("closed listener should be unreachable")
	}
}

func TestNetMonitor_InterfacePrecheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	config := models.ConnectivityConfig{
		ProbeAddress:    ln.Addr().String(),
		ProbeTimeout:    time.Second,
		CheckInterfaces: true,
	}

	monitor := NewNetMonitor(config)
	monitor.interfaceUp = func() (bool, error) { return false, nil }
	if monitor.IsReachable(context.Background()) {
		t.Error("no interface up should report unreachable without dialing")
	}

	monitor.interfaceUp = func() (bool, error) { return false, errors.New("unsupported") }
	if !monitor.IsReachable(context.Background()) {
		t.Error("interface listing errors should fall through to the dial")
	}
}

func TestDefaultConnectivityConfig(t *testing.T) {
	config := DefaultConnectivityConfig()
	if config.ProbeAddress != "8.8.8.8:53" {
		t.Errorf("probe address = %s", config.ProbeAddress)
	}
	if config.RetryInterval != 5*time.Second {
		t.Errorf("retry interval = %s", config.RetryInterval)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}
