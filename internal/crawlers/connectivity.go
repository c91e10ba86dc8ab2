package crawlers

import (
	"context"
	"net"
	"time"

	"github.com/RecoveryAshes/domaincrawl/internal/models"
	"github.com/RecoveryAshes/domaincrawl/internal/utils"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// ConnectivityMonitor reports whether outbound network access is available.
// A positive answer is a hint only; the following fetch can still fail.
type ConnectivityMonitor interface {
	IsReachable(ctx context.Context) bool
}

// NetMonitor probes reachability by dialing a well-known TCP address.
type NetMonitor struct {
	config models.ConnectivityConfig
	dialer *net.Dialer

	// interfaceUp reports whether a non-loopback interface is up
	interfaceUp func() (bool, error)
}

// DefaultConnectivityConfig public DNS over TCP with a 5s timeout and retry
func DefaultConnectivityConfig() models.ConnectivityConfig {
	return models.ConnectivityConfig{
		ProbeAddress:    "8.8.8.8:53",
		ProbeTimeout:    5 * time.Second,
		RetryInterval:   5 * time.Second,
		CheckInterfaces: true,
	}
}

// NewNetMonitor creates a monitor from config
func NewNetMonitor(config models.ConnectivityConfig) *NetMonitor {
	return &NetMonitor{
		config:      config,
		dialer:      &net.Dialer{Timeout: config.ProbeTimeout},
		interfaceUp: anyInterfaceUp,
	}
}

// IsReachable dials the probe address once.
func (m *NetMonitor) IsReachable(ctx context.Context) bool {
	if m.config.CheckInterfaces && m.interfaceUp != nil {
		up, err := m.interfaceUp()
		if err != nil {
			// no interface information on this platform, rely on the dial
			utils.Debugf("interface listing failed: %v", err)
		} else if !up {
			utils.Debug("no network interface is up")
			return false
		}
	}

	conn, err := m.dialer.DialContext(ctx, "tcp", m.config.ProbeAddress)
	if err != nil {
		utils.Debugf("connectivity probe %s failed: %v", m.config.ProbeAddress, err)
		return false
	}
	conn.Close()
	return true
}

func anyInterfaceUp() (bool, error) {
	ifaces, err := psnet.Interfaces()
	if err != nil {
		return false, err
	}

	for _, iface := range ifaces {
		up, loopback := false, false
		for _, flag := range iface.Flags {
			switch flag {
			case "up":
				up = true
			case "loopback":
				loopback = true
			}
		}
		if up && !loopback {
			return true, nil
		}
	}
	return false, nil
}

// MinRetryInterval shortest pause WaitForConnectivity makes between reachability checks
const MinRetryInterval = 100 * time.Millisecond

// WaitForConnectivity blocks until monitor reports reachable, probing every interval.
// Intervals below MinRetryInterval are raised to it.
// There is no upper bound on the wait; only ctx cancellation ends it early.
func WaitForConnectivity(ctx context.Context, monitor ConnectivityMonitor, interval time.Duration) error {
	if interval < MinRetryInterval {
		interval = MinRetryInterval
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if monitor.IsReachable(ctx) {
			return nil
		}

		utils.Warnf("no internet connection, retrying in %s", interval)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
