// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests TXT records and browse result conversion
package discovery

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Test Synth",
		Port:        8928,
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	mgr.Stop()
}

func TestTxtRecords(t *testing.T) {
	txt := txtRecords(Config{})
	if len(txt) != 1 || txt[0] != "path=/tonesynth" {
		t.Errorf("unexpected default records: %v", txt)
	}

	txt = txtRecords(Config{Path: "/ctl", Version: "1.2.0"})
	if len(txt) != 2 || txt[0] != "path=/ctl" || txt[1] != "version=1.2.0" {
		t.Errorf("unexpected records: %v", txt)
	}
}

func TestEntryToServerInfo(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "Kitchen._tonesynth._tcp.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		Port:       8928,
		InfoFields: []string{"path=/ctl", "version=0.3.0", "junk"},
	}

	server := entryToServerInfo(entry)
	if server == nil {
		t.Fatal("expected server info")
	}
	if server.Name != "Kitchen" {
		t.Errorf("expected name Kitchen, got %q", server.Name)
	}
	if server.Addr() != "192.168.1.20:8928" {
		t.Errorf("unexpected addr %s", server.Addr())
	}
	if server.Path != "/ctl" || server.Version != "0.3.0" {
		t.Errorf("unexpected TXT parse: %+v", server)
	}
}

func TestEntryToServerInfoWithoutIPv4(t *testing.T) {
	if entryToServerInfo(nil) != nil {
		t.Error("nil entry should be ignored")
	}
	if entryToServerInfo(&mdns.ServiceEntry{Name: "x", Port: 1}) != nil {
		t.Error("entry without IPv4 should be ignored")
	}
}

func TestDiscoverHonorsContext(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multicast query in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := Discover(ctx)
	if err == nil {
		t.Skip("found a synthesizer on the local network")
	}
	if time.Since(start) > time.Second {
		t.Errorf("Discover should return promptly on a cancelled context")
	}
}
