package app

import (
	"encoding/json"
	"net"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/jmcaldera/quizwire/internal/config"
	"github.com/jmcaldera/quizwire/internal/handlers"
	"github.com/jmcaldera/quizwire/internal/logger"
)

// mockInterface implements networkInterface for testing
type mockInterface struct {
	flags net.Flags
	addrs []net.Addr
}

func (m mockInterface) Flags() net.Flags           { return m.flags }
func (m mockInterface) Addrs() ([]net.Addr, error) { return m.addrs, nil }

type mockProvider struct {
	ifaces []networkInterface
	err    error
}

func (m mockProvider) Interfaces() ([]networkInterface, error) {
	return m.ifaces, m.err
}

func ipNet(s string) *net.IPNet {
	return &net.IPNet{IP: net.ParseIP(s), Mask: net.CIDRMask(24, 32)}
}

func TestGetPreferredIP_PrefersPrivateRanges(t *testing.T) {
	provider := mockProvider{ifaces: []networkInterface{
		mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("203.0.113.9")}},
		mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("192.168.1.20")}},
	}}

	if ip := getPreferredIP(provider); ip != "192.168.1.20" {
		t.Errorf("getPreferredIP() = %s, want 192.168.1.20", ip)
	}
}

func TestGetPreferredIP_SkipsDownAndLoopback(t *testing.T) {
	provider := mockProvider{ifaces: []networkInterface{
		mockInterface{flags: 0, addrs: []net.Addr{ipNet("10.0.0.5")}},
		mockInterface{flags: net.FlagUp | net.FlagLoopback, addrs: []net.Addr{ipNet("127.0.0.1")}},
	}}

	if ip := getPreferredIP(provider); ip != "localhost" {
		t.Errorf("getPreferredIP() = %s, want localhost", ip)
	}
}

func TestGetPreferredIP_FallsBackToPublic(t *testing.T) {
	provider := mockProvider{ifaces: []networkInterface{
		mockInterface{flags: net.FlagUp, addrs: []net.Addr{ipNet("203.0.113.9")}},
	}}

	if ip := getPreferredIP(provider); ip != "203.0.113.9" {
		t.Errorf("getPreferredIP() = %s, want 203.0.113.9", ip)
	}
}

func TestIsPrivateIPv4_172Range(t *testing.T) {
	if !isPrivateIPv4(net.ParseIP("172.16.0.1")) {
		t.Error("172.16.0.1 should be private")
	}
	if !isPrivateIPv4(net.ParseIP("172.31.255.1")) {
		t.Error("172.31.255.1 should be private")
	}
	if isPrivateIPv4(net.ParseIP("172.32.0.1")) {
		t.Error("172.32.0.1 should not be private")
	}
}

// TestNew_WiresFileStore tests full wiring with the flat-file backend
func TestNew_WiresFileStore(t *testing.T) {
	cfg := config.Default()
	cfg.QuestionsFile = filepath.Join(t.TempDir(), "questions.json")
	cfg.UploadsDir = t.TempDir()

	a, err := New(logger.New(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
	var health handlers.HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode health: %v", err)
	}
	if health.Status != "ok" || health.Questions != 0 {
		t.Errorf("health = %+v, want ok with empty bank", health)
	}
}

// TestNew_WiresSQLiteStore tests full wiring with the sqlite backend
func TestNew_WiresSQLiteStore(t *testing.T) {
	cfg := config.Default()
	cfg.Store = config.StoreSQLite
	cfg.DBPath = filepath.Join(t.TempDir(), "quiz.db")
	cfg.UploadsDir = t.TempDir()

	a, err := New(logger.New(), cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != 200 {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}
