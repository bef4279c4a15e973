package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"

	"github.com/jmcaldera/quizwire/internal/config"
	"github.com/jmcaldera/quizwire/internal/game"
	"github.com/jmcaldera/quizwire/internal/gateway"
	"github.com/jmcaldera/quizwire/internal/handlers"
	"github.com/jmcaldera/quizwire/internal/logger"
	"github.com/jmcaldera/quizwire/internal/store"
)

// App holds all application dependencies
type App struct {
	log      *logger.SlogLogger
	cfg      config.Config
	engine   *game.Engine
	hub      *gateway.Hub
	handlers *handlers.Handlers
	closers  []func() error
}

// New creates and initializes a new application instance
func New(log *logger.SlogLogger, cfg config.Config) (*App, error) {
	a := &App{log: log, cfg: cfg}

	persister, err := a.newPersister()
	if err != nil {
		return nil, err
	}

	bank := store.NewBank(log, persister)
	if err := bank.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}
	log.Info("Question bank loaded", "questions", bank.Count(), "store", cfg.Store)

	engine := game.New(log, bank, nil, clockwork.NewRealClock(), game.Rules{
		QuestionTime: cfg.QuestionTime,
		TimeBonus:    cfg.TimeBonus,
		MaxPlayers:   cfg.MaxPlayers,
		SharedOrder:  cfg.SharedOrder(),
	})

	hub := gateway.New(log, engine)
	engine.SetNotifier(hub)
	hub.Start()
	engine.Start()

	joinURL := fmt.Sprintf("http://%s:%d", getPreferredIP(realNetworkProvider{}), cfg.Port)
	a.engine = engine
	a.hub = hub
	a.handlers = handlers.New(engine, hub, log, cfg.UploadsDir, joinURL)
	return a, nil
}

func (a *App) newPersister() (store.Persister, error) {
	switch a.cfg.Store {
	case config.StoreSQLite:
		persister, err := store.NewSQLitePersister(a.cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open question database: %w", err)
		}
		a.closers = append(a.closers, persister.Close)
		return persister, nil
	default:
		return store.NewFilePersister(a.cfg.QuestionsFile), nil
	}
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    a.cfg.ListenAddr(),
		Handler: a.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	a.log.Info("Server starting", "addr", server.Addr, "join_url", a.handlers.JoinURL)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)

	a.Close()
	return err
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	a.engine.Stop()
	for _, close := range a.closers {
		if err := close(); err != nil {
			a.log.Warn("Close failed", "error", err)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access, so the join QR
// code works from phones on the same network. Prefers private IPv4 ranges
// and falls back to localhost.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		if isPrivateIPv4(ip) {
			return ip.String()
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}

func isPrivateIPv4(ip net.IP) bool {
	s := ip.String()
	if strings.HasPrefix(s, "192.168.") || strings.HasPrefix(s, "10.") {
		return true
	}
	v4 := ip.To4()
	return v4 != nil && v4[0] == 172 && v4[1] >= 16 && v4[1] <= 31
}
