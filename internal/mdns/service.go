// Package mdns advertises the server on the local network through the Avahi
// daemon so clients can find it without typing an address.
package mdns

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/holoplot/go-avahi"
)

const (
	// ServiceType is the mDNS service type for FigureShelf servers.
	ServiceType = "_figureshelf._tcp"

	// APIVersion is the API version advertised in TXT records.
	APIVersion = "v1"

	// ServerVersion is the server version advertised in TXT records.
	ServerVersion = "1.0.0"
)

// Publisher registers one service with a Zeroconf responder.
type Publisher interface {
	Publish(name, serviceType string, port uint16, txt [][]byte) error
	Close()
}

// Service manages mDNS advertisement for the server.
type Service struct {
	newPublisher func() (Publisher, error)
	logger       *slog.Logger

	mu        sync.Mutex
	publisher Publisher
}

// NewService creates a service that publishes through Avahi over D-Bus.
func NewService(logger *slog.Logger) *Service {
	return &Service{newPublisher: newAvahiPublisher, logger: logger}
}

// newServiceWith creates a service with a custom publisher factory.
func newServiceWith(factory func() (Publisher, error), logger *slog.Logger) *Service {
	return &Service{newPublisher: factory, logger: logger}
}

// Start begins advertising the server. Errors are usually not fatal: Docker
// and most cloud hosts have no Avahi daemon.
func (s *Service) Start(name string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Close()
		s.publisher = nil
	}

	p, err := s.newPublisher()
	if err != nil {
		return fmt.Errorf("connect to avahi: %w", err)
	}
	if err := p.Publish(name, ServiceType, uint16(port), TXTRecords(name)); err != nil {
		p.Close()
		return fmt.Errorf("publish service: %w", err)
	}
	s.publisher = p

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", port,
		"name", name,
	)
	return nil
}

// Stop withdraws the advertisement. Safe to call multiple times or if not
// started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publisher != nil {
		s.publisher.Close()
		s.publisher = nil
		s.logger.Info("mDNS advertisement stopped")
	}
}

// TXTRecords returns the key=value metadata published with the service.
func TXTRecords(name string) [][]byte {
	return [][]byte{
		[]byte("name=" + name),
		[]byte("version=" + ServerVersion),
		[]byte("api=" + APIVersion),
	}
}

// avahiPublisher holds a private system bus connection and one entry group.
type avahiPublisher struct {
	conn   *dbus.Conn
	server *avahi.Server
	group  *avahi.EntryGroup
}

func newAvahiPublisher() (Publisher, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("system bus: %w", err)
	}

	server, err := avahi.ServerNew(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("avahi server: %w", err)
	}

	return &avahiPublisher{conn: conn, server: server}, nil
}

func (p *avahiPublisher) Publish(name, serviceType string, port uint16, txt [][]byte) error {
	if p.group != nil {
		return errors.New("already published")
	}

	group, err := p.server.EntryGroupNew()
	if err != nil {
		return fmt.Errorf("entry group: %w", err)
	}

	host, err := p.server.GetHostNameFqdn()
	if err != nil {
		p.server.EntryGroupFree(group)
		return fmt.Errorf("host name: %w", err)
	}

	if err := group.AddService(avahi.InterfaceUnspec, avahi.ProtoUnspec, 0, name, serviceType, "local", host, port, txt); err != nil {
		p.server.EntryGroupFree(group)
		return fmt.Errorf("add service: %w", err)
	}
	if err := group.Commit(); err != nil {
		p.server.EntryGroupFree(group)
		return fmt.Errorf("commit: %w", err)
	}

	p.group = group
	return nil
}

func (p *avahiPublisher) Close() {
	if p.group != nil {
		p.server.EntryGroupFree(p.group)
		p.group = nil
	}
	p.server.Close()
	_ = p.conn.Close()
}
