package providers

import (
	"strconv"

	"github.com/samber/do/v2"

	"github.com/figureshelf/figureshelf-server/internal/config"
	"github.com/figureshelf/figureshelf-server/internal/logger"
	"github.com/figureshelf/figureshelf-server/internal/mdns"
)

// MDNSServiceHandle wraps the mDNS service with shutdown capability.
type MDNSServiceHandle struct {
	*mdns.Service
}

// Shutdown implements do.Shutdownable.
func (h *MDNSServiceHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideMDNSService advertises the server on the local network. Failure to
// reach Avahi is logged and ignored.
func ProvideMDNSService(i do.Injector) (*MDNSServiceHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := mdns.NewService(log.Component("mdns"))
	if !cfg.Server.AdvertiseMDNS {
		return &MDNSServiceHandle{Service: svc}, nil
	}

	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil {
		log.Warn("mDNS disabled: unparseable port", "port", cfg.Server.Port)
		return &MDNSServiceHandle{Service: svc}, nil
	}

	if err := svc.Start(cfg.Server.Name, port); err != nil {
		log.Warn("mDNS advertisement unavailable", "error", err)
	}
	return &MDNSServiceHandle{Service: svc}, nil
}
