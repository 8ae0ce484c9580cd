package control

import (
	"go.uber.org/zap"

	"github.com/tamzrod/attenctl/internal/config"
	"github.com/tamzrod/attenctl/internal/status"
	"github.com/tamzrod/attenctl/internal/transport"
)

// Dispatcher wires the control channel (spec.md §4.1) to the shared
// Config and Status stores and to the Flags the supervisor loop polls.
type Dispatcher struct {
	log      *zap.SugaredLogger
	cfgStore *config.Store
	stStore  *status.Store
	flags    *Flags
}

func NewDispatcher(log *zap.SugaredLogger, cfgStore *config.Store, stStore *status.Store, flags *Flags) *Dispatcher {
	return &Dispatcher{log: log, cfgStore: cfgStore, stStore: stStore, flags: flags}
}

// Handle implements transport.Dispatcher.
func (d *Dispatcher) Handle(req transport.ControlRequest) transport.ControlReply {
	switch req.Command {
	case "status":
		return d.handleStatus()
	case "configure":
		return d.handleConfigure(req)
	case "shutdown":
		d.flags.RequestShutdown()
		return transport.ControlReply{Success: true}
	case "clear_error":
		d.flags.RequestClearError()
		return transport.ControlReply{Success: true}
	case "singleshot":
		d.flags.RequestSingleshot()
		return transport.ControlReply{Success: true}
	case "reset":
		d.cfgStore.Set(config.Default())
		d.flags.RequestReset()
		return transport.ControlReply{Success: true}
	default:
		d.log.Warnw("unrecognized control command", "command", req.Command)
		return transport.ControlReply{Success: false}
	}
}

func (d *Dispatcher) handleStatus() transport.ControlReply {
	return transport.ControlReply{Success: true, Status: status.Encode(d.stStore.Get())}
}

func (d *Dispatcher) handleConfigure(req transport.ControlRequest) transport.ControlReply {
	cfg := d.cfgStore.Get()

	applied, applyErr := config.ApplyParams(&cfg, req.Params)

	if verr := config.Validate(&cfg); verr != nil {
		d.log.Errorw("configure produced an invalid configuration, rejecting", "error", verr)
		return transport.ControlReply{Success: false, Status: map[string]interface{}{
			"error": verr.Error(),
		}}
	}
	config.Normalize(&cfg)

	d.cfgStore.Set(cfg)

	if applyErr != nil {
		d.log.Warnw("configure applied with rejected keys", "applied", applied, "error", applyErr)
		return transport.ControlReply{Success: false, Status: map[string]interface{}{
			"applied": applied,
			"error":   applyErr.Error(),
		}}
	}

	return transport.ControlReply{Success: true, Status: map[string]interface{}{
		"applied": applied,
	}}
}
