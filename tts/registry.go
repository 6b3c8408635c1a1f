package tts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
)

// Registry holds the engines detected at startup and routes synthesis
// requests to the matching adapter. Unavailable engines are kept for
// diagnostics but never dispatched to.
type Registry struct {
	engines map[EngineID]Engine
	order   []EngineID
	logger  *log.Logger
}

// NewRegistry builds a registry from the given engines. Registration order is
// preserved in Engines().
func NewRegistry(logger *log.Logger, engines ...Engine) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	r := &Registry{
		engines: make(map[EngineID]Engine, len(engines)),
		logger:  logger.WithPrefix("registry"),
	}
	for _, e := range engines {
		info := e.Info()
		r.engines[info.ID] = e
		r.order = append(r.order, info.ID)
		r.logger.Debug("registered engine", "engine", info.ID, "available", info.Available)
	}
	return r
}

// Engines returns descriptors for every engine that is actually usable, in
// registration order.
func (r *Registry) Engines() []EngineInfo {
	infos := make([]EngineInfo, 0, len(r.order))
	for _, id := range r.order {
		if info := r.engines[id].Info(); info.Available {
			infos = append(infos, info)
		}
	}
	return infos
}

// Lookup returns the descriptor for one engine id, available or not.
func (r *Registry) Lookup(id EngineID) (EngineInfo, bool) {
	e, ok := r.engines[id]
	if !ok {
		return EngineInfo{}, false
	}
	return e.Info(), true
}

// Synthesize validates the request and delegates it to the selected engine.
// Validation failures are returned before any backend is contacted.
func (r *Registry) Synthesize(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	engine, ok := r.engines[req.Engine]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, req.Engine)
	}
	if !engine.Info().Available {
		return nil, fmt.Errorf("%w: %q", ErrEngineUnavailable, req.Engine)
	}
	if err := engine.Validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := engine.Synthesize(ctx, req)
	if err != nil {
		r.logger.Error("synthesis failed", "engine", req.Engine, "err", err)
		return nil, err
	}
	if res == nil || len(res.Data) == 0 {
		return nil, NewSynthesisError(req.Engine, "synthesize", ErrEmptyAudio)
	}

	r.logger.Info("synthesis complete",
		"engine", req.Engine,
		"chars", len(req.Text),
		"size", humanize.Bytes(uint64(len(res.Data))),
		"took", time.Since(start).Round(time.Millisecond))
	return res, nil
}
