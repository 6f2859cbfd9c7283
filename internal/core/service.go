package core

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/sheethooks/internal/config"
	"github.com/JonMunkholm/sheethooks/internal/logging"
)

// Service runs registered modules against one Sheets client.
type Service struct {
	env     Env
	limiter *ExecuteLimiter
}

// NewService creates a Service. cfg supplies the read range and the
// execution limits.
func NewService(sheets Spreadsheets, cfg *config.Config) *Service {
	return &Service{
		env: Env{
			Sheets:    sheets,
			ReadRange: cfg.Google.ReadRange,
		},
		limiter: NewExecuteLimiter(cfg.Execute.MaxConcurrent, cfg.Execute.MaxWaitTime),
	}
}

// ListModules returns information about all registered modules.
func (s *Service) ListModules() []ModuleInfo {
	defs := All()
	infos := make([]ModuleInfo, len(defs))
	for i, def := range defs {
		infos[i] = def.Info
	}
	return infos
}

// Content populates the dropdowns requested by a /content call. The only
// error is an unknown module; provider failures yield empty option lists.
func (s *Service) Content(ctx context.Context, key string, req ContentRequest) (*ContentResponse, error) {
	def, ok := Get(key)
	if !ok {
		return nil, &UnknownModuleError{Key: key}
	}

	resp := &ContentResponse{ContentObjects: []ContentObject{}}
	if def.Content == nil {
		return resp, nil
	}

	ctx = logging.NewContext(ctx, "module", key)
	resp.ContentObjects = append(resp.ContentObjects, def.Content(ctx, s.env, req)...)
	return resp, nil
}

// Execute runs a module's operation. Each call holds an execution slot and
// is tagged with a fresh execution id that is logged and returned in the
// result metadata.
func (s *Service) Execute(ctx context.Context, key string, payload json.RawMessage) (*Result, error) {
	def, ok := Get(key)
	if !ok {
		return nil, &UnknownModuleError{Key: key}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	execID := uuid.New().String()
	ctx = logging.NewContext(ctx, "module", key, "execution_id", execID)
	logger := logging.FromContext(ctx)

	start := time.Now()
	logger.Debug("execution started")

	res, err := def.Execute(ctx, s.env, payload)
	elapsed := time.Since(start)
	if err != nil {
		kind := KindOf(err)
		level := logger.Warn
		if kind == KindInternal || kind == KindCredential {
			level = logger.Error
		}
		level("execution failed", "kind", kind, "error", err, "duration_ms", elapsed.Milliseconds())
		return nil, err
	}
	if res == nil {
		return nil, errors.New("module returned no result")
	}

	res.Metadata.Module = key
	res.Metadata.ExecutionID = execID
	res.Metadata.DurationMS = elapsed.Milliseconds()

	logger.Info("execution completed",
		"affected_records", res.Metadata.AffectedRecords,
		"duration_ms", res.Metadata.DurationMS,
	)
	return res, nil
}

// LimiterStatus reports execution slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForExecutions blocks until in-flight executions finish or ctx ends.
func (s *Service) WaitForExecutions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
