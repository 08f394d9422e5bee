package hooks

import (
	"context"
	"fmt"
	"time"

	"github.com/wexinc/shears/internal/config"
	"github.com/wexinc/shears/internal/errors"
)

// Manager orchestrates hook execution around a run. Pre-run hooks run
// in order and the first failure aborts; post-run hooks all run and
// failures are left for the caller to report as warnings.
type Manager struct {
	preRun  []Hook
	postRun []Hook
	timeout time.Duration
	// Logger is called after each hook execution (optional).
	Logger func(result *Result)
}

// NewManager creates a hook manager from the hooks configuration.
func NewManager(cfg config.HooksConfig) *Manager {
	m := &Manager{timeout: cfg.Timeout}
	for i, def := range cfg.PreRun {
		m.preRun = append(m.preRun, NewHook(fmt.Sprintf("pre_run[%d]", i), PhasePreRun, def))
	}
	for i, def := range cfg.PostRun {
		m.postRun = append(m.postRun, NewHook(fmt.Sprintf("post_run[%d]", i), PhasePostRun, def))
	}
	return m
}

// PreRunHooks returns the pre-run hooks.
func (m *Manager) PreRunHooks() []Hook {
	return m.preRun
}

// PostRunHooks returns the post-run hooks.
func (m *Manager) PostRunHooks() []Hook {
	return m.postRun
}

// HasPreRunHooks reports whether any pre-run hooks are configured.
func (m *Manager) HasPreRunHooks() bool {
	return len(m.preRun) > 0
}

// HasPostRunHooks reports whether any post-run hooks are configured.
func (m *Manager) HasPostRunHooks() bool {
	return len(m.postRun) > 0
}

// RunPreRun executes the pre-run hooks in order. It stops at the first
// failure and returns an error describing it; callers must abort the
// run without touching anything.
func (m *Manager) RunPreRun(ctx context.Context, env Env) ([]*Result, error) {
	var results []*Result

	for _, hook := range m.preRun {
		if ctx.Err() != nil {
			return results, errors.ContextCancelled("pre-run hooks")
		}

		result, err := m.execute(ctx, hook, env)
		if err != nil {
			return results, errors.Wrap(err, errors.ErrHook, fmt.Sprintf("%s hook could not run", hook.Name()))
		}
		results = append(results, result)

		if !result.Success {
			if result.TimedOut {
				return results, errors.HookTimeout(hook.Name(), m.timeout.String())
			}
			return results, errors.HookFailed(hook.Name(), hook.Command(), result.ExitCode, result.Output)
		}
	}

	return results, nil
}

// RunPostRun executes every post-run hook regardless of failures and
// returns all results. The caller turns failed results into warnings.
func (m *Manager) RunPostRun(ctx context.Context, env Env) []*Result {
	var results []*Result

	for _, hook := range m.postRun {
		if ctx.Err() != nil {
			break
		}

		result, err := m.execute(ctx, hook, env)
		if err != nil {
			result = &Result{
				Name:     hook.Name(),
				Phase:    hook.Phase(),
				Command:  hook.Command(),
				Error:    err.Error(),
				ExitCode: -1,
			}
		}
		results = append(results, result)
	}

	return results
}

// execute runs one hook under the configured timeout.
func (m *Manager) execute(ctx context.Context, hook Hook, env Env) (*Result, error) {
	hookCtx := ctx
	cancel := func() {}
	if m.timeout > 0 {
		hookCtx, cancel = context.WithTimeout(ctx, m.timeout)
	}
	defer cancel()

	result, err := hook.Execute(hookCtx, env)
	if err != nil {
		return nil, err
	}

	if m.Logger != nil {
		m.Logger(result)
	}
	return result, nil
}
