package savestate

import "github.com/goliatone/go-savestate/pkg/activity"

type activityConfig struct {
	hooks  activity.Hooks
	config activity.Config
	set    bool
}

// WithActivityHooks attaches activity hooks notified after each save and
// load. Hooks are cloned and nil entries dropped. Emission is enabled unless
// WithActivityConfig says otherwise.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *serviceConfig) {
		cfg.activity.hooks = normalized
	}
}

// WithActivityConfig sets the channel, actor and enabled flag used when
// emitting activity.
func WithActivityConfig(config activity.Config) Option {
	return func(cfg *serviceConfig) {
		cfg.activity.config = config
		cfg.activity.set = true
	}
}

func (c activityConfig) emitter() *activity.Emitter {
	config := c.config
	if !c.set {
		config.Enabled = true
	}
	return activity.NewEmitter(c.hooks, config)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
