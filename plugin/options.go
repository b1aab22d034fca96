package plugin

import (
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-rtfilter/dsp/delay"
)

type config struct {
	logger        logrus.FieldLogger
	delayCapacity int
}

// Option configures an Instance at creation.
type Option func(*config)

func defaultConfig() config {
	return config{
		logger:        logrus.StandardLogger(),
		delayCapacity: delay.DefaultCapacity,
	}
}

// WithLogger routes clamp warnings to l instead of the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDelayCapacity sets the per-channel buffer length of Delay instances.
// It must be a power of two; Descriptor.New reports invalid values.
func WithDelayCapacity(samples int) Option {
	return func(c *config) {
		c.delayCapacity = samples
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
