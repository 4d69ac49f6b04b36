package config

import (
	"fmt"
	"time"
)

// LockConfig bounds how long a transaction may wait for a row lock
// before the store gives up and reports a retryable conflict.
type LockConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

func (c *LockConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("lock wait timeout is not configured")
	}
	return nil
}
