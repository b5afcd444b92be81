package vault

import (
	"github.com/streamvault/yieldstream/errors"
)

// Validate ensures the configuration can price shares.
func (c *Config) Validate() error {
	if err := c.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := c.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	if c.Rate == nil {
		return errors.Wrap(errors.ErrEmpty, "rate")
	}
	if err := c.Rate.Validate(); err != nil {
		return errors.Wrap(err, "rate")
	}
	if c.Rate.Numerator == 0 || c.Rate.Denominator == 0 {
		return errors.Wrap(errors.ErrAmount, "rate must be positive")
	}
	return nil
}
