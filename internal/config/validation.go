package config

import "fmt"

func validate(c *Config) error {
	if c.CheckInterval <= 0 {
		return fmt.Errorf("check interval must be > 0")
	}
	if c.RecycleAfter <= 0 {
		return fmt.Errorf("recycle threshold must be > 0")
	}
	if c.NavTimeout <= 0 || c.WaitTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0")
	}
	if c.DelayMin < 0 || c.DelayMax < c.DelayMin {
		return fmt.Errorf("delay range is invalid")
	}
	if c.DomainRPS <= 0 {
		return fmt.Errorf("domain rate must be > 0")
	}
	return nil
}
