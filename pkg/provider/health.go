package provider

import (
	"context"
	"errors"
	"sync"
)

// HealthChecker defines the interface for checking upstream health
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// CheckHealth calls f.
func (f HealthCheckFunc) CheckHealth(ctx context.Context) error {
	return f(ctx)
}

// HealthCheckAll runs every check concurrently and returns the results by
// name; a nil error means healthy.
func HealthCheckAll(ctx context.Context, checks map[string]HealthChecker) map[string]error {
	results := make(map[string]error, len(checks))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for name, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.CheckHealth(ctx)
			mu.Lock()
			results[name] = err
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

// AllHealthy joins the failures in results.
func AllHealthy(results map[string]error) error {
	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
