// Package licensefile implements the license guard from a TOML grants
// file. Grants are loaded into memory and refreshed when the file
// changes on disk, so operators can rotate entitlements without a
// restart.
package licensefile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
	"github.com/custodia-labs/eldin/internal/logger"
)

var _ driven.LicenseGuard = (*Guard)(nil)

type grantFile struct {
	Grants []grantEntry `toml:"grant"`
}

type grantEntry struct {
	Tenant      string   `toml:"tenant"`
	Provider    string   `toml:"provider"`
	AllowedTags []string `toml:"allowed_tags"`
}

// Guard checks tenant/provider access against file-backed grants.
// The zero set denies everything; a tenant without a grant for the
// requested provider is denied, never errored.
type Guard struct {
	mu     sync.RWMutex
	grants map[string]domain.LicenseGrant
	path   string
}

// NewGuard loads the grants file at path. A missing file is valid and
// yields an empty (deny-all) grant set, so a fresh install starts
// locked down.
func NewGuard(path string) (*Guard, error) {
	g := &Guard{grants: map[string]domain.LicenseGrant{}, path: path}
	if err := g.Reload(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGuardFromGrants builds a guard from in-memory grants. Used by the
// one-shot CLI path and tests.
func NewGuardFromGrants(grants []domain.LicenseGrant) *Guard {
	g := &Guard{grants: map[string]domain.LicenseGrant{}}
	for _, grant := range grants {
		g.grants[grantKey(grant.Tenant, grant.Provider)] = grant
	}
	return g
}

// Check reports whether the tenant may read from the provider. Lookup
// misses deny rather than error.
func (g *Guard) Check(ctx context.Context, req domain.LicenseCheckRequest) (domain.LicenseCheckResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.LicenseCheckResponse{}, err
	}

	resp := domain.LicenseCheckResponse{SchemaVersion: domain.SchemaVersionV1}
	if err := req.Validate(); err != nil {
		resp.Reason = "malformed request"
		return resp, nil
	}

	g.mu.RLock()
	grant, ok := g.grants[grantKey(req.Tenant, req.Provider)]
	g.mu.RUnlock()

	if !ok {
		resp.Reason = "no grant for tenant"
		return resp, nil
	}

	resp.Allowed = true
	resp.AllowedTags = append([]string(nil), grant.AllowedTags...)
	return resp, nil
}

// Reload re-reads the grants file and swaps the grant set atomically.
// A missing file clears all grants.
func (g *Guard) Reload() error {
	if g.path == "" {
		return nil
	}

	data, err := os.ReadFile(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			g.mu.Lock()
			g.grants = map[string]domain.LicenseGrant{}
			g.mu.Unlock()
			return nil
		}
		return fmt.Errorf("reading grants file: %w", err)
	}

	var file grantFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing grants file: %w", err)
	}

	grants := make(map[string]domain.LicenseGrant, len(file.Grants))
	for _, e := range file.Grants {
		if e.Tenant == "" || e.Provider == "" {
			continue
		}
		grants[grantKey(e.Tenant, e.Provider)] = domain.LicenseGrant{
			Tenant:      e.Tenant,
			Provider:    e.Provider,
			AllowedTags: e.AllowedTags,
		}
	}

	g.mu.Lock()
	g.grants = grants
	g.mu.Unlock()
	return nil
}

// Watch reloads the grants file whenever it changes, until ctx is
// cancelled. The parent directory is watched so editor rename-and-
// replace saves are picked up. A reload failure keeps the previous
// grant set.
func (g *Guard) Watch(ctx context.Context) error {
	if g.path == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating grants watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(g.path)); err != nil {
		return fmt.Errorf("watching grants directory: %w", err)
	}

	target := filepath.Clean(g.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if err := g.Reload(); err != nil {
				logger.Error("license grants reload failed: %v", err)
			} else {
				logger.Info("license grants reloaded from %s", g.path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("license grants watcher error: %v", err)
		}
	}
}

func grantKey(tenant, provider string) string {
	return tenant + "\x00" + provider
}
