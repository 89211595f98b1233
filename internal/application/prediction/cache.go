package prediction

import (
	"context"
	"sync"
	"time"

	"github.com/akash-acog/sol/internal/intelligence/featurize"
	"github.com/akash-acog/sol/internal/intelligence/solnet"
)

// RemoteCache is the shared-cache surface the service needs; the redis
// package's Cache satisfies it.
type RemoteCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// solventGraphCache memoizes featurized solvent graphs. Solvents repeat
// across requests far more than solutes do, so only they are cached. The
// in-process map is authoritative; the remote layer survives restarts and
// is best-effort in both directions.
type solventGraphCache struct {
	featurizer *featurize.Featurizer

	mu    sync.RWMutex
	local map[string]*solnet.MolecularGraph

	remote    RemoteCache
	remoteTTL time.Duration
}

func newSolventGraphCache(feat *featurize.Featurizer) *solventGraphCache {
	return &solventGraphCache{
		featurizer: feat,
		local:      make(map[string]*solnet.MolecularGraph),
	}
}

const cacheKeyPrefix = "solvent-graph:"

func (c *solventGraphCache) get(ctx context.Context, smiles string, metrics Metrics) (*solnet.MolecularGraph, error) {
	c.mu.RLock()
	g, ok := c.local[smiles]
	c.mu.RUnlock()
	if ok {
		metrics.SolventCacheHit()
		return g, nil
	}

	if c.remote != nil {
		var cached solnet.MolecularGraph
		if err := c.remote.Get(ctx, cacheKeyPrefix+smiles, &cached); err == nil && cached.NumAtoms() > 0 {
			metrics.SolventCacheHit()
			c.put(ctx, smiles, &cached, false)
			return &cached, nil
		}
	}

	metrics.SolventCacheMiss()
	g, err := c.featurizer.SmilesToGraph(smiles)
	if err != nil {
		return nil, err
	}
	c.put(ctx, smiles, g, true)
	return g, nil
}

func (c *solventGraphCache) put(ctx context.Context, smiles string, g *solnet.MolecularGraph, writeRemote bool) {
	c.mu.Lock()
	c.local[smiles] = g
	c.mu.Unlock()

	if writeRemote && c.remote != nil {
		// Remote write failures only cost a future re-featurization.
		_ = c.remote.Set(ctx, cacheKeyPrefix+smiles, g, c.remoteTTL)
	}
}
