package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/akash-acog/sol/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	client *Client
	mock   redismock.ClientMock
	cache  *redisCache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.client = &Client{
		rdb:    db,
		logger: logging.NewNopLogger(),
		closed: make(chan struct{}),
	}
	c := NewCache(s.client, logging.NewNopLogger(), WithPrefix("test:"))
	s.cache = c.(*redisCache)
	// Deterministic TTLs for exact expectation matching.
	s.cache.jitter = func(ttl time.Duration) time.Duration { return ttl }
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type cachedGraph struct {
	SMILES string `json:"smiles"`
	Atoms  int    `json:"atoms"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	val := cachedGraph{SMILES: "O", Atoms: 3}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:solvent-graph:O").SetVal(string(data))

	var dest cachedGraph
	err := s.cache.Get(context.Background(), "solvent-graph:O", &dest)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:absent").RedisNil()

	var dest cachedGraph
	err := s.cache.Get(context.Background(), "absent", &dest)
	assert.ErrorIs(s.T(), err, ErrCacheMiss)
	assert.True(s.T(), pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:bad").SetVal("{not json")

	var dest cachedGraph
	err := s.cache.Get(context.Background(), "bad", &dest)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_UsesDefaultTTLWhenZero() {
	val := cachedGraph{SMILES: "CCO", Atoms: 9}
	data, _ := json.Marshal(val)
	s.mock.ExpectSet("test:k", data, 15*time.Minute).SetVal("OK")

	assert.NoError(s.T(), s.cache.Set(context.Background(), "k", val, 0))
}

func (s *CacheTestSuite) TestSet_ExplicitTTL() {
	val := cachedGraph{SMILES: "CCO", Atoms: 9}
	data, _ := json.Marshal(val)
	s.mock.ExpectSet("test:k", data, time.Hour).SetVal("OK")

	assert.NoError(s.T(), s.cache.Set(context.Background(), "k", val, time.Hour))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)
	assert.NoError(s.T(), s.cache.Delete(context.Background(), "k1", "k2"))

	// No keys, no traffic.
	assert.NoError(s.T(), s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestExists() {
	s.mock.ExpectExists("test:k1").SetVal(1)
	exists, err := s.cache.Exists(context.Background(), "k1")
	assert.NoError(s.T(), err)
	assert.True(s.T(), exists)

	s.mock.ExpectExists("test:k2").SetVal(0)
	exists, err = s.cache.Exists(context.Background(), "k2")
	assert.NoError(s.T(), err)
	assert.False(s.T(), exists)
}

func (s *CacheTestSuite) TestGetOrSet_HitSkipsLoader() {
	val := cachedGraph{SMILES: "O", Atoms: 3}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:k").SetVal(string(data))

	loaderCalled := false
	var dest cachedGraph
	err := s.cache.GetOrSet(context.Background(), "k", &dest, time.Minute,
		func(ctx context.Context) (interface{}, error) {
			loaderCalled = true
			return nil, nil
		})
	assert.NoError(s.T(), err)
	assert.False(s.T(), loaderCalled)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_MissRunsLoaderAndWrites() {
	val := cachedGraph{SMILES: "CCO", Atoms: 9}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:k").RedisNil()
	s.mock.ExpectSet("test:k", data, time.Minute).SetVal("OK")

	var dest cachedGraph
	err := s.cache.GetOrSet(context.Background(), "k", &dest, time.Minute,
		func(ctx context.Context) (interface{}, error) {
			return val, nil
		})
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_LoaderError() {
	s.mock.ExpectGet("test:k").RedisNil()

	var dest cachedGraph
	err := s.cache.GetOrSet(context.Background(), "k", &dest, time.Minute,
		func(ctx context.Context) (interface{}, error) {
			return nil, pkgerrors.Internal("featurization broke")
		})
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeInternal))
}

func (s *CacheTestSuite) TestClosedClient() {
	assert.NoError(s.T(), s.client.Close())

	var dest cachedGraph
	assert.ErrorIs(s.T(), s.cache.Get(context.Background(), "k", &dest), ErrClientClosed)
	assert.ErrorIs(s.T(), s.cache.Set(context.Background(), "k", dest, 0), ErrClientClosed)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}
