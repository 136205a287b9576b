package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playlink/llm-server/internal/steam"
)

const gamesTTL = 5 * time.Minute

// Store caches owned-games lookups. A nil *Store is valid and behaves as a
// cache that always misses, so the server runs without redis.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}

func gamesKey(username string) string {
	return "steam:games:" + username
}

// GetGames returns the cached library for a username, with a hit flag.
func (s *Store) GetGames(ctx context.Context, username string) ([]steam.Game, bool) {
	if s == nil {
		return nil, false
	}
	raw, err := s.rdb.Get(ctx, gamesKey(username)).Bytes()
	if err != nil {
		return nil, false
	}
	var games []steam.Game
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, false
	}
	return games, true
}

// SetGames caches a library lookup; failures are ignored since the cache is
// best effort.
func (s *Store) SetGames(ctx context.Context, username string, games []steam.Game) {
	if s == nil {
		return
	}
	raw, err := json.Marshal(games)
	if err != nil {
		return
	}
	_ = s.rdb.Set(ctx, gamesKey(username), raw, gamesTTL).Err()
}
