package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"go-cubirds/engine"
	"go-cubirds/entities"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrLocked       = errors.New("room is busy")
)

const (
	roomsKey = "rooms"
	lockTTL  = 5 * time.Second
)

func stateKey(roomID string) string   { return fmt.Sprintf("room:%s:state", roomID) }
func versionKey(roomID string) string { return fmt.Sprintf("room:%s:version", roomID) }
func infoKey(roomID string) string    { return fmt.Sprintf("room:%s:info", roomID) }
func updatesKey(roomID string) string { return fmt.Sprintf("room:%s:updates", roomID) }
func lockKey(roomID string) string    { return fmt.Sprintf("lock:room:%s", roomID) }

// Snapshot is one published version of a room's game state.
type Snapshot struct {
	RoomID  string           `json:"roomID"`
	Version int64            `json:"version"`
	State   engine.GameState `json:"state"`
}

// Store keeps room snapshots in Redis. Writes are last-write-wins; the version
// counter only orders what subscribers see.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStore wraps rdb. A zero ttl keeps rooms until they are deleted.
func NewStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{rdb: rdb, ttl: ttl, logger: logger}
}

// SaveSnapshot stores state, bumps the room version and publishes the result
// to the room's update channel.
func (s *Store) SaveSnapshot(ctx context.Context, roomID string, state engine.GameState) (int64, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return 0, fmt.Errorf("encode state: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, stateKey(roomID), data, s.ttl)
	incr := pipe.Incr(ctx, versionKey(roomID))
	if s.ttl > 0 {
		pipe.Expire(ctx, versionKey(roomID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("save state of room %s: %w", roomID, err)
	}
	version := incr.Val()

	msg, err := json.Marshal(Snapshot{RoomID: roomID, Version: version, State: state})
	if err != nil {
		return version, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.rdb.Publish(ctx, updatesKey(roomID), msg).Err(); err != nil {
		// the snapshot is stored; subscribers catch up on their next load
		s.logger.Warn("publish snapshot failed", zap.String("room", roomID), zap.Error(err))
	}
	return version, nil
}

// LoadSnapshot returns the latest state of a room, normalized.
func (s *Store) LoadSnapshot(ctx context.Context, roomID string) (engine.GameState, int64, error) {
	data, err := s.rdb.Get(ctx, stateKey(roomID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return engine.GameState{}, 0, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if err != nil {
		return engine.GameState{}, 0, fmt.Errorf("load state of room %s: %w", roomID, err)
	}

	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return engine.GameState{}, 0, fmt.Errorf("decode state of room %s: %w", roomID, err)
	}

	version, err := s.rdb.Get(ctx, versionKey(roomID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return engine.GameState{}, 0, fmt.Errorf("load version of room %s: %w", roomID, err)
	}
	return engine.Normalize(state), version, nil
}

// SaveRoomInfo writes the seating record and registers the room.
func (s *Store) SaveRoomInfo(ctx context.Context, info entities.RoomInfo) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, infoKey(info.RoomID), info.Fields())
	if s.ttl > 0 {
		pipe.Expire(ctx, infoKey(info.RoomID), s.ttl)
	}
	pipe.SAdd(ctx, roomsKey, info.RoomID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save info of room %s: %w", info.RoomID, err)
	}
	return nil
}

// GetRoomInfo reads the seating record of a room.
func (s *Store) GetRoomInfo(ctx context.Context, roomID string) (entities.RoomInfo, error) {
	fields, err := s.rdb.HGetAll(ctx, infoKey(roomID)).Result()
	if err != nil {
		return entities.RoomInfo{}, fmt.Errorf("load info of room %s: %w", roomID, err)
	}
	if len(fields) == 0 {
		return entities.RoomInfo{}, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}

	var info entities.RoomInfo
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: stringToScalarHookFunc(),
		Result:     &info,
		TagName:    "json",
	})
	if err != nil {
		return entities.RoomInfo{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return entities.RoomInfo{}, fmt.Errorf("decode info of room %s: %w", roomID, err)
	}
	return info, nil
}

// ListRoomIDs returns every registered room id, sorted.
func (s *Store) ListRoomIDs(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, roomsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// ForgetRoom drops roomID from the registry without touching its keys. Used
// for registry entries whose data has expired.
func (s *Store) ForgetRoom(ctx context.Context, roomID string) error {
	return s.rdb.SRem(ctx, roomsKey, roomID).Err()
}

// DeleteRoom removes every key under the room prefix.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	prefix := fmt.Sprintf("room:%s:", roomID)
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := s.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan keys of room %s: %w", roomID, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if err := s.ForgetRoom(ctx, roomID); err != nil {
		return fmt.Errorf("unregister room %s: %w", roomID, err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete keys of room %s: %w", roomID, err)
	}
	return nil
}

// Lock takes the room lock and returns the token needed to release it. It
// does not wait: a held lock yields ErrLocked.
func (s *Store) Lock(ctx context.Context, roomID string) (string, error) {
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, lockKey(roomID), token, lockTTL).Result()
	if err != nil {
		return "", fmt.Errorf("lock room %s: %w", roomID, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrLocked, roomID)
	}
	return token, nil
}

// Unlock releases the lock if token still owns it.
func (s *Store) Unlock(ctx context.Context, roomID, token string) error {
	val, err := s.rdb.Get(ctx, lockKey(roomID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unlock room %s: %w", roomID, err)
	}
	if val != token {
		s.logger.Warn("lock taken over before unlock", zap.String("room", roomID))
		return nil
	}
	return s.rdb.Del(ctx, lockKey(roomID)).Err()
}

// Subscribe streams snapshots published for roomID until ctx is done. The
// subscription is active when Subscribe returns.
func (s *Store) Subscribe(ctx context.Context, roomID string) (<-chan Snapshot, error) {
	ps := s.rdb.Subscribe(ctx, updatesKey(roomID))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe to room %s: %w", roomID, err)
	}

	out := make(chan Snapshot, 8)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var snap Snapshot
				if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
					s.logger.Warn("bad snapshot on channel", zap.String("room", roomID), zap.Error(err))
					continue
				}
				snap.State = engine.Normalize(snap.State)
				select {
				case out <- snap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// stringToScalarHookFunc converts the strings HGETALL returns into the int
// and bool fields of the target struct.
func stringToScalarHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Kind, to reflect.Kind, data interface{}) (interface{}, error) {
		if from != reflect.String {
			return data, nil
		}
		str := data.(string)
		switch to {
		case reflect.Int:
			return strconv.Atoi(str)
		case reflect.Int64:
			return strconv.ParseInt(str, 10, 64)
		case reflect.Bool:
			return strconv.ParseBool(str)
		}
		return data, nil
	}
}
