package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-cubirds/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	lockAttempts = 20
	lockBackoff  = 50 * time.Millisecond
)

// newRoomID returns an 8 character id cut from a random uuid.
func newRoomID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

func newPlayerID() string {
	return uuid.NewString()
}

// withRoomLock runs fn while holding the room lock, retrying briefly when
// someone else holds it.
func (s *RoomService) withRoomLock(ctx context.Context, roomID string, fn func() error) error {
	var (
		token string
		err   error
	)
	for attempt := 0; attempt < lockAttempts; attempt++ {
		token, err = s.store.Lock(ctx, roomID)
		if !errors.Is(err, repository.ErrLocked) {
			break
		}
		if err := sleep(ctx, lockBackoff); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}
	defer func() {
		// unlock even when ctx is already cancelled
		if err := s.store.Unlock(context.Background(), roomID, token); err != nil {
			s.logger.Warn("unlock failed", zap.String("room", roomID), zap.Error(err))
		}
	}()
	return fn()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
