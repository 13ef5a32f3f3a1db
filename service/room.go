package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-cubirds/dto"
	"go-cubirds/engine"
	"go-cubirds/entities"
	"go-cubirds/oracle"
	"go-cubirds/repository"
	"go-cubirds/utils"

	"go.uber.org/zap"
)

var (
	ErrRoomNotFound = repository.ErrRoomNotFound
	ErrRoomFull     = errors.New("room is full")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrInvalidMove  = errors.New("invalid move")
	ErrForbidden    = errors.New("only the host may do that")
)

const (
	guestPlaceholder = "Waiting..."
	computerName     = "Computer"
	lastActionLines  = 5
	// maxAISteps bounds one computer turn. A turn is at most three moves;
	// the slack covers a round ending and initiative coming straight back.
	maxAISteps = 16
)

// RoomService owns the room lifecycle and is the only writer of room
// snapshots. Moves are serialised per room with the Redis room lock.
type RoomService struct {
	store   *repository.Store
	engine  *engine.Engine
	policy  *oracle.Policy
	tokens  *utils.TokenIssuer
	logger  *zap.Logger
	aiDelay time.Duration

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	aiRunning sync.Map
}

func NewRoomService(store *repository.Store, eng *engine.Engine, policy *oracle.Policy,
	tokens *utils.TokenIssuer, aiDelay time.Duration, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &RoomService{
		store:   store,
		engine:  eng,
		policy:  policy,
		tokens:  tokens,
		logger:  logger,
		aiDelay: aiDelay,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close stops computer turns in flight and waits for them to return.
func (s *RoomService) Close() {
	s.cancel()
	s.wg.Wait()
}

// WaitAI blocks until no computer turn is running.
func (s *RoomService) WaitAI() {
	s.wg.Wait()
}

// CreateRoom starts a game with the caller in seat 0. Without AI, seat 1 is
// a placeholder until someone joins.
func (s *RoomService) CreateRoom(ctx context.Context, req dto.CreateRoomRequest) (dto.SeatResponse, error) {
	roomID := newRoomID()
	hostName := req.Name
	if hostName == "" {
		hostName = "Player 1"
	}
	guestName := guestPlaceholder
	if req.AI {
		guestName = computerName
	}

	info := entities.RoomInfo{
		RoomID:    roomID,
		HostName:  hostName,
		HostID:    newPlayerID(),
		GuestName: guestName,
		AI:        req.AI,
		CreatedAt: time.Now().Unix(),
	}
	state := s.engine.InitializeGame([engine.PlayerCount]string{hostName, guestName}, req.AI)

	if err := s.store.SaveRoomInfo(ctx, info); err != nil {
		return dto.SeatResponse{}, fmt.Errorf("create room: %w", err)
	}
	if _, err := s.store.SaveSnapshot(ctx, roomID, state); err != nil {
		return dto.SeatResponse{}, fmt.Errorf("create room: %w", err)
	}

	token, err := s.tokens.Issue(roomID, 0, info.HostID)
	if err != nil {
		return dto.SeatResponse{}, fmt.Errorf("issue host token: %w", err)
	}
	s.logger.Info("room created",
		zap.String("room", roomID),
		zap.String("host", hostName),
		zap.Bool("ai", req.AI),
	)
	return dto.SeatResponse{RoomID: roomID, Seat: 0, PlayerID: info.HostID, Token: token}, nil
}

// JoinRoom seats name in seat 1.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, name string) (dto.SeatResponse, error) {
	var resp dto.SeatResponse
	err := s.withRoomLock(ctx, roomID, func() error {
		info, err := s.store.GetRoomInfo(ctx, roomID)
		if err != nil {
			return err
		}
		if info.Full() {
			return fmt.Errorf("%w: %s", ErrRoomFull, roomID)
		}
		state, _, err := s.load(ctx, roomID)
		if err != nil {
			return err
		}

		info.GuestName = name
		info.GuestID = newPlayerID()
		info.GuestJoined = true
		state.Players[1].Name = name
		state.Log = append(state.Log, fmt.Sprintf("%s joined the game.", name))

		if err := s.store.SaveRoomInfo(ctx, info); err != nil {
			return err
		}
		if _, err := s.store.SaveSnapshot(ctx, roomID, state); err != nil {
			return err
		}

		token, err := s.tokens.Issue(roomID, 1, info.GuestID)
		if err != nil {
			return fmt.Errorf("issue guest token: %w", err)
		}
		resp = dto.SeatResponse{RoomID: roomID, Seat: 1, PlayerID: info.GuestID, Token: token}
		return nil
	})
	if err != nil {
		return dto.SeatResponse{}, err
	}
	s.logger.Info("player joined", zap.String("room", roomID), zap.String("name", name))
	return resp, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID string) (dto.RoomDetail, error) {
	info, err := s.store.GetRoomInfo(ctx, roomID)
	if err != nil {
		return dto.RoomDetail{}, err
	}
	state, version, err := s.load(ctx, roomID)
	if err != nil {
		return dto.RoomDetail{}, err
	}
	s.resumeAI(roomID, state)
	return dto.RoomDetail{Info: summary(info, state), Version: version, State: dto.Redact(state)}, nil
}

// ListRooms summarises every live room. Registry entries whose data has
// expired are dropped on the way.
func (s *RoomService) ListRooms(ctx context.Context) ([]dto.RoomInfo, error) {
	ids, err := s.store.ListRoomIDs(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]dto.RoomInfo, 0, len(ids))
	for _, id := range ids {
		info, err := s.store.GetRoomInfo(ctx, id)
		if err == nil {
			var state engine.GameState
			state, _, err = s.load(ctx, id)
			if err == nil {
				rooms = append(rooms, summary(info, state))
				continue
			}
		}
		if !errors.Is(err, repository.ErrRoomNotFound) {
			return nil, err
		}
		if err := s.store.ForgetRoom(ctx, id); err != nil {
			s.logger.Warn("forget stale room", zap.String("room", id), zap.Error(err))
		}
	}
	return rooms, nil
}

// DeleteRoom removes a room. Only seat 0 may do it.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string, seat int) error {
	if seat != 0 {
		return ErrForbidden
	}
	err := s.withRoomLock(ctx, roomID, func() error {
		return s.store.DeleteRoom(ctx, roomID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("room deleted", zap.String("room", roomID))
	return nil
}

// SubmitMove applies move for the player in seat. A rejected move comes back
// as ErrInvalidMove wrapping the engine's reason, with the outcome attached
// for its message. When the move hands the turn to the computer, its turn
// runs in the background.
func (s *RoomService) SubmitMove(ctx context.Context, roomID string, seat int, move engine.Move) (engine.Outcome, error) {
	var out engine.Outcome
	err := s.withRoomLock(ctx, roomID, func() error {
		state, _, err := s.load(ctx, roomID)
		if err != nil {
			return err
		}
		if seat != state.CurrentPlayer || state.Players[seat].IsAI {
			return fmt.Errorf("%w: seat %d, current %d", ErrNotYourTurn, seat, state.CurrentPlayer)
		}

		out = s.engine.ApplyMove(state, move)
		if !out.Valid {
			return fmt.Errorf("%w: %w", ErrInvalidMove, out.Err)
		}
		version, err := s.store.SaveSnapshot(ctx, roomID, out.State)
		if err != nil {
			return err
		}
		s.logger.Info("move applied",
			zap.String("room", roomID),
			zap.Int("seat", seat),
			zap.String("kind", string(move.Kind())),
			zap.Int64("version", version),
		)
		return nil
	})
	if err != nil {
		return out, err
	}
	if computersTurn(out.State) {
		s.startAI(roomID)
	}
	return out, nil
}

// Subscribe streams every snapshot saved for roomID until ctx is done.
func (s *RoomService) Subscribe(ctx context.Context, roomID string) (<-chan repository.Snapshot, error) {
	return s.store.Subscribe(ctx, roomID)
}

// resumeAI starts a computer turn for a room found waiting on the computer,
// e.g. one loaded after a restart.
func (s *RoomService) resumeAI(roomID string, state engine.GameState) {
	if computersTurn(state) {
		s.startAI(roomID)
	}
}

// aiRun marks the goroutine currently playing a room's computer turn.
type aiRun struct {
	started time.Time
}

func (s *RoomService) startAI(roomID string) {
	if s.ctx.Err() != nil {
		return
	}
	run := &aiRun{started: time.Now()}
	if _, running := s.aiRunning.LoadOrStore(roomID, run); running {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.aiRunning.CompareAndDelete(roomID, run)
		s.playComputerTurn(s.ctx, roomID, run)
	}()
}

func (s *RoomService) playComputerTurn(ctx context.Context, roomID string, run *aiRun) {
	log := s.logger.With(zap.String("room", roomID))
	for step := 0; step < maxAISteps; step++ {
		if err := sleep(ctx, s.aiDelay); err != nil {
			return
		}

		more := false
		err := s.withRoomLock(ctx, roomID, func() error {
			state, _, err := s.load(ctx, roomID)
			if err != nil {
				return err
			}
			if computersTurn(state) {
				out := s.engine.ApplyMove(state, s.policy.Decide(ctx, roomID, state))
				if !out.Valid {
					return fmt.Errorf("%w: %w", ErrInvalidMove, out.Err)
				}
				if _, err := s.store.SaveSnapshot(ctx, roomID, out.State); err != nil {
					return err
				}
				log.Info("computer moved", zap.String("message", out.Message))
				more = computersTurn(out.State)
			}
			if !more {
				// cleared under the lock: the human move that hands the
				// turn back must be able to start a new run
				s.aiRunning.CompareAndDelete(roomID, run)
			}
			return nil
		})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Error("computer move failed", zap.Error(err))
			}
			return
		}
		if !more {
			return
		}
	}
	log.Warn("computer turn did not finish", zap.Int("steps", maxAISteps))
}

// load reads a snapshot and rejects ones the engine cannot run.
func (s *RoomService) load(ctx context.Context, roomID string) (engine.GameState, int64, error) {
	state, version, err := s.store.LoadSnapshot(ctx, roomID)
	if err != nil {
		return engine.GameState{}, 0, err
	}
	if err := engine.Validate(state); err != nil {
		return engine.GameState{}, 0, fmt.Errorf("room %s: %w", roomID, err)
	}
	return state, version, nil
}

func computersTurn(s engine.GameState) bool {
	return s.Status == engine.StatusPlaying && s.Current().IsAI
}

func summary(info entities.RoomInfo, state engine.GameState) dto.RoomInfo {
	return dto.RoomInfo{
		RoomID:     info.RoomID,
		HostName:   info.HostName,
		GuestName:  info.GuestName,
		AI:         info.AI,
		Full:       info.Full(),
		Status:     state.Status,
		Round:      state.Round,
		LastAction: utils.Tail(state.Log, lastActionLines),
	}
}
