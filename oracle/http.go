package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go-cubirds/engine"

	"go.uber.org/zap"
)

// HTTPOracle asks an external decision service over HTTP.
type HTTPOracle struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

func NewHTTPOracle(url string, timeout time.Duration, logger *zap.Logger) *HTTPOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPOracle{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type httpRequest struct {
	Action   string      `json:"action"`
	RoomID   string      `json:"roomID"`
	PlayerID string      `json:"playerID"`
	View     engine.View `json:"view"`
}

type httpResponse struct {
	Result *suggestion `json:"result"`
}

func (o *HTTPOracle) Suggest(ctx context.Context, roomID string, view engine.View) (*engine.PlayMove, error) {
	body, err := json.Marshal(httpRequest{
		Action:   "play",
		RoomID:   roomID,
		PlayerID: strconv.Itoa(view.Seat),
		View:     view,
	})
	if err != nil {
		return nil, fmt.Errorf("encode oracle request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call oracle: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read oracle response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out httpResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode oracle response: %w", err)
	}
	if out.Result == nil {
		return nil, ErrNoSuggestion
	}
	o.logger.Debug("oracle suggestion",
		zap.String("room", roomID),
		zap.Stringer("species", out.Result.Species),
		zap.Int("row", out.Result.Row),
		zap.String("side", string(out.Result.Side)),
	)
	return out.Result.move(), nil
}
