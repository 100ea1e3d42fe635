package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	eventSnapshot = "snapshot"
	flushTimeout  = 2 * time.Second
)

// handleStream streams view snapshots as Server-Sent Events.
//
// The first event is the current view. Each snapshot published on the
// update subject is forwarded as another snapshot event, and a heartbeat
// comment is written whenever the stream is otherwise idle.
//
//	GET /api/v1/constellation/stream
//
//	event: snapshot
//	data: {"gardenSummaries":[...],"totals":{...},...}
//
//	: heartbeat
func (s *Server) handleStream(c echo.Context) error {
	if s.nc == nil || !s.nc.IsConnected() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "live updates unavailable")
	}

	ctx := c.Request().Context()

	// Subscribe before sending the first snapshot so no update is missed.
	msgChan := make(chan *nats.Msg, 16)
	sub, err := s.nc.ChanSubscribe(s.config.Subject, msgChan)
	if err != nil {
		s.logger.Error(ctx, "stream subscribe failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "live updates unavailable")
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()
	if err := s.nc.FlushTimeout(flushTimeout); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "live updates unavailable")
	}

	initial, err := json.Marshal(s.views.Build(ctx))
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	s.metrics.streamOpened(c)
	defer s.metrics.streamClosed(c)
	s.logger.Debug(ctx, "stream client connected", zap.String("subject", s.config.Subject))

	if err := writeEvent(res, eventSnapshot, initial); err != nil {
		return nil
	}

	ticker := time.NewTicker(s.config.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case msg := <-msgChan:
			if err := writeEvent(res, eventSnapshot, msg.Data); err != nil {
				return nil
			}
			ticker.Reset(s.config.Heartbeat)

		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": heartbeat\n\n"); err != nil {
				return nil
			}
			res.Flush()

		case <-ctx.Done():
			s.logger.Debug(ctx, "stream client disconnected")
			return nil
		}
	}
}

func writeEvent(res *echo.Response, event string, data []byte) error {
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
