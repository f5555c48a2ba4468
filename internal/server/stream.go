package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cwbudde/algo-rfscope/internal/scope"
)

// handleStream pushes every new frame as a Server-Sent Event named "frame".
// Slow clients skip frames; they always receive the newest one.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	frames, cancel := s.engine.Subscribe()
	defer cancel()

	last := s.engine.Latest()
	if err := writeFrameEvent(w, rc, last); err != nil {
		s.logger.Debug("stream write", "err", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if f.Seq <= last.Seq {
				continue
			}
			last = f
			if err := writeFrameEvent(w, rc, f); err != nil {
				s.logger.Debug("stream write", "err", err)
				return
			}
		}
	}
}

func writeFrameEvent(w http.ResponseWriter, rc *http.ResponseController, f scope.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id: %d\nevent: frame\ndata: %s\n\n", f.Seq, data); err != nil {
		return err
	}
	return rc.Flush()
}
