package server

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/docpost/internal/build"
)

// BuildState remembers the outcome of the most recent build for /healthz.
type BuildState struct {
	mu     sync.RWMutex
	status build.Status
	pages  int
	err    string
	at     time.Time
}

// Record stores a build outcome. It matches watch.Session.OnResult.
func (s *BuildState) Record(res *build.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status, s.pages, s.err = build.StatusFailed, 0, ""
	if res != nil {
		s.status = res.Status
		s.pages = len(res.Pages)
	}
	if err != nil {
		s.err = err.Error()
		if res == nil || res.Status == build.StatusSuccess {
			s.status = build.StatusFailed
		}
	}
	s.at = time.Now()
}

type healthResponse struct {
	Status    string       `json:"status"`
	Build     build.Status `json:"build,omitempty"`
	Pages     int          `json:"pages,omitempty"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

func (s *BuildState) snapshot() healthResponse {
	resp := healthResponse{Status: "healthy"}
	if s == nil {
		return resp
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.at.IsZero() {
		return resp
	}
	at := s.at
	resp.Build, resp.Pages, resp.Error, resp.UpdatedAt = s.status, s.pages, s.err, &at
	if !s.status.IsSuccess() {
		resp.Status = "degraded"
	}
	return resp
}
