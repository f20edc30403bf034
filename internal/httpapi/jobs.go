package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/flecs-run/edge-core/internal/quest"
)

// questView is the wire shape of a Quest tree node.
type questView struct {
	ID          quest.JobID `json:"id"`
	Description string      `json:"description"`
	Detail      string      `json:"detail"`
	State       quest.State `json:"state"`
	Children    []questView `json:"children,omitempty"`
}

func viewOf(q *quest.Quest) questView {
	children := q.Children()
	view := questView{
		ID:          q.ID(),
		Description: q.Description(),
		Detail:      q.Detail(),
		State:       q.State(),
	}
	for _, c := range children {
		view.Children = append(view.Children, viewOf(c))
	}
	return view
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.jobs.List()
	views := make([]questView, 0, len(jobs))
	for _, q := range jobs {
		views = append(views, viewOf(q))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := quest.JobID(chi.URLParam(r, "jobId"))
	q, err := s.jobs.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(q))
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := quest.JobID(chi.URLParam(r, "jobId"))
	if err := s.jobs.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The control API is served to the local host's own UI; cross-origin
	// upgrade checks are not meaningful here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleJobProgressWS streams the job's tree as a JSON frame every tick
// until the root reaches a terminal state, then sends one final frame
// and closes.
func (s *Server) handleJobProgressWS(w http.ResponseWriter, r *http.Request) {
	id := quest.JobID(chi.URLParam(r, "jobId"))
	q, err := s.jobs.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithField("error", err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		view := viewOf(q)
		if err := conn.WriteJSON(view); err != nil {
			return
		}
		if terminal(view.State) {
			return
		}
		<-ticker.C
	}
}

func terminal(s quest.State) bool {
	return s == quest.Ok || s == quest.Failed || s == quest.Cancelled
}
