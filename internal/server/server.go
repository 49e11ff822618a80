// Package server exposes the simulation to an interactive dashboard over
// HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"MarketSim/internal/logger"
	"MarketSim/internal/model"
	"MarketSim/internal/pipeline"
	"MarketSim/internal/render"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Config configures a Server.
type Config struct {
	Addr          string
	Defaults      model.SimulationParameters
	Bounds        model.ParameterBounds
	Seed          int64
	HistogramBins int
	Now           func() time.Time
	// Export, if set, receives every run the dashboard requests.
	Export render.Sink
}

// Server serves GET /api/simulate, GET /ws and GET /healthz.
type Server struct {
	cfg      Config
	upgrader websocket.Upgrader
	http     *http.Server
}

// simulateRequest is one WebSocket request. Omitted fields keep the
// configured defaults.
type simulateRequest struct {
	model.SimulationParameters
	Seed *int64 `json:"seed,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(cfg Config) *Server {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = render.DefaultOptions().HistogramBins
	}
	s := &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/simulate", s.handleSimulate)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// Start serves in a background goroutine.
func (s *Server) Start() {
	go func() {
		logger.Info("http server listening on %s", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server: %v", err)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}

// simulate checks p against the control bounds and runs the pipeline.
func (s *Server) simulate(ctx context.Context, p model.SimulationParameters, seed int64) (*render.Document, error) {
	if err := s.cfg.Bounds.Check(p); err != nil {
		return nil, err
	}
	res, err := pipeline.Run(p, seed, s.cfg.Now())
	if err != nil {
		return nil, err
	}
	if s.cfg.Export != nil {
		if err := s.cfg.Export.Render(ctx, res); err != nil {
			logger.Warn("export run %s: %v", res.ID, err)
		}
	}
	return render.NewDocument(res, s.cfg.HistogramBins), nil
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	p, seed, err := s.parseQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	doc, err := s.simulate(r.Context(), p, seed)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidParameter) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) parseQuery(r *http.Request) (model.SimulationParameters, int64, error) {
	p := s.cfg.Defaults
	seed := s.cfg.Seed
	q := r.URL.Query()

	// Keys match the JSON field names; the short forms are aliases.
	floats := []struct {
		key, alias string
		dst        *float64
	}{
		{"start_price", "", &p.StartPrice},
		{"volatility_percent", "volatility", &p.VolatilityPercent},
	}
	for _, f := range floats {
		if v := lookup(q, f.key, f.alias); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return p, 0, fmt.Errorf("%w: %s must be a number, got %q", model.ErrInvalidParameter, f.key, v)
			}
			*f.dst = n
		}
	}
	ints := []struct {
		key, alias string
		dst        *int
	}{
		{"num_days", "days", &p.NumDays},
		{"ma_window", "", &p.MAWindow},
	}
	for _, f := range ints {
		if v := lookup(q, f.key, f.alias); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return p, 0, fmt.Errorf("%w: %s must be an integer, got %q", model.ErrInvalidParameter, f.key, v)
			}
			*f.dst = n
		}
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return p, 0, fmt.Errorf("%w: seed must be an integer, got %q", model.ErrInvalidParameter, v)
		}
		seed = n
	}
	return p, seed, nil
}

// lookup returns the value under key, falling back to alias.
func lookup(q url.Values, key, alias string) string {
	if v := q.Get(key); v != "" || alias == "" {
		return v
	}
	return q.Get(alias)
}

// handleWS answers each parameter message with a result document, or with
// an error frame, until the client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read: %v", err)
			}
			return
		}

		var reply interface{}
		req := simulateRequest{SimulationParameters: s.cfg.Defaults}
		if err := json.Unmarshal(data, &req); err != nil {
			reply = errorResponse{Error: fmt.Sprintf("invalid request: %v", err)}
		} else {
			seed := s.cfg.Seed
			if req.Seed != nil {
				seed = *req.Seed
			}
			doc, err := s.simulate(r.Context(), req.SimulationParameters, seed)
			if err != nil {
				reply = errorResponse{Error: err.Error()}
			} else {
				reply = doc
			}
		}

		out, err := json.Marshal(reply)
		if err != nil {
			logger.Error("encode websocket reply: %v", err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
			logger.Warn("websocket write: %v", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
