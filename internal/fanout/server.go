package fanout

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/playoff-odds/internal/events"
	"github.com/charleschow/playoff-odds/internal/telemetry"
)

const (
	clientSendBuf = 64
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type dashboardClient struct {
	league string // empty = every league
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
}

// Server pushes forecast and scenario events to connected dashboards. The
// most recent forecast per league is replayed to each new client.
type Server struct {
	mu       sync.Mutex
	clients  map[*dashboardClient]struct{}
	lastByLg map[string][]byte
}

func NewServer(bus *events.Bus) *Server {
	s := &Server{
		clients:  make(map[*dashboardClient]struct{}),
		lastByLg: make(map[string][]byte),
	}
	bus.Subscribe(events.EventForecastReady, s.forward)
	bus.Subscribe(events.EventScenarioComputed, s.forward)
	bus.Subscribe(events.EventLeagueLoaded, s.forward)
	return s
}

// forward runs on the publisher's goroutine; sends never block.
func (s *Server) forward(evt events.Event) error {
	data, err := MarshalEvent(evt)
	if err != nil {
		telemetry.Warnf("fanout: marshal error: %v", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if evt.Type == events.EventForecastReady {
		s.lastByLg[evt.League] = data
	}
	for c := range s.clients {
		if c.league != "" && c.league != evt.League {
			continue
		}
		select {
		case c.send <- data:
		default:
			telemetry.Warnf("fanout: dropping %s for slow client league=%q", evt.Type, c.league)
		}
	}
	return nil
}

// HandleWS upgrades a dashboard connection. ?league= narrows the stream.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		telemetry.Warnf("fanout: upgrade failed: %v", err)
		return
	}

	c := &dashboardClient{
		league: r.URL.Query().Get("league"),
		conn:   conn,
		send:   make(chan []byte, clientSendBuf),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	for lg, data := range s.lastByLg {
		if c.league == "" || c.league == lg {
			c.send <- data
		}
	}
	s.mu.Unlock()
	telemetry.Metrics.ActiveClients.Inc()

	telemetry.Infof("fanout: dashboard connected  league=%q  remote=%s", c.league, r.RemoteAddr)

	go s.writePump(c)
	go s.readPump(c)
}

// writePump owns the client lifecycle: on exit it unregisters the client
// and closes the connection.
func (s *Server) writePump(c *dashboardClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				telemetry.Warnf("fanout: write error league=%q: %v", c.league, err)
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only services pongs and close frames.
func (s *Server) readPump(c *dashboardClient) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *dashboardClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		telemetry.Metrics.ActiveClients.Dec()
		telemetry.Infof("fanout: dashboard disconnected  league=%q", c.league)
	}
}

// ClientCount reports connected dashboards.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
