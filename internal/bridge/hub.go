// Package bridge relays biometric reports from the wrist companion app.
package bridge

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mobigaurav/pulsemind/internal/core"
	"github.com/mobigaurav/pulsemind/internal/logging"
)

// Peer is one connected companion device
type Peer struct {
	ID          string    `json:"id"`
	RemoteAddr  string    `json:"remote_addr"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`

	conn *websocket.Conn
}

// Hub accepts companion-device connections and funnels their reports
// through a single consumer goroutine, so reports are applied one at a
// time in arrival order even when several devices interleave. Ordering
// across channels within the pipeline stays unguaranteed, as before.
type Hub struct {
	upgrader websocket.Upgrader
	server   *http.Server
	log      *logging.Logger

	peers    map[string]*Peer
	reports  chan core.DeviceReport
	onReport func(core.DeviceReport)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu sync.RWMutex
}

// HubConfig for creating a hub
type HubConfig struct {
	ReadTimeout time.Duration
	BufferSize  int
}

// DefaultHubConfig returns default hub configuration
func DefaultHubConfig() HubConfig {
	return HubConfig{
		ReadTimeout: 60 * time.Second,
		BufferSize:  64,
	}
}

// NewHub creates a new bridge hub
func NewHub(cfg HubConfig) *Hub {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultHubConfig().BufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Local trusted transport
			},
		},
		log:     logging.WithComponent("bridge"),
		peers:   make(map[string]*Peer),
		reports: make(chan core.DeviceReport, cfg.BufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnReport sets the report callback. It runs on the single consumer
// goroutine; reports are delivered one at a time.
func (h *Hub) OnReport(fn func(core.DeviceReport)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onReport = fn
}

// Peers returns a snapshot of the connected devices
func (h *Hub) Peers() []*Peer {
	h.mu.RLock()
	defer h.mu.RUnlock()

	peers := make([]*Peer, 0, len(h.peers))
	for _, p := range h.peers {
		copied := *p
		copied.conn = nil
		peers = append(peers, &copied)
	}
	return peers
}

// PeerCount returns the number of connected devices
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Start starts the hub's WebSocket server and the consumer loop
func (h *Hub) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.HandleWebSocket)
	mux.HandleFunc("/health", h.handleHealth)

	h.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	h.wg.Add(1)
	go h.consumeReports()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.server.ListenAndServe(); err != http.ErrServerClosed {
			h.log.Error("bridge server error: %v", err)
		}
	}()

	h.log.Info("companion bridge listening on %s", addr)
	return nil
}

// Stop shuts the hub down
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	for _, p := range h.peers {
		p.conn.Close()
	}
	h.mu.Unlock()

	if h.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.server.Shutdown(ctx)
	}

	h.wg.Wait()
}

// HandleWebSocket upgrades a companion connection and pumps its reports
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed: %v", err)
		return
	}

	peer := &Peer{
		ID:          fmt.Sprintf("dev_%d", time.Now().UnixNano()),
		RemoteAddr:  r.RemoteAddr,
		ConnectedAt: time.Now(),
		LastSeen:    time.Now(),
		conn:        conn,
	}

	h.mu.Lock()
	h.peers[peer.ID] = peer
	h.mu.Unlock()

	h.log.Info("companion connected from %s", peer.RemoteAddr)

	h.wg.Add(1)
	go h.readPump(peer)
}

func (h *Hub) readPump(peer *Peer) {
	defer h.wg.Done()
	defer func() {
		peer.conn.Close()
		h.mu.Lock()
		delete(h.peers, peer.ID)
		h.mu.Unlock()
		h.log.Info("companion disconnected: %s", peer.RemoteAddr)
	}()

	for {
		_, data, err := peer.conn.ReadMessage()
		if err != nil {
			return
		}

		h.mu.Lock()
		peer.LastSeen = time.Now()
		h.mu.Unlock()

		rep, err := DecodeReport(data)
		if err != nil {
			h.log.Warn("dropping malformed report from %s: %v", peer.RemoteAddr, err)
			continue
		}

		select {
		case h.reports <- rep:
		case <-h.ctx.Done():
			return
		}
	}
}

// consumeReports is the single consumer applying reports in order
func (h *Hub) consumeReports() {
	defer h.wg.Done()

	for {
		select {
		case rep := <-h.reports:
			h.mu.RLock()
			fn := h.onReport
			h.mu.RUnlock()
			if fn != nil {
				fn(rep)
			}
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","peers":%d}`, h.PeerCount())
}
