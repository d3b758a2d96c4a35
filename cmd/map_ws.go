package main

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pamojaBack/internal/mapengine/proximity"
	mapws "pamojaBack/internal/mapengine/ws"
	"pamojaBack/internal/models"
)

const (
	readLimit          = 1 << 20
	readDeadline       = 120 * time.Second // extended by each pong
	wsWriteDeadline    = 5 * time.Second
	pingInterval       = 15 * time.Second
	firstHelloDeadline = 30 * time.Second // time allowed for the {token} frame
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// hubLocationSource caches the last device position reported over the map
// websocket and serves it as a location provider. Current blocks until a
// fresh-enough fix arrives or the context expires.
type hubLocationSource struct {
	mu      sync.Mutex
	loc     *models.UserLocation
	at      time.Time
	updated chan struct{}
}

func newHubLocationSource() *hubLocationSource {
	return &hubLocationSource{updated: make(chan struct{})}
}

// Update records a fresh fix and wakes any waiting Current call.
func (s *hubLocationSource) Update(loc models.UserLocation) {
	s.mu.Lock()
	l := loc
	s.loc = &l
	s.at = time.Now()
	close(s.updated)
	s.updated = make(chan struct{})
	s.mu.Unlock()
}

func (s *hubLocationSource) Current(ctx context.Context, opts proximity.LocateOptions) (models.UserLocation, error) {
	for {
		s.mu.Lock()
		if s.loc != nil && (opts.MaximumAge <= 0 || time.Since(s.at) <= opts.MaximumAge) {
			loc := *s.loc
			s.mu.Unlock()
			return loc, nil
		}
		stale := s.loc != nil
		ch := s.updated
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			if stale {
				return models.UserLocation{}, proximity.ErrPositionUnavailable
			}
			return models.UserLocation{}, proximity.ErrTimeout
		}
	}
}

// mapCommand is a client frame on the map websocket.
type mapCommand struct {
	Type      string  `json:"type"`
	Query     string  `json:"query,omitempty"`
	Column    string  `json:"column,omitempty"`
	Key       string  `json:"key,omitempty"`
	Layer     string  `json:"layer,omitempty"`
	RadiusKm  float64 `json:"radius_km,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// MapWebSocketHandler upgrades an admin map session and drives the engine
// from client commands.
func (app *application) MapWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Map WS upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(firstHelloDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	var hello struct {
		Token string `json:"token"`
	}
	if err := conn.ReadJSON(&hello); err != nil || hello.Token == "" {
		log.Println("invalid hello payload for map:", err)
		_ = writeClose(conn, websocket.ClosePolicyViolation, "hello required")
		_ = conn.Close()
		return
	}
	if _, err := app.tokens.Parse(hello.Token); err != nil {
		log.Println("map ws token rejected:", err)
		_ = writeClose(conn, websocket.ClosePolicyViolation, "invalid token")
		_ = conn.Close()
		return
	}
	conn.SetReadDeadline(time.Now().Add(readDeadline))

	id := uuid.NewString()
	app.mapHub.Register(mapws.Client{ID: id, Socket: conn})

	go app.pingLoopMap(conn, id)
	go app.handleMapMessages(conn, id)
}

func (app *application) pingLoopMap(conn *websocket.Conn, id string) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for range t.C {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
		if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
			_ = writeClose(conn, websocket.CloseGoingAway, "ping error")
			app.mapHub.Unregister(id, conn)
			return
		}
	}
}

func (app *application) handleMapMessages(conn *websocket.Conn, id string) {
	defer func() {
		app.mapHub.Unregister(id, conn)
		_ = conn.Close()
	}()

	for {
		var cmd mapCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			log.Println("map ws read error:", err)
			_ = writeClose(conn, websocket.CloseNormalClosure, "read error")
			return
		}
		app.dispatchMapCommand(cmd)
	}
}

func (app *application) dispatchMapCommand(cmd mapCommand) {
	switch cmd.Type {
	case "location":
		loc := models.UserLocation{Latitude: cmd.Latitude, Longitude: cmd.Longitude}
		app.locations.Update(loc)
		app.mapHub.BroadcastUserLocation(loc)
	case "search":
		app.mapEngine.Search().Search(cmd.Query, cmd.Column)
	case "near_me":
		if cmd.RadiusKm <= 0 {
			cmd.RadiusKm = 10
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := app.mapEngine.Proximity().Activate(ctx, cmd.RadiusKm); err != nil {
			app.errorLog.Printf("map ws: near me failed: %v", err)
		}
		cancel()
	case "near_me_off":
		app.mapEngine.Proximity().Deactivate()
	case "set_radius":
		app.mapEngine.Proximity().SetRadius(cmd.RadiusKm)
	case "recenter_user":
		app.mapEngine.Proximity().RecenterOnUser()
	case "toggle_category":
		app.mapEngine.ToggleCategory(cmd.Key)
	case "select_all":
		app.mapEngine.SelectAllCategories()
	case "deselect_all":
		app.mapEngine.DeselectAllCategories()
	case "base_layer":
		app.mapEngine.Surface().SetBaseLayer(cmd.Layer)
		app.mapEngine.Render()
	default:
		app.infoLog.Printf("map ws: unknown command %q", cmd.Type)
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(wsWriteDeadline),
	)
}
