package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/worserver/config"
	"github.com/wfunc/worserver/engine"
	"github.com/wfunc/worserver/logger"
	"github.com/wfunc/worserver/monitor"
	"github.com/wfunc/worserver/network"
	"github.com/wfunc/worserver/notify"
	"github.com/wfunc/worserver/persistence"
	worserver_rpc "github.com/wfunc/worserver/rpc"
	"github.com/wfunc/worserver/scheduler"
	"github.com/wfunc/worserver/services"
	"github.com/wfunc/worserver/session"
	"github.com/wfunc/worserver/table"
)

// DefaultTableID is the table served when clients do not name one.
const DefaultTableID = "main"

// GameServer accepts websocket connections from the table display and the
// phone clients and routes their packets into the game engine.
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	tableManager   *table.Manager
	sessionManager *session.Manager
	userService    *services.UserService
	mon            *monitor.Monitor
	sched          *scheduler.Scheduler
	rpcServer      *worserver_rpc.Server
	shutdownChan   chan struct{}
}

// NewGameServer wires the full stack: sessions, notifier, scheduler,
// monitor, the default table and the RPC surface.
func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		tableManager:   table.NewManager(),
		sessionManager: session.NewManager(),
		userService:    services.NewUserService(db),
		mon:            monitor.NewMonitor("worserver"),
		sched:          scheduler.New(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // table and phones come from other origins
			},
		},
	}

	notifier := notify.NewSessionNotifier(s.sessionManager)

	t := s.tableManager.CreateTable(DefaultTableID, db, notifier, s.sched, cfg.Game)
	t.Engine.SetMetrics(s.mon)
	t.Engine.SetRecordSink(services.NewRecordService(db))
	s.mon.SetActiveTables(s.tableManager.Count())

	if err := s.userService.EnsureRegistered(cfg.Game.RegisteredPlayers); err != nil {
		logger.Log.Errorf("Failed to seed registered players: %v", err)
	}

	rpcServer, err := worserver_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(worserver_rpc.NewGameService(s.tableManager))

	if cfg.Server.MetricsAddress != "" {
		s.mon.StartServer(cfg.Server.MetricsAddress)
	}

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.sched.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.mon.IncConnectedClients()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.mon.DecConnectedClients()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			start := time.Now()
			s.handlePacket(sess, packet)
			s.mon.ObserveEventLatency(time.Since(start))
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	if packet.MsgID != network.MsgTypeHeartbeat {
		s.mon.IncEventsReceived()
	}

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeRegister:
		s.handleRegister(sess, packet)
	case network.MsgTypeCreateGame:
		s.defaultEngine().CreateNewGame()
	case network.MsgTypeJoinGame:
		s.handleJoinGame(sess, packet)
	case network.MsgTypeStartGame:
		s.defaultEngine().StartGame()
	case network.MsgTypePlayCard:
		s.handlePlayCard(sess, packet)
	case network.MsgTypeAllPlayedCheck:
		s.defaultEngine().CheckAllPlayersPlayed()
	case network.MsgTypeResultAction:
		s.handleResultAction(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// defaultEngine returns the default table's engine. The engine logs and
// classifies every rejection itself, so dispatch can fire and forget.
func (s *GameServer) defaultEngine() *engine.Engine {
	t, _ := s.tableManager.GetTable(DefaultTableID)
	return t.Engine
}

type registerRequest struct {
	Role     string `json:"role"`
	PlayerID string `json:"player_id"`
}

func (s *GameServer) handleRegister(sess *session.Session, packet *network.Packet) {
	var req registerRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed register payload from session %s: %v", sess.GetID(), err)
		return
	}

	switch session.Role(req.Role) {
	case session.RoleTable:
		sess.SetRole(session.RoleTable)
		logger.Log.Infof("Session %s registered as table display", sess.GetID())
	case session.RolePhone:
		sess.SetRole(session.RolePhone)
		sess.BindPlayer(req.PlayerID)
		logger.Log.Infof("Session %s registered as phone for player %s", sess.GetID(), req.PlayerID)
	default:
		logger.Log.Warnf("Session %s sent unknown role %q", sess.GetID(), req.Role)
	}
}

type joinGameRequest struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

func (s *GameServer) handleJoinGame(sess *session.Session, packet *network.Packet) {
	var req joinGameRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed join payload from session %s: %v", sess.GetID(), err)
		return
	}

	// Bind before joining so a WRONG_ID_PLAYER rejection can still reach
	// this phone.
	sess.BindPlayer(req.PlayerID)
	s.defaultEngine().PlayerJoinGame(req.PlayerID, req.Username)
}

type playCardRequest struct {
	PlayerID  string `json:"player_id"`
	CardValue int    `json:"card_value"`
}

func (s *GameServer) handlePlayCard(sess *session.Session, packet *network.Packet) {
	var req playCardRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed play payload from session %s: %v", sess.GetID(), err)
		return
	}

	eng := s.defaultEngine()
	if err := eng.PlayerPlayedCard(req.PlayerID, req.CardValue); err != nil {
		return
	}
	// The table normally asks for this check after seeing the played card;
	// doing it here as well costs nothing since the check is idempotent.
	eng.CheckAllPlayersPlayed()
}

type resultActionRequest struct {
	ChosenStack *int `json:"chosen_stack"`
}

func (s *GameServer) handleResultAction(sess *session.Session, packet *network.Packet) {
	var req resultActionRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		logger.Log.Warnf("Malformed result action payload from session %s: %v", sess.GetID(), err)
		return
	}

	s.defaultEngine().NextRoundResultAction(req.ChosenStack)
}
