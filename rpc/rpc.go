package rpc

import (
	"errors"
	"net"
	"net/rpc"

	"github.com/wfunc/worserver/game"
	"github.com/wfunc/worserver/logger"
	"github.com/wfunc/worserver/table"
)

// Server manages the RPC listener for operational queries.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer opens the RPC listener.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins serving RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// GameService exposes read-only game queries over net/rpc: the current
// aggregate of a table and the final results of a finished game.
type GameService struct {
	tables *table.Manager
}

func NewGameService(tables *table.Manager) *GameService {
	return &GameService{tables: tables}
}

var errTableNotFound = errors.New("table not found")

type CurrentGameArgs struct {
	TableID string
}

type CurrentGameReply struct {
	Game *game.Game
}

// CurrentGame returns the full aggregate of a table's active game.
func (gs *GameService) CurrentGame(args *CurrentGameArgs, reply *CurrentGameReply) error {
	t, exists := gs.tables.GetTable(args.TableID)
	if !exists {
		return errTableNotFound
	}

	g, err := t.Engine.CurrentGame()
	if err != nil {
		return err
	}
	reply.Game = g
	return nil
}

type GameResultsArgs struct {
	TableID string
}

type GameResultsReply struct {
	Players []*game.Player
}

// GameResults returns the ranked players of a finished game.
func (gs *GameService) GameResults(args *GameResultsArgs, reply *GameResultsReply) error {
	t, exists := gs.tables.GetTable(args.TableID)
	if !exists {
		return errTableNotFound
	}

	g, err := t.Engine.CurrentGame()
	if err != nil {
		return err
	}
	if g.Phase != game.PhaseGameOver {
		return errors.New("game is not finished")
	}
	reply.Players = g.Players
	return nil
}
