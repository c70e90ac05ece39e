// rpc/rpc.go
package rpc

import (
	"net"
	"net/rpc"

	"github.com/chocolatito/roomserver/logger"
	"github.com/chocolatito/roomserver/room"
	"github.com/chocolatito/roomserver/session"
)

// Server manages the RPC listener for the admin stats surface.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server listening on addr.
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

// Start begins listening for RPC requests.
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

// StatsService exposes registry stats over net/rpc for operational
// tooling. Methods follow the net/rpc signature rules.
type StatsService struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewStatsService(rm *room.Manager, sm *session.Manager) *StatsService {
	return &StatsService{roomManager: rm, sessionManager: sm}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []room.RoomInfo
}

// ListRooms returns a snapshot of every live room.
func (s *StatsService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = s.roomManager.List()
	return nil
}

type ServerStatsArgs struct{}

type ServerStatsReply struct {
	Rooms    int
	Sessions int
}

// ServerStats returns process-wide counters.
func (s *StatsService) ServerStats(args *ServerStatsArgs, reply *ServerStatsReply) error {
	reply.Rooms = s.roomManager.Count()
	reply.Sessions = s.sessionManager.Count()
	return nil
}
