package leaderelect

import (
	"strings"

	"github.com/hashicorp/raft"

	"github.com/toolmesh/gatefed/internal/gateway"
)

// RaftFactoryConfig mirrors the subset of pkg/config options a raft backend
// needs, kept local to avoid an import cycle with pkg/config.
type RaftFactoryConfig struct {
	NodeID   string
	BindAddr string
	DataDir  string
	// Peers lists additional voters as "id@host:port" pairs. Empty bootstraps
	// a single-voter cluster with NodeID/BindAddr as the sole server.
	Peers []string
}

// New builds the Elector backend named by cacheType. raftCfg is only
// consulted when cacheType is "raft"; filelockPath only when "filelock".
func New(cacheType string, raftCfg RaftFactoryConfig, filelockPath string) (Elector, error) {
	switch BackendType(cacheType) {
	case BackendRaft:
		servers, err := parseRaftPeers(raftCfg.Peers)
		if err != nil {
			return nil, err
		}
		return NewRaftElector(RaftConfig{
			NodeID:   raftCfg.NodeID,
			BindAddr: raftCfg.BindAddr,
			DataDir:  raftCfg.DataDir,
			Peers:    servers,
		})
	case BackendFileLock:
		if filelockPath == "" {
			return nil, &gateway.ConfigurationError{Reason: "filelock leader elector requires filelock_path"}
		}
		return NewFileLockElector(filelockPath), nil
	case BackendNone, "":
		return NewNoneElector(), nil
	default:
		return nil, &gateway.ConfigurationError{Reason: "unknown cache_type: " + cacheType}
	}
}

func parseRaftPeers(peers []string) ([]raft.Server, error) {
	if len(peers) == 0 {
		return nil, nil
	}
	servers := make([]raft.Server, 0, len(peers))
	for _, p := range peers {
		id, addr, found := strings.Cut(p, "@")
		if !found {
			return nil, &gateway.ConfigurationError{Reason: "raft_peers entry must be id@host:port, got " + p}
		}
		servers = append(servers, raft.Server{ID: raft.ServerID(id), Address: raft.ServerAddress(addr)})
	}
	return servers, nil
}
