package leaderelect

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"

	"github.com/toolmesh/gatefed/internal/gateway"
)

// RaftConfig configures the distributed leader-election backend. It is
// gatefed's realization of spec.md's "distributed-KV mode": the donor
// corpus carries no Redis client, so leadership is instead decided by a
// hashicorp/raft single-voter (or configured peer) cluster, exactly as the
// teacher's manager already does to pick its own cluster leader. cache_type
// stays "raft" and redis_url is replaced by BindAddr/Peers.
type RaftConfig struct {
	NodeID   string
	BindAddr string
	DataDir  string
	// Peers lists additional voters to bootstrap alongside NodeID/BindAddr.
	// A single-entry deployment bootstraps itself as the sole voter.
	Peers []raft.Server
}

// RaftElector determines leadership via a raft.Raft instance whose log
// carries no application state beyond the no-op entries raft itself
// appends; this package only ever asks it "am I Leader()".
type RaftElector struct {
	cfg  RaftConfig
	raft *raft.Raft
	fsm  *noopFSM
}

// NewRaftElector builds and bootstraps a raft instance rooted at cfg.DataDir.
// Returns a gateway.ConfigurationError if the bind address cannot be
// resolved or the cluster fails to bootstrap.
func NewRaftElector(cfg RaftConfig) (*RaftElector, error) {
	if cfg.NodeID == "" || cfg.BindAddr == "" {
		return nil, &gateway.ConfigurationError{Reason: "raft leader elector requires node_id and bind_addr"}
	}

	fsm := &noopFSM{}

	raftCfg := raft.DefaultConfig()
	raftCfg.LocalID = raft.ServerID(cfg.NodeID)
	raftCfg.HeartbeatTimeout = 500 * time.Millisecond
	raftCfg.ElectionTimeout = 500 * time.Millisecond
	raftCfg.LeaderLeaseTimeout = 250 * time.Millisecond

	addr, err := net.ResolveTCPAddr("tcp", cfg.BindAddr)
	if err != nil {
		return nil, &gateway.ConfigurationError{Reason: "resolve raft bind address", Err: err}
	}

	transport, err := raft.NewTCPTransport(cfg.BindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, &gateway.ConfigurationError{Reason: "create raft transport", Err: err}
	}

	snapshotStore, err := raft.NewFileSnapshotStore(cfg.DataDir, 2, os.Stderr)
	if err != nil {
		return nil, &gateway.ConfigurationError{Reason: "create raft snapshot store", Err: err}
	}

	logStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "leaderelect-log.db"))
	if err != nil {
		return nil, &gateway.ConfigurationError{Reason: "create raft log store", Err: err}
	}

	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(cfg.DataDir, "leaderelect-stable.db"))
	if err != nil {
		return nil, &gateway.ConfigurationError{Reason: "create raft stable store", Err: err}
	}

	r, err := raft.NewRaft(raftCfg, fsm, logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, &gateway.ConfigurationError{Reason: "create raft instance", Err: err}
	}

	servers := []raft.Server{{ID: raftCfg.LocalID, Address: transport.LocalAddr()}}
	for _, p := range cfg.Peers {
		if p.ID != raftCfg.LocalID {
			servers = append(servers, p)
		}
	}
	future := r.BootstrapCluster(raft.Configuration{Servers: servers})
	if err := future.Error(); err != nil && err != raft.ErrCantBootstrap {
		return nil, &gateway.ConfigurationError{Reason: "bootstrap raft cluster", Err: err}
	}

	return &RaftElector{cfg: cfg, raft: r, fsm: fsm}, nil
}

// TryAcquire observes current raft state; raft itself runs the election, so
// this is a non-blocking status read rather than an active acquisition.
func (e *RaftElector) TryAcquire(ctx context.Context) (bool, error) {
	return e.raft.State() == raft.Leader, nil
}

// Refresh is a no-op: raft's own heartbeats keep leadership current.
func (e *RaftElector) Refresh(ctx context.Context) error {
	return nil
}

// Release relinquishes leadership by stepping down, if currently leader.
func (e *RaftElector) Release(ctx context.Context) error {
	if e.raft.State() != raft.Leader {
		return nil
	}
	return e.raft.LeadershipTransfer().Error()
}

// IsLeader reports whether this process currently holds raft leadership.
func (e *RaftElector) IsLeader() bool {
	return e.raft.State() == raft.Leader
}

// Shutdown stops the underlying raft instance.
func (e *RaftElector) Shutdown() error {
	return e.raft.Shutdown().Error()
}

// noopFSM carries no application state; the only thing this package asks of
// raft is who the leader is.
type noopFSM struct{}

func (f *noopFSM) Apply(l *raft.Log) any { return nil }

func (f *noopFSM) Snapshot() (raft.FSMSnapshot, error) {
	return &noopSnapshot{}, nil
}

func (f *noopFSM) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	return nil
}

type noopSnapshot struct{}

func (s *noopSnapshot) Persist(sink raft.SnapshotSink) error {
	return sink.Close()
}

func (s *noopSnapshot) Release() {}
