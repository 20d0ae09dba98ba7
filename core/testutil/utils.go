package testutil

import (
	"os"
	"testing"

	sdklogging "github.com/Layr-Labs/eigensdk-go/logging"
	"github.com/ethereum/go-ethereum/common"

	"github.com/AvaProtocol/avax-workflow/model"
	"github.com/AvaProtocol/avax-workflow/storage"
)

const (
	// Fuji test account used across tests
	TestAccountHex = "0xD7050816337a3f8f690F8083B5Ff8019D50c0E50"
	// A recipient with 40 hex characters
	TestRecipientHex = "0x00000000000000000000000000000000000000aa"
)

func TestAccount() common.Address {
	return common.HexToAddress(TestAccountHex)
}

// TestMustDB opens a storage in a temp dir that is destroyed when the test
// ends, fail the test if we cannot create db
func TestMustDB(t testing.TB) storage.Storage {
	t.Helper()
	dir, err := os.MkdirTemp("", "avaxwftest")
	if err != nil {
		t.Fatalf("cannot create temp dir: %v", err)
	}

	db, err := storage.NewWithPath(dir)
	if err != nil {
		t.Fatalf("cannot open storage: %v", err)
	}
	t.Cleanup(func() {
		if err := storage.Destroy(db); err != nil {
			t.Errorf("cannot destroy storage: %v", err)
		}
	})
	return db
}

// TestMemoryDB returns an in memory storage, panic if it cannot be opened
func TestMemoryDB() storage.Storage {
	db, err := storage.New(&storage.Config{InMemory: true})
	if err != nil {
		panic(err)
	}
	return db
}

func GetLogger() sdklogging.Logger {
	logger, err := sdklogging.NewZapLogger("development")
	if err != nil {
		panic(err)
	}
	return logger
}

// Node builds a workflow node from a type and raw payload
func Node(id string, t model.NodeType, data map[string]any) *model.Node {
	if data == nil {
		data = map[string]any{}
	}
	return &model.Node{ID: id, Type: t, Data: data}
}

func Edge(source, target string) *model.Edge {
	return &model.Edge{ID: source + "-" + target, Source: source, Target: target}
}

func Workflow(nodes []*model.Node, edges ...*model.Edge) *model.Workflow {
	if edges == nil {
		edges = []*model.Edge{}
	}
	return &model.Workflow{Nodes: nodes, Edges: edges}
}
