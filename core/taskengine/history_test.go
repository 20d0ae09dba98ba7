package taskengine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AvaProtocol/avax-workflow/core/testutil"
	"github.com/AvaProtocol/avax-workflow/model"
)

func TestHistoryListNewestFirst(t *testing.T) {
	db := testutil.TestMemoryDB()
	defer db.Close()

	h := NewHistory(db)
	n := New(newTestPorts().Ports(), WithHistory(h))

	wf := testutil.Workflow([]*model.Node{
		testutil.Node("set", model.NodeTypeSetData, map[string]any{"storageKey": "k", "inputValue": "v"}),
	})

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, n.Execute(context.Background(), wf).RunID)
	}

	count, err := h.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	runs, err := h.List(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].RunID)
	assert.Equal(t, ids[1], runs[1].RunID)

	all, err := h.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := h.Get(ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, got.Status)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, "v", got.Steps[0].Output)
}

func TestHistoryGetMissing(t *testing.T) {
	db := testutil.TestMemoryDB()
	defer db.Close()

	_, err := NewHistory(db).Get("01HZZZZZZZZZZZZZZZZZZZZZZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), RunNotFoundError)
}

func TestHistoryWithoutStorage(t *testing.T) {
	h := NewHistory(nil)

	assert.Error(t, h.Save(model.NewRunOutcome()))
	_, err := h.List(1)
	assert.Error(t, err)
}

func TestHistoryPruneKeepsNewest(t *testing.T) {
	db := testutil.TestMustDB(t)

	h := NewHistory(db)
	n := New(newTestPorts().Ports(), WithHistory(h))
	wf := testutil.Workflow([]*model.Node{
		testutil.Node("get", model.NodeTypeGetData, map[string]any{"storageKey": "k"}),
	})

	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, n.Execute(context.Background(), wf).RunID)
	}

	removed, err := h.Prune(1)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	runs, err := h.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, ids[3], runs[0].RunID)

	removed, err = h.Prune(5)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
