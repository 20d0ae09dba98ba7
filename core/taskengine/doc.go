/*
Task Engine executes workflow documents once. A run walks the node list in the
order nodes appear in the document, dispatches every node to the runner
registered for its type and threads a run scoped key/value store between
runners. Edges never decide the order; they are only used by a node to find
the output of the node feeding it.

**Data store**

Runners publish results under `<purpose>_<nodeId>`:

	tx_<id>        -> sendAvax transaction record
	contract_<id>  -> contractCall result
	api_<id>       -> apiCall parsed response body
	ai_<id>        -> ai reply, or the selected action
	ai_<id>_actions -> [selected action]
	data_<id>      -> getData result
	compare_<id>   -> compare result (bool)
	filter_<id>    -> filter result (array)
	<storageKey>   -> setData value

A consumer finds its input by following its first incoming edge and taking
the first key, in insertion order, that contains the source node id.

**Run history**

When a history is configured every run outcome is stored in badgerdb:

	run:<run-id> -> run outcome json

Run ids are ULIDs so the keys sort by creation time.
*/
package taskengine
