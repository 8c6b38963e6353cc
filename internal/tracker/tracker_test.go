package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"netconnd/internal/connection"
	"netconnd/internal/netaddr"
)

func sampleConn() connection.Connection {
	return connection.Connection{
		ContainerID: "c1",
		Local:       netaddr.Endpoint{Addr: netaddr.FromIPv4(10, 0, 0, 1), Port: 8080},
		Remote:      netaddr.Endpoint{Addr: netaddr.FromIPv4(10, 0, 0, 2), Port: 51000},
		Proto:       connection.ProtoTCP,
		Role:        connection.RoleServer,
	}
}

func TestUpdateConnection_OpenCountTracksInterleavedAddRemove(t *testing.T) {
	tr := New()
	c := sampleConn()

	tr.UpdateConnection(c, 1, true)
	tr.UpdateConnection(c, 2, true)
	assert.EqualValues(t, 2, tr.OpenCount(c))

	tr.UpdateConnection(c, 3, false)
	assert.EqualValues(t, 1, tr.OpenCount(c))

	tr.UpdateConnection(c, 4, false)
	assert.EqualValues(t, 0, tr.OpenCount(c))
}

func TestUpdateConnection_RemoveOfUnknownConnectionIsANoOp(t *testing.T) {
	tr := New()
	c := sampleConn()

	tr.UpdateConnection(c, 1, false)
	assert.EqualValues(t, 0, tr.OpenCount(c))
	assert.Empty(t, tr.Snapshot())
}

func TestSnapshot_IncludesOpenAndPendingClosedConnections(t *testing.T) {
	tr := New()
	open := sampleConn()
	closed := sampleConn()
	closed.Local.Port = 9090

	tr.UpdateConnection(open, 1, true)
	tr.UpdateConnection(closed, 1, true)
	tr.UpdateConnection(closed, 2, false)

	snap := tr.Snapshot()
	assert.Len(t, snap, 2)
}

func TestDiffSince_ReportsRemovalExactlyOnce(t *testing.T) {
	tr := New()
	c := sampleConn()

	tr.UpdateConnection(c, 1, true)
	firstSnap := tr.Snapshot()

	tr.UpdateConnection(c, 2, false)

	added, removed := tr.DiffSince(firstSnap)
	assert.Empty(t, added)
	assert.Equal(t, []connection.Connection{c}, removed)

	secondSnap := tr.Snapshot()
	addedAgain, removedAgain := tr.DiffSince(secondSnap)
	assert.Empty(t, addedAgain)
	assert.Empty(t, removedAgain, "a removal already surfaced by Snapshot must not be reported a second time")
}

func TestUpdateConnection_LastSeenTSIsMonotonic(t *testing.T) {
	tr := New()
	c := sampleConn()

	tr.UpdateConnection(c, 100, true)
	tr.UpdateConnection(c, 50, true) // out-of-order delivery must not move last_seen_ts backwards

	ts, ok := tr.LastSeenTS(c)
	assert.True(t, ok)
	assert.EqualValues(t, 100, ts)
}

func TestDiffSince_DetectsNewlyAddedConnection(t *testing.T) {
	tr := New()
	prev := tr.Snapshot()

	c := sampleConn()
	tr.UpdateConnection(c, 1, true)

	added, removed := tr.DiffSince(prev)
	assert.Equal(t, []connection.Connection{c}, added)
	assert.Empty(t, removed)
}
