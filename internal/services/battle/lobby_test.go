package battle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobbyStore_JoinCreatesLobby(t *testing.T) {
	s := NewLobbyStore()

	snapshot, err := s.Join("lobby-1", Mode1v1, "p1", "勇者")
	require.NoError(t, err)
	assert.Equal(t, Mode1v1, snapshot.Mode)
	assert.Equal(t, 2, snapshot.Capacity)
	require.Len(t, snapshot.Members, 1)
	assert.Equal(t, "勇者", snapshot.Members[0].Name)
	assert.False(t, snapshot.Members[0].Ready)

	// 参加時にシステムメッセージが積まれる
	require.Len(t, snapshot.Messages, 1)
	assert.True(t, snapshot.Messages[0].System)
}

func TestLobbyStore_CapacityByMode(t *testing.T) {
	s := NewLobbyStore()

	_, err := s.Join("duel", Mode1v1, "p1", "a")
	require.NoError(t, err)
	_, err = s.Join("duel", Mode1v1, "p2", "b")
	require.NoError(t, err)
	_, err = s.Join("duel", Mode1v1, "p3", "c")
	assert.ErrorIs(t, err, ErrLobbyFull)

	snapshot, err := s.Join("melee", Mode4Way, "p1", "a")
	require.NoError(t, err)
	assert.Equal(t, 4, snapshot.Capacity)
	for _, id := range []string{"p2", "p3", "p4"} {
		_, err = s.Join("melee", Mode4Way, id, id)
		require.NoError(t, err)
	}
	_, err = s.Join("melee", Mode4Way, "p5", "e")
	assert.ErrorIs(t, err, ErrLobbyFull)
}

func TestLobbyStore_ToggleReadyStartCondition(t *testing.T) {
	s := NewLobbyStore()
	_, err := s.Join("lobby-1", Mode1v1, "p1", "a")
	require.NoError(t, err)

	// 1人だけでは全員準備済みでも開始しない
	_, shouldStart, err := s.ToggleReady("lobby-1", "p1")
	require.NoError(t, err)
	assert.False(t, shouldStart)

	_, err = s.Join("lobby-1", Mode1v1, "p2", "b")
	require.NoError(t, err)

	snapshot, shouldStart, err := s.ToggleReady("lobby-1", "p2")
	require.NoError(t, err)
	assert.True(t, shouldStart, "all members ready with 2+ players starts the game")
	for _, m := range snapshot.Members {
		assert.True(t, m.Ready)
	}

	// 準備解除で開始条件が崩れる
	_, shouldStart, err = s.ToggleReady("lobby-1", "p1")
	require.NoError(t, err)
	assert.False(t, shouldStart)
}

func TestLobbyStore_BeginStartIsExclusive(t *testing.T) {
	s := NewLobbyStore()
	_, err := s.Join("lobby-1", Mode1v1, "p1", "a")
	require.NoError(t, err)
	_, err = s.Join("lobby-1", Mode1v1, "p2", "b")
	require.NoError(t, err)
	_, _, err = s.ToggleReady("lobby-1", "p1")
	require.NoError(t, err)
	_, _, err = s.ToggleReady("lobby-1", "p2")
	require.NoError(t, err)

	ids, acquired := s.BeginStart("lobby-1")
	require.True(t, acquired)
	assert.Equal(t, []string{"p1", "p2"}, ids)

	// 二重開始は獲得できない
	_, acquired = s.BeginStart("lobby-1")
	assert.False(t, acquired)
}

func TestLobbyStore_ChatLimit(t *testing.T) {
	s := NewLobbyStore()
	_, err := s.Join("lobby-1", Mode1v1, "p1", "勇者")
	require.NoError(t, err)

	for i := 0; i < LobbyChatLimit+10; i++ {
		_, err := s.AddMessage("lobby-1", "p1", fmt.Sprintf("msg-%d", i))
		require.NoError(t, err)
	}

	snapshot, ok := s.Snapshot("lobby-1")
	require.True(t, ok)
	assert.Len(t, snapshot.Messages, LobbyChatLimit)
	// 古いメッセージから捨てられ、最新が残る
	assert.Equal(t, fmt.Sprintf("msg-%d", LobbyChatLimit+9), snapshot.Messages[len(snapshot.Messages)-1].Text)
}

func TestLobbyStore_MessageRequiresMembership(t *testing.T) {
	s := NewLobbyStore()
	_, err := s.Join("lobby-1", Mode1v1, "p1", "a")
	require.NoError(t, err)

	_, err = s.AddMessage("lobby-1", "stranger", "hello")
	assert.ErrorIs(t, err, ErrNotLobbyMember)
	_, err = s.AddMessage("no-such-lobby", "p1", "hello")
	assert.ErrorIs(t, err, ErrLobbyNotFound)
}

func TestLobbyStore_LeaveRemovesEmptyLobby(t *testing.T) {
	s := NewLobbyStore()
	_, err := s.Join("lobby-1", Mode1v1, "p1", "a")
	require.NoError(t, err)
	_, err = s.Join("lobby-1", Mode1v1, "p2", "b")
	require.NoError(t, err)

	snapshot, removed := s.Leave("lobby-1", "p1")
	assert.False(t, removed)
	require.Len(t, snapshot.Members, 1)
	// 退出システムメッセージが積まれる
	last := snapshot.Messages[len(snapshot.Messages)-1]
	assert.True(t, last.System)

	_, removed = s.Leave("lobby-1", "p2")
	assert.True(t, removed)
	if _, ok := s.Snapshot("lobby-1"); ok {
		t.Error("Empty lobby must be removed")
	}
}

func TestLobbyStore_LobbyOf(t *testing.T) {
	s := NewLobbyStore()
	_, err := s.Join("lobby-1", Mode1v1, "p1", "a")
	require.NoError(t, err)

	id, ok := s.LobbyOf("p1")
	assert.True(t, ok)
	assert.Equal(t, "lobby-1", id)

	_, ok = s.LobbyOf("ghost")
	assert.False(t, ok)
}
