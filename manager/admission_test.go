package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const origin = "https://img.example.com"

func TestAdmissionManager_CeilingHolds(t *testing.T) {
	am := NewAdmissionManager(2)

	require.True(t, am.Acquire(origin))
	require.True(t, am.Acquire(origin))
	assert.False(t, am.HasCapacity(origin))
	assert.False(t, am.Acquire(origin))
	assert.Equal(t, 2, am.Loading(origin))

	// Other origins are unaffected.
	assert.True(t, am.HasCapacity("https://cdn.example.com"))
}

func TestAdmissionManager_ReleaseFreesSlot(t *testing.T) {
	am := NewAdmissionManager(1)
	require.True(t, am.Acquire(origin))
	require.False(t, am.Acquire(origin))

	am.Release(origin)
	assert.True(t, am.HasCapacity(origin))
	assert.Equal(t, 0, am.Loading(origin))
}

func TestAdmissionManager_ReleaseWithoutAcquireIgnored(t *testing.T) {
	am := NewAdmissionManager(1)
	am.Release(origin)
	assert.Equal(t, 0, am.Loading(origin))

	// The guard must not have pushed the count negative.
	require.True(t, am.Acquire(origin))
	assert.False(t, am.HasCapacity(origin))
}

func TestAdmissionManager_InvalidLimitFallsBackToDefault(t *testing.T) {
	am := NewAdmissionManager(0)
	assert.Equal(t, DefaultMaxPerOrigin, am.MaxPerOrigin())
}

func TestAdmissionManager_SetMaxPerOrigin(t *testing.T) {
	am := NewAdmissionManager(1)
	require.True(t, am.Acquire(origin))
	require.False(t, am.HasCapacity(origin))

	am.SetMaxPerOrigin(3)
	assert.True(t, am.HasCapacity(origin))
	require.True(t, am.Acquire(origin))
	require.True(t, am.Acquire(origin))
	assert.False(t, am.Acquire(origin))

	// Lowering the ceiling never evicts in-flight work.
	am.SetMaxPerOrigin(1)
	assert.Equal(t, 3, am.Loading(origin))
	assert.False(t, am.HasCapacity(origin))

	am.SetMaxPerOrigin(-5)
	assert.Equal(t, 1, am.MaxPerOrigin())
}

func TestAdmissionManager_SnapshotAndTotals(t *testing.T) {
	am := NewAdmissionManager(4)
	require.True(t, am.Acquire("https://a.example.com"))
	require.True(t, am.Acquire("https://a.example.com"))
	require.True(t, am.Acquire("https://b.example.com"))

	assert.Equal(t, map[string]int{
		"https://a.example.com": 2,
		"https://b.example.com": 1,
	}, am.Snapshot())
	assert.Equal(t, 3, am.TotalLoading())
}

func TestAdmissionManager_Reset(t *testing.T) {
	am := NewAdmissionManager(2)
	require.True(t, am.Acquire(origin))
	am.Reset()
	assert.Equal(t, 0, am.TotalLoading())
	assert.True(t, am.HasCapacity(origin))
}
