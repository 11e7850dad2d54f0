package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int          { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestHasInventory(t *testing.T) {
	tests := []struct {
		name  string
		zaiko map[Broker]*int
		want  bool
	}{
		{"one broker positive", map[Broker]*int{Nikko: intPtr(500), SBI: intPtr(0)}, true},
		{"all zero", map[Broker]*int{Nikko: intPtr(0), Rakuten: intPtr(0)}, false},
		{"all unreported", map[Broker]*int{Nikko: nil, Kabucom: nil}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Stock{Zaiko: tt.zaiko}
			assert.Equal(t, tt.want, s.HasInventory())
		})
	}
}

func TestClassifyRestriction(t *testing.T) {
	assert.Equal(t, RestrictionSuspended, ClassifyRestriction("新規売停止"))
	assert.Equal(t, RestrictionCaution, ClassifyRestriction("注意喚起"))
	assert.Equal(t, RestrictionNone, ClassifyRestriction(""))
	assert.Equal(t, RestrictionNone, ClassifyRestriction("特になし"))
	// 停止 takes precedence over 注意 when both appear
	assert.Equal(t, RestrictionSuspended, ClassifyRestriction("注意から停止へ"))
}

func TestStoreSelectsLatestStamp(t *testing.T) {
	store := NewStore(t.TempDir())

	older := &Snapshot{Month: 2, Stamp: "20260110", Stocks: map[string]*Stock{
		"3048": {Name: "ビックカメラ", Zaiko: map[Broker]*int{Nikko: intPtr(100)}},
	}}
	newer := &Snapshot{Month: 2, Stamp: "20260201", Stocks: map[string]*Stock{
		"3048": {Name: "ビックカメラ", Zaiko: map[Broker]*int{Nikko: intPtr(0)}},
	}}
	otherMonth := &Snapshot{Month: 3, Stamp: "20260215", Stocks: map[string]*Stock{
		"9861": {Name: "吉野家HD"},
	}}

	// Write the newer capture first: file order must not matter
	_, err := store.Save(newer)
	require.NoError(t, err)
	_, err = store.Save(older)
	require.NoError(t, err)
	_, err = store.Save(otherMonth)
	require.NoError(t, err)

	snap, err := store.LoadLatest(2)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "20260201", snap.Stamp)

	stock, ok := snap.Get("3048")
	require.True(t, ok)
	assert.Equal(t, "3048", stock.Code)
	assert.Equal(t, 0, stock.BrokerCount(Nikko))
	assert.False(t, stock.HasInventory())
}

func TestStoreLoadLatestMissingMonth(t *testing.T) {
	store := NewStore(t.TempDir())

	snap, err := store.LoadLatest(6)
	require.NoError(t, err)
	assert.Nil(t, snap)

	// Nil snapshots behave as empty
	_, ok := snap.Get("3048")
	assert.False(t, ok)
	assert.Equal(t, 0, snap.Len())
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	updated := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	snap := &Snapshot{Month: 2, Stamp: "20260201", Stocks: map[string]*Stock{
		"3048": {
			Name:        "ビックカメラ",
			Zaiko:       map[Broker]*int{Nikko: intPtr(500), Kabucom: nil},
			Taishaku:    "貸借",
			IsTaishaku:  true,
			Price:       intPtr(1520),
			Lot:         intPtr(100),
			Avg5Gyaku:   floatPtr(1.25),
			Dividend:    intPtr(12),
			Restriction: RestrictionCaution,
			Updated:     updated,
		},
	}}

	_, err := store.Save(snap)
	require.NoError(t, err)

	loaded, err := store.LoadLatest(2)
	require.NoError(t, err)

	stock, ok := loaded.Get("3048")
	require.True(t, ok)
	assert.True(t, stock.IsTaishaku)
	assert.Equal(t, 1520, *stock.Price)
	assert.Equal(t, 1.25, *stock.Avg5Gyaku)
	assert.Equal(t, RestrictionCaution, stock.Restriction)
	assert.True(t, stock.Updated.Equal(updated))
}
