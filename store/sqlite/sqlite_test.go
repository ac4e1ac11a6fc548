package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/salary-engine/session"
	"github.com/warp/salary-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(filepath.Join(t.TempDir(), "salary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	// Missing key reads as absent, not as an error.
	_, ok, err := st.Get(ctx, "salary_income")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Set(ctx, "salary_income", []byte(`{"base":50020}`)))
	raw, ok, err := st.Get(ctx, "salary_income")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"base":50020}`, string(raw))

	// Set replaces.
	require.NoError(t, st.Set(ctx, "salary_income", []byte(`{"base":30000}`)))
	raw, _, err = st.Get(ctx, "salary_income")
	require.NoError(t, err)
	assert.JSONEq(t, `{"base":30000}`, string(raw))

	// Delete is idempotent.
	require.NoError(t, st.Delete(ctx, "salary_income"))
	require.NoError(t, st.Delete(ctx, "salary_income"))
	_, ok, err = st.Get(ctx, "salary_income")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "salary.db")

	st1, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, st1.Set(ctx, "salary_level_code", []byte(`"15"`)))
	require.NoError(t, st1.Close())

	st2, err := sqlite.New(path)
	require.NoError(t, err)
	defer st2.Close()

	raw, ok, err := st2.Get(ctx, "salary_level_code")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `"15"`, string(raw))
}

func TestStore_BacksASession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "salary.db")

	st1, err := sqlite.New(path)
	require.NoError(t, err)
	s1 := session.New(ctx, st1, nil)
	_, err = s1.SetIncomeField(ctx, "base", "42000")
	require.NoError(t, err)
	require.NoError(t, st1.Close())

	st2, err := sqlite.New(path)
	require.NoError(t, err)
	defer st2.Close()
	s2 := session.New(ctx, st2, nil)
	assert.Equal(t, "42000", s2.Snapshot().Income.Base.String())
}
