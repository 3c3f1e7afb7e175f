package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	provider := NewStatic("AKID", "SECRET", "TOKEN")

	v, err := provider.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Value{AccessKeyID: "AKID", SecretAccessKey: "SECRET", SessionToken: "TOKEN"}, v)
	assert.False(t, v.IsAnonymous())
}

func TestStaticUpdate(t *testing.T) {
	provider := NewStatic("OLD", "OLDSECRET", "")
	before, err := provider.Retrieve(context.Background())
	require.NoError(t, err)

	provider.Update(Value{AccessKeyID: "NEW", SecretAccessKey: "NEWSECRET"})

	after, err := provider.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "NEW", after.AccessKeyID)
	assert.Equal(t, "OLD", before.AccessKeyID, "earlier snapshots are unaffected by rotation")
}

func TestAnonymous(t *testing.T) {
	v, err := NewAnonymous().Retrieve(context.Background())
	require.NoError(t, err)
	assert.True(t, v.IsAnonymous())
}

func TestFromEnv(t *testing.T) {
	clearAWSEnv(t)

	t.Run("standard variables", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "AKID")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "SECRET")
		t.Setenv("AWS_SESSION_TOKEN", "TOKEN")

		v, err := NewFromEnv().Retrieve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Value{AccessKeyID: "AKID", SecretAccessKey: "SECRET", SessionToken: "TOKEN"}, v)
	})

	t.Run("legacy fallbacks", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY", "AKID2")
		t.Setenv("AWS_SECRET_KEY", "SECRET2")

		v, err := NewFromEnv().Retrieve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "AKID2", v.AccessKeyID)
		assert.Equal(t, "SECRET2", v.SecretAccessKey)
	})

	t.Run("unset environment is anonymous", func(t *testing.T) {
		v, err := NewFromEnv().Retrieve(context.Background())
		require.NoError(t, err)
		assert.True(t, v.IsAnonymous())
	})
}

func clearAWSEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"AWS_ACCESS_KEY_ID", "AWS_ACCESS_KEY",
		"AWS_SECRET_ACCESS_KEY", "AWS_SECRET_KEY",
		"AWS_SESSION_TOKEN",
	} {
		t.Setenv(name, "")
	}
}

// errorProvider always fails, for exercising chain short-circuiting.
type errorProvider struct {
	err error
}

func (p *errorProvider) Retrieve(context.Context) (Value, error) {
	return Value{}, p.err
}

func TestChain(t *testing.T) {
	t.Run("first non-anonymous wins", func(t *testing.T) {
		chain := NewChain(
			NewAnonymous(),
			NewStatic("FIRST", "SECRET1", ""),
			NewStatic("SECOND", "SECRET2", ""),
		)

		v, err := chain.Retrieve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "FIRST", v.AccessKeyID)
	})

	t.Run("provider failure stops the chain", func(t *testing.T) {
		boom := errors.New("metadata service unreachable")
		chain := NewChain(
			&errorProvider{err: boom},
			NewStatic("NEVER", "REACHED", ""),
		)

		_, err := chain.Retrieve(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("all anonymous yields anonymous", func(t *testing.T) {
		chain := NewChain(NewAnonymous(), NewAnonymous())

		v, err := chain.Retrieve(context.Background())
		require.NoError(t, err)
		assert.True(t, v.IsAnonymous())
	})

	t.Run("empty chain yields anonymous", func(t *testing.T) {
		v, err := NewChain().Retrieve(context.Background())
		require.NoError(t, err)
		assert.True(t, v.IsAnonymous())
	})
}
