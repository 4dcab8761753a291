package bot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/vkbot/internal/commands"
	"github.com/edgard/vkbot/internal/tokenstore"
	"github.com/edgard/vkbot/internal/vkauth"
)

type fakeAuthorizer struct {
	mu     sync.Mutex
	calls  int
	scopes []string
	creds  []vkauth.Credentials
	token  string
	err    error
}

func (f *fakeAuthorizer) factory(auth vkauth.Credentials) Authorizer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = append(f.creds, auth)
	return f
}

func (f *fakeAuthorizer) AuthorizeUser(_ context.Context, scope string) (*vkauth.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.scopes = append(f.scopes, scope)
	if f.err != nil {
		return nil, f.err
	}
	return &vkauth.Token{AccessToken: f.token}, nil
}

type fakeProvider struct {
	err error
}

func (p fakeProvider) Commands(_ context.Context, botID string) ([]commands.Command, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []commands.Command{{Name: "help"}, {Name: "ping"}}, nil
}

type fixture struct {
	path string
	auth *fakeAuthorizer
	init *Initializer
}

func newFixture(t *testing.T, initial string) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tokens.json")
	if initial != "" {
		require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))
	}
	auth := &fakeAuthorizer{}
	return &fixture{
		path: path,
		auth: auth,
		init: NewInitializer(nil, fakeProvider{}, tokenstore.NewFileStore(path, nil), auth.factory, "all"),
	}
}

func (f *fixture) storeContents(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(f.path)
	require.NoError(t, err)
	return string(data)
}

func botConfig(id string) Config {
	return Config{
		ID:        id,
		Auth:      vkauth.Credentials{Login: "user", Password: "pass"},
		Condition: "chat",
		Name:      "Helper " + id,
	}
}

func TestInitializeCacheHit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `{"B1":"T1"}`)
	b, err := f.init.Initialize(context.Background(), botConfig("B1"))
	require.NoError(t, err)

	assert.Equal(t, "T1", b.Token())
	assert.Equal(t, "B1", b.ID())
	assert.Equal(t, "Helper B1", b.Name())
	assert.Equal(t, "chat", b.Condition())
	assert.Len(t, b.Commands(), 2)
	assert.Zero(t, f.auth.calls)
}

func TestInitializeMissWithoutStoreFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.auth.token = "T2"

	b, err := f.init.Initialize(context.Background(), botConfig("B2"))
	require.NoError(t, err)

	assert.Equal(t, "T2", b.Token())
	assert.Equal(t, 1, f.auth.calls)
	assert.Equal(t, []string{"all"}, f.auth.scopes)
	assert.Equal(t, []vkauth.Credentials{{Login: "user", Password: "pass"}}, f.auth.creds)
	assert.JSONEq(t, `{"B2":"T2"}`, f.storeContents(t))
}

func TestInitializeMissMergesExistingStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `{"B1":"T1"}`)
	f.auth.token = "T2"

	b, err := f.init.Initialize(context.Background(), botConfig("B2"))
	require.NoError(t, err)

	assert.Equal(t, "T2", b.Token())
	assert.JSONEq(t, `{"B1":"T1","B2":"T2"}`, f.storeContents(t))
}

func TestInitializeAuthorizationFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	authErr := errors.New("invalid_client")
	f.auth.err = authErr

	b, err := f.init.Initialize(context.Background(), botConfig("B2"))
	assert.Nil(t, b)
	require.Error(t, err)
	assert.ErrorIs(t, err, authErr)
	assert.ErrorIs(t, err, ErrAuthorization)
	assert.Contains(t, err.Error(), "B2")

	_, statErr := os.Stat(f.path)
	assert.True(t, os.IsNotExist(statErr), "no store file must be created")
}

func TestInitializeAuthorizationFailureKeepsExistingStore(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `{"B1":"T1"}`)
	f.auth.err = errors.New("need_validation")

	_, err := f.init.Initialize(context.Background(), botConfig("B2"))
	require.Error(t, err)
	assert.Equal(t, `{"B1":"T1"}`, f.storeContents(t))
}

func TestInitializeIdempotentOnCacheHit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, `{"B1":"T1"}`)
	before, err := os.Stat(f.path)
	require.NoError(t, err)

	first, err := f.init.Initialize(context.Background(), botConfig("B1"))
	require.NoError(t, err)
	second, err := f.init.Initialize(context.Background(), botConfig("B1"))
	require.NoError(t, err)

	assert.Equal(t, first.Token(), second.Token())
	assert.Equal(t, `{"B1":"T1"}`, f.storeContents(t))
	after, err := os.Stat(f.path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.Zero(t, f.auth.calls)
}

func TestInitializeReusesTokenObtainedEarlier(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	f.auth.token = "T2"

	_, err := f.init.Initialize(context.Background(), botConfig("B2"))
	require.NoError(t, err)
	b, err := f.init.Initialize(context.Background(), botConfig("B2"))
	require.NoError(t, err)

	assert.Equal(t, "T2", b.Token())
	assert.Equal(t, 1, f.auth.calls)
}

func TestInitializePropagatesUnmodeledFailures(t *testing.T) {
	t.Parallel()

	t.Run("command provider", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "")
		providerErr := errors.New("no commands")
		f.init.commands = fakeProvider{err: providerErr}

		_, err := f.init.Initialize(context.Background(), botConfig("B1"))
		assert.ErrorIs(t, err, providerErr)
		assert.Zero(t, f.auth.calls)
	})

	t.Run("corrupt store", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, `{"B1":`)

		_, err := f.init.Initialize(context.Background(), botConfig("B1"))
		assert.ErrorIs(t, err, tokenstore.ErrCorrupt)
		assert.Zero(t, f.auth.calls)
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, "")

		_, err := f.init.Initialize(context.Background(), botConfig("B1"))
		assert.ErrorIs(t, err, vkauth.ErrNoAccessToken)
		_, statErr := os.Stat(f.path)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestStartDeliversExactlyOneResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial string
		token   string
		err     error
	}{
		{name: "cache hit", initial: `{"B1":"T1"}`},
		{name: "new token", token: "T9"},
		{name: "failure", err: errors.New("denied")},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, tt.initial)
			f.auth.token = tt.token
			f.auth.err = tt.err

			results := f.init.Start(context.Background(), botConfig("B1"))
			r, ok := <-results
			require.True(t, ok)
			assert.True(t, (r.Bot == nil) != (r.Err == nil), "exactly one of bot and error must be set")
			if tt.err != nil {
				assert.ErrorIs(t, r.Err, tt.err)
			}

			_, open := <-results
			assert.False(t, open)
		})
	}
}

func TestBotAccessors(t *testing.T) {
	t.Parallel()

	cmds := []commands.Command{{Name: "help"}, {Name: "ping"}}
	b := NewBot(Params{ID: "B1", Commands: cmds, Name: "Helper", Token: "abcdefghijklmnop"})
	cmds[0].Name = "mutated"

	c, ok := b.Command("help")
	assert.True(t, ok)
	assert.Equal(t, "help", c.Name)
	_, ok = b.Command("missing")
	assert.False(t, ok)

	assert.Contains(t, b.String(), "Bot[id=B1")
	assert.NotContains(t, b.String(), "abcdefghijklmnop")
}
