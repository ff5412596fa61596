package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"go-outlook-starter/core/constants"
	appErrors "go-outlook-starter/core/errors"
	"go-outlook-starter/core/eventbus"
	"go-outlook-starter/core/utils"
	"go-outlook-starter/modules/outlook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateSecret = "test-signing-secret"

type fakeExchanger struct {
	pair        *outlook.TokenPair
	exchangeErr error
	lastCode    string
}

func (f *fakeExchanger) AuthCodeURL(state string) string {
	return "https://login.example.com/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeExchanger) Exchange(ctx context.Context, code string) (*outlook.TokenPair, error) {
	f.lastCode = code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.pair, nil
}

type fakeGraph struct {
	profile    *outlook.Profile
	profileErr error
}

func (g *fakeGraph) GetProfile(ctx context.Context, accessToken string) (*outlook.Profile, error) {
	if g.profileErr != nil {
		return nil, g.profileErr
	}
	return g.profile, nil
}

func (g *fakeGraph) GetDefaultCalendar(ctx context.Context, accessToken string) (*outlook.Calendar, error) {
	return nil, errors.New("not used")
}

func (g *fakeGraph) CreateEvent(ctx context.Context, accessToken, calendarID string, event *outlook.Event) (*outlook.CreatedEvent, error) {
	return nil, errors.New("not used")
}

func (g *fakeGraph) SendMail(ctx context.Context, accessToken string, message *outlook.Message) error {
	return errors.New("not used")
}

type fakeStateCache struct {
	saved map[string]bool
}

func newFakeStateCache() *fakeStateCache {
	return &fakeStateCache{saved: map[string]bool{}}
}

func (c *fakeStateCache) SaveOAuthState(ctx context.Context, state string) error {
	c.saved[state] = true
	return nil
}

func (c *fakeStateCache) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	existed := c.saved[state]
	delete(c.saved, state)
	return existed, nil
}

func (c *fakeStateCache) Close() error { return nil }

func newService(exchanger *fakeExchanger, graph *fakeGraph, bus eventbus.Bus, stateCache *fakeStateCache) AuthService {
	return NewAuthService(exchanger, graph, bus, stateCache, stateSecret)
}

func TestGetMicrosoftAuthURL(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a signed single-use state", func(t *testing.T) {
		stateCache := newFakeStateCache()
		svc := newService(&fakeExchanger{}, &fakeGraph{}, eventbus.NewInProcessBus(), stateCache)

		authURL, appErr := svc.GetMicrosoftAuthURL(ctx)
		require.Nil(t, appErr)

		parsed, err := url.Parse(authURL)
		require.NoError(t, err)
		state := parsed.Query().Get("state")
		require.NotEmpty(t, state)

		nonce, err := utils.ParseState(state, stateSecret)
		require.NoError(t, err)
		assert.True(t, stateCache.saved[nonce], "the nonce must be stored for the callback")
	})

	t.Run("consecutive calls issue distinct states", func(t *testing.T) {
		stateCache := newFakeStateCache()
		svc := newService(&fakeExchanger{}, &fakeGraph{}, eventbus.NewInProcessBus(), stateCache)

		a, appErr := svc.GetMicrosoftAuthURL(ctx)
		require.Nil(t, appErr)
		b, appErr := svc.GetMicrosoftAuthURL(ctx)
		require.Nil(t, appErr)

		assert.NotEqual(t, a, b)
		assert.Len(t, stateCache.saved, 2)
	})
}

func TestHandleMicrosoftCallback(t *testing.T) {
	ctx := context.Background()

	issueState := func(t *testing.T, stateCache *fakeStateCache) string {
		t.Helper()
		nonce := utils.GenerateRandomString(16)
		require.NoError(t, stateCache.SaveOAuthState(ctx, nonce))
		state, err := utils.SignState(nonce, stateSecret)
		require.NoError(t, err)
		return state
	}

	t.Run("exchanges the code and publishes credentials", func(t *testing.T) {
		stateCache := newFakeStateCache()
		exchanger := &fakeExchanger{pair: &outlook.TokenPair{
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
		}}
		graph := &fakeGraph{profile: &outlook.Profile{ID: "ext-1", Mail: "user@example.com"}}
		bus := eventbus.NewInProcessBus()

		var tokensSave *outlook.TokensSavePayload
		var authenticated *outlook.UserAuthenticatedPayload
		bus.Subscribe(outlook.EventTokensSave, "capture", func(ctx context.Context, evt eventbus.Event) error {
			p := evt.Payload.(outlook.TokensSavePayload)
			tokensSave = &p
			return nil
		})
		bus.Subscribe(outlook.EventUserAuthenticated, "capture", func(ctx context.Context, evt eventbus.Event) error {
			p := evt.Payload.(outlook.UserAuthenticatedPayload)
			authenticated = &p
			return nil
		})

		svc := newService(exchanger, graph, bus, stateCache)
		state := issueState(t, stateCache)

		result, appErr := svc.HandleMicrosoftCallback(ctx, "auth-code", state)
		require.Nil(t, appErr)

		assert.Equal(t, "auth-code", exchanger.lastCode)
		assert.Equal(t, constants.MockUserID, result.UserID)
		assert.Equal(t, "ext-1", result.ExternalUserID)
		assert.Equal(t, "user@example.com", result.Email)

		require.NotNil(t, tokensSave)
		assert.Equal(t, "access", tokensSave.AccessToken)
		assert.Equal(t, "refresh", tokensSave.RefreshToken)
		assert.EqualValues(t, 3600, tokensSave.ExpiresIn)

		require.NotNil(t, authenticated)
		assert.Equal(t, "ext-1", authenticated.ExternalUserID)
	})

	t.Run("missing code is rejected", func(t *testing.T) {
		stateCache := newFakeStateCache()
		svc := newService(&fakeExchanger{}, &fakeGraph{}, eventbus.NewInProcessBus(), stateCache)

		_, appErr := svc.HandleMicrosoftCallback(ctx, "", issueState(t, stateCache))
		require.NotNil(t, appErr)
		assert.Equal(t, appErrors.ErrInvalidInput, appErr.Code)
	})

	t.Run("forged state is rejected", func(t *testing.T) {
		svc := newService(&fakeExchanger{}, &fakeGraph{}, eventbus.NewInProcessBus(), newFakeStateCache())

		_, appErr := svc.HandleMicrosoftCallback(ctx, "code", "forged-state")
		require.NotNil(t, appErr)
		assert.Equal(t, appErrors.ErrUnauthorized, appErr.Code)
	})

	t.Run("state cannot be replayed", func(t *testing.T) {
		stateCache := newFakeStateCache()
		exchanger := &fakeExchanger{pair: &outlook.TokenPair{AccessToken: "a", RefreshToken: "r"}}
		graph := &fakeGraph{profile: &outlook.Profile{ID: "ext-1", Mail: "user@example.com"}}
		svc := newService(exchanger, graph, eventbus.NewInProcessBus(), stateCache)
		state := issueState(t, stateCache)

		_, appErr := svc.HandleMicrosoftCallback(ctx, "code", state)
		require.Nil(t, appErr)

		_, appErr = svc.HandleMicrosoftCallback(ctx, "code", state)
		require.NotNil(t, appErr)
		assert.Equal(t, appErrors.ErrUnauthorized, appErr.Code)
	})

	t.Run("exchange failure is unauthorized", func(t *testing.T) {
		stateCache := newFakeStateCache()
		exchanger := &fakeExchanger{exchangeErr: errors.New("invalid_grant")}
		svc := newService(exchanger, &fakeGraph{}, eventbus.NewInProcessBus(), stateCache)

		_, appErr := svc.HandleMicrosoftCallback(ctx, "bad-code", issueState(t, stateCache))
		require.NotNil(t, appErr)
		assert.Equal(t, appErrors.ErrUnauthorized, appErr.Code)
	})

	t.Run("failed credential persistence fails the callback", func(t *testing.T) {
		stateCache := newFakeStateCache()
		exchanger := &fakeExchanger{pair: &outlook.TokenPair{AccessToken: "a", RefreshToken: "r"}}
		graph := &fakeGraph{profile: &outlook.Profile{ID: "ext-1"}}
		bus := eventbus.NewInProcessBus()
		bus.Subscribe(outlook.EventTokensSave, "failing", func(ctx context.Context, evt eventbus.Event) error {
			return errors.New("db down")
		})

		svc := newService(exchanger, graph, bus, stateCache)
		_, appErr := svc.HandleMicrosoftCallback(ctx, "code", issueState(t, stateCache))
		require.NotNil(t, appErr)
		assert.Equal(t, appErrors.ErrInternalServer, appErr.Code)
	})

	t.Run("user authenticated handler failure does not fail the callback", func(t *testing.T) {
		stateCache := newFakeStateCache()
		exchanger := &fakeExchanger{pair: &outlook.TokenPair{AccessToken: "a", RefreshToken: "r"}}
		graph := &fakeGraph{profile: &outlook.Profile{ID: "ext-1"}}
		bus := eventbus.NewInProcessBus()
		bus.Subscribe(outlook.EventUserAuthenticated, "failing", func(ctx context.Context, evt eventbus.Event) error {
			return errors.New("flaky consumer")
		})

		svc := newService(exchanger, graph, bus, stateCache)
		_, appErr := svc.HandleMicrosoftCallback(ctx, "code", issueState(t, stateCache))
		assert.Nil(t, appErr)
	})
}
