package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"merek-automation/internal/components/telemetry"
	"merek-automation/internal/config"
	"merek-automation/internal/scrapers/merek"

	"github.com/stretchr/testify/require"
)

func useSessionFile(t *testing.T) {
	previous := sessionPath
	sessionPath = filepath.Join(t.TempDir(), "session.json")
	t.Cleanup(func() { sessionPath = previous })
}

func unreachableEngine(t *testing.T) *merek.Engine {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	portal := config.Default().Portal
	portal.BaseUrl = url
	portal.RequestsPerSecond = -1
	engine, err := merek.NewEngine(merek.EngineOptions{
		Portal:    portal,
		Telemetry: &telemetry.RecordingAPI{},
		Recognizer: merek.RecognizerFunc(func(context.Context, string) (string, error) {
			return "7XK2", nil
		}),
	})
	require.NoError(t, err)
	return engine
}

func TestFailedLoginKeepsSession(t *testing.T) {
	useSessionFile(t)
	require.NoError(t, writeSession(merek.NewSession([]string{"SESSION=logged-in"}, "")))
	engine := unreachableEngine(t)

	_, err := finishLogin(engine.LoginWithRecognizer(context.Background(), "pemohon", "rahasia"))
	require.ErrorIs(t, err, merek.ErrUpstream)

	_, err = finishLogin(engine.LoginWithRecognizer(context.Background(), "", ""))
	require.ErrorIs(t, err, merek.ErrValidationFailed)

	session, err := readSession()
	require.NoError(t, err)
	require.Equal(t, "SESSION=logged-in", session.CookieHeader())
}

func TestFinishWritesSession(t *testing.T) {
	useSessionFile(t)

	_, err := finish(merek.Outcome[merek.SubmitResult]{
		Kind:    merek.OUTCOME_SESSION_EXPIRED,
		Session: merek.NewSession([]string{"SESSION=abc"}, "tok").WithoutToken(),
	})
	require.ErrorIs(t, err, merek.ErrSessionExpired)

	session, err := readSession()
	require.NoError(t, err)
	require.Equal(t, "SESSION=abc", session.CookieHeader())
	require.Empty(t, session.CsrfToken())

	_, err = finish(merek.Outcome[merek.SubmitResult]{Kind: merek.OUTCOME_UPSTREAM_ERROR})
	require.ErrorIs(t, err, merek.ErrUpstream)
	session, err = readSession()
	require.NoError(t, err)
	require.Equal(t, "SESSION=abc", session.CookieHeader())
}

func TestSuccessfulLoginWritesSession(t *testing.T) {
	useSessionFile(t)

	result, err := finishLogin(merek.Outcome[merek.LoginResult]{
		Kind:    merek.OUTCOME_SUCCESS,
		Value:   merek.LoginResult{Location: "/dashboard"},
		Session: merek.NewSession([]string{"SESSION=new"}, ""),
	})
	require.NoError(t, err)
	require.Equal(t, "/dashboard", result.Location)

	session, err := readSession()
	require.NoError(t, err)
	require.Equal(t, "SESSION=new", session.CookieHeader())
}
