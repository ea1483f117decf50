package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"seo-assistant/internal/config"
)

func TestRun_MissingCredentialsFailsBeforeNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	cases := []struct {
		name    string
		token   string
		apiKey  string
		missing string
	}{
		{name: "no token", token: "", apiKey: "sk-test", missing: "TELEGRAM_BOT_TOKEN"},
		{name: "no api key", token: "123:abc", apiKey: "", missing: "OPENAI_API_KEY"},
		{name: "nothing", token: "", apiKey: "", missing: "TELEGRAM_BOT_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", tc.token)
			t.Setenv("OPENAI_API_KEY", tc.apiKey)
			t.Setenv("OPENAI_BASE_URL", srv.URL)
			t.Setenv("LANGFUSE_HOST", srv.URL)
			t.Setenv("PARAM_PREFIX", "")

			err := run(context.Background())
			require.ErrorIs(t, err, config.ErrMissing)
			require.ErrorContains(t, err, tc.missing)
		})
	}
	require.Zero(t, atomic.LoadInt32(&hits))
}
