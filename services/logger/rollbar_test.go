package logsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rollbar/rollbar-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markaz/core"
	"github.com/trezcool/markaz/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "API : ", 0), &core.Config{Env: "TEST", Build: "test"})
	logger.Enable(true) // no token: stays disabled
	defer logger.Close()

	logger.Error(
		"marking attendance",
		errors.New("boom"),
		map[string]interface{}{"status": "late", "date_id": 7},
		user.User{ID: 3, Username: "amina"},
	)
	logger.Info("listening", map[string]interface{}{"addr": ":8000"})

	want := "API : ERROR: marking attendance\n" +
		"API : \tboom\n" +
		"API : \tdate_id: 7\n" +
		"API : \tstatus: late\n" +
		"API : \tuser: 3 (amina)\n" +
		"API : INFO: listening\n" +
		"API : \taddr: :8000\n"
	assert.Equal(t, want, buf.String())
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), &core.Config{})
	defer logger.Close()

	err := errors.New("boom")
	rep := logger.prepare("msg", []interface{}{err, user.User{ID: 1, Username: "amina"}, user.User{ID: 2}})
	assert.Equal(t, err, rep.err)
	assert.Equal(t, map[string]interface{}{"message": "msg"}, rep.extras)
	person, ok := rollbar.PersonFromContext(rep.ctx)
	require.True(t, ok)
	assert.Equal(t, "1", person.Id)
	assert.Equal(t, "amina", person.Username)

	rep = logger.prepare("msg", []interface{}{map[string]interface{}{"a": 1}, map[string]interface{}{"b": 2}, user.User{}})
	assert.NoError(t, rep.err)
	assert.Equal(t, map[string]interface{}{"a": 1, "b": 2}, rep.extras)
	_, ok = rollbar.PersonFromContext(rep.ctx)
	assert.False(t, ok)
	assert.Equal(t, context.Background(), rep.ctx)
}

func TestRollbarLogger_report(t *testing.T) {
	var (
		mu    sync.Mutex
		items []map[string]interface{}
	)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var item struct {
			Data map[string]interface{} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&item); err == nil {
			mu.Lock()
			items = append(items, item.Data)
			mu.Unlock()
		}
		_, _ = w.Write([]byte(`{"err":0}`))
	}))
	defer api.Close()

	logger := NewRollbarLogger(log.New(&bytes.Buffer{}, "", 0), &core.Config{Env: "TEST", RollbarToken: "test-token"})
	logger.client.SetEndpoint(api.URL + "/")
	logger.Enable(true)

	logger.Error("marking attendance", errors.New("boom"), map[string]interface{}{"date_id": 7}, user.User{ID: 3, Username: "amina"})
	logger.Info("listening")
	logger.Close() // waits for the queue to drain

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, items, 2)

	byLevel := make(map[string]map[string]interface{}, len(items))
	for _, item := range items {
		byLevel[item["level"].(string)] = item
	}

	errItem := byLevel[rollbar.ERR]
	require.NotNil(t, errItem)
	assert.Equal(t, map[string]interface{}{"id": "3", "username": "amina", "email": ""}, errItem["person"])
	custom, ok := errItem["custom"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "marking attendance", custom["message"])
	assert.EqualValues(t, 7, custom["date_id"])

	infoItem := byLevel[rollbar.INFO]
	require.NotNil(t, infoItem)
	assert.Nil(t, infoItem["person"])
}
