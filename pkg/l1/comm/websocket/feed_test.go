package websocket

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/homectl/pkg/l1/comm"
	"github.com/robotalks/homectl/pkg/l1/report"
)

type recordSender struct {
	lock sync.Mutex
	cmds []string
}

func (s *recordSender) Send(cmd string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.cmds = append(s.cmds, cmd)
	return nil
}

func (s *recordSender) sent() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.cmds...)
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + FeedPath + query
	conn, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	return conn
}

func TestFeedBroadcast(t *testing.T) {
	feed := NewFeed()
	srv := httptest.NewServer(feed.Router())
	defer srv.Close()

	conn := dial(t, srv, "")
	defer conn.Close()
	require.Eventually(t, func() bool { return feed.Clients() == 1 }, time.Second, 10*time.Millisecond)

	r, err := report.Parse("TEMP:31")
	require.NoError(t, err)
	feed.HandleReport(context.Background(), r)

	var got report.Report
	require.NoError(t, websocket.JSON.Receive(conn, &got))
	require.Equal(t, report.KindTemperature, got.Kind)
	require.Equal(t, 31.0, got.Temperature)
	require.Equal(t, "TEMP:31", got.Line)

	conn.Close()
	require.Eventually(t, func() bool { return feed.Clients() == 0 }, time.Second, 10*time.Millisecond)
}

func TestFeedCommands(t *testing.T) {
	sender := &recordSender{}
	feed := NewFeed()
	feed.Sender = sender
	srv := httptest.NewServer(feed.Router())
	defer srv.Close()

	conn := dial(t, srv, "")
	defer conn.Close()
	rw := New(conn)
	require.NoError(t, rw.WriteLine("LAMP"))
	require.NoError(t, rw.WriteLine("PLUG"))
	require.Equal(t, comm.ErrInvalidLine, rw.WriteLine("LAMP\nPLUG"))
	require.Eventually(t, func() bool { return len(sender.sent()) == 2 }, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"LAMP", "PLUG"}, sender.sent())
}

func TestFeedDropsWhenFull(t *testing.T) {
	feed := NewFeed()
	c := &client{reportCh: make(chan *report.Report, 1)}
	feed.clients[c] = struct{}{}
	r, _ := report.Parse("DOOR:CLOSED")
	feed.HandleReport(context.Background(), r)
	feed.HandleReport(context.Background(), r)
	require.Len(t, c.reportCh, 1)
}

func TestFeedCommandsRequireToken(t *testing.T) {
	sender := &recordSender{}
	feed := NewFeed()
	feed.Sender = sender
	feed.Auth = NewAuthorizer("secret")
	srv := httptest.NewServer(feed.Router())
	defer srv.Close()

	anonymous := dial(t, srv, "")
	defer anonymous.Close()
	require.NoError(t, New(anonymous).WriteLine("PLUG"))

	token, err := feed.Auth.Issue("tester", time.Minute)
	require.NoError(t, err)
	conn := dial(t, srv, "?token="+token)
	defer conn.Close()
	require.NoError(t, New(conn).WriteLine("LAMP"))

	require.Eventually(t, func() bool { return len(sender.sent()) == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []string{"LAMP"}, sender.sent())
}

func TestFeedHTTPAPI(t *testing.T) {
	sender := &recordSender{}
	feed := NewFeed()
	feed.Sender = sender
	feed.Auth = NewAuthorizer("secret")
	feed.State = func() interface{} { return map[string]bool{"lamp": true} }
	srv := httptest.NewServer(feed.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + StatePath)
	require.NoError(t, err)
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"lamp":true}`, string(body))

	resp, err = http.Post(srv.URL+"/api/cmd/LAMP", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := feed.Auth.Issue("tester", 0)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/cmd/PLUG", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, []string{"PLUG"}, sender.sent())
}

func TestAuthorizer(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	a := NewAuthorizer("secret")
	a.Now = func() time.Time { return now }

	token, err := a.Issue("kitchen", time.Minute)
	require.NoError(t, err)
	subject, err := a.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "kitchen", subject)

	_, err = NewAuthorizer("other").Verify(token)
	require.Error(t, err)

	now = now.Add(2 * time.Minute)
	_, err = a.Verify(token)
	require.Error(t, err)

	req := httptest.NewRequest(http.MethodGet, FeedPath, nil)
	_, err = a.Authorize(req)
	require.Equal(t, ErrNoToken, err)
}
