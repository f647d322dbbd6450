// Package websocket streams device reports to browsers.
package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/homectl/pkg/framework"
	"github.com/robotalks/homectl/pkg/l1"
	"github.com/robotalks/homectl/pkg/l1/report"
)

// Paths served by Feed.Router.
const (
	FeedPath    = "/feed"
	StatePath   = "/api/state"
	CommandPath = "/api/cmd/{cmd}"
)

// DefaultClientQueue is the number of reports buffered per client.
// Reports to a client with a full queue are dropped.
const DefaultClientQueue = 32

// Feed broadcasts every report as a JSON text frame to all connected
// clients. Text frames received from clients are sent to Sender as
// commands when Sender is set and the client is authorized.
type Feed struct {
	Sender      l1.CommandSender
	Auth        *Authorizer
	State       func() interface{}
	ClientQueue int

	clientsLock sync.RWMutex
	clients     map[*client]struct{}
}

type client struct {
	addr     string
	reportCh chan *report.Report
}

// NewFeed creates a Feed.
func NewFeed() *Feed {
	return &Feed{
		ClientQueue: DefaultClientQueue,
		clients:     make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.clientsLock.RLock()
	defer f.clientsLock.RUnlock()
	return len(f.clients)
}

// HandleReport implements comm.ReportHandler.
func (f *Feed) HandleReport(_ context.Context, r *report.Report) {
	f.clientsLock.RLock()
	defer f.clientsLock.RUnlock()
	for c := range f.clients {
		select {
		case c.reportCh <- r:
		default:
			glog.V(1).Infof("feed client %s is slow, report dropped", c.addr)
		}
	}
}

// Handler returns the http.Handler serving the websocket feed.
func (f *Feed) Handler() http.Handler {
	return websocket.Handler(f.serveConn)
}

// Router returns the router serving the feed and the HTTP API.
func (f *Feed) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle(FeedPath, f.Handler())
	r.HandleFunc(StatePath, f.serveState).Methods(http.MethodGet)
	r.HandleFunc(CommandPath, f.serveCommand).Methods(http.MethodPost)
	return r
}

// Serve listens on addr until ctx is done.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	glog.Infof("feed listening on %s", ln.Addr())
	srv := &http.Server{Handler: f.Router()}
	err = fx.RunWithContextCloser(ctx, srv, func() error { return srv.Serve(ln) })
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (f *Feed) authorized(r *http.Request) bool {
	if f.Auth == nil {
		return true
	}
	subject, err := f.Auth.Authorize(r)
	if err != nil {
		glog.V(1).Infof("%s unauthorized: %v", r.RemoteAddr, err)
		return false
	}
	glog.V(2).Infof("%s authorized as %q", r.RemoteAddr, subject)
	return true
}

func (f *Feed) serveState(w http.ResponseWriter, r *http.Request) {
	if f.State == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(f.State()); err != nil {
		glog.V(1).Infof("state response error: %v", err)
	}
}

func (f *Feed) serveCommand(w http.ResponseWriter, r *http.Request) {
	if f.Sender == nil {
		http.Error(w, "commands disabled", http.StatusServiceUnavailable)
		return
	}
	if !f.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	cmd := mux.Vars(r)["cmd"]
	if err := f.Sender.Send(cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (f *Feed) serveConn(conn *websocket.Conn) {
	size := f.ClientQueue
	if size <= 0 {
		size = DefaultClientQueue
	}
	req := conn.Request()
	c := &client{addr: req.RemoteAddr, reportCh: make(chan *report.Report, size)}
	canSend := f.Sender != nil && f.authorized(req)
	f.clientsLock.Lock()
	f.clients[c] = struct{}{}
	f.clientsLock.Unlock()
	glog.V(1).Infof("feed client %s connected", c.addr)

	defer func() {
		f.clientsLock.Lock()
		delete(f.clients, c)
		f.clientsLock.Unlock()
		conn.Close()
		glog.V(1).Infof("feed client %s disconnected", c.addr)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.receive(c, New(conn), canSend)
	}()

	for {
		select {
		case r := <-c.reportCh:
			if err := websocket.JSON.Send(conn, r); err != nil {
				glog.V(1).Infof("feed send error: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}

func (f *Feed) receive(c *client, rw *ReadWriter, canSend bool) {
	for {
		cmd, err := rw.ReadLine()
		if err != nil {
			return
		}
		if !canSend {
			glog.V(1).Infof("feed client %s: command %q ignored", c.addr, cmd)
			continue
		}
		if err := f.Sender.Send(cmd); err != nil {
			glog.Warningf("feed command %q error: %v", cmd, err)
		}
	}
}
