package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/homectl/pkg/framework"
	"github.com/robotalks/homectl/pkg/l0/hal/serial"
	"github.com/robotalks/homectl/pkg/l1"
	"github.com/robotalks/homectl/pkg/l1/comm"
	"github.com/robotalks/homectl/pkg/l1/env"
	"github.com/robotalks/homectl/pkg/l1/env/connector"
	"github.com/robotalks/homectl/pkg/l1/monitor"
	"github.com/robotalks/homectl/pkg/l1/report"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell   *ishell.Shell
	Config  *connector.Config
	Env     *env.Config
	Session *Session
}

// Session is an attached device with its running loop.
type Session struct {
	Ctx     context.Context
	Cancel  func()
	Name    string
	Pipe    *comm.Pipe
	Monitor *monitor.Monitor
	Loop    *fx.Loop

	watching int32
	printer  func(format string, args ...interface{})
}

const (
	shellKey       = "$shell"
	detachedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&OpenCmd,
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *connector.Config, envConf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		Env:    envConf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(detachedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints DeviceInfo into friendly string for display.
func FormatInfo(info l1.DeviceInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// Print prints v as JSON if OutputJSON, otherwise text.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if !s.OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// Send sends a command to the attached device.
func Send(c *ishell.Context, cmd string) error {
	s := ShellFrom(c)
	if s.Session == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	if err := s.Session.Pipe.Send(cmd); err != nil {
		c.Err(err)
		return err
	}
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// NewSession starts a session on a line connection.
func NewSession(name string, rw comm.LineReadWriter, threshold float64) *Session {
	sess := &Session{
		Name:    name,
		Pipe:    comm.NewPipe(rw),
		Monitor: monitor.New(),
		Loop:    fx.NewLoop(),
	}
	sess.Monitor.Threshold = threshold
	sess.Ctx, sess.Cancel = context.WithCancel(context.Background())
	sess.Pipe.AddHandler(sess.Monitor, comm.HandleReportFunc(sess.echo))
	sess.Loop.Add(sess.Pipe)
	go sess.Loop.Run(sess.Ctx)
	return sess
}

// SetWatch toggles printing every report.
func (s *Session) SetWatch(on bool) {
	var val int32
	if on {
		val = 1
	}
	atomic.StoreInt32(&s.watching, val)
}

// Watching indicates reports are printed.
func (s *Session) Watching() bool {
	return atomic.LoadInt32(&s.watching) != 0
}

func (s *Session) echo(_ context.Context, r *report.Report) {
	if s.Watching() && s.printer != nil {
		s.printer("%s: %s\n", r.Kind, r.Line)
	}
}

// Attach replaces the current session with a new one on rw.
func (s *Shell) Attach(name string, rw comm.LineReadWriter) *Session {
	threshold := monitor.DefaultThreshold
	if s.Env != nil {
		threshold = s.Env.Threshold
	}
	sess := NewSession(name, rw, threshold)
	sess.printer = s.Shell.Printf
	sess.Monitor.OnWarning = func(t float64) {
		s.Shell.Printf("WARNING: temperature %.1f above threshold %.1f\n", t, threshold)
	}
	s.Detach()
	s.Session = sess
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
	return sess
}

// Detach stops the current session.
func (s *Shell) Detach() {
	if s.Session != nil {
		s.Session.Cancel()
		s.Session = nil
		s.Shell.SetPrompt(detachedPrompt)
	}
}

// Open attaches a locally connected device on a serial port.
func (s *Shell) Open(port string) error {
	baud := 0
	if s.Env != nil {
		baud = s.Env.BaudRate
	}
	if baud <= 0 {
		baud = 9600
	}
	pipe, err := env.OpenPipe(port, baud)
	if err != nil {
		return err
	}
	s.Attach(port, pipe.ReadWriter)
	return nil
}

// DiscoverDevices discovers devices published on the registry.
func (s *Shell) DiscoverDevices(filter func(l1.DeviceInfo) bool) ([]l1.DeviceInfo, error) {
	cn, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	infoList, err := cn.Discover(context.TODO())
	if err != nil {
		return nil, err
	}
	if filter != nil {
		items := make([]l1.DeviceInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return infoList, nil
}

// SelectDevice discovers devices and asks for a choice.
func (s *Shell) SelectDevice(filter func(l1.DeviceInfo) bool) (*l1.DeviceInfo, error) {
	infoList, err := s.DiscoverDevices(filter)
	if err != nil {
		return nil, err
	}
	if len(infoList) == 0 {
		return nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 devices discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}
	return &infoList[index], nil
}

// Connect connects a device through the registry.
func (s *Shell) Connect(ref l1.DeviceRef) error {
	cn, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	conn, err := cn.Connect(context.TODO(), ref)
	if err != nil {
		return err
	}
	rw, ok := conn.(comm.LineReadWriter)
	if !ok {
		conn.Close()
		return fmt.Errorf("connection to %s is not line based", ref.Name())
	}
	s.Attach(ref.Name(), rw)
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect {
		var err error
		switch {
		case s.Env != nil && s.Env.Port != "":
			err = s.Open(s.Env.Port)
		case s.Config.Ref.IsValid():
			if s.Interactive {
				s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
			}
			err = s.Connect(s.Config.Ref)
		}
		if err != nil {
			log.Fatalf("connect failed: %v", err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		s.Detach()
		return
	}
	log.Fatalln("command expected")
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Help: "list serial ports",
		Func: func(c *ishell.Context) {
			ports, err := serial.List()
			if err != nil {
				c.Err(err)
				return
			}
			if ports == nil {
				ports = []string{}
			}
			text := "No serial ports found"
			if len(ports) > 0 {
				text = strings.Join(ports, "\n")
			}
			ShellFrom(c).Print(c, ports, text)
		},
	}

	// OpenCmd opens a serial port.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "PORT",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("PORT required"))
				return
			}
			if err := ShellFrom(c).Open(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// DiscoverCmd discovers devices.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "list devices on the registry",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverDevices(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if len(infoList) == 0 {
				// in case infoList is nil, make it empty slice.
				infoList = []l1.DeviceInfo{}
			}
			var w bytes.Buffer
			for n, info := range infoList {
				if n > 0 {
					w.WriteByte('\n')
				}
				w.WriteString(FormatInfo(info))
			}
			if len(infoList) == 0 {
				w.WriteString("No devices found")
			}
			s.Print(c, infoList, w.String())
		},
	}

	// ConnectCmd connects a device on the registry.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE [ID]]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref l1.DeviceRef
			if len(c.Args) >= 2 {
				ref.Type, ref.ID = c.Args[0], c.Args[1]
			} else {
				var filter func(l1.DeviceInfo) bool
				if len(c.Args) == 1 {
					filter = func(info l1.DeviceInfo) bool {
						return info.Ref.Type == c.Args[0]
					}
				}
				info, err := s.SelectDevice(filter)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no device discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd detaches the current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d", "close"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Detach()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	envConf := env.NewConfig()
	if err := envConf.Load(); err != nil {
		log.Fatalln(err)
	}
	New(connector.NewConfig(), envConf).WithAutoConnect(true).Run(flag.Args()...)
}
