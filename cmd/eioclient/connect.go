package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	eiop "github.com/njones/eioclient/engineio/protocol"
	"github.com/njones/eioclient/engineio/transport"
	"github.com/njones/eioclient/protocol"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func connectCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		flags      = DefaultConfig()
	)

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Open a transport to a server",
		Long: `Open a transport to an Engine.IO v3 server, log every event and packet,
send the --send messages once the transport is open, then close after
--duration or on interrupt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			overlay(cmd.Flags(), cfg, flags)

			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runConnect(ctx, cfg, log)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML config file")
	f.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	bindFlags(f, flags)

	return cmd
}

func bindFlags(f *pflag.FlagSet, flags *Config) {
	f.StringVar(&flags.Host, "host", flags.Host, "Server host")
	f.IntVar(&flags.Port, "port", flags.Port, "Server port")
	f.StringVar(&flags.Path, "path", flags.Path, "Engine.IO path")
	f.BoolVar(&flags.Secure, "secure", flags.Secure, "Use https/wss")
	f.StringVarP(&flags.Transport, "transport", "t", flags.Transport, "Transport: polling or websocket")
	f.BoolVar(&flags.Base64, "b64", flags.Base64, "Force base64 for binary data")
	f.StringToStringVarP(&flags.Query, "query", "q", nil, "Extra query parameters")
	f.StringArrayVarP(&flags.Send, "send", "s", nil, "Message to send once open, repeatable")
	f.BoolVar(&flags.SocketIO, "socketio", flags.SocketIO, "Send and read socket.io event packets")
	f.DurationVarP(&flags.Duration, "duration", "d", flags.Duration, "Close after this long, zero waits for an interrupt")
	f.StringVar(&flags.MetricsAddr, "metrics-addr", flags.MetricsAddr, "Serve prometheus metrics on this address")
}

// overlay copies the flags the user set over cfg.
func overlay(f *pflag.FlagSet, cfg, flags *Config) {
	changed := f.Changed
	if changed("host") {
		cfg.Host = flags.Host
	}
	if changed("port") {
		cfg.Port = flags.Port
	}
	if changed("path") {
		cfg.Path = flags.Path
	}
	if changed("secure") {
		cfg.Secure = flags.Secure
	}
	if changed("transport") {
		cfg.Transport = flags.Transport
	}
	if changed("b64") {
		cfg.Base64 = flags.Base64
	}
	if changed("query") {
		if cfg.Query == nil {
			cfg.Query = map[string]string{}
		}
		for key, val := range flags.Query {
			cfg.Query[key] = val
		}
	}
	if changed("send") {
		cfg.Send = flags.Send
	}
	if changed("socketio") {
		cfg.SocketIO = flags.SocketIO
	}
	if changed("duration") {
		cfg.Duration = flags.Duration
	}
	if changed("metrics-addr") {
		cfg.MetricsAddr = flags.MetricsAddr
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// runConnect opens the transport and keeps it open until ctx is done, the
// duration passed or the server closed it.
func runConnect(ctx context.Context, cfg *Config, log *zap.Logger) error {
	reg := prometheus.NewRegistry()
	metrics := transport.NewMetrics(reg)

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("metrics server", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	// the transport outlives ctx long enough to close cleanly
	trCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := transport.Transports[transport.Name(cfg.Transport)](append(cfg.Options(log, metrics), transport.WithContext(trCtx))...)
	c := &client{tr: tr, log: log, socketIO: cfg.SocketIO}

	opened, closed := make(chan struct{}), make(chan struct{})
	var openOnce, closeOnce sync.Once
	tr.On(transport.EventOpen, func(transport.Emit) { openOnce.Do(func() { close(opened) }) })
	tr.On(transport.EventClose, func(transport.Emit) { closeOnce.Do(func() { close(closed) }) })
	tr.On(transport.EventError, func(x transport.Emit) { log.Warn("transport error", zap.Error(x.Err)) })
	tr.On(transport.EventPacket, func(x transport.Emit) { c.onPacket(trCtx, x.Packet) })

	if err := tr.Open(); err != nil {
		return err
	}

	select {
	case <-opened:
	case <-closed:
		return ErrClosedBeforeOpen
	case <-ctx.Done():
		return tr.Close()
	}

	log.Info("open", zap.String("sid", tr.SID().String()), zap.Stringer("transport", tr.Name()))

	for _, msg := range cfg.Send {
		if err := c.send(msg); err != nil {
			log.Warn("send", zap.String("message", msg), zap.Error(err))
		}
	}

	var timeout <-chan time.Time
	if cfg.Duration > 0 {
		timer := time.NewTimer(cfg.Duration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-closed:
		log.Info("closed by server")
		return nil
	case <-timeout:
	case <-ctx.Done():
	}

	log.Info("closing")
	return tr.Close()
}

type client struct {
	tr       transport.Transporter
	log      *zap.Logger
	socketIO bool

	mu      sync.Mutex
	decoder protocol.Decoder
	pinging bool

	sending sync.Mutex // serializes writes from the ping loop and send
}

func (c *client) write(packets ...eiop.Packet) error {
	c.sending.Lock()
	defer c.sending.Unlock()
	return c.tr.Send(packets...)
}

func (c *client) onPacket(ctx context.Context, packet eiop.Packet) {
	switch packet.T {
	case eiop.OpenPacket:
		if hs, ok := packet.D.(*eiop.HandshakeV3); ok && hs != nil {
			c.log.Info("handshake", zap.String("sid", hs.SID), zap.Strings("upgrades", hs.Upgrades),
				zap.Duration("ping_interval", time.Duration(hs.PingInterval)))
			c.ping(ctx, time.Duration(hs.PingInterval))
		}
	case eiop.MessagePacket:
		if !c.socketIO {
			c.log.Info("message", zap.Any("data", packet.D))
			return
		}

		c.mu.Lock()
		pac, done, err := c.decoder.Add(packet.D)
		c.mu.Unlock()

		switch {
		case err != nil:
			c.log.Warn("socket.io decode", zap.Error(err))
		case done:
			c.log.Info("socket.io packet", zap.Stringer("type", pac.Type),
				zap.String("nsp", pac.Namespace), zap.Any("data", pac.Data))
		}
	default:
		c.log.Debug("packet", zap.Stringer("type", packet.T), zap.Any("data", packet.D))
	}
}

// ping keeps the session alive, an engine.io v3 client pings the server.
func (c *client) ping(ctx context.Context, interval time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pinging || interval <= 0 {
		return
	}
	c.pinging = true

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := c.write(eiop.Packet{T: eiop.PingPacket})
				if errors.Is(err, transport.ErrNotOpen) {
					return
				}
				if err != nil {
					c.log.Warn("ping", zap.Error(err))
				}
			}
		}
	}()
}

func (c *client) send(msg string) error {
	if !c.socketIO {
		return c.write(eiop.Packet{T: eiop.MessagePacket, D: msg})
	}

	messages, err := protocol.Encoder{}.Encode(protocol.Packet{
		Type: protocol.EventPacket,
		Data: []interface{}{"message", msg},
	})
	if err != nil {
		return err
	}

	packets := make([]eiop.Packet, len(messages))
	for i, message := range messages {
		packets[i] = eiop.Packet{T: eiop.MessagePacket, D: message}
	}
	return c.write(packets...)
}
