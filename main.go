package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"MandalaBoard/internal/config"
	"MandalaBoard/internal/logger"
	"MandalaBoard/internal/mandala"
	boardnet "MandalaBoard/internal/net"
	"MandalaBoard/internal/state"
	"MandalaBoard/internal/ui"

	"fyne.io/fyne/v2"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML settings file")
		verbose    = flag.Bool("v", false, "verbose logging")
		join       = flag.String("join", "", "join the host at host:port")
		discover   = flag.Bool("discover", false, "find a host on the local network and join it")
	)
	flag.Parse()

	log, err := logger.New(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)
	ctx := logger.NewContext(context.Background(), log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	addr := *join
	if arg := flag.Arg(0); strings.HasPrefix(arg, boardnet.Scheme) {
		addr = arg
	}
	if *discover {
		hosts, err := boardnet.Discover(3 * time.Second)
		if err != nil {
			log.Warn("discovery", zap.Error(err))
		}
		if len(hosts) == 0 {
			log.Fatal("no board host found on the local network")
		}
		log.Info("found hosts", zap.Strings("hosts", hosts))
		addr = hosts[0]
	}

	board, strokes, err := newBoard(ctx, cfg)
	if err != nil {
		log.Fatal("create board", zap.Error(err))
	}
	if addr != "" {
		runClient(ctx, addr, board, strokes)
	} else {
		runHost(ctx, cfg, board, strokes)
	}
}

func newBoard(ctx context.Context, cfg config.Config) (*ui.Board, *state.StrokeLog, error) {
	g, err := cfg.Geometry()
	if err != nil {
		return nil, nil, err
	}
	palettes, err := cfg.ParsePalettes()
	if err != nil {
		return nil, nil, err
	}
	c := mandala.NewCanvas(cfg.Width, cfg.Height, g, mandala.CanvasOptions{
		Ink:       cfg.InkColor(),
		LineWidth: cfg.LineWidth,
	})
	s := state.NewSession(ctx, c, state.SessionOptions{
		FillLimit: cfg.FillLimit,
		Palettes:  palettes,
	})
	log := logger.L(ctx)
	return ui.NewBoard(s, log), state.NewStrokeLog(log), nil
}

func runHost(ctx context.Context, cfg config.Config, board *ui.Board, strokes *state.StrokeLog) {
	log := logger.L(ctx)
	log.Info("starting as host", zap.Int("port", cfg.Port))

	hub := boardnet.NewHub(log)
	rt := newRouter(log, strokes, func(data []byte) { hub.Broadcast(data, nil) }, board)
	hub.OnJoin = func(p *boardnet.Peer) {
		// late joiners get the stroke on display
		if data, ok := rt.current(); ok {
			if err := p.Send(data); err != nil {
				log.Warn("send current stroke", zap.String("remote", p.Addr()), zap.Error(err))
			}
		}
	}
	hub.OnMessage = func(p *boardnet.Peer, data []byte) {
		if rt.receive(data) {
			hub.Broadcast(data, p)
		}
	}

	mux := http.NewServeMux()
	mux.Handle(boardnet.Path, hub)
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("host server stopped", zap.Error(err))
			board.SetStatus(fmt.Sprintf("Server error: %v", err))
		}
	}()

	mdnsServer, err := boardnet.Advertise(cfg.Port)
	if err != nil {
		log.Warn("mDNS advertise failed, share the link instead", zap.Error(err))
	} else {
		defer mdnsServer.Shutdown()
	}

	link := boardnet.ShareLink(boardnet.GetOutgoingIP(log), cfg.Port)
	log.Info("share link", zap.String("link", link))
	ui.RunApp("Mandala Board (host)", link, board)

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func runClient(ctx context.Context, link string, board *ui.Board, strokes *state.StrokeLog) {
	log := logger.L(ctx)
	addr, err := boardnet.ParseLink(link)
	if err != nil {
		log.Fatal("bad host address", zap.Error(err))
	}
	log.Info("starting as client", zap.String("host", addr))

	go connectToHost(ctx, addr, board, strokes)
	ui.RunApp("Mandala Board", "", board)
}

func connectToHost(ctx context.Context, addr string, board *ui.Board, strokes *state.StrokeLog) {
	log := logger.L(ctx)
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	peer, err := boardnet.Dial(dialCtx, addr)
	if err != nil {
		log.Error("connect", zap.Error(err))
		board.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		return
	}
	defer peer.Close()
	board.SetStatus("Connected to " + addr)
	log.Info("connected", zap.String("host", addr), zap.String("local", peer.LocalAddr()))

	rt := newRouter(log, strokes, func(data []byte) {
		if err := peer.Send(data); err != nil {
			log.Warn("send to host", zap.Error(err))
		}
	}, board)
	if err := peer.Read(func(data []byte) { rt.receive(data) }); err != nil {
		log.Warn("disconnected", zap.Error(err))
	}
	board.SetStatus("Disconnected from host")
}

// boardView is the part of the board the router drives.
type boardView interface {
	Replay(st state.Stroke)
	Reset()
}

// router keeps the stroke log and the board in step with the peers: local
// strokes and resets are stamped and sent, remote ones are accepted or
// dropped by Lamport order and shown.
type router struct {
	log     *zap.Logger
	strokes *state.StrokeLog
	send    func([]byte)
	view    boardView
	// onMain runs fn on the UI goroutine.
	onMain func(fn func())
}

func newRouter(log *zap.Logger, strokes *state.StrokeLog, send func([]byte), board *ui.Board) *router {
	rt := &router{log: log, strokes: strokes, send: send, view: board, onMain: fyne.Do}
	board.OnStroke = rt.localStroke
	board.OnReset = rt.localReset
	return rt
}

func (rt *router) localStroke(points []mandala.Point, palette int) {
	s := rt.strokes.Local(rt.strokes.SiteID(), points, palette)
	rt.publish(boardnet.StrokeMessage(s))
}

func (rt *router) localReset() {
	ts := rt.strokes.LocalReset()
	rt.publish(boardnet.ResetMessage(rt.strokes.SiteID(), ts))
}

func (rt *router) publish(m boardnet.Message) {
	data, err := m.Encode()
	if err != nil {
		rt.log.Error("encode message", zap.String("type", m.Type), zap.Error(err))
		return
	}
	rt.send(data)
}

// current encodes the stroke on display, if any.
func (rt *router) current() ([]byte, bool) {
	s, ok := rt.strokes.Current()
	if !ok {
		return nil, false
	}
	data, err := boardnet.StrokeMessage(s).Encode()
	if err != nil {
		return nil, false
	}
	return data, true
}

// receive applies one frame from a peer and reports whether it changed the
// board, i.e. whether a host should relay it.
func (rt *router) receive(data []byte) bool {
	m, err := boardnet.Decode(data)
	if err != nil {
		rt.log.Warn("dropping frame", zap.Error(err))
		return false
	}
	switch m.Type {
	case boardnet.TypeStroke:
		if !rt.strokes.Accept(*m.Stroke) {
			return false
		}
		s := *m.Stroke
		rt.onMain(func() { rt.view.Replay(s) })
	case boardnet.TypeReset:
		if !rt.strokes.AcceptReset(m.Lamport) {
			return false
		}
		rt.log.Debug("remote reset", zap.String("owner", m.OwnerID), zap.Uint64("lamport", m.Lamport))
		rt.onMain(rt.view.Reset)
	}
	return true
}
