// Package uciproto implements the text-based Universal Chess
// Interface protocol surface, grounded on
// hailam-chessplay/internal/uci/uci.go's command dispatch and option
// handling, generalised to this core's Search/Pool/Table/Game types.
package uciproto

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kestrelchess/rosecore/internal/board"
	"github.com/kestrelchess/rosecore/internal/engine"
	"github.com/kestrelchess/rosecore/internal/game"
	"github.com/kestrelchess/rosecore/internal/nnue"
	"github.com/kestrelchess/rosecore/internal/pool"
)

// ErrIllegalMove is board.ErrIllegalMove; ParseUCIMove wraps it with
// the offending move text when a "position ... moves ..." move does not
// match any legal move.
var ErrIllegalMove = board.ErrIllegalMove

const defaultHashMB = 64

// Handler owns one UCI session: the game being played, the shared
// transposition table and evaluator, and either a single Search (the
// common "Threads 1" case) or a worker pool.
type Handler struct {
	out io.Writer
	mu  sync.Mutex

	g    *game.Game
	tt   *engine.Table
	eval engine.Evaluator

	threads      int
	poolThreads  int
	multiPV      int
	moveOverhead time.Duration
	solo         *engine.Search
	p            *pool.Pool

	searching bool
	stopped   *atomic.Bool
	done      chan struct{}
}

// stoppableControl wraps a SearchControl so "stop" forces termination
// at the search's next hard-termination poll, rather than waiting for
// the wrapped control's own time/node/depth limit (which a plain "go
// infinite" never sets).
type stoppableControl struct {
	engine.SearchControl
	stopped *atomic.Bool
}

func (c stoppableControl) CheckHardTermination(stats engine.SearchStats, depth engine.Depth) bool {
	return c.stopped.Load() || c.SearchControl.CheckHardTermination(stats, depth)
}

// New builds a Handler with a fresh game at the standard starting
// position, an empty-weights (deterministic random) NNUE evaluator
// until "setoption EvalFile" loads a real network, and engine.DefaultOptions().
func New(out io.Writer) *Handler {
	h, err := NewWithOptions(out, engine.DefaultOptions())
	if err != nil {
		// DefaultOptions' EvalFile is always empty, and NewEvaluator only
		// errors on file I/O, which an empty path never reaches.
		panic(err)
	}
	return h
}

// NewWithOptions builds a Handler the way New does, but configured up
// front from opts instead of "setoption" commands — for a library
// caller (self-play data generation, a bench harness) that wants
// Hash/Threads/EvalFile/MultiPV/MoveOverhead set in one shot rather
// than negotiated one UCI command at a time. It errors if opts.EvalFile
// names a network file that fails to load.
func NewWithOptions(out io.Writer, opts engine.Options) (*Handler, error) {
	hashMB := opts.HashMB
	if hashMB <= 0 {
		hashMB = defaultHashMB
	}
	tt := engine.NewTable(hashMB)
	ev, err := nnue.NewEvaluator(opts.EvalFile)
	if err != nil {
		return nil, err
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = 1
	}
	multiPV := opts.MultiPV
	if multiPV <= 0 {
		multiPV = 1
	}
	h := &Handler{
		out:          out,
		g:            game.New(),
		tt:           tt,
		eval:         ev,
		threads:      threads,
		multiPV:      multiPV,
		moveOverhead: opts.MoveOverhead,
	}
	h.solo = engine.NewSearch(h.g, h.tt, h.eval, &uciOutput{h: h})
	return h, nil
}

// LoadNetwork replaces the handler's evaluator with one loaded from
// path, for a caller (main.go's startup auto-load) that wants to
// supply a network before the first "go" rather than waiting for a
// "setoption EvalFile" command.
func (h *Handler) LoadNetwork(path string) error {
	ev, err := nnue.NewEvaluator(path)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.eval = ev
	h.solo = engine.NewSearch(h.g, h.tt, h.eval, &uciOutput{h: h})
	h.mu.Unlock()
	return nil
}

// Run reads UCI commands from r, one per line, until "quit" or EOF.
func (h *Handler) Run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			h.handleUCI()
		case "isready":
			fmt.Fprintln(h.out, "readyok")
		case "ucinewgame":
			h.handleNewGame()
		case "position":
			h.handlePosition(args)
		case "go":
			h.handleGo(args)
		case "stop":
			h.handleStop()
		case "quit":
			h.handleStop()
			h.mu.Lock()
			if h.p != nil {
				h.p.Stop()
				h.p = nil
			}
			h.mu.Unlock()
			return
		case "setoption":
			h.handleSetOption(args)
		case "perft":
			h.handlePerft(args)
		case "d":
			fmt.Fprintln(h.out, h.g.Position().String())
		}
	}
}

func (h *Handler) handleUCI() {
	fmt.Fprintln(h.out, "id name rosecore")
	fmt.Fprintln(h.out, "id author rosecore contributors")
	fmt.Fprintln(h.out, "option name Hash type spin default 64 min 1 max 65536")
	fmt.Fprintln(h.out, "option name Threads type spin default 1 min 1 max 256")
	fmt.Fprintln(h.out, "option name EvalFile type string default <empty>")
	fmt.Fprintln(h.out, "option name MultiPV type spin default 1 min 1 max 500")
	fmt.Fprintln(h.out, "option name Move Overhead type spin default 10 min 0 max 5000")
	fmt.Fprintln(h.out, "uciok")
}

func (h *Handler) handleNewGame() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.g.SetStartpos()
	h.tt.Clear()
	h.solo.ClearForNewGame()
}

// handlePosition implements "position startpos [moves ...]" and
// "position fen <fen> [moves ...]".
func (h *Handler) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	var moveStart int
	switch args[0] {
	case "startpos":
		h.g.SetStartpos()
		moveStart = 1
	case "fen":
		end := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				end = i
				break
			}
		}
		pos, err := board.ParseFEN(strings.Join(args[1:end], " "))
		if err != nil {
			fmt.Fprintf(h.out, "info string invalid fen: %v\n", err)
			return
		}
		h.g.SetPosition(pos)
		moveStart = end
	default:
		return
	}

	for i := moveStart; i < len(args); i++ {
		if args[i] == "moves" {
			continue
		}
		m, err := ParseUCIMove(args[i], h.g.Position())
		if err != nil {
			fmt.Fprintf(h.out, "info string %v\n", err)
			return
		}
		h.g.Move(m)
	}
}

// ParseUCIMove resolves long-algebraic move text against pos's legal
// moves, returning ErrIllegalMove if it matches no legal move (as
// opposed to board.ParseMove, which only checks syntax).
func ParseUCIMove(text string, pos *board.Position) (board.Move, error) {
	m, err := board.ParseMove(text, pos)
	if err != nil {
		return board.NoMove, err
	}
	legal := board.GenerateLegalMoves(pos)
	if !legal.Contains(m) {
		return board.NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	return m, nil
}

// goOptions is the parsed form of a "go" command's arguments.
type goOptions struct {
	depth     int
	movetime  time.Duration
	wtime     time.Duration
	btime     time.Duration
	winc      time.Duration
	binc      time.Duration
	movestogo int
	infinite  bool
}

func parseGoOptions(args []string) goOptions {
	var o goOptions
	atoi := func(s string) int { n, _ := strconv.Atoi(s); return n }
	for i := 0; i < len(args); i++ {
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return "0"
		}
		switch args[i] {
		case "depth":
			o.depth = atoi(next())
		case "movetime":
			o.movetime = time.Duration(atoi(next())) * time.Millisecond
		case "wtime":
			o.wtime = time.Duration(atoi(next())) * time.Millisecond
		case "btime":
			o.btime = time.Duration(atoi(next())) * time.Millisecond
		case "winc":
			o.winc = time.Duration(atoi(next())) * time.Millisecond
		case "binc":
			o.binc = time.Duration(atoi(next())) * time.Millisecond
		case "movestogo":
			o.movestogo = atoi(next())
		case "infinite":
			o.infinite = true
		}
	}
	return o
}

// control turns a parsed "go" command plus the side to move's clock
// into a SearchControl, splitting the remaining time into a soft
// budget (how long we'd like to think) and a hard budget (the point
// past which we must move), mirroring the teacher's
// calculateTimeForMove but expressed as the two-tier SearchControl
// this core's search loop understands. overhead is "setoption Move
// Overhead" (spec ambient config, no teacher equivalent): it is
// subtracted from both budgets so the engine stops thinking early
// enough to absorb GUI/transport lag before its clock actually expires.
func (o goOptions) control(us board.Color, overhead time.Duration) engine.SearchControl {
	now := time.Now()
	if o.infinite {
		return engine.NoControl{Start: now}
	}
	if o.depth > 0 && o.movetime == 0 && o.wtime == 0 && o.btime == 0 {
		return engine.AllControl{Start: now, Depth: engine.Depth(o.depth)}
	}
	if o.movetime > 0 {
		budget := shrinkByOverhead(o.movetime, overhead)
		return engine.AllControl{Start: now, HardTime: budget, SoftTime: budget}
	}

	ourTime, ourInc := o.wtime, o.winc
	if us == board.Black {
		ourTime, ourInc = o.btime, o.binc
	}
	if ourTime == 0 {
		return engine.AllControl{Start: now, Depth: 6}
	}

	movesToGo := o.movestogo
	if movesToGo <= 0 {
		movesToGo = 30
	}
	soft := shrinkByOverhead(ourTime/time.Duration(movesToGo)+ourInc*9/10, overhead)
	hard := shrinkByOverhead(ourTime*9/10, overhead)
	if soft > hard {
		soft = hard
	}
	return engine.AllControl{Start: now, SoftTime: soft, HardTime: hard, Depth: engine.Depth(o.depth)}
}

// shrinkByOverhead reserves overhead off a time budget without letting
// it go negative (a move overhead larger than the budget just yields an
// immediate-return budget rather than a negative duration).
func shrinkByOverhead(budget, overhead time.Duration) time.Duration {
	budget -= overhead
	if budget < 0 {
		return 0
	}
	return budget
}

func (h *Handler) handleGo(args []string) {
	h.mu.Lock()
	if h.searching {
		h.mu.Unlock()
		return
	}
	h.searching = true
	var stopped atomic.Bool
	h.stopped = &stopped
	ctl := stoppableControl{
		SearchControl: parseGoOptions(args).control(h.g.Position().SideToMove, h.moveOverhead),
		stopped:       &stopped,
	}
	h.done = make(chan struct{})

	threads := h.threads
	multiPV := h.multiPV
	if threads > 1 && multiPV <= 1 {
		h.ensurePoolLocked(threads)
	}
	solo := h.solo
	p := h.p
	if multiPV > 1 {
		p = nil // MultiPV's root-exclusion loop runs serially on solo; see runMultiPV.
	}
	g := h.g
	h.mu.Unlock()

	go func() {
		defer close(h.done)
		var best board.Move
		switch {
		case multiPV > 1:
			best = h.runMultiPV(solo, g, ctl, multiPV)
		case p != nil:
			best = bestOfPool(p.Go(g.Clone(), ctl))
		default:
			best = solo.Run(ctl)
		}
		h.mu.Lock()
		h.searching = false
		h.mu.Unlock()
		fmt.Fprintf(h.out, "bestmove %s\n", best)
	}()
}

// runMultiPV finds up to n distinct best root moves by repeatedly
// running solo with the previously found moves excluded from the root
// move loop (grounded on hailam-chessplay's
// Engine.SearchMultiPV/searchWithExclusions), reporting each as an
// "info multipv <rank> ..." line before returning the first (best) one.
// It stops early if fewer than n legal moves exist at the root.
func (h *Handler) runMultiPV(solo *engine.Search, g *game.Game, ctl engine.SearchControl, n int) board.Move {
	var excluded []board.Move
	var best board.Move
	for rank := 1; rank <= n; rank++ {
		solo.SetExcludedMoves(excluded)
		m := solo.Run(ctl)
		solo.SetExcludedMoves(nil)
		if m == board.NoMove {
			break
		}
		if rank == 1 {
			best = m
		}
		info := solo.LastInfo()
		fmt.Fprintln(h.out, formatMultiPVInfo(rank, info))
		excluded = append(excluded, m)
	}
	return best
}

// formatMultiPVInfo renders one MultiPV line the way uciOutput.Info
// renders a normal one, with the "multipv <rank>" field UCI requires
// once MultiPV is in play.
func formatMultiPVInfo(rank int, info engine.SearchInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d multipv %d", info.Depth, rank)
	if info.Score >= engine.MateInMax {
		fmt.Fprintf(&b, " score mate %d", (engine.MateScore-info.Score+1)/2)
	} else if info.Score <= -engine.MateInMax {
		fmt.Fprintf(&b, " score mate %d", -(engine.MateScore+info.Score+1)/2)
	} else {
		fmt.Fprintf(&b, " score cp %d", info.Score)
	}
	fmt.Fprintf(&b, " nodes %d time %d", info.Nodes, info.Time.Milliseconds())
	if len(info.PV) > 0 {
		parts := make([]string, len(info.PV))
		for i, m := range info.PV {
			parts[i] = m.String()
		}
		fmt.Fprintf(&b, " pv %s", strings.Join(parts, " "))
	}
	return b.String()
}

// ensurePoolLocked lazily (re)builds h.p to have exactly n workers,
// sharing the handler's transposition table and evaluator; callers
// must hold h.mu. Tearing down and rebuilding on every Threads change
// is the simple, correct option since pool resizing happens orders of
// magnitude less often than searches run.
func (h *Handler) ensurePoolLocked(n int) {
	if h.p != nil && h.poolThreads == n {
		return
	}
	if h.p != nil {
		h.p.Stop()
	}
	h.p = pool.New(n, h.tt, h.eval, engine.NullOutput{}, 0)
	h.p.Start()
	h.poolThreads = n
}

// bestOfPool picks the deepest-completed worker's move, breaking ties
// by score, since Pool.Go deliberately leaves that choice to the
// caller rather than baking one policy into the pool itself.
func bestOfPool(results []pool.Result) board.Move {
	var best pool.Result
	found := false
	for _, r := range results {
		if !found || r.Depth > best.Depth || (r.Depth == best.Depth && r.Score > best.Score) {
			best = r
			found = true
		}
	}
	return best.Move
}

func (h *Handler) handleStop() {
	h.mu.Lock()
	searching := h.searching
	stopped := h.stopped
	done := h.done
	h.mu.Unlock()
	if !searching {
		return
	}
	stopped.Store(true)
	// negamax only polls CheckHardTermination every checkEvery nodes, so
	// this is a request the search notices on its next poll, not an
	// instant abort.
	<-done
}

// handlePerft runs "perft <depth>", dividing the count by root move
// across h.threads goroutines and printing one "<move>: <nodes>" line
// per root move followed by the total, matching the teacher's
// handlePerft's Nodes/Time/NPS summary plus a per-move divide.
func (h *Handler) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}

	h.mu.Lock()
	pos := *h.g.Position()
	threads := h.threads
	h.mu.Unlock()

	start := time.Now()
	divide := board.PerftDivide(pos, depth, threads)
	elapsed := time.Since(start)

	var total uint64
	for _, e := range divide {
		fmt.Fprintf(h.out, "%s: %d\n", e.Move, e.Nodes)
		total += e.Nodes
	}
	fmt.Fprintf(h.out, "\nNodes: %d\n", total)
	fmt.Fprintf(h.out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(h.out, "NPS: %.0f\n", float64(total)/elapsed.Seconds())
	}
}

func (h *Handler) handleSetOption(args []string) {
	name, value := parseNameValue(args)
	switch strings.ToLower(name) {
	case "hash":
		if mb, err := strconv.Atoi(value); err == nil && mb > 0 {
			h.mu.Lock()
			h.tt.Resize(mb)
			h.mu.Unlock()
		}
	case "threads":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			h.mu.Lock()
			h.threads = n
			h.mu.Unlock()
		}
	case "evalfile":
		ev, err := nnue.NewEvaluator(value)
		if err != nil {
			fmt.Fprintf(h.out, "info string failed to load EvalFile: %v\n", err)
			return
		}
		h.mu.Lock()
		h.eval = ev
		h.solo = engine.NewSearch(h.g, h.tt, h.eval, &uciOutput{h: h})
		if h.p != nil {
			h.p.Stop()
			h.p = nil
		}
		h.mu.Unlock()
	case "multipv":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			h.mu.Lock()
			h.multiPV = n
			h.mu.Unlock()
		}
	case "move overhead":
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			h.mu.Lock()
			h.moveOverhead = time.Duration(ms) * time.Millisecond
			h.mu.Unlock()
		}
	}
}

func parseNameValue(args []string) (name, value string) {
	var nameParts, valueParts []string
	mode := ""
	for _, a := range args {
		switch a {
		case "name":
			mode = "name"
		case "value":
			mode = "value"
		default:
			switch mode {
			case "name":
				nameParts = append(nameParts, a)
			case "value":
				valueParts = append(valueParts, a)
			}
		}
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

// uciOutput adapts engine.EngineOutput to UCI's "info"/"bestmove"
// text lines.
type uciOutput struct {
	h *Handler
}

func (o *uciOutput) Info(info engine.SearchInfo) {
	var b strings.Builder
	fmt.Fprintf(&b, "info depth %d", info.Depth)
	if info.Score >= engine.MateInMax {
		fmt.Fprintf(&b, " score mate %d", (engine.MateScore-info.Score+1)/2)
	} else if info.Score <= -engine.MateInMax {
		fmt.Fprintf(&b, " score mate %d", -(engine.MateScore+info.Score+1)/2)
	} else {
		fmt.Fprintf(&b, " score cp %d", info.Score)
	}
	fmt.Fprintf(&b, " nodes %d time %d", info.Nodes, info.Time.Milliseconds())
	if info.Time > 0 {
		fmt.Fprintf(&b, " nps %d", int64(float64(info.Nodes)/info.Time.Seconds()))
	}
	if len(info.PV) > 0 {
		parts := make([]string, len(info.PV))
		for i, m := range info.PV {
			parts[i] = m.String()
		}
		fmt.Fprintf(&b, " pv %s", strings.Join(parts, " "))
	}
	fmt.Fprintln(o.h.out, b.String())
}

func (o *uciOutput) BestMove(board.Move) {
	// The "go" goroutine prints bestmove itself once Run returns, since
	// it also needs to flip h.searching back to false first; BestMove is
	// still called by Run for callers (tests, internal/pool) that don't
	// go through this handler.
}
