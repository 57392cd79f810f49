package cluster

import (
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/peregrine-chess/peregrine/pkg/chess"
	"github.com/peregrine-chess/peregrine/pkg/engine"
)

// Master is the root-splitting strategy: it orders the root moves and
// keeps every connected worker busy with one child position at a time.
// Workers report from their own side's perspective, so scores negate
// on the way back. With no workers attached the fallback searcher
// runs the whole node locally.
type Master struct {
	engine   *engine.Engine
	fallback engine.NodeSearcher
	workers  []*workerLink
	results  chan workerReply
	session  uuid.UUID
	log      zerolog.Logger
}

type workerLink struct {
	id   int
	rw   io.ReadWriter
	dead bool
}

type workerReply struct {
	id  int
	res Result
	err error
}

func NewMaster(e *engine.Engine, fallback engine.NodeSearcher, conns []io.ReadWriter, log zerolog.Logger) *Master {
	var m = &Master{
		engine:   e,
		fallback: fallback,
		results:  make(chan workerReply, len(conns)+1),
		session:  uuid.New(),
		log:      log,
	}
	for i, rw := range conns {
		var link = &workerLink{id: i, rw: rw}
		m.workers = append(m.workers, link)
		go m.readReplies(link)
	}
	m.log.Info().
		Str("session", m.session.String()).
		Int("workers", len(conns)).
		Msg("cluster master ready")
	return m
}

// readReplies pumps one worker's result frames into the shared
// channel, so the dispatch loop blocks on "a reply from any worker".
func (m *Master) readReplies(link *workerLink) {
	for {
		var res, err = readResult(link.rw)
		m.results <- workerReply{id: link.id, res: res, err: err}
		if err != nil {
			return
		}
	}
}

func (m *Master) RootSearch(pos *chess.Position, depth int) engine.SearchResult {
	var ml = chess.GenerateLegalMoves(pos)
	if len(ml) == 0 {
		var score = 0
		if pos.IsCheck() {
			score = -engine.MateScore
		}
		return engine.SearchResult{Score: score}
	}
	engine.SortMoves(pos, ml, chess.MoveEmpty)

	var live = m.liveWorkers()
	if len(live) == 0 {
		return m.fallback.SearchNode(pos, -engine.Infinite, engine.Infinite, depth, 0)
	}

	var best = engine.SearchResult{Score: -engine.Infinite}
	var busyMove = make(map[int]chess.Move)
	var moveIdx, completed = 0, 0

	for _, link := range live {
		if moveIdx < len(ml) {
			if m.sendWork(link, pos, ml[moveIdx], depth) {
				busyMove[link.id] = ml[moveIdx]
				moveIdx++
			}
		} else {
			m.send(link, Dispatch{Idle: true})
		}
	}

	for completed < len(ml) {
		if len(busyMove) == 0 {
			// every remaining worker failed before taking the rest
			// of the move list
			m.log.Error().
				Str("session", m.session.String()).
				Msg("no live workers left, aborting iteration")
			return best
		}
		var reply = <-m.results
		if reply.err != nil {
			m.markDead(reply.id, reply.err)
			if _, busy := busyMove[reply.id]; busy {
				// no recovery for a lost work item
				m.log.Error().
					Str("session", m.session.String()).
					Int("worker", reply.id).
					Msg("worker lost with work in flight, aborting iteration")
				return best
			}
			continue
		}

		var rootMove = busyMove[reply.id]
		delete(busyMove, reply.id)
		completed++

		m.engine.Globals().AddNodes(int64(reply.res.NodesDelta))

		var pv = make([]chess.Move, 0, len(reply.res.PV)+1)
		pv = append(pv, rootMove)
		for _, v := range reply.res.PV {
			pv = append(pv, chess.MoveFromValue16(v))
		}
		var score = -int(reply.res.Score)
		if score > best.Score {
			best = engine.SearchResult{Score: score, PV: pv}
		}

		var link = m.workers[reply.id]
		if moveIdx < len(ml) {
			if m.sendWork(link, pos, ml[moveIdx], depth) {
				busyMove[link.id] = ml[moveIdx]
				moveIdx++
			}
		} else {
			m.send(link, Dispatch{Idle: true})
		}
	}
	return best
}

func (m *Master) sendWork(link *workerLink, pos *chess.Position, move chess.Move, depth int) bool {
	var child chess.Position
	pos.MakeMove(move, &child)
	return m.send(link, Dispatch{FEN: child.String(), Depth: depth})
}

func (m *Master) send(link *workerLink, d Dispatch) bool {
	if link.dead {
		return false
	}
	if err := writeDispatch(link.rw, d); err != nil {
		m.markDead(link.id, err)
		return false
	}
	return true
}

func (m *Master) markDead(id int, err error) {
	var link = m.workers[id]
	if link.dead {
		return
	}
	link.dead = true
	m.log.Error().
		Str("session", m.session.String()).
		Int("worker", id).
		Err(err).
		Msg("worker connection failed")
}

func (m *Master) liveWorkers() []*workerLink {
	var result []*workerLink
	for _, link := range m.workers {
		if !link.dead {
			result = append(result, link)
		}
	}
	return result
}

// Close ends the session: every worker receives a terminate frame and
// closable connections are closed so the reply pumps drain out.
func (m *Master) Close() {
	for _, link := range m.workers {
		m.send(link, Dispatch{Terminate: true})
		if c, ok := link.rw.(io.Closer); ok {
			c.Close()
		}
	}
}

// AcceptWorkers collects n worker connections from ln.
func AcceptWorkers(ln net.Listener, n int, log zerolog.Logger) ([]io.ReadWriter, error) {
	var conns = make([]io.ReadWriter, 0, n)
	for len(conns) < n {
		var conn, err = ln.Accept()
		if err != nil {
			return nil, err
		}
		log.Info().Str("remote", conn.RemoteAddr().String()).Msg("worker connected")
		conns = append(conns, conn)
	}
	return conns, nil
}
