package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DiagnosisRate is the playback rate of the diagnosis read-out.
	DiagnosisRate = 0.9

	DefaultMinGap = 100 * time.Millisecond
)

var ErrNothingToSay = errors.New("nothing to say")

// Utterance is one piece of text bound to a voice.
type Utterance struct {
	Text  string
	Voice Voice
	Lang  string
	Rate  float64
}

// NewUtterance selects a voice for target; Lang falls back to target when
// no voice is available.
func NewUtterance(text string, voices []Voice, target string, rate float64) Utterance {
	u := Utterance{Text: text, Lang: target, Rate: rate}
	if v, ok := SelectVoice(voices, target); ok {
		u.Voice = v
		u.Lang = v.Lang
	}
	return u
}

// Synthesizer plays one utterance and blocks until it ends or ctx is done.
type Synthesizer interface {
	Speak(ctx context.Context, u Utterance) error
}

type State int

const (
	Idle State = iota
	Speaking
	Cancelled
)

func (s State) String() string {
	switch s {
	case Speaking:
		return "speaking"
	case Cancelled:
		return "cancelled"
	}
	return "idle"
}

// Session owns a Synthesizer. At most one utterance plays at a time, and
// playback never starts sooner than the minimum gap after a cancellation.
type Session struct {
	synth  Synthesizer
	minGap time.Duration
	log    *zap.Logger

	mu          sync.Mutex
	state       State
	gen         uint64
	stop        context.CancelFunc
	cancelledAt time.Time
}

type SessionOption func(*Session)

func WithMinGap(d time.Duration) SessionOption {
	return func(s *Session) { s.minGap = d }
}

func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

func NewSession(synth Synthesizer, opts ...SessionOption) *Session {
	s := &Session{synth: synth, minGap: DefaultMinGap, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Speak plays u, replacing whatever is playing. It blocks until playback
// ends, is cancelled, or ctx is done.
func (s *Session) Speak(ctx context.Context, u Utterance) error {
	if u.Text == "" {
		return ErrNothingToSay
	}

	s.mu.Lock()
	if s.state == Speaking {
		s.cancelLocked()
	}
	wait := time.Duration(0)
	if !s.cancelledAt.IsZero() {
		wait = s.minGap - time.Since(s.cancelledAt)
	}
	s.gen++
	gen := s.gen
	pctx, stop := context.WithCancel(ctx)
	s.stop = stop
	s.state = Speaking
	s.mu.Unlock()

	defer s.finish(gen, stop)

	if wait > 0 {
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-pctx.Done():
			t.Stop()
			return pctx.Err()
		}
	}
	s.log.Debug("speech start", zap.String("lang", u.Lang), zap.String("voice", u.Voice.Name), zap.Int("chars", len(u.Text)))
	return s.synth.Speak(pctx, u)
}

// Cancel stops the current playback. It reports false when nothing was playing.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Speaking {
		return false
	}
	s.cancelLocked()
	return true
}

func (s *Session) cancelLocked() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	s.state = Cancelled
	s.cancelledAt = time.Now()
}

func (s *Session) finish(gen uint64, stop context.CancelFunc) {
	stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.stop = nil
	if s.state == Speaking {
		s.state = Idle
	}
}
