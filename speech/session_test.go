package speech

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSynth records start times and blocks until released or cancelled.
type fakeSynth struct {
	mu      sync.Mutex
	starts  []time.Time
	texts   []string
	started chan struct{}
	release chan struct{}
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (f *fakeSynth) Speak(ctx context.Context, u Utterance) error {
	f.mu.Lock()
	f.starts = append(f.starts, time.Now())
	f.texts = append(f.texts, u.Text)
	f.mu.Unlock()
	f.started <- struct{}{}
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestSessionSpeakToCompletion(t *testing.T) {
	synth := newFakeSynth()
	s := NewSession(synth)
	assert.Equal(t, Idle, s.State())

	errc := make(chan error, 1)
	go func() { errc <- s.Speak(context.Background(), Utterance{Text: "hello"}) }()
	<-synth.started
	assert.Equal(t, Speaking, s.State())

	close(synth.release)
	require.NoError(t, <-errc)
	assert.Equal(t, Idle, s.State())
}

func TestSessionCancel(t *testing.T) {
	synth := newFakeSynth()
	s := NewSession(synth)

	assert.False(t, s.Cancel(), "nothing playing")

	errc := make(chan error, 1)
	go func() { errc <- s.Speak(context.Background(), Utterance{Text: "hello"}) }()
	<-synth.started

	assert.True(t, s.Cancel())
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.Equal(t, Cancelled, s.State())
}

func TestSessionMinimumGapAfterCancel(t *testing.T) {
	const gap = 80 * time.Millisecond
	synth := newFakeSynth()
	s := NewSession(synth, WithMinGap(gap))

	first := make(chan error, 1)
	go func() { first <- s.Speak(context.Background(), Utterance{Text: "one"}) }()
	<-synth.started

	cancelled := time.Now()
	require.True(t, s.Cancel())
	<-first

	second := make(chan error, 1)
	go func() { second <- s.Speak(context.Background(), Utterance{Text: "two"}) }()
	<-synth.started
	synth.mu.Lock()
	started := synth.starts[1]
	synth.mu.Unlock()
	assert.GreaterOrEqual(t, started.Sub(cancelled), gap)

	close(synth.release)
	require.NoError(t, <-second)
	assert.Equal(t, Idle, s.State())
}

func TestSessionSpeakReplacesCurrent(t *testing.T) {
	synth := newFakeSynth()
	s := NewSession(synth, WithMinGap(10*time.Millisecond))

	first := make(chan error, 1)
	go func() { first <- s.Speak(context.Background(), Utterance{Text: "one"}) }()
	<-synth.started

	second := make(chan error, 1)
	go func() { second <- s.Speak(context.Background(), Utterance{Text: "two"}) }()
	assert.ErrorIs(t, <-first, context.Canceled)
	<-synth.started
	assert.Equal(t, Speaking, s.State())

	close(synth.release)
	require.NoError(t, <-second)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, []string{"one", "two"}, synth.texts)
}

func TestSessionEmptyText(t *testing.T) {
	s := NewSession(newFakeSynth())
	assert.ErrorIs(t, s.Speak(context.Background(), Utterance{}), ErrNothingToSay)
	assert.Equal(t, Idle, s.State())
}

func TestSessionContextDone(t *testing.T) {
	synth := newFakeSynth()
	s := NewSession(synth)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- s.Speak(ctx, Utterance{Text: "hello"}) }()
	<-synth.started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.Equal(t, Idle, s.State())
}

func TestCommandArgs(t *testing.T) {
	args := Command{}.Args(Utterance{Text: "नमस्ते", Lang: "hi_IN", Rate: DiagnosisRate})
	assert.Equal(t, []string{"-v", "hi", "-s", "157", "--", "नमस्ते"}, args)

	args = Command{}.Args(Utterance{Text: "hello"})
	assert.Equal(t, []string{"--", "hello"}, args)
}

const espeakVoices = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-gb           --/M      English_(Great_Britain) gmw/en           (en 2)
 2  en-us           --/M      English_(America)  gmw/en-US            (en 3)
 5  hi              --/M      Hindi              inc/hi
 5  ta              --/M      Tamil              dra/ta

`

func TestParseVoices(t *testing.T) {
	voices := ParseVoices([]byte(espeakVoices))
	require.Len(t, voices, 5)
	assert.Equal(t, Voice{Name: "Afrikaans", Lang: "af"}, voices[0])
	assert.Equal(t, Voice{Name: "English_(America)", Lang: "en-us"}, voices[2])

	assert.Empty(t, ParseVoices(nil))
	assert.Empty(t, ParseVoices([]byte("Pty Language Age/Gender VoiceName File\n")))
}

func TestSelectedVoiceDrivesArgs(t *testing.T) {
	voices := ParseVoices([]byte(espeakVoices))

	u := NewUtterance("வணக்கம்", voices, "ta-IN", DiagnosisRate)
	assert.Equal(t, "Tamil", u.Voice.Name)
	assert.Equal(t, []string{"-v", "ta", "-s", "157", "--", "வணக்கம்"}, Command{}.Args(u))

	// no Punjabi voice installed: the regional default is missing too, so the first voice wins
	u = NewUtterance("ਸਤ ਸ੍ਰੀ ਅਕਾਲ", voices, "pa-IN", DiagnosisRate)
	assert.Equal(t, []string{"-v", "af", "-s", "157", "--", "ਸਤ ਸ੍ਰੀ ਅਕਾਲ"}, Command{}.Args(u))

	u = NewUtterance("hello", voices, "en-US", DiagnosisRate)
	assert.Equal(t, []string{"-v", "en-us", "-s", "157", "--", "hello"}, Command{}.Args(u))
}

func TestCommandVoices(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	script := filepath.Join(t.TempDir(), "espeak")
	body := "#!/bin/sh\ncat <<'EOF'\n" + espeakVoices + "EOF\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

	voices, err := Command{Path: script}.Voices(context.Background())
	require.NoError(t, err)
	assert.Len(t, voices, 5)

	_, err = Command{Path: filepath.Join(t.TempDir(), "missing")}.Voices(context.Background())
	assert.Error(t, err)
}
