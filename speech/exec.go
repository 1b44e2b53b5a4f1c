package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// baseWPM is espeak's default speaking rate; Utterance.Rate scales it.
const baseWPM = 175

// Command speaks through an espeak-compatible binary. Cancelling ctx kills
// the process.
type Command struct {
	Path string // default "espeak-ng"
}

func (c Command) path() string {
	if c.Path == "" {
		return "espeak-ng"
	}
	return c.Path
}

func (c Command) Speak(ctx context.Context, u Utterance) error {
	path := c.path()
	cmd := exec.CommandContext(ctx, path, c.Args(u)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %s", path, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Voices lists the installed voices as reported by --voices.
func (c Command) Voices(ctx context.Context) ([]Voice, error) {
	path := c.path()
	out, err := exec.CommandContext(ctx, path, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("%s --voices: %w", path, err)
	}
	return ParseVoices(out), nil
}

// ParseVoices reads the table printed by espeak --voices:
//
//	Pty Language  Age/Gender VoiceName  File    Other Languages
//	 5  hi        --/M       Hindi      inc/hi
//
// The header and short rows are skipped.
func ParseVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 4 || f[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(f[0]); err != nil {
			continue
		}
		voices = append(voices, Voice{Name: f[3], Lang: f[1]})
	}
	return voices
}

// Args maps an utterance onto espeak flags. A selected voice is passed by
// its language; otherwise the voice is the base language of the utterance tag.
func (c Command) Args(u Utterance) []string {
	args := []string{}
	if lang := strings.TrimSpace(u.Voice.Lang); lang != "" {
		args = append(args, "-v", strings.ToLower(strings.ReplaceAll(lang, "_", "-")))
	} else if lang := strings.TrimSpace(u.Lang); lang != "" {
		base, _, _ := strings.Cut(strings.ReplaceAll(lang, "_", "-"), "-")
		args = append(args, "-v", strings.ToLower(base))
	}
	if u.Rate > 0 {
		args = append(args, "-s", strconv.Itoa(int(u.Rate*baseWPM)))
	}
	return append(args, "--", u.Text)
}
