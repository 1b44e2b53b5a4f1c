// Package pipeline runs the diagnosis, follow-up and chat workflows:
// prompt, model call, extraction, normalization, then the case transition.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fasaldoc/cases"
	"fasaldoc/diagnosis"
	"fasaldoc/extract"
	"fasaldoc/gateway"
	"fasaldoc/language"
	"fasaldoc/models"
	"fasaldoc/photos"
	"fasaldoc/prompt"
	"fasaldoc/regions"
	"fasaldoc/speech"
)

var (
	// ErrBusy is returned for a second request on a case whose model call
	// is still outstanding.
	ErrBusy         = errors.New("a request for this case is already in progress")
	ErrNoImage      = errors.New("image is required")
	ErrInvalidImage = errors.New("image is not valid base64")
	ErrEmptyMessage = errors.New("message is required")
)

const defaultAssessmentCacheSize = 512

// PhotoArchive stores submitted photos; a nil *photos.Archive satisfies it
// and stores nothing.
type PhotoArchive interface {
	Put(ctx context.Context, owner, kind, imageBase64 string) (string, error)
}

type Service struct {
	gw      gateway.Gateway
	catalog *regions.Catalog
	cases   *cases.Lifecycle
	photos  PhotoArchive
	log     *zap.Logger
	now     func() time.Time

	assessments *lru.Cache[string, models.FollowUpAssessment]
	chats       singleflight.Group

	mu       sync.Mutex
	inflight map[string]struct{}
}

type Option func(*Service)

func WithPhotos(p PhotoArchive) Option {
	return func(s *Service) { s.photos = p }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock replaces time.Now; only the month is used, for season lookup.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(gw gateway.Gateway, catalog *regions.Catalog, lc *cases.Lifecycle, opts ...Option) *Service {
	s := &Service{
		gw:       gw,
		catalog:  catalog,
		cases:    lc,
		photos:   (*photos.Archive)(nil),
		log:      zap.NewNop(),
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if s.photos == nil {
		s.photos = (*photos.Archive)(nil)
	}
	s.assessments, _ = lru.New[string, models.FollowUpAssessment](defaultAssessmentCacheSize)
	return s
}

func (s *Service) Catalog() *regions.Catalog { return s.catalog }
func (s *Service) Cases() *cases.Lifecycle   { return s.cases }

// DiagnoseRequest is one photo submitted for analysis.
type DiagnoseRequest struct {
	Region       string
	Crop         string
	LanguageCode string // empty or unknown means auto
	ImageBase64  string
}

// DiagnoseResult is the normalized diagnosis, the case it opened and what
// to read aloud.
type DiagnoseResult struct {
	Diagnosis models.Diagnosis  `json:"diagnosis"`
	Case      models.CaseRecord `json:"case"`
	Language  string            `json:"language"`
	VoiceTag  string            `json:"voiceTag"`
	Speech    string            `json:"speech"`
}

// Diagnose analyses a crop photo and opens a new ONGOING case.
// GatewayError and ParseError abort before anything is persisted.
func (s *Service) Diagnose(ctx context.Context, owner string, req DiagnoseRequest) (DiagnoseResult, error) {
	img, err := checkImage(req.ImageBase64)
	if err != nil {
		return DiagnoseResult{}, err
	}
	profile := s.catalog.Profile(req.Region)
	lang := language.ResolveCode(req.LanguageCode, profile.DefaultLanguage())

	text := prompt.Diagnosis(prompt.DiagnosisInput{
		Profile:  profile,
		Crop:     req.Crop,
		Language: lang,
		Month:    s.now().Month(),
	})
	raw, err := s.gw.Send(ctx, text, img)
	if err != nil {
		return DiagnoseResult{}, fmt.Errorf("diagnose: %w", err)
	}
	obj, err := extract.Extract(raw)
	if err != nil {
		s.log.Warn("diagnosis response not parseable", zap.String("owner", owner), zap.Int("responseBytes", len(raw)), zap.Error(err))
		return DiagnoseResult{}, fmt.Errorf("diagnose: %w", err)
	}
	d := diagnosis.Normalize(obj, diagnosis.Fallback{CropName: req.Crop})

	key := s.archive(ctx, owner, photos.KindDiagnosis, img)
	rec := s.cases.CreateCase(ctx, owner, d, profile.Name, key)

	return DiagnoseResult{
		Diagnosis: d,
		Case:      rec,
		Language:  lang.Resolved,
		VoiceTag:  profile.Voice(),
		Speech:    speech.Script(d),
	}, nil
}

// FollowUp re-evaluates a case from a new photo. When the model answer can
// not be parsed the case is returned unchanged with a nil assessment.
func (s *Service) FollowUp(ctx context.Context, owner, caseID, imageBase64, languageCode string) (models.CaseRecord, *models.FollowUpAssessment, error) {
	img, err := checkImage(imageBase64)
	if err != nil {
		return models.CaseRecord{}, nil, err
	}
	release, err := s.acquire(owner, caseID)
	if err != nil {
		return models.CaseRecord{}, nil, err
	}
	defer release()

	rec, err := s.cases.Get(ctx, owner, caseID)
	if err != nil {
		return models.CaseRecord{}, nil, err
	}
	profile := s.catalog.Profile(rec.Region)
	lang := language.ResolveCode(languageCode, profile.DefaultLanguage())

	raw, err := s.gw.Send(ctx, prompt.FollowUp(rec, lang), img)
	if err != nil {
		return models.CaseRecord{}, nil, fmt.Errorf("follow-up: %w", err)
	}
	s.archive(ctx, owner, photos.KindFollowUp, img)

	obj, err := extract.Extract(raw)
	if err != nil {
		s.log.Warn("follow-up response not parseable; case left unchanged",
			zap.String("owner", owner), zap.String("case", caseID), zap.Error(err))
		return rec, nil, nil
	}
	a := diagnosis.NormalizeFollowUp(obj)
	updated, err := s.cases.ApplyFollowUp(ctx, owner, caseID, a)
	if err != nil {
		return models.CaseRecord{}, nil, err
	}
	s.assessments.Add(assessmentKey(owner, caseID), a)
	s.log.Info("follow-up applied", zap.String("case", caseID),
		zap.String("from", string(rec.Status)), zap.String("to", string(updated.Status)))
	return updated, &a, nil
}

// LastAssessment returns the most recent follow-up shown for a case, if it
// is still cached.
func (s *Service) LastAssessment(owner, caseID string) (models.FollowUpAssessment, bool) {
	return s.assessments.Get(assessmentKey(owner, caseID))
}

// ForgetAssessments drops the owner's cached assessments, e.g. after a bulk clear.
func (s *Service) ForgetAssessments(owner string) {
	prefix := owner + "/"
	for _, k := range s.assessments.Keys() {
		if strings.HasPrefix(k, prefix) {
			s.assessments.Remove(k)
		}
	}
}

// ChatRequest is one free-text question to the assistant.
type ChatRequest struct {
	Region       string
	Crop         string
	LanguageCode string
	Message      string
}

type ChatReply struct {
	Reply    string `json:"reply"`
	Language string `json:"language"`
	VoiceTag string `json:"voiceTag"`
}

// Chat answers a farmer question. Identical questions in flight at the same
// time share one model call.
func (s *Service) Chat(ctx context.Context, owner string, req ChatRequest) (ChatReply, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return ChatReply{}, ErrEmptyMessage
	}
	profile := s.catalog.Profile(req.Region)
	lang := language.ResolveCode(req.LanguageCode, profile.DefaultLanguage())
	text := prompt.Chat(prompt.ChatInput{
		Profile:  profile,
		Crop:     req.Crop,
		Language: lang,
		Month:    s.now().Month(),
		Message:  msg,
	})

	// The shared call outlives any one caller; each caller waits on its own ctx.
	key := owner + "\x00" + text
	ch := s.chats.DoChan(key, func() (any, error) {
		return s.gw.Send(context.WithoutCancel(ctx), text, "")
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return ChatReply{}, fmt.Errorf("chat: %w", ctx.Err())
	}
	if res.Err != nil {
		return ChatReply{}, fmt.Errorf("chat: %w", res.Err)
	}
	if res.Shared {
		s.log.Debug("chat answer shared", zap.String("owner", owner))
	}
	return ChatReply{Reply: strings.TrimSpace(res.Val.(string)), Language: lang.Resolved, VoiceTag: profile.Voice()}, nil
}

// checkImage returns the base64 payload of a photo once it decodes.
func checkImage(imageBase64 string) (string, error) {
	img := photos.StripDataURL(imageBase64)
	if _, err := photos.Decode(img); err != nil {
		if errors.Is(err, photos.ErrEmptyImage) {
			return "", ErrNoImage
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

func (s *Service) acquire(owner, caseID string) (func(), error) {
	key := assessmentKey(owner, caseID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return nil, ErrBusy
	}
	s.inflight[key] = struct{}{}
	return func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}, nil
}

func (s *Service) archive(ctx context.Context, owner, kind, imageBase64 string) string {
	key, err := s.photos.Put(ctx, owner, kind, imageBase64)
	if err != nil {
		s.log.Warn("photo archive failed", zap.String("owner", owner), zap.String("kind", kind), zap.Error(err))
		return ""
	}
	return key
}

func assessmentKey(owner, caseID string) string { return owner + "/" + caseID }
