package relay

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"auralis/etc"
	"auralis/stt"
	"auralis/translate"
)

// Phase is the recording session's position in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProcessing
	PhaseClosed
)

// Sink receives the accumulated transcript when a recording ends.
type Sink interface {
	AppendTranscript(ctx context.Context, sessionID int64, text string) error
}

// Options wires a session's collaborators. Translator and Sink may be
// nil; translation and persistence are then skipped.
type Options struct {
	Recognizer stt.Recognizer
	Translator translate.Translator
	Sink       Sink

	// RecordID binds the recording to a stored therapy session. Zero
	// means unbound; the transcript is delivered over the channel only.
	RecordID int64

	// TargetLanguage is the desired output language for final events.
	TargetLanguage string

	// PartialChunkCount is how many streamed binary chunks accumulate
	// before an interim recognition pass runs.
	PartialChunkCount int

	Logger *log.Logger
}

// Session owns one client channel and its recording state. All state is
// confined to the Run goroutine; sessions share nothing.
type Session struct {
	id   string
	ch   Channel
	opts Options

	phase      Phase
	language   string
	transcript []string
	chunkBuf   [][]byte
	utterances int
	persisted  bool

	logger *log.Logger
}

func NewSession(ch Channel, opts Options) *Session {
	if opts.PartialChunkCount <= 0 {
		opts.PartialChunkCount = 10
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	id := etc.NewFreshID()
	return &Session{
		id:       id,
		ch:       ch,
		opts:     opts,
		phase:    PhaseIdle,
		language: "auto",
		logger:   opts.Logger.With("session", id),
	}
}

// Run drives the session until the channel closes. It reads one message
// at a time, so a second audio payload arriving mid-utterance queues in
// the channel and is picked up in arrival order once the current engine
// call completes. The engine never sees two concurrent calls for one
// session.
func (s *Session) Run(ctx context.Context) {
	defer s.ch.Close()

	s.deliver(Connected())
	s.logger.Info("session opened", "record", s.opts.RecordID)

	for {
		frame, err := s.ch.Receive()
		if err != nil {
			break
		}

		if frame.Binary {
			s.handleChunk(ctx, frame.Data)
			continue
		}

		msg, err := ParseInbound(frame.Data)
		if err != nil {
			s.deliver(Error(err.Error()))
			continue
		}

		switch msg.Type {
		case MsgSetLanguage:
			s.handleSetLanguage(msg.Language)
		case MsgAudioFile:
			s.handleAudioFile(ctx, msg)
		case MsgStop:
			s.handleStop(ctx)
		default:
			s.deliver(Error("unknown message type: " + msg.Type))
		}
	}

	s.finish(ctx)
	s.logger.Info("session closed", "utterances", s.utterances)
}

// handleSetLanguage updates the recognition language for subsequent
// utterances. Because messages are handled strictly in order, a change
// can never retag an in-flight engine call.
func (s *Session) handleSetLanguage(lang string) {
	if s.phase == PhaseClosed {
		s.deliver(Error("recording already stopped"))
		return
	}
	if lang == "" {
		s.deliver(Error("set_language requires a language"))
		return
	}
	s.language = lang
	s.logger.Info("language set", "language", lang)
	s.deliver(LanguageChanged(lang))
}

func (s *Session) handleAudioFile(ctx context.Context, msg Inbound) {
	if s.phase == PhaseClosed {
		s.deliver(Error("recording already stopped"))
		return
	}

	audio, err := msg.AudioBytes()
	if err != nil {
		s.deliver(Error(err.Error()))
		return
	}

	format := msg.Format
	if format == "" {
		format = "m4a"
	}

	s.phase = PhaseProcessing
	s.deliver(Processing("transcribing audio"))

	text, lang, ok := s.recognize(ctx, audio, format, true)
	s.phase = PhaseIdle
	if !ok {
		return
	}

	s.utterances++
	s.transcript = append(s.transcript, text)
	s.deliver(Final(text, lang))
}

// handleChunk buffers streamed binary audio and runs an interim
// recognition pass whenever enough has accumulated. Each pass consumes
// its buffer, so passes cover disjoint audio.
func (s *Session) handleChunk(ctx context.Context, data []byte) {
	if s.phase == PhaseClosed {
		s.deliver(Error("recording already stopped"))
		return
	}

	s.chunkBuf = append(s.chunkBuf, data)
	if len(s.chunkBuf) < s.opts.PartialChunkCount {
		return
	}

	audio := s.drainChunks()
	s.phase = PhaseProcessing
	text, _, ok := s.recognize(ctx, audio, "wav", false)
	s.phase = PhaseIdle
	if !ok {
		return
	}

	s.transcript = append(s.transcript, text)
	s.deliver(Partial(text))
}

// handleStop flushes any buffered chunks as a final utterance, hands the
// transcript to the sink, and moves the session to its terminal phase.
// The channel stays open so late messages get a proper error event.
func (s *Session) handleStop(ctx context.Context) {
	if s.phase == PhaseClosed {
		return
	}

	if len(s.chunkBuf) > 0 {
		audio := s.drainChunks()
		s.phase = PhaseProcessing
		text, lang, ok := s.recognize(ctx, audio, "wav", true)
		s.phase = PhaseIdle
		if ok {
			s.utterances++
			s.transcript = append(s.transcript, text)
			s.deliver(Final(text, lang))
		}
	}

	s.phase = PhaseClosed
	s.persist(ctx)
	s.logger.Info("recording stopped")
}

// recognize runs one engine call and optional translation. It reports
// failures to the client as error events and returns ok=false; the
// session stays usable for a retry.
func (s *Session) recognize(
	ctx context.Context,
	audio []byte,
	format string,
	translated bool,
) (text, lang string, ok bool) {
	res, err := s.opts.Recognizer.Recognize(ctx, audio, format, LanguageCode(s.language))
	if err != nil {
		s.logger.Error("recognition failed", "error", err)
		s.deliver(Error("recognition failed: " + err.Error()))
		return "", "", false
	}

	text = res.Text
	lang = res.Language
	if lang == "" {
		lang = LanguageCode(s.language)
	}

	if translated {
		text = s.maybeTranslate(ctx, text, lang)
	}
	return text, lang, true
}

// maybeTranslate converts recognized text to the target language. On
// translation failure the original text is delivered; partial
// functionality beats silence.
func (s *Session) maybeTranslate(ctx context.Context, text, detected string) string {
	target := LanguageCode(s.opts.TargetLanguage)
	if s.opts.Translator == nil || target == "" {
		return text
	}
	if detected == "" || detected == "auto" || detected == target {
		return text
	}

	translated, err := s.opts.Translator.Translate(ctx, text, detected, target)
	if err != nil {
		s.logger.Warn("translation failed, delivering original", "error", err)
		return text
	}
	return translated
}

func (s *Session) drainChunks() []byte {
	var size int
	for _, c := range s.chunkBuf {
		size += len(c)
	}
	audio := make([]byte, 0, size)
	for _, c := range s.chunkBuf {
		audio = append(audio, c...)
	}
	s.chunkBuf = nil
	return audio
}

// persist hands the accumulated transcript to the CRUD layer, once.
func (s *Session) persist(ctx context.Context) {
	if s.persisted || s.opts.Sink == nil || s.opts.RecordID == 0 {
		return
	}
	if len(s.transcript) == 0 {
		return
	}
	s.persisted = true

	text := strings.Join(s.transcript, "\n")
	if err := s.opts.Sink.AppendTranscript(ctx, s.opts.RecordID, text); err != nil {
		s.logger.Error("transcript hand-off failed", "error", err)
	}
}

// finish runs when the channel goes away, for any reason.
func (s *Session) finish(ctx context.Context) {
	s.phase = PhaseClosed
	s.persist(ctx)
}

// deliver sends an event, swallowing closed-channel errors: if the
// client is gone there is nothing further to notify.
func (s *Session) deliver(ev Event) {
	if err := s.ch.Send(ev); err != nil {
		s.logger.Debug("event dropped", "type", ev.Type)
	}
}
