package config

import (
	"github.com/abcbank/voxteller/pkg/domain/interfaces"
	"github.com/abcbank/voxteller/pkg/service/speech"
	"github.com/urfave/cli/v3"
)

// Speech holds configuration for the speech-to-text and text-to-speech
// collaborators. Both are optional: without them only the text transport
// works.
type Speech struct {
	groqAPIKey     string
	groqModel      string
	deepgramAPIKey string
	deepgramVoice  string
}

// Flags returns CLI flags for speech service configuration
func (s *Speech) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "groq-api-key",
			Usage:       "Groq API key for speech-to-text (disabled when empty)",
			Sources:     cli.EnvVars("VOXTELLER_GROQ_API_KEY", "GROQ_API_KEY"),
			Destination: &s.groqAPIKey,
		},
		&cli.StringFlag{
			Name:        "groq-whisper-model",
			Usage:       "Whisper model for transcription",
			Value:       "whisper-large-v3",
			Sources:     cli.EnvVars("VOXTELLER_GROQ_WHISPER_MODEL"),
			Destination: &s.groqModel,
		},
		&cli.StringFlag{
			Name:        "deepgram-api-key",
			Usage:       "Deepgram API key for text-to-speech (disabled when empty)",
			Sources:     cli.EnvVars("VOXTELLER_DEEPGRAM_API_KEY", "DEEPGRAM_API_KEY"),
			Destination: &s.deepgramAPIKey,
		},
		&cli.StringFlag{
			Name:        "deepgram-voice",
			Usage:       "Deepgram Aura voice model",
			Value:       "aura-asteria-en",
			Sources:     cli.EnvVars("VOXTELLER_DEEPGRAM_VOICE"),
			Destination: &s.deepgramVoice,
		},
	}
}

// Transcriber returns the configured speech-to-text client, or nil when the
// API key is not set.
func (s *Speech) Transcriber() interfaces.Transcriber {
	if s.groqAPIKey == "" {
		return nil
	}
	return speech.NewGroqTranscriber(s.groqAPIKey, speech.WithGroqModel(s.groqModel))
}

// Synthesizer returns the configured text-to-speech client, or nil when the
// API key is not set.
func (s *Speech) Synthesizer() interfaces.Synthesizer {
	if s.deepgramAPIKey == "" {
		return nil
	}
	return speech.NewDeepgramSynthesizer(s.deepgramAPIKey, speech.WithDeepgramVoice(s.deepgramVoice))
}
