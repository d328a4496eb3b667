package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBaseURL = "https://api.deepgram.com/v1"
	defaultModel   = "nova-2"
	chunkSize      = 8 * 1024
)

// Config controls Deepgram websocket settings.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool

	// Encoding and SampleRate are only needed for raw audio. Containerized
	// audio (wav, mp3) is detected by Deepgram and leaves them empty.
	Encoding   string
	SampleRate int
}

// Recognizer transcribes a complete recording by streaming it over the
// Deepgram live websocket and collecting final transcript segments.
type Recognizer struct {
	cfg    Config
	dialer *websocket.Dialer
}

func New(cfg Config) *Recognizer {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Recognizer{cfg: cfg, dialer: websocket.DefaultDialer}
}

func (r *Recognizer) Recognize(ctx context.Context, audio io.Reader) (string, error) {
	if strings.TrimSpace(r.cfg.APIKey) == "" {
		return "", errors.New("DEEPGRAM_API_KEY is not configured")
	}
	wsURL, err := buildListenURL(r.cfg)
	if err != nil {
		return "", err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+r.cfg.APIKey)

	conn, resp, err := r.dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("failed to connect to Deepgram websocket: status %d: %w", resp.StatusCode, err)
		}
		return "", fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}
	defer conn.Close()

	g, gctx := errgroup.WithContext(ctx)
	go func() {
		<-gctx.Done()
		_ = conn.Close()
	}()

	g.Go(func() error { return writeAudio(conn, audio) })

	var segments []string
	g.Go(func() error {
		var err error
		segments, err = readTranscript(conn)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	return strings.Join(segments, " "), nil
}

func writeAudio(conn *websocket.Conn, audio io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return fmt.Errorf("failed to send audio: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read audio: %w", err)
		}
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

// readTranscript reads until Deepgram closes the stream and returns the final
// segments in arrival order.
func readTranscript(conn *websocket.Conn) ([]string, error) {
	var segments []string
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if isNormalClose(err) {
				return segments, nil
			}
			return nil, fmt.Errorf("failed to read provider event: %w", err)
		}

		var response deepgramResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}
		if strings.EqualFold(response.Type, "Error") {
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			return nil, errors.New(message)
		}
		if !response.IsFinal {
			continue
		}
		if text := extractTranscript(response); text != "" {
			segments = append(segments, text)
		}
	}
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

type deepgramResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

func extractTranscript(response deepgramResponse) string {
	if len(response.Channel.Alternatives) == 0 {
		return ""
	}
	return strings.TrimSpace(response.Channel.Alternatives[0].Transcript)
}

func buildListenURL(cfg Config) (string, error) {
	base := strings.TrimSpace(cfg.APIBaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	query := listenURL.Query()
	query.Set("model", cfg.Model)
	query.Set("punctuate", "true")
	query.Set("smart_format", fmt.Sprintf("%t", cfg.SmartFormat))
	if cfg.Language != "" {
		query.Set("language", cfg.Language)
	}
	if cfg.Encoding != "" {
		query.Set("encoding", cfg.Encoding)
	}
	if cfg.SampleRate > 0 {
		query.Set("sample_rate", fmt.Sprintf("%d", cfg.SampleRate))
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
