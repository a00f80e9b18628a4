package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"localizer/internal/domain"
	"localizer/internal/masking"

	"go.uber.org/zap"
)

const (
	defaultEndpoint = "https://api.cognitive.microsofttranslator.com"
	apiVersion      = "3.0"
)

// TokenSource supplies the current bearer token at call time. The client
// treats it as an opaque string and does not manage its refresh.
type TokenSource interface {
	Token() string
}

// Client implements Translator against the Azure Translator HTTP API.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	endpoint   string
	logger     *zap.Logger
}

// NewClient creates a translator client.
func NewClient(tokens TokenSource, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		endpoint:   defaultEndpoint,
		logger:     logger,
	}
}

type translateRequest struct {
	Text string `json:"text"`
}

type translatedText struct {
	Text string `json:"text"`
}

type detectedLanguage struct {
	Language string  `json:"language"`
	Score    float64 `json:"score"`
}

type translateResponse struct {
	DetectedLanguage *detectedLanguage `json:"detectedLanguage"`
	Translations     []translatedText  `json:"translations"`
}

type supportedLanguagesResponse struct {
	Translation map[string]LanguageDetails `json:"translation"`
}

// Translate masks text, calls the backend and restores the masked spans into
// the translated result. Any failure falls back to the original text so the
// relay never drops a message.
func (c *Client) Translate(ctx context.Context, from, to, text string) *domain.Translation {
	c.logger.Debug("translating message",
		zap.String("from", orAuto(from)),
		zap.String("to", to),
	)

	stripped, codeBlocks := masking.StripCodeBlocks(text)

	translated, detected, err := c.translateStripped(ctx, from, to, stripped)
	if err != nil {
		c.logger.Error("unable to translate message, falling back to original text", zap.Error(err))
		translated = text
	} else if from == "" && detected != "" {
		from = detected
	}
	if from == "" {
		from = "unknown"
	}

	return &domain.Translation{
		Original:   domain.LocalText{Language: from, Text: text},
		Translated: domain.LocalText{Language: to, Text: translated},
		CodeBlocks: codeBlocks,
	}
}

func (c *Client) translateStripped(ctx context.Context, from, to, text string) (translated, detected string, err error) {
	masked, spans := masking.StripInline(text)

	query := url.Values{}
	query.Set("api-version", apiVersion)
	query.Set("to", to)
	if strings.TrimSpace(from) != "" {
		query.Set("from", from)
	}

	body, err := json.Marshal([]translateRequest{{Text: masked}})
	if err != nil {
		return "", "", fmt.Errorf("failed to encode translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/translate?"+query.Encode(), bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("failed to build translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("translation service returned %d: %s", resp.StatusCode, detail)
	}

	var results []translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", "", fmt.Errorf("response is not a valid translation: %w", err)
	}
	if len(results) == 0 || len(results[0].Translations) == 0 {
		return "", "", fmt.Errorf("no translations were returned")
	}

	if results[0].DetectedLanguage != nil {
		detected = results[0].DetectedLanguage.Language
	}

	return masking.Restore(results[0].Translations[0].Text, spans), detected, nil
}

// IsLanguageSupported reports whether the backend can translate to lang.
func (c *Client) IsLanguageSupported(ctx context.Context, lang string) (bool, error) {
	languages, err := c.SupportedLanguages(ctx)
	if err != nil {
		return false, err
	}
	_, ok := languages[strings.ToLower(lang)]
	return ok, nil
}

// SupportedLanguages fetches the backend's translation language set.
func (c *Client) SupportedLanguages(ctx context.Context) (map[string]LanguageDetails, error) {
	query := url.Values{}
	query.Set("api-version", apiVersion)
	query.Set("scope", "translation")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/languages?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build languages request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languages request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("languages request returned %d", resp.StatusCode)
	}

	var parsed supportedLanguagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode languages response: %w", err)
	}

	languages := make(map[string]LanguageDetails, len(parsed.Translation))
	for code, details := range parsed.Translation {
		languages[strings.ToLower(code)] = details
	}
	return languages, nil
}

func orAuto(from string) string {
	if from == "" {
		return "auto"
	}
	return from
}
