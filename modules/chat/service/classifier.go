package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"classtime/core/config"
	"classtime/core/constants"
	"classtime/modules/chat/entity"
)

// Prediction is a classified intent and where it came from.
type Prediction struct {
	Intent     string
	Confidence float64
	Source     string
}

// Classifier predicts the intent of a chat message.
type Classifier interface {
	Predict(ctx context.Context, text string) (*Prediction, error)
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type httpClassifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClassifier calls POST {URL}/predict on the intent model service.
func NewHTTPClassifier(cfg config.ClassifierConfig) Classifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.ClassifierTimeout
	}
	return &httpClassifier{
		endpoint: strings.TrimRight(cfg.URL, "/") + "/predict",
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *httpClassifier) Predict(ctx context.Context, text string) (*Prediction, error) {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classifier returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if out.Intent == "" {
		return nil, fmt.Errorf("classifier returned no intent")
	}

	return &Prediction{Intent: out.Intent, Confidence: out.Confidence, Source: entity.SourceClassifier}, nil
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// FallbackIntent is the keyword matcher used when the classifier is unavailable.
func FallbackIntent(text string) *Prediction {
	lower := strings.ToLower(text)

	intent, confidence := entity.IntentGeneral, 0.5
	switch {
	case containsAny(lower, "find", "search", "looking"):
		intent, confidence = entity.IntentSearchTutor, 0.7
	case containsAny(lower, "booking", "appointment", "schedule"):
		intent, confidence = entity.IntentViewBookings, 0.7
		if containsAny(lower, "cancel", "delete", "remove") {
			intent = entity.IntentCancelBooking
		}
	case containsAny(lower, "cancel"):
		intent, confidence = entity.IntentCancelBooking, 0.7
	}

	return &Prediction{Intent: intent, Confidence: confidence, Source: entity.SourceFallback}
}
