// Package gemini はGoogle Gemini APIを使用した画像説明と翻訳のクライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"screenshot_backend/internal/feature/screenshot/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	describePrompt = "Describe this screenshot in one short English sentence. Reply with the sentence only."
)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error)

// GeminiDescriber はGoogle Gemini APIで画像の説明文を生成し、翻訳します。
type GeminiDescriber struct {
	generate generateFunc
	model    string
}

// GeminiDescriberがDescriberを実装していることをコンパイル時に検証します。
var _ usecase.Describer = (*GeminiDescriber)(nil)

// NewGeminiDescriber はADCを使用してGeminiDescriberの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
// model が空の場合は DefaultModel を使用します。
func NewGeminiDescriber(ctx context.Context, model string) (*GeminiDescriber, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiDescriber{
		generate: func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
			return client.Models.GenerateContent(ctx, model, contents, nil)
		},
		model: model,
	}, nil
}

// Describe は画像を英語の1文で説明します。
func (g *GeminiDescriber) Describe(ctx context.Context, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(describePrompt),
		}, genai.RoleUser),
	}
	return g.text(ctx, contents)
}

// Translate は text を language に翻訳します。
func (g *GeminiDescriber) Translate(ctx context.Context, text, language string) (string, error) {
	prompt := fmt.Sprintf(
		"Translate the following English text to %s. Keep comma separated lists comma separated. Reply with the translation only.\n\n%s",
		language, text,
	)
	return g.text(ctx, genai.Text(prompt))
}

func (g *GeminiDescriber) text(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := g.generate(ctx, g.model, contents)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}
	if resp == nil {
		return "", errors.New("gemini API returned no response")
	}
	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", errors.New("gemini API returned empty text")
	}
	return out, nil
}
