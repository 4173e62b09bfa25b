package report

import (
	"context"

	"google.golang.org/genai"
)

// GenerativeClient is the slice of the remote generation API the service
// needs: content generation, the prompt cache, and the file staging area.
type GenerativeClient interface {
	GetCachedContent(ctx context.Context, name string) (*genai.CachedContent, error)
	CreateCachedContent(ctx context.Context, model string, cfg *genai.CreateCachedContentConfig) (*genai.CachedContent, error)
	UploadFile(ctx context.Context, path, mimeType, displayName string) (*genai.File, error)
	DeleteFile(ctx context.Context, name string) error
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type geminiClient struct {
	inner *genai.Client
}

// NewGeminiClient builds the real client against the Gemini API.
func NewGeminiClient(ctx context.Context, apiKey string) (GenerativeClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &geminiClient{inner: client}, nil
}

func (g *geminiClient) GetCachedContent(ctx context.Context, name string) (*genai.CachedContent, error) {
	return g.inner.Caches.Get(ctx, name, nil)
}

func (g *geminiClient) CreateCachedContent(ctx context.Context, model string, cfg *genai.CreateCachedContentConfig) (*genai.CachedContent, error) {
	return g.inner.Caches.Create(ctx, model, cfg)
}

func (g *geminiClient) UploadFile(ctx context.Context, path, mimeType, displayName string) (*genai.File, error) {
	return g.inner.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
}

func (g *geminiClient) DeleteFile(ctx context.Context, name string) error {
	_, err := g.inner.Files.Delete(ctx, name, nil)
	return err
}

func (g *geminiClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.inner.Models.GenerateContent(ctx, model, contents, cfg)
}
