package report

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"google.golang.org/genai"

	"reportgen/internal/config"
	"reportgen/internal/models"
	"reportgen/internal/prompts"
)

// Service turns an ordered piece list into one outbound generation request.
// Errors never escape as Go errors to the transport layer: every failure comes
// back as an "Error:"-prefixed string the caller inspects.
type Service struct {
	cfg     *config.Settings
	client  GenerativeClient
	prompts *prompts.Store

	mu        sync.Mutex
	cacheName string

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewService builds the assembler. client may be nil when no API key is
// configured; Generate then reports the missing configuration.
func NewService(cfg *config.Settings, client GenerativeClient, store *prompts.Store) *Service {
	return &Service{cfg: cfg, client: client, prompts: store, sleep: time.Sleep}
}

// Generate assembles the prompt from the aggregated pieces, calls the remote
// model, and returns the plain-text report. All failure modes return an
// "Error:"-prefixed string instead.
func (s *Service) Generate(ctx context.Context, pieces []models.ReportPiece) string {
	if s.client == nil {
		log.Printf("generation requested but no API key is configured")
		return "Error: LLM service is not configured (API key missing)."
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	cacheName := s.resolveCache(ctx)
	if cacheName == "" {
		log.Printf("proceeding without prompt caching; static texts will be inlined")
	}

	var parts []*genai.Part
	if cacheName == "" {
		parts = append(parts,
			genai.NewPartFromText(s.prompts.StyleGuide()),
			genai.NewPartFromText("\n\n"),
			genai.NewPartFromText(s.prompts.ReportStructure()),
			genai.NewPartFromText("\n\n"),
			genai.NewPartFromText(s.prompts.SystemInstruction()),
			genai.NewPartFromText("\n\n"),
		)
	}

	var uploaded []*genai.File
	for _, piece := range pieces {
		switch piece.Type {
		case models.TypeVision:
			file, err := s.client.UploadFile(ctx, piece.Path, piece.MimeType, piece.Filename)
			if err != nil {
				log.Printf("failed to upload file %s to the staging area: %v", piece.Filename, err)
				parts = append(parts, genai.NewPartFromText(fmt.Sprintf(
					"\n\n[AVVISO: Il file %s non ha potuto essere caricato per l'analisi.]\n\n", piece.Filename)))
				continue
			}
			log.Printf("uploaded %s (%s) as %s", piece.Filename, piece.MimeType, file.Name)
			uploaded = append(uploaded, file)
		case models.TypeText:
			if piece.Content == "" {
				continue
			}
			parts = append(parts,
				genai.NewPartFromText(fmt.Sprintf("--- INIZIO CONTENUTO DA FILE: %s ---\n", piece.Filename)),
				genai.NewPartFromText(piece.Content),
				genai.NewPartFromText(fmt.Sprintf("\n--- FINE CONTENUTO DA FILE: %s ---\n\n", piece.Filename)),
			)
		case models.TypeError:
			parts = append(parts, genai.NewPartFromText(fmt.Sprintf(
				"\n\n[AVVISO: Problema durante l'elaborazione del file %s: %s]\n\n", piece.Filename, piece.Message)))
		case models.TypeUnsupported:
			parts = append(parts, genai.NewPartFromText(fmt.Sprintf(
				"\n\n[AVVISO: Il file %s è di un tipo non supportato e non può essere processato: %s]\n\n", piece.Filename, piece.Message)))
		}
	}

	defer s.cleanupUploads(uploaded)

	for _, file := range uploaded {
		parts = append(parts, genai.NewPartFromURI(file.URI, file.MIMEType))
	}

	instruction := "\n\nAnalizza TUTTI i documenti e testi forniti (sia quelli caricati come file referenziati, sia quelli inclusi direttamente come testo) e genera il report."
	if cacheName != "" {
		instruction += " Utilizza le istruzioni di stile, struttura e sistema precedentemente cachate."
	} else {
		instruction += " Utilizza le istruzioni di stile, struttura e sistema fornite all'inizio di questo prompt."
	}
	parts = append(parts, genai.NewPartFromText(instruction))

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(s.cfg.Temperature),
		MaxOutputTokens: s.cfg.MaxOutputTokens,
		SafetySettings:  safetySettings(),
	}
	if cacheName != "" {
		genCfg.CachedContent = cacheName
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := s.generateWithRetry(ctx, contents, genCfg)
	if err != nil {
		log.Printf("generation API error after %d attempts: %v", s.cfg.RetryAttempts, err)
		return fmt.Sprintf("Error: report generation failed due to an LLM API issue: %v", err)
	}

	return triageResponse(resp)
}

// generateWithRetry wraps the remote call in a bounded retry with a fixed
// wait, per the configured attempt count.
func (s *Service) generateWithRetry(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		resp, err := s.client.GenerateContent(ctx, s.cfg.ModelName, contents, cfg)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, lastErr
		}
		if attempt < s.cfg.RetryAttempts {
			log.Printf("generation attempt %d/%d failed: %v; retrying in %ds", attempt, s.cfg.RetryAttempts, err, s.cfg.RetryWaitSeconds)
			s.sleep(time.Duration(s.cfg.RetryWaitSeconds) * time.Second)
		}
	}
	return nil, lastErr
}

// triageResponse extracts the report text or maps the failure shape to a
// distinct user-facing error string.
func triageResponse(resp *genai.GenerateContentResponse) string {
	var text string
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				text += part.Text
			}
		}
	}
	if text != "" {
		log.Printf("report content successfully generated (%d chars)", len(text))
		return text
	}

	if resp.PromptFeedback != nil {
		reason := string(resp.PromptFeedback.BlockReason)
		if reason != "" && reason != string(genai.BlockedReasonUnspecified) {
			log.Printf("content generation blocked: %s", reason)
			return fmt.Sprintf("Error: Content generation blocked by the LLM. Reason: %s", reason)
		}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		switch finish := resp.Candidates[0].FinishReason; finish {
		case genai.FinishReasonMaxTokens:
			log.Printf("content generation stopped at the output token limit")
			return "Error: Content generation reached maximum token limit. The generated text may be incomplete."
		case genai.FinishReasonStop, "":
			return "Error: LLM generation completed, but no usable text was found in the response."
		default:
			log.Printf("content generation stopped for reason %s", finish)
			return fmt.Sprintf("Error: LLM generation stopped for reason: %s.", finish)
		}
	}
	return "Error: Unknown issue with LLM response, no text content received."
}

// cleanupUploads removes files staged for this call from the remote service.
// Best effort: failures are logged, not retried, and never affect the result.
func (s *Service) cleanupUploads(uploaded []*genai.File) {
	if len(uploaded) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, file := range uploaded {
		if err := s.client.DeleteFile(ctx, file.Name); err != nil {
			log.Printf("failed to delete staged file %s: %v", file.Name, err)
			continue
		}
		log.Printf("deleted staged file %s", file.Name)
	}
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

// IsErrorResult reports whether a generation result string is one of the
// error-prefixed failures rather than report content.
func IsErrorResult(result string) bool {
	return len(result) >= 6 && result[:6] == "Error:"
}
