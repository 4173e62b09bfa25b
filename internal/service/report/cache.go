package report

import (
	"context"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

const cacheNamePrefix = "cachedContents/"

// resolveCache returns the name of a usable prompt cache, creating one when
// none is configured or the configured one is gone or belongs to another
// model. Returns "" when caching is unavailable; callers then inline the
// static texts. Concurrent requests may each create a cache; at-most-one
// creation is not enforced.
func (s *Service) resolveCache(ctx context.Context) string {
	s.mu.Lock()
	known := s.cacheName
	s.mu.Unlock()
	if known == "" {
		known = s.cfg.PromptCacheName
	}

	if known != "" {
		name := known
		if !strings.HasPrefix(name, cacheNamePrefix) {
			name = cacheNamePrefix + name
		}
		cache, err := s.client.GetCachedContent(ctx, name)
		switch {
		case err != nil:
			log.Printf("prompt cache %s not retrievable: %v; will create a new one", name, err)
		case !strings.HasSuffix(cache.Model, s.cfg.ModelName):
			log.Printf("prompt cache %s is for a different model (%s); will create a new one for %s", name, cache.Model, s.cfg.ModelName)
		default:
			s.rememberCache(cache.Name)
			return cache.Name
		}
	}

	created := s.createCache(ctx)
	if created != "" {
		s.rememberCache(created)
	}
	return created
}

func (s *Service) createCache(ctx context.Context) string {
	model := s.cfg.ModelName
	if strings.HasPrefix(model, "models/") {
		model = strings.TrimPrefix(model, "models/")
	}

	ttl := time.Duration(s.cfg.CacheTTLDays) * 24 * time.Hour
	cache, err := s.client.CreateCachedContent(ctx, model, &genai.CreateCachedContentConfig{
		Contents: []*genai.Content{
			genai.NewContentFromText(s.prompts.StyleGuide(), genai.RoleUser),
			genai.NewContentFromText(s.prompts.ReportStructure(), genai.RoleUser),
		},
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: s.prompts.SystemInstruction()}}},
		TTL:               ttl,
		DisplayName:       s.cfg.CacheDisplayName,
	})
	if err != nil {
		log.Printf("failed to create prompt cache: %v", err)
		return ""
	}

	log.Printf("created prompt cache %s with TTL %s", cache.Name, ttl)
	log.Printf("to reuse this cache across restarts, set REPORT_PROMPT_CACHE_NAME=%q",
		strings.TrimPrefix(cache.Name, cacheNamePrefix))
	return cache.Name
}

func (s *Service) rememberCache(name string) {
	s.mu.Lock()
	s.cacheName = name
	s.mu.Unlock()
}
