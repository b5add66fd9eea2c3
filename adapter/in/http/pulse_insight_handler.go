package http

import (
	"github.com/gofiber/fiber/v2"

	"pulse_server/core/port/in"
	"pulse_server/pkg/response"
)

type InsightHandler struct {
	service in.InsightService
}

func NewInsightHandler(service in.InsightService) *InsightHandler {
	return &InsightHandler{service: service}
}

func (h *InsightHandler) Register(app fiber.Router) {
	app.Post("/search-keyword", h.SearchKeyword)
	app.Post("/fetch-by-url", h.FetchByURL)
	app.Post("/generate-reply", h.GenerateReply)
	app.Post("/analyze-chatgpt", h.AnalyzeChatGPT)
}

func (h *InsightHandler) SearchKeyword(c *fiber.Ctx) error {
	var req in.SearchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.service.SearchKeyword(requestContext(c), &req)
	if err != nil {
		return err
	}

	body := fiber.Map{
		"posts":        result.Posts,
		"count":        result.Count,
		"refresh_mode": result.RefreshMode,
		"source":       result.Source,
	}
	if result.Analysis != "" {
		body["chatgpt_analysis"] = result.Analysis
	}
	return response.OK(c, body)
}

func (h *InsightHandler) FetchByURL(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := parseBody(c, &req); err != nil {
		return err
	}

	post, err := h.service.FetchByURL(requestContext(c), req.URL)
	if err != nil {
		return err
	}
	return response.OK(c, fiber.Map{"post": post})
}

func (h *InsightHandler) GenerateReply(c *fiber.Ctx) error {
	var req in.ReplyRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.service.GenerateReply(requestContext(c), &req)
	if err != nil {
		return err
	}
	return response.OK(c, fiber.Map{
		"reply":      result.Reply,
		"sentiment":  result.Sentiment,
		"emotion":    result.Emotion,
		"brand_used": result.BrandUsed,
	})
}

func (h *InsightHandler) AnalyzeChatGPT(c *fiber.Ctx) error {
	var req in.AnalyzeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.service.AnalyzePosts(requestContext(c), &req)
	if err != nil {
		return err
	}
	return response.OK(c, fiber.Map{
		"analysis":              result.Analysis,
		"query":                 result.Query,
		"sources_used":          result.SourcesUsed,
		"reddit_posts_analyzed": result.PostsAnalyzed,
	})
}
