package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/perodin/parley/internal/sentiment"
)

const sentimentServiceName = "Sentiment Analysis AI Microservice"

type sentimentAPI struct {
	classifier *sentiment.Client
	log        zerolog.Logger
}

// NewSentimentRouter builds the router for the sentiment service.
func NewSentimentRouter(classifier *sentiment.Client, origins []string, log zerolog.Logger) *gin.Engine {
	router := newRouter(origins)

	api := &sentimentAPI{
		classifier: classifier,
		log:        log.With().Str("component", "httpapi").Logger(),
	}

	router.GET("/", api.handleRoot)
	router.GET("/health", api.handleHealth)
	router.POST("/analyze", api.handleAnalyze)
	router.POST("/batch-analyze", api.handleBatchAnalyze)

	return router
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Text       string  `json:"text"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Timestamp  string  `json:"timestamp"`
}

type batchAnalyzeRequest struct {
	Texts []string `json:"texts"`
}

func (a *sentimentAPI) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	if req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "text is required"})
		return
	}

	result, err := a.classifier.Analyze(c.Request.Context(), req.Text)
	if err != nil {
		a.log.Error().Err(err).Int("input_length", len(req.Text)).Msg("analyze failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "analysis failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Text:       req.Text,
		Sentiment:  result.Label,
		Confidence: result.Score,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *sentimentAPI) handleBatchAnalyze(c *gin.Context) {
	var req batchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	results, err := a.classifier.AnalyzeBatch(c.Request.Context(), req.Texts)
	if err != nil {
		if errors.Is(err, sentiment.ErrBatchTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": sentiment.ErrBatchTooLarge.Error()})
			return
		}

		a.log.Error().Err(err).Int("batch_size", len(req.Texts)).Msg("batch analyze failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "batch analysis failed: " + err.Error()})
		return
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	responses := make([]analyzeResponse, 0, len(results))
	for i, result := range results {
		responses = append(responses, analyzeResponse{
			Text:       req.Texts[i],
			Sentiment:  result.Label,
			Confidence: result.Score,
			Timestamp:  timestamp,
		})
	}

	c.JSON(http.StatusOK, gin.H{"results": responses, "count": len(responses)})
}

func (a *sentimentAPI) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"service":      sentimentServiceName,
		"model_loaded": a.classifier.Ready(),
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *sentimentAPI) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": sentimentServiceName,
		"version": "1.0.0",
		"status":  "active",
		"model":   a.classifier.ModelName(),
		"endpoints": gin.H{
			"analyze":       "/analyze - POST: Analyze single text",
			"batch_analyze": "/batch-analyze - POST: Analyze multiple texts",
			"health":        "/health - GET: Check API health",
		},
	})
}
