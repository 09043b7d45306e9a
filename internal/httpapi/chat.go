package httpapi

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/perodin/parley/internal/chat"
	"github.com/perodin/parley/internal/config"
	"github.com/perodin/parley/internal/core"
	"github.com/perodin/parley/internal/metrics"
)

const chatServiceName = "Conversational AI Microservice"

type chatAPI struct {
	service *chat.Service
	metrics *metrics.Aggregator
	log     zerolog.Logger
}

// NewChatRouter builds the router for the conversational service.
func NewChatRouter(service *chat.Service, aggregator *metrics.Aggregator, origins []string, log zerolog.Logger) *gin.Engine {
	router := newRouter(origins)

	api := &chatAPI{
		service: service,
		metrics: aggregator,
		log:     log.With().Str("component", "httpapi").Logger(),
	}

	router.GET("/", api.handleRoot)
	router.GET("/health", api.handleHealth)
	router.GET("/metrics", api.handleMetrics)
	router.GET("/metrics/prometheus", gin.WrapH(
		promhttp.HandlerFor(aggregator.Gatherer(), promhttp.HandlerOpts{}),
	))
	router.POST("/chat", api.handleChat)

	return router
}

type chatRequest struct {
	Message        string         `json:"message"`
	ConversationID string         `json:"conversation_id"`
	ChatHistory    []core.Message `json:"chat_history"`
}

type chatResponse struct {
	Message        string  `json:"message"`
	ConversationID string  `json:"conversation_id"`
	Timestamp      string  `json:"timestamp"`
	ProcessingTime float64 `json:"processing_time"`
}

func (a *chatAPI) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	result, err := a.service.HandleChat(c.Request.Context(), chat.Request{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		History:        req.ChatHistory,
	})
	if err != nil {
		a.writeChatError(c, err)
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Message:        result.Reply,
		ConversationID: result.ConversationID,
		Timestamp:      result.CompletedAt.Format(time.RFC3339Nano),
		ProcessingTime: round(result.ElapsedSeconds, 3),
	})
}

func (a *chatAPI) writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"detail": "conversational model not loaded, check " + config.GeminiKeyEnv,
		})

	case errors.Is(err, chat.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"detail": chat.ErrEmptyMessage.Error()})

	default:
		detail := "error processing chat"

		var processingErr *chat.ProcessingError
		if errors.As(err, &processingErr) {
			detail = "error processing chat: " + processingErr.Cause.Error()
		}

		c.JSON(http.StatusInternalServerError, gin.H{"detail": detail})
	}
}

func (a *chatAPI) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"service":           chatServiceName,
		"model_loaded":      a.service.ModelLoaded(),
		"graph_ready":       a.service.GraphReady(),
		"gemini_configured": a.service.ModelLoaded(),
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *chatAPI) handleMetrics(c *gin.Context) {
	snapshot := a.metrics.Snapshot()

	cpuPercent := 0.0
	if percents, err := cpu.PercentWithContext(c.Request.Context(), 100*time.Millisecond, false); err == nil && len(percents) > 0 {
		cpuPercent = percents[0]
	}

	system := gin.H{
		"cpu_percent":     round(cpuPercent, 1),
		"memory_total_gb": 0.0,
		"memory_used_gb":  0.0,
		"memory_percent":  0.0,
	}

	if vm, err := mem.VirtualMemoryWithContext(c.Request.Context()); err == nil {
		system["memory_total_gb"] = round(float64(vm.Total)/(1<<30), 2)
		system["memory_used_gb"] = round(float64(vm.Used)/(1<<30), 2)
		system["memory_percent"] = round(vm.UsedPercent, 1)
	}

	c.JSON(http.StatusOK, gin.H{
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": round(snapshot.UptimeSeconds, 2),
		"system":         system,
		"performance": gin.H{
			"total_messages":        snapshot.TotalMessages,
			"total_conversations":   snapshot.TotalConversations,
			"total_processing_time": round(snapshot.TotalProcessingTime, 3),
			"average_response_time": round(snapshot.AverageResponseTime, 3),
			"messages_per_second":   round(float64(snapshot.TotalMessages)/math.Max(snapshot.UptimeSeconds, 1), 2),
		},
		"model": gin.H{
			"name":        a.service.ModelName(),
			"provider":    "Google Generative AI",
			"loaded":      a.service.ModelLoaded(),
			"graph_ready": a.service.GraphReady(),
		},
	})
}

func (a *chatAPI) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":      chatServiceName,
		"version":      "1.0.0",
		"status":       "active",
		"model":        a.service.ModelName(),
		"model_loaded": a.service.ModelLoaded(),
		"endpoints": gin.H{
			"chat":    "/chat - POST: Send message to chatbot",
			"health":  "/health - GET: Check API health",
			"metrics": "/metrics - GET: Performance metrics",
		},
	})
}
