package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsift/finsift/crawler"
	"github.com/finsift/finsift/models"
)

// crawlStore holds all in-flight and completed crawl jobs.
var crawlStore sync.Map

func init() {
	// Background goroutine to expire crawl jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			crawlStore.Range(func(key, value any) bool {
				job := value.(*models.CrawlJob)
				if job.CreatedAt < cutoff {
					crawlStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// PostCrawl returns a handler for POST /api/v1/crawl.
func PostCrawl(cr *crawler.Crawler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CrawlRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		jobID := "crawl-" + randomID()
		job := &models.CrawlJob{
			ID:            jobID,
			Status:        "processing",
			CreatedAt:     time.Now().Unix(),
			WebhookURL:    req.WebhookURL,
			WebhookSecret: req.WebhookSecret,
		}
		crawlStore.Store(jobID, job)

		// Launch BFS crawl in background. The crawl outlives the HTTP
		// request, so it gets its own context.
		go cr.Run(context.Background(), job, req)

		c.JSON(http.StatusOK, models.CrawlResponse{
			ID:     jobID,
			Status: "processing",
		})
	}
}

// GetCrawl returns a handler for GET /api/v1/crawl/:id.
func GetCrawl() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := crawlStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "crawl job not found",
				},
			})
			return
		}

		job := val.(*models.CrawlJob)
		c.JSON(http.StatusOK, job.Snapshot())
	}
}

// activeCrawls counts jobs still processing, for the health endpoint.
func activeCrawls() int {
	n := 0
	crawlStore.Range(func(_, value any) bool {
		if value.(*models.CrawlJob).Snapshot().Status == "processing" {
			n++
		}
		return true
	})
	return n
}

func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
