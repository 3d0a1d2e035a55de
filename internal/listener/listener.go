// Package listener exposes the bucket-notification endpoint that turns
// object-store uploads into pipeline runs. MinIO posts one webhook per
// created object; the handler stages the object locally and processes it
// in the background so the store never waits on analysis.
package listener

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"energy-analysis/internal/config"
	"energy-analysis/internal/pipeline"
	"energy-analysis/internal/storage"
)

// Event is the subset of the S3 bucket-notification payload we act on.
type Event struct {
	EventName string `json:"EventName"`
	Records   []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// Server stages notified objects and feeds them into the pipeline.
type Server struct {
	cfg   *config.Config
	pipe  *pipeline.Pipeline
	store *storage.MinioSource
	log   *slog.Logger

	// serializes pipeline runs; uploads can burst.
	mu sync.Mutex
	wg sync.WaitGroup
}

func New(cfg *config.Config, pipe *pipeline.Pipeline, store *storage.MinioSource, log *slog.Logger) *Server {
	return &Server{cfg: cfg, pipe: pipe, store: store, log: log}
}

// Router builds the HTTP surface: the notification endpoint and a
// health probe.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/minio-event", s.handleEvent)
	return router
}

func (s *Server) handleEvent(c *gin.Context) {
	var event Event
	if err := c.ShouldBindJSON(&event); err != nil {
		s.log.Error("rejecting malformed bucket notification", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
		return
	}

	var accepted []string
	for _, record := range event.Records {
		if bucket := s.cfg.ObjectStore.Bucket; bucket != "" && record.S3.Bucket.Name != bucket {
			s.log.Info("ignoring event for foreign bucket", "bucket", record.S3.Bucket.Name)
			continue
		}
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			key = record.S3.Object.Key
		}
		if !strings.HasSuffix(key, ".json") {
			s.log.Info("ignoring non-telemetry object", "object", key)
			continue
		}
		accepted = append(accepted, key)
		s.wg.Add(1)
		go s.process(key)
	}

	c.JSON(http.StatusOK, gin.H{"accepted": accepted, "event": event.EventName})
}

func (s *Server) process(objectName string) {
	defer s.wg.Done()
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	log := s.log.With("object", objectName)

	path, err := s.store.Stage(ctx, objectName)
	if err != nil {
		log.Error("failed to stage object", "error", err)
		return
	}

	var counters pipeline.Counters
	if err := s.pipe.ProcessFile(ctx, path, &counters); err != nil {
		log.Error("failed to process staged object", "error", err)
		return
	}
	log.Info("processed uploaded telemetry",
		"groups", counters.UsableGroups, "skipped_groups", counters.SkippedGroups)
}

// Wait blocks until in-flight processing finishes. Used on shutdown.
func (s *Server) Wait() { s.wg.Wait() }
