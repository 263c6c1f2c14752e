package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"trashvision/internal/classifier"
	"trashvision/internal/domain"
	"trashvision/internal/queue"
	"trashvision/internal/storage"
)

// Resolver finds a working credential/iteration pair and returns the raw
// classification.
type Resolver interface {
	Resolve(ctx context.Context, image []byte) (*classifier.Result, error)
}

// SummaryCache stores normalized summaries keyed by image hash.
type SummaryCache interface {
	Key(image []byte) string
	GetSummary(ctx context.Context, key string) (*domain.Summary, bool, error)
	SetSummary(ctx context.Context, key string, summary domain.Summary) error
}

// Options carries the optional collaborators; any of them may be nil and the
// server degrades to a plain prediction gateway.
type Options struct {
	Repo      storage.ClassificationRepository
	Cache     SummaryCache
	Publisher queue.Publisher
	StaticDir string
}

type Server struct {
	echo      *echo.Echo
	resolver  Resolver
	floor     float64
	repo      storage.ClassificationRepository
	cache     SummaryCache
	publisher queue.Publisher
}

func NewServer(r Resolver, floor float64, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:      e,
		resolver:  r,
		floor:     floor,
		repo:      opts.Repo,
		cache:     opts.Cache,
		publisher: opts.Publisher,
	}

	s.routes(opts.StaticDir)

	return s
}

func (s *Server) routes(staticDir string) {
	s.echo.GET("/health", s.health)
	s.echo.POST("/predict", s.predict)
	s.echo.GET("/api/history", s.history)
	s.echo.GET("/api/stats", s.stats)

	if staticDir != "" {
		s.echo.Static("/", staticDir)
	}
}

func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) predict(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No image uploaded"})
	}
	if file.Filename == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No image selected"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No image uploaded"})
	}
	image, err := io.ReadAll(src)
	src.Close()
	if err != nil || len(image) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No image uploaded"})
	}

	ctx := c.Request().Context()

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.Key(image)
		summary, ok, err := s.cache.GetSummary(ctx, cacheKey)
		if err != nil {
			log.Printf("[ERROR] cache get: %v", err)
		} else if ok {
			return c.JSON(http.StatusOK, summary)
		}
	}

	result, err := s.resolver.Resolve(ctx, image)
	if err != nil {
		var exhausted *classifier.ExhaustionError
		if errors.As(err, &exhausted) {
			// The reference behavior answered 200 here; a gateway error is
			// the honest status for "upstream never answered".
			return c.JSON(http.StatusBadGateway, map[string]any{
				"error":            "No working iteration found. Check your Azure Custom Vision project.",
				"tried_iterations": exhausted.TriedIterations,
				"suggestion":       "Go to Azure Custom Vision portal > Performance tab > check your published iteration name",
			})
		}
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": fmt.Sprintf("Prediction failed: %v", err),
		})
	}

	summary := classifier.Normalize(result.Predictions, s.floor)

	s.record(summary, result.Candidate.Iteration)

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, cacheKey, summary); err != nil {
			log.Printf("[ERROR] cache set: %v", err)
		}
	}

	return c.JSON(http.StatusOK, summary)
}

// record publishes the top detection as an audit event. Fire-and-forget:
// a broken queue never fails the request.
func (s *Server) record(summary domain.Summary, iteration string) {
	if s.publisher == nil || len(summary.DetectedItems) == 0 {
		return
	}

	top := summary.DetectedItems[0]
	event := domain.Classification{
		ID:         uuid.NewString(),
		Label:      top.Type,
		Confidence: top.Confidence,
		Recyclable: top.Recyclable,
		Iteration:  iteration,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.publisher.Publish(context.Background(), event); err != nil {
		log.Printf("[ERROR] publish: %v", err)
	}
}

func (s *Server) history(c echo.Context) error {
	if s.repo == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "storage not configured"})
	}

	records, err := s.repo.FindRecent(c.Request().Context(), 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if records == nil {
		records = []domain.Classification{}
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) stats(c echo.Context) error {
	if s.repo == nil {
		return c.JSON(http.StatusNotImplemented, map[string]string{"error": "storage not configured"})
	}

	stats, err := s.repo.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}
