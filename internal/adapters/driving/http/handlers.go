package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// FragmentResponse is a scored fragment as returned by /retrieve.
type FragmentResponse struct {
	Source     string  `json:"source"`
	SourceID   string  `json:"source_id"`
	Index      int     `json:"chunk_index"`
	Similarity float64 `json:"similarity"`
	Distance   float64 `json:"distance"`
	Text       string  `json:"text"`
}

// RetrieveResponse is the body returned by /retrieve.
type RetrieveResponse struct {
	Fragments []FragmentResponse `json:"fragments"`
	Count     int                `json:"count"`
}

// AnswerResponse is the body returned by /ask.
type AnswerResponse struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence string   `json:"confidence"`
	Grounded   bool     `json:"grounded"`
}

// IngestWarning is a skipped file in an ingest response.
type IngestWarning struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// IngestResponse is the body returned by /ingest.
type IngestResponse struct {
	Files     int             `json:"files"`
	Fragments int             `json:"fragments"`
	Skipped   int             `json:"skipped"`
	Warnings  []IngestWarning `json:"warnings"`
}

// IndexResponse is the body returned by GET /index.
type IndexResponse struct {
	Count      int    `json:"count"`
	Backend    string `json:"backend"`
	Location   string `json:"location"`
	Metric     string `json:"metric"`
	Dimensions int    `json:"dimensions"`
}

// parse decodes and validates a JSON body into v.
func parse(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return ErrBadRequest()
	}
	return validateRequest(v)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

func (s *Server) handleRetrieve(c *fiber.Ctx) error {
	var req RetrieveRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	scored, err := s.ports.Retriever.RetrieveScored(c.UserContext(), req.Question, req.options())
	if err != nil {
		return err
	}

	out := RetrieveResponse{Fragments: make([]FragmentResponse, len(scored)), Count: len(scored)}
	for i, sf := range scored {
		out.Fragments[i] = FragmentResponse{
			Source:     sf.Fragment.SourceLabel(),
			SourceID:   sf.Fragment.SourceID,
			Index:      sf.Fragment.Index,
			Similarity: sf.Similarity,
			Distance:   sf.Distance,
			Text:       sf.Fragment.Text,
		}
	}
	return c.JSON(out)
}

func (s *Server) handleContext(c *fiber.Ctx) error {
	var req ContextRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	payload, err := s.ports.Answer.Context(c.UserContext(), req.Question, req.history(), req.options())
	if err != nil {
		return err
	}
	if payload.Fragments == nil {
		payload.Fragments = []domain.ContextFragment{}
	}
	if payload.History == nil {
		payload.History = []domain.ConversationTurn{}
	}
	return c.JSON(payload)
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	opts := domain.AnswerOptions{Retrieve: req.options(), Direct: req.Direct}
	ans, err := s.ports.Answer.Answer(c.UserContext(), req.Question, req.history(), opts)
	if err != nil {
		return err
	}

	sources := ans.Sources
	if sources == nil {
		sources = []string{}
	}
	return c.JSON(AnswerResponse{
		Question:   ans.Question,
		Answer:     ans.Text,
		Sources:    sources,
		Confidence: string(ans.Confidence),
		Grounded:   ans.Grounded,
	})
}

func (s *Server) handleIngest(c *fiber.Ctx) error {
	if s.ports.Ingest == nil || s.ports.Sources == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "ingest is not enabled")
	}

	var req IngestRequest
	if err := parse(c, &req); err != nil {
		return err
	}

	out := IngestResponse{Warnings: []IngestWarning{}}
	for _, path := range req.Paths {
		src := s.ports.Sources(path)
		report, err := s.ports.Ingest.IngestSource(c.UserContext(), src)
		_ = src.Close()
		if report != nil {
			out.Files += report.Files
			out.Fragments += report.Fragments
			out.Skipped += report.Skipped
			for _, w := range report.Warnings {
				out.Warnings = append(out.Warnings, IngestWarning{Path: w.Path, Error: w.Err.Error()})
			}
		}
		if err != nil {
			return err
		}
	}
	return c.JSON(out)
}

func (s *Server) handleIndexInfo(c *fiber.Ctx) error {
	info := s.ports.Index.Info(c.UserContext())
	return c.JSON(IndexResponse{
		Count:      info.Count,
		Backend:    info.Backend,
		Location:   info.Location,
		Metric:     string(info.Metric),
		Dimensions: info.Dimensions,
	})
}

func (s *Server) handleIndexClear(c *fiber.Ctx) error {
	if err := s.ports.Index.Clear(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
