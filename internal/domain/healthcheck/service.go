package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"sync"

	apperrors "github.com/cropcare/cropcare-go/pkg/errors"
	"github.com/cropcare/cropcare-go/pkg/reqstate"
)

// InferClient performs the inference call against the remote API.
type InferClient interface {
	Infer(ctx context.Context, body io.Reader, contentType string) (AnalysisResult, error)
}

// SubmitRequest captures one analysis submission. It is assembled at
// submission time and never mutated afterwards.
type SubmitRequest struct {
	Image     []byte
	Filename  string
	CropType  CropType
	CropStage CropStage
	Location  *Location
}

// Service owns the lifecycle of the user-initiated analysis submission.
// Overlapping submissions are tolerated; only the most recently initiated
// one resolves into visible state, an earlier call's late response is
// dropped.
type Service struct {
	client   InferClient
	onResult func(AnalysisResult)
	logger   *slog.Logger

	mu    sync.Mutex
	gen   uint64
	state reqstate.State[AnalysisResult]
}

// NewService wires up the submission orchestrator. onResult may be nil;
// when set it fires after a successful submission so the caller can move
// to a results view.
func NewService(client InferClient, onResult func(AnalysisResult), logger *slog.Logger) *Service {
	return &Service{
		client:   client,
		onResult: onResult,
		logger:   logger.With("component", "healthcheck.service"),
		state:    reqstate.Idle[AnalysisResult](),
	}
}

// State returns the current submission lifecycle snapshot.
func (s *Service) State() reqstate.State[AnalysisResult] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit validates the request, posts the multipart payload, and installs
// the resolution as the new visible state. A request without an image is
// inert: no call is issued and the tracked state is untouched.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (AnalysisResult, error) {
	if len(req.Image) == 0 {
		return AnalysisResult{}, apperrors.Wrap("missing_image", "no image selected", nil)
	}
	if req.CropType == "" {
		req.CropType = CropRice
	}
	if req.CropStage == "" {
		req.CropStage = StageVegetative
	}
	if !ValidCropType(req.CropType) {
		return AnalysisResult{}, apperrors.Wrap("invalid_input", "unknown crop type", nil)
	}
	if !ValidCropStage(req.CropStage) {
		return AnalysisResult{}, apperrors.Wrap("invalid_input", "unknown crop stage", nil)
	}

	body, contentType, err := buildForm(req)
	if err != nil {
		return AnalysisResult{}, apperrors.Wrap("invalid_input", "failed to encode submission", err)
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = reqstate.Pending[AnalysisResult]()
	s.mu.Unlock()

	s.logger.Info("analysis submitted", "crop_type", req.CropType, "crop_stage", req.CropStage, "has_location", req.Location != nil, "image_bytes", len(req.Image))

	result, err := s.client.Infer(ctx, body, contentType)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Warn("stale analysis resolution dropped", "generation", gen)
		return AnalysisResult{}, apperrors.Wrap("superseded", "submission superseded by a newer one", nil)
	}
	if err != nil {
		s.state = reqstate.Failed[AnalysisResult](err)
		s.mu.Unlock()
		return AnalysisResult{}, err
	}
	s.state = reqstate.Succeeded(result)
	s.mu.Unlock()

	s.logger.Info("analysis resolved", "label", result.Label, "confidence", result.Confidence, "severity", result.Severity)
	if s.onResult != nil {
		s.onResult(result)
	}
	return result, nil
}
