// Package prediction provides the application-level service for solubility
// prediction: featurization, batched inference, de-normalization, solvent
// ranking and the temperature grid.
package prediction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/akash-acog/sol/internal/domain/solvent"
	"github.com/akash-acog/sol/internal/infrastructure/monitoring/logging"
	"github.com/akash-acog/sol/internal/intelligence/featurize"
	"github.com/akash-acog/sol/internal/intelligence/solnet"
	"github.com/akash-acog/sol/pkg/errors"
	ptypes "github.com/akash-acog/sol/pkg/types/prediction"
)

// Normalization constants of the training target. Predictions leave the
// model in normalized space and are mapped back to LogS units here.
const (
	TargetMean = -0.9832843100207638
	TargetStd  = 1.2159083883491026
)

// Training temperature domain in Kelvin. Requests outside it are answered
// with a warning, not rejected.
const (
	TrainingTempMinK = 243.15
	TrainingTempMaxK = 425.77
)

// Solvent analysis parameters: rankings at room temperature, the heatmap
// grid from 250K to 450K in 10K steps.
const (
	RankingTemperatureK = 298.15
	HeatmapTempMinK     = 250
	HeatmapTempMaxK     = 450
	HeatmapTempStepK    = 10
)

// Model is the inference surface the service needs. *solnet.Model satisfies
// it; eval-mode Forward is safe for concurrent use.
type Model interface {
	Forward(solute, solvent *solnet.GraphBatch, temperatures []float64) ([]float64, error)
	Config() *solnet.Config
}

// Publisher emits prediction events after a completed batch. Failures are
// logged, never surfaced to the caller.
type Publisher interface {
	PublishPredictions(ctx context.Context, events []ptypes.Event) error
}

// History persists completed predictions for later audit.
type History interface {
	SavePredictions(ctx context.Context, events []ptypes.Event) error
}

// Metrics receives inference observations. The prometheus package provides
// the real implementation.
type Metrics interface {
	ObserveInference(batchSize int, d time.Duration)
	SolventCacheHit()
	SolventCacheMiss()
}

type noopMetrics struct{}

func (noopMetrics) ObserveInference(int, time.Duration) {}
func (noopMetrics) SolventCacheHit()                    {}
func (noopMetrics) SolventCacheMiss()                   {}

// Service defines the prediction application operations.
type Service interface {
	// PredictBatch runs one inference pass for a batch of solute/solvent/
	// temperature triples. Any invalid entry fails the whole batch.
	PredictBatch(ctx context.Context, reqs []ptypes.Request) ([]ptypes.Response, error)
	// AnalyzeSolvents ranks every registry solvent for the solute at room
	// temperature and fills the solvent-by-temperature grid.
	AnalyzeSolvents(ctx context.Context, req ptypes.AnalysisRequest) (*ptypes.AnalysisResponse, error)
	// Solvents lists the registry catalogue.
	Solvents() []ptypes.Solvent
	// ModelVersion reports the loaded model's version string.
	ModelVersion() string
}

type serviceImpl struct {
	model      Model
	featurizer *featurize.Featurizer
	registry   solvent.Registry
	cache      *solventGraphCache

	publisher Publisher
	history   History
	metrics   Metrics
	logger    logging.Logger

	maxBatchSize          int
	targetMean, targetStd float64
}

// Option configures optional service collaborators.
type Option func(*serviceImpl)

// WithPublisher wires the prediction event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *serviceImpl) { s.publisher = p }
}

// WithHistory wires the prediction history store.
func WithHistory(h History) Option {
	return func(s *serviceImpl) { s.history = h }
}

// WithMetrics wires inference metrics.
func WithMetrics(m Metrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// WithRemoteCache layers a shared cache under the in-process solvent graph
// cache.
func WithRemoteCache(c RemoteCache, ttl time.Duration) Option {
	return func(s *serviceImpl) {
		s.cache.remote = c
		s.cache.remoteTTL = ttl
	}
}

// WithMaxBatchSize caps the size of one prediction batch. Zero disables the
// cap.
func WithMaxBatchSize(n int) Option {
	return func(s *serviceImpl) { s.maxBatchSize = n }
}

// WithNormalization overrides the training-target normalization constants,
// used when a checkpoint was trained against a different target scale.
func WithNormalization(mean, std float64) Option {
	return func(s *serviceImpl) {
		s.targetMean = mean
		s.targetStd = std
	}
}

// NewService creates the prediction service.
func NewService(model Model, feat *featurize.Featurizer, registry solvent.Registry, logger logging.Logger, opts ...Option) (Service, error) {
	if model == nil {
		return nil, errors.New(errors.ErrCodeModelNotLoaded, "prediction service requires a model")
	}
	if feat == nil {
		return nil, errors.InvalidParam("prediction service requires a featurizer")
	}
	if model.Config().NodeDim != feat.NodeDim() {
		return nil, errors.Newf(errors.ErrCodeDimensionMismatch,
			"model expects %d-dim nodes but featurizer produces %d",
			model.Config().NodeDim, feat.NodeDim())
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	s := &serviceImpl{
		model:      model,
		featurizer: feat,
		registry:   registry,
		cache:      newSolventGraphCache(feat),
		metrics:    noopMetrics{},
		logger:     logger.Named("prediction"),
		targetMean: TargetMean,
		targetStd:  TargetStd,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *serviceImpl) ModelVersion() string {
	return s.model.Config().ModelVersion
}

func (s *serviceImpl) Solvents() []ptypes.Solvent {
	list := s.registry.List()
	out := make([]ptypes.Solvent, len(list))
	for i, sv := range list {
		out[i] = ptypes.Solvent{
			Name:        sv.Name,
			SMILES:      sv.SMILES,
			Dielectric:  sv.Dielectric,
			DisplayName: sv.DisplayName(),
		}
	}
	return out
}

func (s *serviceImpl) PredictBatch(ctx context.Context, reqs []ptypes.Request) ([]ptypes.Response, error) {
	if len(reqs) == 0 {
		return nil, errors.InvalidParam("prediction batch is empty")
	}
	if s.maxBatchSize > 0 && len(reqs) > s.maxBatchSize {
		return nil, errors.Newf(errors.CodeInvalidParam,
			"batch of %d exceeds the limit of %d", len(reqs), s.maxBatchSize)
	}

	solutes := make([]*solnet.MolecularGraph, len(reqs))
	solvents := make([]*solnet.MolecularGraph, len(reqs))
	temps := make([]float64, len(reqs))
	for i, req := range reqs {
		if err := req.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidParam, "invalid prediction request")
		}
		sg, err := s.featurizer.SmilesToGraph(req.SoluteSMILES)
		if err != nil {
			return nil, err
		}
		vg, err := s.cache.get(ctx, req.SolventSMILES, s.metrics)
		if err != nil {
			return nil, err
		}
		solutes[i] = sg
		solvents[i] = vg
		temps[i] = req.TemperatureK
	}

	preds, err := s.forward(solutes, solvents, temps)
	if err != nil {
		return nil, err
	}

	responses := make([]ptypes.Response, len(reqs))
	events := make([]ptypes.Event, len(reqs))
	now := time.Now().UnixMilli()
	for i, req := range reqs {
		responses[i] = ptypes.Response{
			PredictedLogS: preds[i],
			TemperatureK:  req.TemperatureK,
			Warning:       s.warningFor(req.TemperatureK),
		}
		events[i] = ptypes.Event{
			ID:            uuid.NewString(),
			SoluteSMILES:  req.SoluteSMILES,
			SolventSMILES: req.SolventSMILES,
			TemperatureK:  req.TemperatureK,
			PredictedLogS: preds[i],
			ModelVersion:  s.ModelVersion(),
			UnixMillis:    now,
		}
	}

	s.emit(ctx, events)
	return responses, nil
}

func (s *serviceImpl) warningFor(tempK float64) string {
	if tempK < TrainingTempMinK || tempK > TrainingTempMaxK {
		return fmt.Sprintf(
			"temperature %.2fK is outside the training range (%.2fK-%.2fK); prediction may be less reliable",
			tempK, TrainingTempMinK, TrainingTempMaxK)
	}
	return ""
}

// forward packs the graphs, runs one model pass and de-normalizes.
func (s *serviceImpl) forward(solutes, solvents []*solnet.MolecularGraph, temps []float64) ([]float64, error) {
	nodeDim, edgeDim := s.featurizer.NodeDim(), s.featurizer.EdgeDim()
	soluteBatch, err := solnet.NewGraphBatch(solutes, nodeDim, edgeDim)
	if err != nil {
		return nil, err
	}
	solventBatch, err := solnet.NewGraphBatch(solvents, nodeDim, edgeDim)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	preds, err := s.model.Forward(soluteBatch, solventBatch, temps)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePredictionFailed, "model inference failed")
	}
	s.metrics.ObserveInference(len(temps), time.Since(start))

	for i := range preds {
		preds[i] = preds[i]*s.targetStd + s.targetMean
	}
	return preds, nil
}

// emit publishes and persists events best-effort.
func (s *serviceImpl) emit(ctx context.Context, events []ptypes.Event) {
	if s.publisher != nil {
		if err := s.publisher.PublishPredictions(ctx, events); err != nil {
			s.logger.Warn("failed to publish prediction events", logging.Err(err))
		}
	}
	if s.history != nil {
		if err := s.history.SavePredictions(ctx, events); err != nil {
			s.logger.Warn("failed to persist prediction history", logging.Err(err))
		}
	}
}

func (s *serviceImpl) AnalyzeSolvents(ctx context.Context, req ptypes.AnalysisRequest) (*ptypes.AnalysisResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "invalid analysis request")
	}

	soluteGraph, err := s.featurizer.SmilesToGraph(req.SoluteSMILES)
	if err != nil {
		return nil, err
	}

	catalogue := s.registry.List()
	if len(catalogue) == 0 {
		return nil, errors.New(errors.ErrCodeSolventUnknown, "solvent registry is empty")
	}

	temps := heatmapTemperatures()

	rows := make([]ptypes.HeatmapRow, len(catalogue))
	for i, sv := range catalogue {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "analysis cancelled")
		}
		vg, err := s.cache.get(ctx, sv.SMILES, s.metrics)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal,
				"registry solvent failed featurization").WithDetail(sv.Name)
		}
		preds, err := s.gridForSolvent(soluteGraph, vg, temps)
		if err != nil {
			return nil, err
		}
		rows[i] = ptypes.HeatmapRow{
			SolventName:   sv.DisplayName(),
			SolventSMILES: sv.SMILES,
			PredictedLogS: preds,
		}
	}

	rankings, err := s.rankSolvents(ctx, soluteGraph, catalogue)
	if err != nil {
		return nil, err
	}

	return &ptypes.AnalysisResponse{
		SoluteSMILES:        req.SoluteSMILES,
		SoluteName:          req.SoluteName,
		RankingTemperatureK: RankingTemperatureK,
		Rankings:            rankings,
		Temperatures:        temps,
		HeatmapRows:         rows,
	}, nil
}

// gridForSolvent predicts one solvent across the whole temperature grid in
// a single pass, repeating the pair per temperature.
func (s *serviceImpl) gridForSolvent(soluteGraph, solventGraph *solnet.MolecularGraph, temps []float64) ([]float64, error) {
	solutes := make([]*solnet.MolecularGraph, len(temps))
	solvents := make([]*solnet.MolecularGraph, len(temps))
	for i := range temps {
		solutes[i] = soluteGraph
		solvents[i] = solventGraph
	}
	return s.forward(solutes, solvents, temps)
}

func (s *serviceImpl) rankSolvents(ctx context.Context, soluteGraph *solnet.MolecularGraph, catalogue []solvent.Solvent) ([]ptypes.SolventRanking, error) {
	solutes := make([]*solnet.MolecularGraph, len(catalogue))
	solvents := make([]*solnet.MolecularGraph, len(catalogue))
	temps := make([]float64, len(catalogue))
	for i, sv := range catalogue {
		vg, err := s.cache.get(ctx, sv.SMILES, s.metrics)
		if err != nil {
			return nil, err
		}
		solutes[i] = soluteGraph
		solvents[i] = vg
		temps[i] = RankingTemperatureK
	}

	preds, err := s.forward(solutes, solvents, temps)
	if err != nil {
		return nil, err
	}

	rankings := make([]ptypes.SolventRanking, len(catalogue))
	for i, sv := range catalogue {
		rankings[i] = ptypes.SolventRanking{
			SolventName:   sv.DisplayName(),
			SolventSMILES: sv.SMILES,
			PredictedLogS: preds[i],
		}
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].PredictedLogS > rankings[j].PredictedLogS
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}

func heatmapTemperatures() []float64 {
	var temps []float64
	for t := HeatmapTempMinK; t <= HeatmapTempMaxK; t += HeatmapTempStepK {
		temps = append(temps, float64(t))
	}
	return temps
}
