package hazardapi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/laserhazard/core"
	"github.com/signalsfoundry/laserhazard/internal/hazardapi/types"
	"github.com/signalsfoundry/laserhazard/internal/logging"
	"github.com/signalsfoundry/laserhazard/internal/observability"
	"github.com/signalsfoundry/laserhazard/kb"
	"github.com/signalsfoundry/laserhazard/model"
)

// Request size caps.
const (
	MaxSweepPoints         = 10000
	MaxOverflightSteps     = 200000
	operationCatalogAdd    = "catalog_add"
	operationCatalogUpdate = "catalog_update"
)

// HazardService implements HazardServiceServer on top of an Engine and a
// product catalog.
type HazardService struct {
	engine  *core.Engine
	catalog *kb.Catalog
	log     logging.Logger

	metrics       *observability.HazardCollector
	engineMetrics *observability.EngineCollector
}

// ServiceOption configures optional collaborators of a HazardService.
type ServiceOption func(*HazardService)

// WithMetrics records evaluation outcomes on c.
func WithMetrics(c *observability.HazardCollector) ServiceOption {
	return func(s *HazardService) { s.metrics = c }
}

// WithEngineMetrics records sweep and overflight statistics on c.
func WithEngineMetrics(c *observability.EngineCollector) ServiceOption {
	return func(s *HazardService) { s.engineMetrics = c }
}

// NewHazardService wires a HazardService. A nil catalog is replaced by an
// empty one and a nil logger by a no-op logger.
func NewHazardService(engine *core.Engine, catalog *kb.Catalog, log logging.Logger, opts ...ServiceOption) *HazardService {
	if catalog == nil {
		catalog = kb.NewCatalog()
	}
	if log == nil {
		log = logging.Noop()
	}
	s := &HazardService{engine: engine, catalog: catalog, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HazardService) ensureReady() error {
	if s == nil || s.engine == nil {
		return status.Error(codes.FailedPrecondition, "hazard engine is not initialised")
	}
	return nil
}

// evaluate decodes in into Req, runs eval inside a child span and encodes
// the result. Outcomes are counted per operation.
func evaluate[Req any](
	ctx context.Context,
	s *HazardService,
	op string,
	in *structpb.Struct,
	required []string,
	eval func(context.Context, Req) (any, model.Outcome, error),
) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := requireFields(in, required...); err != nil {
		return nil, ToStatusError(err)
	}
	var req Req
	if err := types.Decode(in, &req); err != nil {
		return nil, ToStatusError(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}

	ctx, span := StartEvaluationSpan(ctx, op)
	defer span.End()

	log := logging.FromContext(ctx, s.log)
	res, outcome, err := eval(ctx, req)
	if err != nil {
		span.RecordError(err)
		log.Warn(ctx, "evaluation rejected", logging.String("operation", op), logging.Err(err))
		return nil, ToStatusError(err)
	}
	span.SetAttributes(attrOutcome.String(outcome.String()))
	s.metrics.RecordOutcome(op, outcome.String())
	log.Debug(ctx, "evaluated", logging.String("operation", op), logging.Stringer("outcome", outcome))

	out, err := types.Encode(res)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return out, nil
}

func (s *HazardService) EvaluateExposureLimit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return evaluate(ctx, s, "exposure_limit", in, []string{"wavelength_nm", "exposure_time_s"},
		func(_ context.Context, req types.LimitRequest) (any, model.Outcome, error) {
			g := types.Geometry(req.AngularSubtenseMrad)
			target, err := parseTarget(req.Target, req.WavelengthNm, g)
			if err != nil {
				return nil, 0, err
			}
			class, err := parseClass(req.Class)
			if err != nil {
				return nil, 0, err
			}
			lim := s.engine.EvaluateExposureLimit(req.WavelengthNm, req.ExposureTimeS, g, target, class)
			return lim, lim.Outcome, nil
		})
}

func (s *HazardService) EvaluatePulseTrainFactor(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return evaluate(ctx, s, "pulse_train", in, []string{"wavelength_nm", "pulse_width_s", "repetition_rate_hz", "exposure_time_s"},
		func(_ context.Context, req types.PulseTrainRequest) (any, model.Outcome, error) {
			subtense := req.AngularSubtenseMrad
			if subtense <= 0 {
				subtense = model.DefaultAngularSubtense
			}
			f := s.engine.EvaluatePulseTrainFactor(req.WavelengthNm, req.PulseWidthS, req.RepetitionRateHz, req.ExposureTimeS, subtense)
			return f, f.Outcome, nil
		})
}

func (s *HazardService) EvaluateCriticalLimit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return evaluate(ctx, s, "critical_limit", in, []string{"wavelength_nm", "exposure_time_s", "pulse_width_s", "repetition_rate_hz"},
		func(_ context.Context, req types.CriticalLimitRequest) (any, model.Outcome, error) {
			class, err := parseClass(req.Class)
			if err != nil {
				return nil, 0, err
			}
			res := s.engine.EvaluateCriticalLimit(req.WavelengthNm, req.ExposureTimeS, req.PulseWidthS, req.RepetitionRateHz, types.Geometry(req.AngularSubtenseMrad), class)
			return res, res.Critical.Outcome, nil
		})
}

func (s *HazardService) SolveNOHD(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return evaluate(ctx, s, "nohd", in, []string{"wavelength_nm", "exposure_time_s", "power_w", "beam_diameter_m", "divergence_rad"},
		func(_ context.Context, req types.BeamRequest) (any, model.Outcome, error) {
			h := s.engine.EvaluateBeam(req.ToCore())
			return h, nohdOutcome(h.NOHD), nil
		})
}

func (s *HazardService) ClassifyProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return evaluate(ctx, s, "classify", in, []string{"wavelength_nm", "exposure_time_s"},
		func(_ context.Context, req types.ClassifyRequest) (any, model.Outcome, error) {
			g := types.Geometry(req.AngularSubtenseMrad)
			var res model.ClassificationResult
			if req.RepetitionRateHz > 0 {
				if req.Emission.Unit != model.UnitJoule {
					return nil, 0, fmt.Errorf("%w: pulsed emission must be given in J per pulse, got %q", ErrInvalidRequest, req.Emission.Unit)
				}
				res = s.engine.ClassifyPulsedProduct(req.WavelengthNm, req.ExposureTimeS, req.PulseWidthS, req.RepetitionRateHz, g, req.Emission.Value)
			} else {
				res = s.engine.ClassifyProduct(req.WavelengthNm, req.ExposureTimeS, g, req.Emission)
			}
			return res, res.Outcome, nil
		})
}

func (s *HazardService) Sweep(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return evaluate(ctx, s, "sweep", in, []string{"exposure_time_s"},
		func(ctx context.Context, req types.SweepRequest) (any, model.Outcome, error) {
			wavelengths := req.WavelengthsNm
			if len(wavelengths) == 0 {
				if req.Points < 1 || !(req.ToNm >= req.FromNm) {
					return nil, 0, fmt.Errorf("%w: need wavelengths_nm or from_nm <= to_nm with points >= 1", ErrInvalidRequest)
				}
				if req.Points > MaxSweepPoints {
					return nil, 0, fmt.Errorf("%w: %d points exceeds the limit of %d", ErrInvalidRequest, req.Points, MaxSweepPoints)
				}
				wavelengths = core.LinearWavelengths(req.FromNm, req.ToNm, req.Points)
			}
			if len(wavelengths) > MaxSweepPoints {
				return nil, 0, fmt.Errorf("%w: %d points exceeds the limit of %d", ErrInvalidRequest, len(wavelengths), MaxSweepPoints)
			}

			g := types.Geometry(req.AngularSubtenseMrad)
			target, err := parseTarget(req.Target, wavelengths[0], g)
			if err != nil {
				return nil, 0, err
			}
			class, err := parseClass(req.Class)
			if err != nil {
				return nil, 0, err
			}

			start := time.Now()
			points, err := s.engine.Sweep(ctx, core.SweepRequest{
				WavelengthsNm: wavelengths,
				ExposureTimeS: req.ExposureTimeS,
				Geometry:      g,
				Target:        target,
				Class:         class,
			})
			if err != nil {
				return nil, 0, err
			}
			s.engineMetrics.ObserveSweep(time.Since(start), len(points))
			for _, p := range points {
				s.metrics.RecordOutcome("sweep_point", p.Limit.Outcome.String())
			}
			return types.SweepResponse{Points: points}, model.OutcomeOK, nil
		})
}

func (s *HazardService) ScreenOverflights(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return evaluate(ctx, s, "overflight", in, []string{"beam_azimuth_deg", "beam_elevation_deg", "keep_out_half_angle_deg", "window_s", "step_s"},
		func(ctx context.Context, req types.OverflightRequest) (any, model.Outcome, error) {
			creq := req.ToCore()
			if creq.Steps() > MaxOverflightSteps {
				return nil, 0, fmt.Errorf("%w: window of %s at %s steps exceeds %d steps", ErrInvalidRequest, creq.Window, creq.Step, MaxOverflightSteps)
			}
			if creq.Start.IsZero() {
				creq.Start = time.Now().UTC()
			}
			report, err := core.ScreenOverflights(ctx, creq)
			if err != nil {
				return nil, 0, err
			}
			s.engineMetrics.AddOverflightConflicts(len(report.Conflicts))
			return report, model.OutcomeOK, nil
		})
}

func (s *HazardService) ListProducts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	out, err := types.Encode(types.ProductList{Products: s.catalog.ListProducts()})
	if err != nil {
		return nil, ToStatusError(err)
	}
	return out, nil
}

func (s *HazardService) GetProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	id, err := productID(in)
	if err != nil {
		return nil, ToStatusError(err)
	}
	p, err := s.catalog.GetProduct(id)
	if err != nil {
		return nil, ToStatusError(err)
	}
	out, err := types.Encode(p)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return out, nil
}

func (s *HazardService) AddProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.storeProduct(ctx, in, s.catalog.AddProduct, operationCatalogAdd, "product added")
}

func (s *HazardService) UpdateProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.storeProduct(ctx, in, s.catalog.UpdateProduct, operationCatalogUpdate, "product updated")
}

// storeProduct decodes a product, hands it to store and returns the
// catalog's copy.
func (s *HazardService) storeProduct(ctx context.Context, in *structpb.Struct, store func(model.LaserProduct) error, operation, msg string) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "product is required")
	}
	var p model.LaserProduct
	if err := types.Decode(in, &p); err != nil {
		return nil, ToStatusError(fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}
	if err := store(p); err != nil {
		return nil, ToStatusError(err)
	}
	stored, err := s.catalog.GetProduct(strings.TrimSpace(p.ID))
	if err != nil {
		return nil, ToStatusError(err)
	}
	s.metrics.RecordOutcome(operation, model.OutcomeOK.String())
	logging.FromContext(ctx, s.log).Info(ctx, msg, logging.String("product_id", stored.ID))

	out, err := types.Encode(stored)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return out, nil
}

func (s *HazardService) RemoveProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	id, err := productID(in)
	if err != nil {
		return nil, ToStatusError(err)
	}
	if err := s.catalog.RemoveProduct(id); err != nil {
		return nil, ToStatusError(err)
	}
	logging.FromContext(ctx, s.log).Info(ctx, "product removed", logging.String("product_id", id))
	return &structpb.Struct{}, nil
}

func (s *HazardService) AssessProduct(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return evaluate(ctx, s, "assess", in, nil,
		func(ctx context.Context, req types.AssessRequest) (any, model.Outcome, error) {
			var p model.LaserProduct
			switch {
			case req.Product != nil:
				p = *req.Product
				if err := kb.Validate(&p); err != nil {
					return nil, 0, err
				}
			case strings.TrimSpace(req.ProductID) != "":
				var err error
				if p, err = s.catalog.GetProduct(strings.TrimSpace(req.ProductID)); err != nil {
					return nil, 0, err
				}
			default:
				return nil, 0, fmt.Errorf("%w: product_id or product is required", ErrInvalidRequest)
			}

			a, err := s.engine.AssessProduct(&p)
			if err != nil {
				return nil, 0, err
			}
			if a.ClassMismatch {
				logging.FromContext(ctx, s.log).Warn(ctx, "declared class disagrees with computed class",
					logging.String("product_id", p.ID),
					logging.String("declared", p.DeclaredClass),
					logging.String("computed", a.Classification.Class.String()),
				)
			}
			return a, a.Classification.Outcome, nil
		})
}

func productID(in *structpb.Struct) (string, error) {
	var req types.ProductRequest
	if err := types.Decode(in, &req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		return "", fmt.Errorf("%w: product_id is required", ErrInvalidRequest)
	}
	return id, nil
}

// nohdOutcome is OK when at least one target produced a distance.
func nohdOutcome(a model.NOHDAssessment) model.Outcome {
	if a.Eye.Outcome == model.OutcomeOK || a.Skin.Outcome == model.OutcomeOK {
		return model.OutcomeOK
	}
	return a.Eye.Outcome
}
