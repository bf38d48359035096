package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/bessopt/config"
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/optimizer"
	"github.com/kilianp07/bessopt/core/pricing"
	corepublisher "github.com/kilianp07/bessopt/core/publisher"
	"github.com/kilianp07/bessopt/infra/logger"
	"github.com/kilianp07/bessopt/infra/metrics"
	"github.com/kilianp07/bessopt/infra/mqtt"
	"github.com/kilianp07/bessopt/infra/prices"
	"github.com/kilianp07/bessopt/internal/eventbus"
	"github.com/kilianp07/bessopt/pkg/export"
	"github.com/kilianp07/bessopt/simulator"
)

// Service wires the configuration into one optimization pipeline: price
// acquisition, conditioning, optional calibration, the solve itself, exports,
// metrics and schedule publishing.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	recorder  coremetrics.Recorder
	publisher corepublisher.SchedulePublisher
	promPort  string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.New("service")

	rec, err := coremetrics.NewRecorder(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics recorder: %w", err)
	}

	var pub corepublisher.SchedulePublisher
	if cfg.MQTT.Broker != "" {
		p, err := mqtt.NewPahoPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		recorder:  rec,
		publisher: pub,
		promPort:  cfg.Metrics.PrometheusPort,
	}, nil
}

// Run executes one optimization end to end and returns the result. Progress
// events flow through a per-run event bus into the configured recorders and
// are fully drained before Run returns.
func (s *Service) Run(ctx context.Context) (*model.Result, error) {
	if s.promPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	runBus := eventbus.New[coremetrics.RunRecord]()
	trialBus := eventbus.New[coremetrics.TrialRecord]()
	done := metrics.StartEventCollector(ctx, runBus, trialBus, s.recorder)
	defer func() {
		runBus.Close()
		trialBus.Close()
		<-done
	}()

	runID := uuid.NewString()
	series, err := s.loadPrices()
	if err != nil {
		return nil, err
	}
	series = pricing.Condition(series, s.cfg.Conditioner)

	opts := optimizer.Options{
		Workers:         s.cfg.Optimizer.Workers,
		MinRunIntervals: s.cfg.Optimizer.MinRunIntervals,
		Logger:          s.log,
	}

	b := s.cfg.Battery
	if s.cfg.Calibration.Enabled {
		cost, err := optimizer.CalibrateThroughputCost(series, b, s.cfg.Calibration.TargetCycles, optimizer.CalibrateOptions{
			Options:    opts,
			Iterations: s.cfg.Calibration.Iterations,
			OnTrial: func(tr optimizer.CalibrationTrial) {
				s.log.Infof("calibration trial %d: cost %.3f $/MWh -> %.3f cycles", tr.Iteration, tr.Cost, tr.Cycles)
				trialBus.Publish(coremetrics.TrialRecord{
					RunID:     runID,
					Iteration: tr.Iteration,
					Cost:      tr.Cost,
					Cycles:    tr.Cycles,
					Time:      time.Now(),
				})
			},
		})
		if err != nil {
			return nil, fmt.Errorf("calibration: %w", err)
		}
		s.log.Infof("calibrated throughput cost: %.3f $/MWh", cost)
		b.ThroughputCost = cost
	}

	start := time.Now()
	res, err := optimizer.Optimize(series, b, opts)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	res.RunID = runID
	elapsed := time.Since(start)

	if err := s.writeOutputs(res); err != nil {
		return nil, err
	}

	runBus.Publish(coremetrics.RunRecord{
		RunID:     runID,
		Start:     start,
		Duration:  elapsed,
		Intervals: len(res.Intervals),
		SocSteps:  res.Settings.SocSteps,
		Summary:   res.Summary,
	})
	if sr, ok := s.recorder.(coremetrics.ScheduleRecorder); ok {
		if err := sr.RecordSchedule(runID, start, b.DtHours, res.Intervals); err != nil {
			s.log.Errorf("record schedule: %v", err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishSchedule(runID, res); err != nil {
			s.log.Errorf("publish schedule: %v", err)
		}
	}

	s.log.Infof("run %s: revenue %.2f over %d intervals (%.3f cycles)",
		runID, res.Summary.Revenue, len(res.Intervals), res.Summary.Cycles)
	return res, nil
}

// Calibrate runs only the throughput-cost search and returns the break-even
// cost for the configured target cycles.
func (s *Service) Calibrate(ctx context.Context) (float64, error) {
	trialBus := eventbus.New[coremetrics.TrialRecord]()
	done := metrics.StartEventCollector(ctx, nil, trialBus, s.recorder)
	defer func() {
		trialBus.Close()
		<-done
	}()

	runID := uuid.NewString()
	series, err := s.loadPrices()
	if err != nil {
		return 0, err
	}
	series = pricing.Condition(series, s.cfg.Conditioner)

	cost, err := optimizer.CalibrateThroughputCost(series, s.cfg.Battery, s.cfg.Calibration.TargetCycles, optimizer.CalibrateOptions{
		Options: optimizer.Options{
			Workers: s.cfg.Optimizer.Workers,
			Logger:  s.log,
		},
		Iterations: s.cfg.Calibration.Iterations,
		OnTrial: func(tr optimizer.CalibrationTrial) {
			s.log.Infof("calibration trial %d: cost %.3f $/MWh -> %.3f cycles", tr.Iteration, tr.Cost, tr.Cycles)
			trialBus.Publish(coremetrics.TrialRecord{
				RunID:     runID,
				Iteration: tr.Iteration,
				Cost:      tr.Cost,
				Cycles:    tr.Cycles,
				Time:      time.Now(),
			})
		},
	})
	if err != nil {
		return 0, fmt.Errorf("calibration: %w", err)
	}
	return cost, nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		return s.publisher.Close()
	}
	return nil
}

func (s *Service) loadPrices() ([]float64, error) {
	if s.cfg.Prices.CSV != "" {
		return prices.Load(s.cfg.Prices.CSV)
	}
	series, err := simulator.Generate(s.cfg.Prices.Shape, s.cfg.Prices.Intervals, s.cfg.Prices.Seed)
	if err != nil {
		return nil, fmt.Errorf("generate prices: %w", err)
	}
	return series, nil
}

func (s *Service) writeOutputs(res *model.Result) error {
	if path := s.cfg.Output.JSON; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		err = export.WriteJSON(f, res)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if path := s.cfg.Output.CSV; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		err = export.WriteCSV(f, res.Intervals)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
