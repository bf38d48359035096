package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/infra/logger"
)

// InfluxSink writes optimization results to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopRecorder if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Recorder {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopRecorder{}
	}
	return sink
}

// RecordRun writes the run summary as a single point.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimizer_run").
		AddTag("run_id", rec.RunID).
		AddTag("component", "optimizer").
		AddField("revenue_usd", round3(rec.Summary.Revenue)).
		AddField("optimum_usd", round3(rec.Summary.Optimum)).
		AddField("throughput_mwh", round3(rec.Summary.ThroughputMWh)).
		AddField("cycles", round3(rec.Summary.Cycles)).
		AddField("charged_mwh", round3(rec.Summary.ChargedMWh)).
		AddField("discharged_mwh", round3(rec.Summary.DischargedMWh)).
		AddField("spread_usd_mwh", round3(rec.Summary.Spread)).
		AddField("intervals", rec.Intervals).
		AddField("soc_steps", rec.SocSteps).
		AddField("duration_ms", round3(rec.Duration.Seconds()*1000)).
		SetTime(rec.Start)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrial persists one calibration bisection step.
func (s *InfluxSink) RecordTrial(rec coremetrics.TrialRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("calibration_trial").
		AddTag("run_id", rec.RunID).
		AddTag("iteration", strconv.Itoa(rec.Iteration)).
		AddTag("component", "calibration").
		AddField("throughput_cost", round3(rec.Cost)).
		AddField("cycles", round3(rec.Cycles)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSchedule writes one point per dispatch interval.
func (s *InfluxSink) RecordSchedule(runID string, start time.Time, dtHours float64, intervals []model.Interval) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	dt := time.Duration(dtHours * float64(time.Hour))
	for _, iv := range intervals {
		p := write.NewPointWithMeasurement("dispatch_interval").
			AddTag("run_id", runID).
			AddTag("operation", iv.Op.String()).
			AddTag("component", "optimizer").
			AddField("price_usd_mwh", round3(iv.Price)).
			AddField("grid_mwh", round3(iv.GridMWh)).
			AddField("cash_flow_usd", round3(iv.CashFlow)).
			AddField("soc_mwh", round3(iv.SocMWh)).
			AddField("soc_frac", round3(iv.SocFrac)).
			SetTime(start.Add(time.Duration(iv.Index) * dt))
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
