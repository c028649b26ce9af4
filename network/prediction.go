package network

import (
	"math"

	"github.com/SpeedyZooba/blocky-climb/shared/gamemath"
	"github.com/SpeedyZooba/blocky-climb/shared/netinput"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const predictionBufferSize = 64

// mispredictTolerance is the look error in degrees below which a confirmed
// rotation is not worth logging.
const mispredictTolerance = 0.5

// InputRecord stores a sent frame alongside the look predicted after applying it.
type InputRecord struct {
	Frame         netinput.Frame
	PredictedLook gamemath.LookRotation
}

// PredictionBuffer is a ring buffer of recent frames and their predicted
// outcomes, kept until the authority acknowledges them.
type PredictionBuffer struct {
	history [predictionBufferSize]InputRecord
	nextSeq uint32
}

// Store saves a frame and the resulting predicted look.
func (pb *PredictionBuffer) Store(frame netinput.Frame, look gamemath.LookRotation) {
	idx := frame.Sequence % predictionBufferSize
	pb.history[idx] = InputRecord{Frame: frame, PredictedLook: look}
	pb.nextSeq = frame.Sequence + 1
}

// Get retrieves a stored record by sequence number. Returns false if not found
// or if the slot has been overwritten.
func (pb *PredictionBuffer) Get(seq uint32) (InputRecord, bool) {
	if seq == 0 {
		return InputRecord{}, false
	}
	record := pb.history[seq%predictionBufferSize]
	if record.Frame.Sequence != seq {
		return InputRecord{}, false
	}
	return record, true
}

// NextSeq returns the next expected sequence number.
func (pb *PredictionBuffer) NextSeq() uint32 {
	return pb.nextSeq
}

// GetUnacknowledged returns the stored frames with sequence numbers greater
// than lastAcked and less than nextSeq.
func (pb *PredictionBuffer) GetUnacknowledged(lastAcked uint32) []InputRecord {
	var results []InputRecord
	for seq := lastAcked + 1; seq < pb.nextSeq; seq++ {
		if record, ok := pb.Get(seq); ok {
			results = append(results, record)
		}
	}
	return results
}

// PredictionError is the angular distance in degrees between the look
// predicted for seq and the one the authority reported.
func (pb *PredictionBuffer) PredictionError(seq uint32, server gamemath.LookRotation) float64 {
	record, ok := pb.Get(seq)
	if !ok {
		return 0
	}
	dp := record.PredictedLook.Pitch - server.Pitch
	dy := gamemath.WrapDegrees(record.PredictedLook.Yaw - server.Yaw)
	if dy > 180 {
		dy = 360 - dy
	}
	return math.Hypot(dp, dy)
}

// LookPredictor blends the last look confirmed by the authority with the
// frames it has not applied yet. Only orientation is predicted; positions are
// always taken from the mirror.
type LookPredictor struct {
	buf      PredictionBuffer
	maxPitch float64

	baseline  gamemath.LookRotation
	acked     uint32
	confirmed bool

	log zerolog.Logger
}

func NewLookPredictor(maxPitch float64) *LookPredictor {
	return &LookPredictor{
		maxPitch: maxPitch,
		log:      log.With().Str("component", "prediction").Logger(),
	}
}

// Record stores a frame that is about to be sent.
func (lp *LookPredictor) Record(frame netinput.Frame) {
	look := lp.baseline
	if prev, ok := lp.buf.Get(frame.Sequence - 1); ok && frame.Sequence-1 > lp.acked {
		look = prev.PredictedLook
	}
	lp.buf.Store(frame, look.Add(frame.Look, lp.maxPitch))
}

// Confirm replaces the baseline with the authority's look after applying
// frame lastSeq. Older confirmations are ignored.
func (lp *LookPredictor) Confirm(lastSeq uint32, look gamemath.LookRotation) {
	if lp.confirmed && lastSeq < lp.acked {
		return
	}
	if diff := lp.buf.PredictionError(lastSeq, look); diff > mispredictTolerance {
		lp.log.Debug().Uint32("seq", lastSeq).Float64("error", diff).Msg("look mispredicted")
	}
	lp.baseline = look
	lp.acked = lastSeq
	lp.confirmed = true
}

// Acknowledged is the last sequence the authority has applied.
func (lp *LookPredictor) Acknowledged() uint32 {
	return lp.acked
}

// Predicted is the look to render: the confirmed baseline, every frame sent
// after it, then pending look not yet flushed into a frame.
func (lp *LookPredictor) Predicted(pending mgl64.Vec2) gamemath.LookRotation {
	r := lp.baseline
	for _, rec := range lp.buf.GetUnacknowledged(lp.acked) {
		r = r.Add(rec.Frame.Look, lp.maxPitch)
	}
	return r.Add(pending, lp.maxPitch)
}
