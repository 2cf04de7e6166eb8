package neural

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// CheckpointFile is the file name used inside a checkpoint directory.
const CheckpointFile = "model.ckpt"

// ErrCorruptCheckpoint is returned when a checkpoint fails its checksum or
// cannot be decoded.
var ErrCorruptCheckpoint = errors.New("neural: corrupt checkpoint")

const checkpointVersion = 1

var encoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			panic(fmt.Sprintf("zstd encoder: %v", err))
		}
		return enc
	},
}

var decoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			panic(fmt.Sprintf("zstd decoder: %v", err))
		}
		return dec
	},
}

// checkpoint is the document stored in a checkpoint file.
type checkpoint struct {
	Version        int             `json:"version"`
	Config         Config          `json:"config"`
	Targets        []int           `json:"targets"`
	Network        *network        `json:"network"`
	Mean           []float64       `json:"mean"`
	Std            []float64       `json:"std"`
	TrainLoss      float64         `json:"train_loss"`
	ValidationLoss *float64        `json:"validation_loss,omitempty"`
	BestEpoch      int             `json:"best_epoch"`
	History        historySnapshot `json:"history"`
}

type historySnapshot struct {
	Times      []time.Time     `json:"times"`
	Rows       [][]float64     `json:"rows"`
	Components []string        `json:"components"`
	Freq       timeseries.Freq `json:"freq"`
}

// Save writes the fitted model to path. The file holds an xxhash64
// checksum of the payload followed by the zstd-compressed JSON document.
func (m *Model) Save(path string) error {
	if m.net == nil {
		return forecasting.ErrNotFitted
	}
	doc := checkpoint{
		Version:   checkpointVersion,
		Config:    *m.Config,
		Targets:   m.cols,
		Network:   m.net,
		Mean:      m.mean,
		Std:       m.std,
		TrainLoss: m.TrainLoss,
		BestEpoch: m.BestEpoch,
		History: historySnapshot{
			Times:      m.history.Timestamps(),
			Rows:       m.history.Values(),
			Components: m.history.Components(),
			Freq:       m.history.Freq(),
		},
	}
	if v := m.ValidationLoss; !math.IsNaN(v) {
		doc.ValidationLoss = &v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	enc := encoderPool.Get().(*zstd.Encoder)
	payload := enc.EncodeAll(raw, nil)
	encoderPool.Put(enc)

	data := make([]byte, 8, 8+len(payload))
	binary.LittleEndian.PutUint64(data, xxhash.Sum64(payload))
	data = append(data, payload...)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SaveCheckpoint saves the model under CheckpointDir/ModelName.
func (m *Model) SaveCheckpoint() error {
	return m.Save(filepath.Join(m.Config.CheckpointDir, m.Config.ModelName, CheckpointFile))
}

// Load reads a model written by Save. The loaded model predicts exactly
// as the saved one did and can be refit.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("%s: %w", path, ErrCorruptCheckpoint)
	}
	payload := data[8:]
	if binary.LittleEndian.Uint64(data) != xxhash.Sum64(payload) {
		return nil, fmt.Errorf("%s: checksum mismatch: %w", path, ErrCorruptCheckpoint)
	}

	dec := decoderPool.Get().(*zstd.Decoder)
	raw, err := dec.DecodeAll(payload, nil)
	decoderPool.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCorruptCheckpoint, err)
	}

	var doc checkpoint
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCorruptCheckpoint, err)
	}
	if doc.Version != checkpointVersion {
		return nil, fmt.Errorf("%s: version %d: %w", path, doc.Version, ErrCorruptCheckpoint)
	}
	if doc.Network == nil {
		return nil, fmt.Errorf("%s: no network: %w", path, ErrCorruptCheckpoint)
	}

	history, err := timeseries.FromRows(doc.History.Times, doc.History.Rows, doc.History.Components,
		timeseries.WithFreq(doc.History.Freq))
	if err != nil {
		return nil, fmt.Errorf("%s: history: %w", path, err)
	}

	cfg := doc.Config
	m := &Model{
		Config:         &cfg,
		TrainLoss:      doc.TrainLoss,
		ValidationLoss: math.NaN(),
		BestEpoch:      doc.BestEpoch,
		targets:        timeseries.Indices(doc.Targets...),
		cols:           doc.Targets,
		net:            doc.Network,
		mean:           doc.Mean,
		std:            doc.Std,
		history:        history,
	}
	if doc.ValidationLoss != nil {
		m.ValidationLoss = *doc.ValidationLoss
	}
	return m, nil
}

// LoadFromCheckpoint loads the model saved by SaveCheckpoint under
// dir/name.
func LoadFromCheckpoint(dir, name string) (*Model, error) {
	return Load(filepath.Join(dir, name, CheckpointFile))
}
