package neural

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// Config holds the shape and training settings of a window model.
type Config struct {
	// InputLength is the number of past rows the network reads.
	InputLength int `json:"input_length"`
	// OutputLength is the number of rows one network call forecasts.
	OutputLength int `json:"output_length"`
	// InputSize is the number of components of every input row.
	InputSize int `json:"input_size"`
	// OutputSize is the number of target components forecast.
	OutputSize int `json:"output_size"`

	Hidden       int     `json:"hidden"`
	Epochs       int     `json:"epochs"`
	LearningRate float64 `json:"learning_rate"`
	Seed         uint64  `json:"seed"`

	// ModelName names the checkpoint directory under CheckpointDir.
	ModelName     string `json:"model_name"`
	CheckpointDir string `json:"checkpoint_dir"`

	Logger *zap.Logger `json:"-"`
}

// DefaultConfig returns a univariate one-step model.
func DefaultConfig() *Config {
	return &Config{
		InputLength:   12,
		OutputLength:  1,
		InputSize:     1,
		OutputSize:    1,
		Hidden:        16,
		Epochs:        50,
		LearningRate:  0.01,
		CheckpointDir: ".goforecast",
	}
}

func (c *Config) validate() error {
	switch {
	case c.InputLength < 1, c.OutputLength < 1:
		return fmt.Errorf("input length %d, output length %d: %w", c.InputLength, c.OutputLength, forecasting.ErrConfiguration)
	case c.InputSize < 1, c.OutputSize < 1:
		return fmt.Errorf("input size %d, output size %d: %w", c.InputSize, c.OutputSize, forecasting.ErrConfiguration)
	case c.OutputSize > c.InputSize:
		return fmt.Errorf("output size %d exceeds input size %d: %w", c.OutputSize, c.InputSize, forecasting.ErrConfiguration)
	case c.Hidden < 1, c.Epochs < 1:
		return fmt.Errorf("hidden %d, epochs %d: %w", c.Hidden, c.Epochs, forecasting.ErrConfiguration)
	case c.LearningRate <= 0:
		return fmt.Errorf("learning rate %g: %w", c.LearningRate, forecasting.ErrConfiguration)
	}
	return nil
}

// Model is a window model: a dense network mapping InputLength rows of
// every component to OutputLength rows of the target components.
type Model struct {
	Config *Config

	// TrainLoss and ValidationLoss are the mean losses of the kept epoch.
	// ValidationLoss is NaN without a validation series.
	TrainLoss      float64
	ValidationLoss float64
	// BestEpoch is the epoch whose weights were kept.
	BestEpoch int

	targets []timeseries.ComponentID
	cols    []int
	net     *network
	mean    []float64
	std     []float64
	// history holds the last InputLength training rows of every component.
	history *timeseries.Series
}

// New creates a window model from a copy of config, so one config can
// seed several models. A nil config uses DefaultConfig. An empty
// ModelName is replaced by a time-stamped one.
func New(config *Config, targets ...timeseries.ComponentID) *Model {
	if config == nil {
		config = DefaultConfig()
	}
	c := *config
	if c.ModelName == "" {
		c.ModelName = fmt.Sprintf("%s_%s", time.Now().Format("2006-01-02_15.04.05"), uuid.NewString()[:8])
	}
	return &Model{Config: &c, targets: targets}
}

// Name reports the input and output lengths.
func (m *Model) Name() string {
	return fmt.Sprintf("window-model(%d,%d)", m.Config.InputLength, m.Config.OutputLength)
}

// Capabilities reports the window sizes of the network.
func (m *Model) Capabilities() forecasting.Capabilities {
	return forecasting.Capabilities{
		InputSize:    m.Config.InputSize,
		OutputSize:   m.Config.OutputSize,
		OutputLength: m.Config.OutputLength,
	}
}

// Targets returns the configured target components.
func (m *Model) Targets() []timeseries.ComponentID {
	return m.targets
}

func (m *Model) logger() *zap.Logger {
	if m.Config.Logger == nil {
		return zap.NewNop()
	}
	return m.Config.Logger
}

// Fit trains the network on every window of train. The network reads all
// components of train, which must number InputSize, and learns the target
// components. With a validation series the weights of the epoch with the
// lowest validation loss are kept; otherwise those of the last epoch.
//
// Training is deterministic for a given Seed.
func (m *Model) Fit(train *timeseries.Series, opts ...forecasting.FitOption) error {
	m.net = nil
	if err := m.Config.validate(); err != nil {
		return err
	}
	o := forecasting.NewFitOptions(m.targets, opts...)
	caps := m.Capabilities()

	cols, err := forecasting.ResolveTargets(train, o.Targets, caps)
	if err != nil {
		return err
	}
	if err := forecasting.CheckInputSize(train, caps); err != nil {
		return err
	}

	mean, std := scale(train)
	inputs, outputs := m.windows(train, cols, mean, std)
	if len(inputs) == 0 {
		return fmt.Errorf("%d rows for input length %d and output length %d: %w",
			train.Len(), m.Config.InputLength, m.Config.OutputLength, forecasting.ErrConfiguration)
	}

	var valIn, valOut [][]float64
	if o.Validation != nil {
		if o.Validation.Width() != train.Width() {
			return fmt.Errorf("validation has %d components, training %d: %w",
				o.Validation.Width(), train.Width(), forecasting.ErrDimensionMismatch)
		}
		valIn, valOut = m.windows(o.Validation, cols, mean, std)
		if len(valIn) == 0 {
			return fmt.Errorf("validation series of %d rows is shorter than one window: %w",
				o.Validation.Len(), forecasting.ErrConfiguration)
		}
	}

	rng := rand.New(rand.NewPCG(m.Config.Seed, m.Config.Seed^0x9e3779b97f4a7c15))
	net := newNetwork(m.Config.InputLength*m.Config.InputSize, m.Config.Hidden,
		m.Config.OutputLength*m.Config.OutputSize, rng)

	log := m.logger().With(zap.String("model", m.Config.ModelName))
	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}

	best, bestLoss, bestTrain, bestEpoch := net, math.Inf(1), 0.0, 0
	for epoch := range m.Config.Epochs {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		trainLoss := 0.0
		for _, i := range order {
			trainLoss += net.step(inputs[i], outputs[i], m.Config.LearningRate)
		}
		trainLoss /= float64(len(order))

		if valIn == nil {
			bestTrain, bestEpoch = trainLoss, epoch
			continue
		}
		valLoss := meanLoss(net, valIn, valOut)
		log.Debug("epoch finished",
			zap.Int("epoch", epoch),
			zap.Float64("train_loss", trainLoss),
			zap.Float64("validation_loss", valLoss))
		if valLoss < bestLoss {
			best, bestLoss, bestTrain, bestEpoch = net.clone(), valLoss, trainLoss, epoch
		}
	}
	if valIn == nil {
		best, bestLoss = net, math.NaN()
	}

	history, err := train.Slice(train.Len()-m.Config.InputLength, train.Len())
	if err != nil {
		return err
	}

	m.net = best
	m.cols = cols
	m.mean, m.std = mean, std
	m.history = history
	m.TrainLoss, m.ValidationLoss, m.BestEpoch = bestTrain, bestLoss, bestEpoch
	log.Debug("model fitted",
		zap.Int("windows", len(inputs)),
		zap.Int("best_epoch", bestEpoch),
		zap.Float64("train_loss", bestTrain))
	return nil
}

// scale returns the per-component mean and standard deviation used to
// normalise inputs. Constant components get a unit scale.
func scale(series *timeseries.Series) (mean, std []float64) {
	mean, std = series.Mean(), series.Std()
	for i, s := range std {
		if s == 0 || math.IsNaN(s) {
			std[i] = 1
		}
	}
	return mean, std
}

// windows cuts series into normalised (input, target) samples.
func (m *Model) windows(series *timeseries.Series, cols []int, mean, std []float64) (inputs, outputs [][]float64) {
	in, out := m.Config.InputLength, m.Config.OutputLength
	rows := series.Values()
	for start := 0; start+in+out <= len(rows); start++ {
		inputs = append(inputs, m.encode(rows[start:start+in], mean, std))

		target := make([]float64, 0, out*len(cols))
		for _, row := range rows[start+in : start+in+out] {
			for _, c := range cols {
				target = append(target, (row[c]-mean[c])/std[c])
			}
		}
		outputs = append(outputs, target)
	}
	return inputs, outputs
}

func (m *Model) encode(rows [][]float64, mean, std []float64) []float64 {
	x := make([]float64, 0, len(rows)*m.Config.InputSize)
	for _, row := range rows {
		for c, v := range row {
			x = append(x, (v-mean[c])/std[c])
		}
	}
	return x
}

func meanLoss(net *network, inputs, outputs [][]float64) float64 {
	total := 0.0
	for i := range inputs {
		total += net.loss(inputs[i], outputs[i])
	}
	return total / float64(len(inputs))
}

// Predict forecasts n rows after the training series.
//
// With UseFullOutputLength the network is called ceil(n/OutputLength)
// times, each call reading the rows forecast by the previous ones.
// Without it a horizon up to OutputLength takes one call, and a longer
// one is built one row at a time from the first forecast row of each
// call. Feeding forecasts back needs every input component to be a
// target; otherwise only a single call is possible.
func (m *Model) Predict(n int, opts ...forecasting.PredictOption) (*timeseries.Series, error) {
	if m.net == nil {
		return nil, forecasting.ErrNotFitted
	}
	if n < 1 {
		return nil, fmt.Errorf("forecast horizon %d: %w", n, forecasting.ErrConfiguration)
	}
	o := forecasting.NewPredictOptions(opts...)

	full, length := o.FullOutputLength, m.Config.OutputLength
	if !full && n > length {
		full, length = true, 1
	}
	calls := 1
	if full {
		calls = (n + length - 1) / length
	}
	if calls > 1 && !m.autoregressive() {
		return nil, fmt.Errorf("%d calls needed but only %d of %d input components are targets: %w",
			calls, len(m.cols), m.Config.InputSize, forecasting.ErrConfiguration)
	}

	r := &roller{model: m, history: m.history, keep: length}
	return forecasting.Rollout(n, length, full, r.step)
}

// autoregressive reports whether forecasts cover every input component.
func (m *Model) autoregressive() bool {
	return len(m.cols) == m.Config.InputSize
}

// roller feeds forecasts back into the input window.
type roller struct {
	model   *Model
	history *timeseries.Series
	keep    int
}

func (r *roller) step() (*timeseries.Series, error) {
	m := r.model
	window, err := r.history.Slice(r.history.Len()-m.Config.InputLength, r.history.Len())
	if err != nil {
		return nil, err
	}
	y := m.net.predict(m.encode(window.Values(), m.mean, m.std))

	size := len(m.cols)
	rows := make([][]float64, r.keep)
	full := make([][]float64, r.keep)
	for i := range rows {
		rows[i] = make([]float64, size)
		full[i] = make([]float64, m.Config.InputSize)
		for j, c := range m.cols {
			v := y[i*size+j]*m.std[c] + m.mean[c]
			rows[i][j] = v
			full[i][c] = v
		}
	}

	times, err := r.history.TimesAfter(r.keep)
	if err != nil {
		return nil, err
	}
	freq := timeseries.WithFreq(r.history.Freq())
	names := forecasting.TargetNames(r.history, m.cols)
	chunk, err := timeseries.FromRows(times, rows, names, freq)
	if err != nil {
		return nil, err
	}

	if m.autoregressive() {
		next, err := timeseries.FromRows(times, full, r.history.Components(), freq)
		if err != nil {
			return nil, err
		}
		if r.history, err = r.history.Append(next); err != nil {
			return nil, err
		}
	}
	return chunk, nil
}
