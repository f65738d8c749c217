package net

import (
	"log"
)

// Reporter receives training progress.
type Reporter interface {
	OnTrainBegin(n *Network)
	OnTrainEnd(n *Network)
	OnEpochBegin(epoch int)
	OnEpochEnd(epoch int, e Estimate)
}

// BaseReporter provides default empty implementations for Reporter.
type BaseReporter struct{}

func (BaseReporter) OnTrainBegin(n *Network)          {}
func (BaseReporter) OnTrainEnd(n *Network)            {}
func (BaseReporter) OnEpochBegin(epoch int)           {}
func (BaseReporter) OnEpochEnd(epoch int, e Estimate) {}

// LogReporter logs training progress.
type LogReporter struct {
	BaseReporter
	Logger *log.Logger
}

// NewLogReporter creates a LogReporter writing to logger, or to the standard logger if logger
// is nil.
func NewLogReporter(logger *log.Logger) *LogReporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogReporter{Logger: logger}
}

func (r *LogReporter) OnTrainBegin(n *Network) {
	r.Logger.Printf("training sizes=%v layers=%d", n.Sizes(), len(n.Layers()))
}

func (r *LogReporter) OnEpochEnd(epoch int, e Estimate) {
	r.Logger.Printf("epoch=%d total=%d wrong=%d accuracy=%.4f", epoch, e.Total, e.Wrong, e.Accuracy)
}

// MultiReporter forwards every event to each of its reporters in order.
type MultiReporter []Reporter

func (m MultiReporter) OnTrainBegin(n *Network) {
	for _, r := range m {
		r.OnTrainBegin(n)
	}
}

func (m MultiReporter) OnTrainEnd(n *Network) {
	for _, r := range m {
		r.OnTrainEnd(n)
	}
}

func (m MultiReporter) OnEpochBegin(epoch int) {
	for _, r := range m {
		r.OnEpochBegin(epoch)
	}
}

func (m MultiReporter) OnEpochEnd(epoch int, e Estimate) {
	for _, r := range m {
		r.OnEpochEnd(epoch, e)
	}
}

// Checkpoint saves the network after every epoch whose accuracy is the best so far.
type Checkpoint struct {
	BaseReporter
	Filename string
	Logger   *log.Logger

	best  float64
	saved bool
	n     *Network
}

// NewCheckpoint creates a Checkpoint writing to filename.
func NewCheckpoint(filename string) *Checkpoint {
	return &Checkpoint{Filename: filename, Logger: log.Default()}
}

func (c *Checkpoint) OnTrainBegin(n *Network) {
	c.n = n
	c.best = 0
	c.saved = false
}

func (c *Checkpoint) OnEpochEnd(epoch int, e Estimate) {
	if c.n == nil || (c.saved && e.Accuracy <= c.best) {
		return
	}
	if err := c.n.Save(c.Filename); err != nil {
		c.Logger.Printf("checkpoint: error saving %s: %v", c.Filename, err)
		return
	}
	c.best = e.Accuracy
	c.saved = true
	c.Logger.Printf("checkpoint: epoch=%d accuracy=%.4f saved to %s", epoch, e.Accuracy, c.Filename)
}

func (c *Checkpoint) OnTrainEnd(n *Network) {
	c.n = nil
}
