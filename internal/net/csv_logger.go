package net

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"time"
)

// CSVLogger logs training progress to a CSV file.
type CSVLogger struct {
	BaseReporter
	Filename string
	Append   bool
	Logger   *log.Logger

	file   *os.File
	writer *csv.Writer
	start  time.Time
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
		Logger:   log.Default(),
	}
}

func (c *CSVLogger) OnTrainBegin(n *Network) {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		c.Logger.Printf("CSVLogger: failed to open file %s: %v", c.Filename, err)
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	// Write header if not appending or if file is empty
	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.write("header", []string{"epoch", "total", "wrong", "accuracy", "time_seconds"})
	}
}

func (c *CSVLogger) OnEpochEnd(epoch int, e Estimate) {
	if c.writer == nil {
		return
	}

	elapsed := time.Since(c.start).Seconds()
	c.write("record", []string{
		strconv.Itoa(epoch),
		strconv.Itoa(e.Total),
		strconv.Itoa(e.Wrong),
		strconv.FormatFloat(e.Accuracy, 'f', 6, 64),
		strconv.FormatFloat(elapsed, 'f', 2, 64),
	})
}

// write writes and flushes one row. csv.Writer buffers, so errors surface on Flush.
func (c *CSVLogger) write(what string, record []string) {
	if err := c.writer.Write(record); err != nil {
		c.Logger.Printf("CSVLogger: failed to write %s: %v", what, err)
		return
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.Logger.Printf("CSVLogger: failed to write %s: %v", what, err)
	}
}

func (c *CSVLogger) OnTrainEnd(n *Network) {
	if c.file != nil {
		c.writer.Flush()
		if err := c.file.Close(); err != nil {
			c.Logger.Printf("CSVLogger: failed to close file %s: %v", c.Filename, err)
		}
		c.file = nil
		c.writer = nil
	}
}
